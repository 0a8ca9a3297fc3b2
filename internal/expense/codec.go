package expense

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the persisted form of CreatedAt, always rendered in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// record is the persisted shape of one expense. Older payloads may omit note.
type record struct {
	ID        string      `json:"id"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	Note      string      `json:"note"`
	CreatedAt string      `json:"createdAt"`
}

// FormatTimestamp renders t the way it is persisted.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func encodeList(expenses []Expense) ([]byte, error) {
	records := make([]record, len(expenses))
	for i, e := range expenses {
		records[i] = record{
			ID:        e.ID,
			Amount:    json.Number(strconv.FormatInt(e.Amount, 10)),
			Category:  string(e.Category),
			Note:      e.Note,
			CreatedAt: FormatTimestamp(e.CreatedAt),
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshal expenses: %w", err)
	}

	return data, nil
}

// decodeList parses a persisted payload. Any malformed element fails the whole payload.
func decodeList(data []byte) ([]Expense, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal expenses: %w", err)
	}

	expenses := make([]Expense, 0, len(records))

	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}

		amount, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("record %d: amount: %w", i, err)
		}

		createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d: createdAt: %w", i, err)
		}

		expenses = append(expenses, Expense{
			ID:        r.ID,
			Amount:    amount.Round(0).IntPart(),
			Category:  Category(r.Category),
			Note:      r.Note,
			CreatedAt: createdAt,
		})
	}

	return expenses, nil
}
