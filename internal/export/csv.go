package export

import (
	"strconv"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

const csvHeader = "date,category,note,amount"

// ToCSV renders records in the given order as CSV text, one line per record
// after a header. The output has no trailing newline.
func ToCSV(records []expense.Expense) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, csvHeader)

	for _, e := range records {
		lines = append(lines, strings.Join([]string{
			dateOf(e),
			string(e.Category),
			escapeCSV(e.Note),
			strconv.FormatInt(e.Amount, 10),
		}, ","))
	}

	return strings.Join(lines, "\n")
}

// dateOf is the calendar-date prefix of the persisted timestamp.
func dateOf(e expense.Expense) string {
	return expense.FormatTimestamp(e.CreatedAt)[:10]
}

func escapeCSV(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}

	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
