// Package cgd reads the CSV statements exported by Caixa Geral de Depósitos
// home banking (account, statement and card exports).
package cgd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
)

// ErrUnknownLayout means no header row of a known CGD export was found.
var ErrUnknownLayout = errors.New("no matching CGD format found: expected columns for conta, extrato, or cartão")

const dateLayout = "02-01-2006"

// Movement is one statement line. Amount is negative for money leaving the account.
type Movement struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

// Parse decodes a CGD export of any supported text encoding. Rows without a
// date or an amount, such as page footers, are skipped.
func Parse(r io.Reader) ([]Movement, error) {
	text, err := encoding.ReadUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	l, cols, header := findLayout(rows)
	if l == nil {
		return nil, ErrUnknownLayout
	}

	return readMovements(l, cols, rows[header+1:], header+1)
}

type columnIndex map[string]int

func findLayout(rows [][]string) (*layout, columnIndex, int) {
	for rowIdx, row := range rows {
		cols := make(columnIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range layouts {
			if hasColumns(cols, layouts[i].required()) {
				return &layouts[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func hasColumns(cols columnIndex, names []string) bool {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// readMovements converts the data rows under the header. offset is the index
// of the first data row in the file, used for error messages.
func readMovements(l *layout, cols columnIndex, rows [][]string, offset int) ([]Movement, error) {
	movements := []Movement{}

	for i, row := range rows {
		date, err := time.Parse(dateLayout, cell(row, cols[l.date]))
		if err != nil {
			continue
		}

		amount, ok := rowAmount(l, cols, row)
		if !ok {
			continue
		}

		desc := cell(row, cols[l.desc])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", offset+i+1)
		}

		movements = append(movements, Movement{Date: date, Description: desc, Amount: amount})
	}

	return movements, nil
}

func rowAmount(l *layout, cols columnIndex, row []string) (decimal.Decimal, bool) {
	if l.columns == signedAmount {
		return nonZero(cell(row, cols[l.amount]))
	}

	if d, ok := nonZero(cell(row, cols[l.debit])); ok {
		return d.Abs().Neg(), true
	}

	if d, ok := nonZero(cell(row, cols[l.credit])); ok {
		return d.Abs(), true
	}

	return decimal.Zero, false
}

func nonZero(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}

	d, err := parseEuropeanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Zero, false
	}

	return d, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
