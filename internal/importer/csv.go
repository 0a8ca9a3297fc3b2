package importer

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// ErrNoRows is reported when a CSV text yields nothing importable.
var ErrNoRows = errors.New("no valid rows found")

// DefaultNote replaces an empty note on import.
const DefaultNote = "Imported"

// Row is one decoded CSV line.
type Row struct {
	Date     time.Time
	Category expense.Category
	Note     string
	Amount   int64
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseCSV decodes free-form CSV text with columns date, category, note and
// amount. Lines that do not yield a valid row are skipped, so the result may be
// empty but parsing never fails.
func ParseCSV(text string) []Row {
	lines := splitRecords(text)
	if len(lines) == 0 {
		return []Row{}
	}

	if isHeader(lines[0]) {
		lines = lines[1:]
	}

	rows := make([]Row, 0, len(lines))

	for _, line := range lines {
		row, ok := parseLine(line)
		if !ok {
			continue
		}

		rows = append(rows, row)
	}

	return rows
}

// ToImportRows converts decoded rows into the shape the expense store imports.
func ToImportRows(rows []Row) []expense.ImportRow {
	out := make([]expense.ImportRow, len(rows))
	for i, r := range rows {
		out[i] = expense.ImportRow{
			Amount:    r.Amount,
			Category:  r.Category,
			Note:      r.Note,
			CreatedAt: r.Date,
		}
	}

	return out
}

func isHeader(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "date") && strings.Contains(lower, "category")
}

func parseLine(line string) (Row, bool) {
	tokens := tokenize(line)
	if len(tokens) < 4 {
		return Row{}, false
	}

	last := len(tokens) - 1

	date, ok := parseDate(tokens[0])
	if !ok {
		return Row{}, false
	}

	amount, ok := parseAmount(tokens[last])
	if !ok {
		return Row{}, false
	}

	category, ok := expense.MatchCategory(tokens[1])
	if !ok {
		category = expense.FallbackCategory
	}

	note := strings.TrimSpace(strings.Join(tokens[2:last], ","))
	if note == "" {
		note = DefaultNote
	}

	return Row{Date: date, Category: category, Note: note, Amount: amount}, true
}

// parseDate returns noon local time on the calendar day written in s.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}

		return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.Local), true
	}

	return time.Time{}, false
}

// parseAmount keeps only digits, dots and minus signs, then rounds half away
// from zero to a whole unit. Non-positive results are rejected.
func parseAmount(s string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}

		return -1
	}, s)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}

	amount := d.Round(0).IntPart()
	if amount <= 0 {
		return 0, false
	}

	return amount, true
}

// physicalLine is one line of input and the newline sequence that ended it.
type physicalLine struct {
	text string
	eol  string
}

func splitLines(text string) []physicalLine {
	var (
		lines []physicalLine
		start int
	)

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, physicalLine{text: text[start:i], eol: "\n"})
			start = i + 1
		case '\r':
			eol := "\r"
			if i+1 < len(text) && text[i+1] == '\n' {
				eol = "\r\n"
			}

			lines = append(lines, physicalLine{text: text[start:i], eol: eol})
			i += len(eol) - 1
			start = i + 1
		}
	}

	return append(lines, physicalLine{text: text[start:]})
}

// splitRecords splits text into lines and drops blank ones. A line that opens a
// quoted field without closing it is joined with the following lines, but only
// when a later line closes that field. Otherwise the line stands alone, so one
// stray quote cannot swallow the rows after it.
func splitRecords(text string) []string {
	lines := splitLines(text)
	records := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		record := lines[i].text

		if opensQuotedField(record) {
			if end, joined, ok := joinQuotedField(lines, i); ok {
				record, i = joined, end
			}
		}

		if strings.TrimSpace(record) != "" {
			records = append(records, record)
		}
	}

	return records
}

// opensQuotedField reports whether s ends inside a quoted field whose opening
// quote starts a field, i.e. follows a comma or the start of the line.
func opensQuotedField(s string) bool {
	inQuotes := false
	openAt := -1

	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			continue
		}

		inQuotes = !inQuotes
		if inQuotes {
			openAt = i
		}
	}

	if !inQuotes {
		return false
	}

	prefix := strings.TrimRight(s[:openAt], " \t")

	return prefix == "" || strings.HasSuffix(prefix, ",")
}

// joinQuotedField joins lines from first onward until the quotes balance and the
// closing quote ends a field. It returns the index of the last joined line.
func joinQuotedField(lines []physicalLine, first int) (int, string, bool) {
	var b strings.Builder

	b.WriteString(lines[first].text)

	for j := first + 1; j < len(lines); j++ {
		b.WriteString(lines[j-1].eol)
		b.WriteString(lines[j].text)

		joined := b.String()
		if strings.Count(joined, `"`)%2 != 0 {
			continue
		}

		rest := strings.TrimLeft(joined[strings.LastIndexByte(joined, '"')+1:], " \t")
		if rest != "" && rest[0] != ',' {
			return first, "", false
		}

		return j, joined, true
	}

	return first, "", false
}

// tokenize splits a record on commas outside double quotes and trims each
// field. Quote characters delimit and are dropped; a doubled quote inside a
// quoted field is a literal quote. When the quotes do not balance they are all
// taken literally and every comma splits.
func tokenize(line string) []string {
	if strings.Count(line, `"`)%2 != 0 {
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		return fields
	}

	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			current.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	return append(fields, strings.TrimSpace(current.String()))
}
