package view

import (
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// Formatter renders amounts with the user's currency symbol and digit grouping.
type Formatter struct {
	printer  *message.Printer
	currency string
}

func NewFormatter(lang, currency string) Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}

	return Formatter{printer: message.NewPrinter(tag), currency: currency}
}

// Amount formats whole currency units, e.g. "€1,250".
func (f Formatter) Amount(amount int64) string {
	return f.printer.Sprintf("%s%d", f.currency, amount)
}

func FormatDate(t time.Time) string {
	return t.Local().Format(time.DateOnly)
}

func FormatTime(t time.Time) string {
	return t.Local().Format("15:04")
}

// categoryColors gives each category a stable color in tables and charts.
var categoryColors = map[expense.Category]lipgloss.Color{
	expense.CategoryFood:           lipgloss.Color("208"),
	expense.CategoryTransportation: lipgloss.Color("39"),
	expense.CategoryShopping:       lipgloss.Color("205"),
	expense.CategoryNecessities:    lipgloss.Color("220"),
	expense.CategoryGroceries:      lipgloss.Color("76"),
	expense.CategoryOthers:         lipgloss.Color("245"),
}

func categoryColor(c expense.Category) lipgloss.Color {
	if color, ok := categoryColors[c]; ok {
		return color
	}

	return lipgloss.Color("240")
}
