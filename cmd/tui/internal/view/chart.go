package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/report"
)

const (
	chartLabelWidth = 16
	chartMinSegment = 1
)

// ChartModel shows spending per day, week or month as stacked bars.
type ChartModel struct {
	expenses *expense.Service
	format   Formatter

	period  report.Period
	buckets []report.PeriodBucket
	width   int
}

func NewChartModel(expenses *expense.Service, format Formatter) ChartModel {
	return ChartModel{
		expenses: expenses,
		format:   format,
		period:   report.PeriodDay,
		width:    80,
	}
}

func (m ChartModel) Title() string { return "Spending Chart" }

func (m ChartModel) ShortHelp() string {
	return "Esc: back | d: day | w: week | m: month"
}

func (m ChartModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ChartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chartLoadedMsg:
		m.buckets = msg.buckets
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "d", "w", "m":
			period, err := report.ParsePeriod(msg.String())
			if err != nil {
				return m, nil
			}

			m.period = period

			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m ChartModel) View() string {
	header := fmt.Sprintf("Period: %s", activeStyle(string(m.period)))

	if len(m.buckets) == 0 {
		return padded.Render(header + "\n\nNo expenses yet.")
	}

	barWidth := max(m.width-chartLabelWidth-16, 10)

	lines := make([]string, 0, len(m.buckets))
	for _, b := range m.buckets {
		lines = append(lines, fmt.Sprintf("%-*s %s %s",
			chartLabelWidth, b.Label,
			renderBar(b, barWidth, maxTotal(m.buckets)),
			m.format.Amount(b.Total),
		))
	}

	return padded.Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		strings.Join(lines, "\n"),
		"",
		legend(),
	))
}

func maxTotal(buckets []report.PeriodBucket) int64 {
	var top int64
	for _, b := range buckets {
		top = max(top, b.Total)
	}

	return top
}

// renderBar draws b scaled against the largest bucket so bars are comparable.
func renderBar(b report.PeriodBucket, width int, top int64) string {
	if top <= 0 || b.Total <= 0 {
		return strings.Repeat(" ", width)
	}

	scaled := max(int(int64(width)*b.Total/top), chartMinSegment)

	var (
		sb   strings.Builder
		used int
	)

	for _, seg := range b.Segments(scaled, chartMinSegment) {
		w := min(seg.Width, width-used)
		if w <= 0 {
			break
		}

		sb.WriteString(lipgloss.NewStyle().Foreground(categoryColor(seg.Category)).Render(strings.Repeat("█", w)))
		used += w
	}

	sb.WriteString(strings.Repeat(" ", width-used))

	return sb.String()
}

func legend() string {
	parts := make([]string, len(expense.Categories))
	for i, c := range expense.Categories {
		parts[i] = lipgloss.NewStyle().Foreground(categoryColor(c)).Render("█ " + string(c))
	}

	return strings.Join(parts, "  ")
}

type chartLoadedMsg struct {
	buckets []report.PeriodBucket
}

func (m ChartModel) loadCmd() tea.Cmd {
	period := m.period

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return chartLoadedMsg{buckets: report.GroupByPeriod(m.expenses.List(ctx), period, time.Local)}
	}
}
