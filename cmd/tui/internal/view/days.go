package view

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/report"
)

type daysState int

const (
	daysStateBrowse daysState = iota
	daysStateEdit
	daysStateDelete
)

// DaysModel lists expenses grouped by day and lets the user edit or delete them.
type DaysModel struct {
	expenses *expense.Service
	format   Formatter

	state  daysState
	table  table.Model
	groups []report.DayGroup
	rows   []expense.Expense

	form    *huh.Form
	draft   *expenseDraft
	confirm *bool

	status string
}

func NewDaysModel(expenses *expense.Service, format Formatter) DaysModel {
	columns := []table.Column{
		{Title: "Day", Width: 24},
		{Title: "Time", Width: 6},
		{Title: "Category", Width: 15},
		{Title: "Amount", Width: 10},
		{Title: "Note", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DaysModel{
		expenses: expenses,
		format:   format,
		table:    t,
	}
}

func (m DaysModel) Title() string { return "Expenses by Day" }

func (m DaysModel) ShortHelp() string {
	if m.state != daysStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | r: refresh"
}

func (m DaysModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DaysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case daysLoadedMsg:
		m.groups = msg.groups
		m.refreshTable()

		return m, nil

	case daysChangedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = daysStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case daysStateBrowse:
		return m.updateBrowse(msg)
	case daysStateEdit, daysStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m DaysModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		case "e":
			return m.enterEdit()
		case "x", "delete":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DaysModel) selected() (expense.Expense, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return expense.Expense{}, false
	}

	return m.rows[idx], true
}

func (m DaysModel) enterEdit() (tea.Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.draft = &expenseDraft{
		amount:   strconv.FormatInt(e.Amount, 10),
		category: e.Category,
		note:     e.Note,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			amountInput(m.draft),
			categorySelect(m.draft),
			noteInput(m.draft, m.expenses.RequireNote()),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = daysStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m DaysModel) enterDelete() (tea.Model, tea.Cmd) {
	e, ok := m.selected()
	if !ok {
		return m, nil
	}

	m.confirm = new(false)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %s %s?", m.format.Amount(e.Amount), e.Note)).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = daysStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m DaysModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = daysStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == daysStateDelete {
		return m, m.deleteCmd()
	}

	return m, m.saveCmd()
}

func (m DaysModel) View() string {
	if len(m.groups) == 0 {
		return padded.Render("No expenses yet.\n\n(Esc to go back)")
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.form != nil && m.state != daysStateBrowse {
		title := "Edit Expense"
		if m.state == daysStateDelete {
			title = "Delete Expense"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return padded.Render(content)
}

// refreshTable flattens the day groups into table rows. The first row of each
// day carries the day label and total.
func (m *DaysModel) refreshTable() {
	m.rows = make([]expense.Expense, 0)
	rows := make([]table.Row, 0)

	for _, g := range m.groups {
		for i, e := range g.Expenses {
			day := ""
			if i == 0 {
				day = fmt.Sprintf("%s (%s)", g.Label, m.format.Amount(g.Total))
			}

			rows = append(rows, table.Row{
				day,
				FormatTime(e.CreatedAt),
				lipgloss.NewStyle().Foreground(categoryColor(e.Category)).Render(string(e.Category)),
				m.format.Amount(e.Amount),
				e.Note,
			})
			m.rows = append(m.rows, e)
		}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type daysLoadedMsg struct {
	groups []report.DayGroup
}

type daysChangedMsg struct {
	status string
	err    error
}

func (m DaysModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		return daysLoadedMsg{groups: report.GroupByDay(m.expenses.List(ctx), time.Now())}
	}
}

func (m DaysModel) saveCmd() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return func() tea.Msg { return daysChangedMsg{} }
	}

	d := *m.draft

	return func() tea.Msg {
		amount, err := parseAmount(d.amount)
		if err != nil {
			return daysChangedMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		_, err = m.expenses.Update(ctx, e.ID, expense.Patch{
			Amount:   &amount,
			Category: &d.category,
			Note:     &d.note,
		})
		if errors.Is(err, expense.ErrNotFound) {
			return daysChangedMsg{status: "Expense no longer exists."}
		}

		if err != nil {
			return daysChangedMsg{err: err}
		}

		return daysChangedMsg{status: "Saved."}
	}
}

func (m DaysModel) deleteCmd() tea.Cmd {
	e, ok := m.selected()
	if !ok || m.confirm == nil || !*m.confirm {
		return func() tea.Msg { return daysChangedMsg{} }
	}

	return func() tea.Msg {
		ctx, cancel := StoreCtx()
		defer cancel()

		removed, err := m.expenses.Delete(ctx, e.ID)
		if err != nil {
			return daysChangedMsg{err: err}
		}

		if !removed {
			return daysChangedMsg{status: "Expense no longer exists."}
		}

		return daysChangedMsg{status: "Deleted."}
	}
}
