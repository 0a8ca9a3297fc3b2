package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type addState int

const (
	addStateDetails addState = iota
	addStateCategory
	addStateSaving
	addStateResult
)

// AddModel logs a new expense. The note is asked first so the category
// question can start on the suggestion learned from past expenses.
type AddModel struct {
	expenses *expense.Service
	matcher  *matching.Service
	format   Formatter

	state addState
	draft *expenseDraft
	form  *huh.Form

	suggested bool
	created   *expense.Expense
	err       error
}

func NewAddModel(expenses *expense.Service, matcher *matching.Service, format Formatter) AddModel {
	m := AddModel{
		expenses: expenses,
		matcher:  matcher,
		format:   format,
		draft:    &expenseDraft{category: expense.FallbackCategory},
	}
	m.form = m.buildDetailsForm()

	return m
}

func (m AddModel) Title() string { return "Add Expense" }

func (m AddModel) ShortHelp() string {
	if m.state == addStateResult {
		return "Enter: add another | Esc: back to menu"
	}

	return "Esc: back | Enter: next"
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if saved, ok := msg.(addSavedMsg); ok {
		m.state = addStateResult
		m.created = saved.expense
		m.err = saved.err

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyEsc:
			return m, Back
		case m.state == addStateResult && keyMsg.Type == tea.KeyEnter:
			next := NewAddModel(m.expenses, m.matcher, m.format)
			return next, next.Init()
		}
	}

	switch m.state {
	case addStateDetails, addStateCategory:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m AddModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == addStateDetails {
		ctx, cancel := StoreCtx()
		defer cancel()

		if c, ok := m.matcher.Suggest(ctx, m.draft.note); ok {
			m.draft.category = c
			m.suggested = true
		}

		m.state = addStateCategory
		m.form = m.buildCategoryForm()

		return m, m.form.Init()
	}

	m.state = addStateSaving

	return m, m.saveCmd()
}

func (m AddModel) buildDetailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			noteInput(m.draft, m.expenses.RequireNote()),
			amountInput(m.draft),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) buildCategoryForm() *huh.Form {
	sel := categorySelect(m.draft)
	if m.suggested {
		sel.Description("Suggested from earlier expenses")
	}

	return huh.NewForm(huh.NewGroup(sel)).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) View() string {
	switch m.state {
	case addStateSaving:
		return padded.Render("Saving...")
	case addStateResult:
		if m.err != nil {
			return padded.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return padded.Render(successStyle.Render(fmt.Sprintf(
			"Added %s %s: %s", m.format.Amount(m.created.Amount), m.created.Category, m.created.Note,
		)))
	}

	return padded.Render(m.form.View())
}

type addSavedMsg struct {
	expense *expense.Expense
	err     error
}

func (m AddModel) saveCmd() tea.Cmd {
	d := *m.draft

	return func() tea.Msg {
		amount, err := parseAmount(d.amount)
		if err != nil {
			return addSavedMsg{err: err}
		}

		ctx, cancel := StoreCtx()
		defer cancel()

		e, err := m.expenses.Add(ctx, expense.Fields{Amount: amount, Category: d.category, Note: d.note})

		return addSavedMsg{expense: e, err: err}
	}
}
