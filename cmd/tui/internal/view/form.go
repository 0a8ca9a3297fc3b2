package view

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// expenseDraft backs the add and edit forms. It lives behind a pointer so the
// form keeps writing to the same fields while the model is copied by bubbletea.
type expenseDraft struct {
	amount   string
	category expense.Category
	note     string
}

func parseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("amount must be a positive whole number")
	}

	return n, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

func noteValidator(required bool) func(string) error {
	return func(s string) error {
		if required && strings.TrimSpace(s) == "" {
			return errors.New("note cannot be empty")
		}

		return nil
	}
}

func categoryOptions() []huh.Option[expense.Category] {
	opts := make([]huh.Option[expense.Category], len(expense.Categories))
	for i, c := range expense.Categories {
		opts[i] = huh.NewOption(string(c), c)
	}

	return opts
}

func amountInput(d *expenseDraft) *huh.Input {
	return huh.NewInput().
		Key("amount").
		Title("Amount").
		Placeholder("0").
		Value(&d.amount).
		Validate(validateAmount)
}

func noteInput(d *expenseDraft, required bool) *huh.Input {
	return huh.NewInput().
		Key("note").
		Title("Note").
		Value(&d.note).
		Validate(noteValidator(required))
}

func categorySelect(d *expenseDraft) *huh.Select[expense.Category] {
	return huh.NewSelect[expense.Category]().
		Key("category").
		Title("Category").
		Value(&d.category).
		Options(categoryOptions()...)
}
