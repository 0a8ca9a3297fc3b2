package expense

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is one tag from the closed category enumeration.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryShopping       Category = "shopping"
	CategoryNecessities    Category = "necessities"
	CategoryGroceries      Category = "groceries"
	CategoryOthers         Category = "others"
)

// Categories lists every allowed category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryShopping,
	CategoryNecessities,
	CategoryGroceries,
	CategoryOthers,
}

// FallbackCategory is assigned to imported values that match no category.
const FallbackCategory = CategoryOthers

// Valid reports whether c belongs to Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}

	return false
}

// MatchCategory matches s case-insensitively against Categories.
func MatchCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}

	return "", false
}

var (
	ErrNotFound = errors.New("expense not found")

	ErrInvalid         = errors.New("invalid expense")
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be a positive whole number", ErrInvalid)
	ErrInvalidCategory = fmt.Errorf("%w: unknown category", ErrInvalid)
	ErrEmptyNote       = fmt.Errorf("%w: note is required", ErrInvalid)
)

// Expense is one logged expense.
type Expense struct {
	ID        string
	Amount    int64 // Whole currency units
	Category  Category
	Note      string
	CreatedAt time.Time
}

// Fields are the user-editable parts of an expense.
type Fields struct {
	Amount   int64
	Category Category
	Note     string
}

// Patch carries the fields to change on update. Nil fields are left as they are.
type Patch struct {
	Amount   *int64
	Category *Category
	Note     *string
}

// ImportRow is one expense coming from a bulk import, with its historical timestamp.
type ImportRow struct {
	Amount    int64
	Category  Category
	Note      string
	CreatedAt time.Time
}

func (f Fields) validate(requireNote bool) error {
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}

	if !f.Category.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidCategory, f.Category)
	}

	if requireNote && strings.TrimSpace(f.Note) == "" {
		return ErrEmptyNote
	}

	return nil
}

func (e Expense) fields() Fields {
	return Fields{Amount: e.Amount, Category: e.Category, Note: e.Note}
}
