package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// Categorizer guesses a category for a statement description.
type Categorizer interface {
	Suggest(ctx context.Context, note string) (expense.Category, bool)
}

type Service struct {
	expenses    *expense.Service
	categorizer Categorizer
}

type Option func(*Service)

// WithCategorizer sets the categorizer used for bank statement imports. Without
// one every statement row gets expense.FallbackCategory.
func WithCategorizer(c Categorizer) Option {
	return func(s *Service) { s.categorizer = c }
}

func NewService(expenses *expense.Service, opts ...Option) *Service {
	s := &Service{expenses: expenses}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Parse decodes a CSV file of any supported text encoding.
func (s *Service) Parse(r io.Reader) ([]Row, error) {
	text, err := encoding.ReadUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	return ParseCSV(text), nil
}

// Import parses r and stores every valid row. It returns ErrNoRows when the
// input holds nothing importable.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	rows, err := s.Parse(r)
	if err != nil {
		return 0, err
	}

	return s.ImportRows(ctx, rows)
}

// ImportText is Import for text that is already in memory, such as a paste.
func (s *Service) ImportText(ctx context.Context, text string) (int, error) {
	return s.ImportRows(ctx, ParseCSV(text))
}

func (s *Service) ImportRows(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, ErrNoRows
	}

	n, err := s.expenses.ImportBulk(ctx, ToImportRows(rows))
	if err != nil {
		return 0, fmt.Errorf("importing rows: %w", err)
	}

	return n, nil
}
