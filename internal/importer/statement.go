package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
)

// ImportStatement stores the debits of a CGD bank statement as expenses.
// Credits are ignored. Each description becomes the note and the category
// comes from the configured Categorizer.
func (s *Service) ImportStatement(ctx context.Context, r io.Reader) (int, error) {
	movements, err := cgd.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("parse statement: %w", err)
	}

	return s.ImportRows(ctx, s.statementRows(ctx, movements))
}

func (s *Service) statementRows(ctx context.Context, movements []cgd.Movement) []Row {
	rows := make([]Row, 0, len(movements))

	for _, m := range movements {
		if !m.Amount.IsNegative() {
			continue
		}

		// Whole units, same rounding as the CSV importer.
		amount := m.Amount.Neg().Round(0).IntPart()
		if amount <= 0 {
			continue
		}

		rows = append(rows, Row{
			Date:     time.Date(m.Date.Year(), m.Date.Month(), m.Date.Day(), 12, 0, 0, 0, time.Local),
			Category: s.categorize(ctx, m.Description),
			Note:     m.Description,
			Amount:   amount,
		})
	}

	return rows
}

func (s *Service) categorize(ctx context.Context, description string) expense.Category {
	if s.categorizer == nil {
		return expense.FallbackCategory
	}

	if c, ok := s.categorizer.Suggest(ctx, description); ok {
		return c
	}

	return expense.FallbackCategory
}
