package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// Service exports the stored expense list.
type Service struct {
	expenses *expense.Service
}

func NewService(expenses *expense.Service) *Service {
	return &Service{expenses: expenses}
}

// Records returns the stored expenses created in [start, end). A zero bound is open.
func (s *Service) Records(ctx context.Context, start, end time.Time) []expense.Expense {
	return Filter(s.expenses.List(ctx), start, end)
}

func (s *Service) CSV(ctx context.Context, start, end time.Time) string {
	return ToCSV(s.Records(ctx, start, end))
}

func (s *Service) XLSX(ctx context.Context, w io.Writer, start, end time.Time) error {
	return WriteXLSX(w, s.Records(ctx, start, end))
}

// Filter keeps the records created in [start, end), preserving order. A zero
// bound is open. The input is not modified.
func Filter(records []expense.Expense, start, end time.Time) []expense.Expense {
	out := make([]expense.Expense, 0, len(records))

	for _, e := range records {
		if !start.IsZero() && e.CreatedAt.Before(start) {
			continue
		}

		if !end.IsZero() && !e.CreatedAt.Before(end) {
			continue
		}

		out = append(out, e)
	}

	return out
}

// WriteFile exports the records created in [start, end) to path, as a workbook
// when path ends in .xlsx and as CSV otherwise. Missing directories are
// created. It returns the number of exported records.
func (s *Service) WriteFile(ctx context.Context, path string, start, end time.Time) (int, error) {
	records := s.Records(ctx, start, end)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		err = WriteXLSX(f, records)
	} else {
		_, err = io.WriteString(f, ToCSV(records))
	}

	if err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing %s: %w", path, err)
	}

	return len(records), nil
}
