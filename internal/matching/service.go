package matching

import (
	"context"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// minContainedLength keeps very short notes from matching almost any query.
const minContainedLength = 3

// History supplies previously logged expenses, most recent first.
//
//go:generate mockgen -source=service.go -destination=service_mock.go -package=matching
type History interface {
	List(ctx context.Context) []expense.Expense
}

type Service struct {
	history History
}

func NewService(history History) *Service {
	return &Service{history: history}
}

// Suggest picks a category for note from the history. A past expense with the
// same note wins, the most recent one first. Otherwise the expense whose note is
// the longest one contained in the query is used. ok is false when nothing matches.
func (s *Service) Suggest(ctx context.Context, note string) (expense.Category, bool) {
	query := strings.ToLower(strings.TrimSpace(note))
	if query == "" {
		return "", false
	}

	var (
		best    expense.Category
		bestLen int
	)

	for _, e := range s.history.List(ctx) {
		if !e.Category.Valid() {
			continue
		}

		candidate := strings.ToLower(strings.TrimSpace(e.Note))
		if candidate == "" {
			continue
		}

		if candidate == query {
			return e.Category, true
		}

		if len(candidate) >= minContainedLength && len(candidate) > bestLen && strings.Contains(query, candidate) {
			best, bestLen = e.Category, len(candidate)
		}
	}

	return best, bestLen > 0
}
