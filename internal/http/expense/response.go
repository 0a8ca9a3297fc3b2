package expense

import (
	"time"

	"github.com/MrJamesThe3rd/tally/internal/expense"
)

// Response is the JSON shape of one expense, shared by every endpoint that returns expenses.
type Response struct {
	ID        string           `json:"id"`
	Amount    int64            `json:"amount"`
	Category  expense.Category `json:"category"`
	Note      string           `json:"note"`
	CreatedAt time.Time        `json:"created_at"`
}

func ToResponse(e *expense.Expense) Response {
	return Response{
		ID:        e.ID,
		Amount:    e.Amount,
		Category:  e.Category,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}

func ToResponseList(expenses []expense.Expense) []Response {
	resp := make([]Response, len(expenses))
	for i := range expenses {
		resp[i] = ToResponse(&expenses[i])
	}

	return resp
}
