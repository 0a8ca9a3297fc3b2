package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	expenseHandler "github.com/MrJamesThe3rd/tally/internal/http/expense"
	"github.com/MrJamesThe3rd/tally/internal/report"
)

type Handler struct {
	expenses *expense.Service
	now      func() time.Time
}

func NewHandler(expenses *expense.Service, now func() time.Time) *Handler {
	return &Handler{expenses: expenses, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/days", h.days)
	r.Get("/periods", h.periods)
}

type dayResponse struct {
	Date     string                    `json:"date"`
	Label    string                    `json:"label"`
	Total    int64                     `json:"total"`
	Expenses []expenseHandler.Response `json:"expenses"`
}

type periodResponse struct {
	Key        string                     `json:"key"`
	Label      string                     `json:"label"`
	Start      string                     `json:"start"`
	Total      int64                      `json:"total"`
	ByCategory map[expense.Category]int64 `json:"by_category"`
}

func (h *Handler) days(w http.ResponseWriter, r *http.Request) {
	groups := report.GroupByDay(h.expenses.List(r.Context()), h.now())

	resp := make([]dayResponse, len(groups))
	for i, g := range groups {
		resp[i] = dayResponse{
			Date:     g.Date.Format(time.DateOnly),
			Label:    g.Label,
			Total:    g.Total,
			Expenses: expenseHandler.ToResponseList(g.Expenses),
		}
	}

	writeJSON(w, resp)
}

func (h *Handler) periods(w http.ResponseWriter, r *http.Request) {
	period := report.PeriodDay

	if s := r.URL.Query().Get("period"); s != "" {
		p, err := report.ParsePeriod(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		period = p
	}

	buckets := report.GroupByPeriod(h.expenses.List(r.Context()), period, h.now().Location())

	resp := make([]periodResponse, len(buckets))
	for i, b := range buckets {
		resp[i] = periodResponse{
			Key:        b.Key,
			Label:      b.Label,
			Start:      b.Start.Format(time.DateOnly),
			Total:      b.Total,
			ByCategory: b.ByCategory,
		}
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
