package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service, now func() time.Time) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/csv", h.csv)
	r.Get("/xlsx", h.xlsx)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", h.disposition("csv"))

	if _, err := w.Write([]byte(h.svc.CSV(r.Context(), start, end))); err != nil {
		slog.Error("failed to write csv export", "error", err)
	}
}

func (h *Handler) xlsx(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.XLSX(r.Context(), &buf, start, end); err != nil {
		slog.Error("failed to build xlsx export", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", h.disposition("xlsx"))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write xlsx export", "error", err)
	}
}

func (h *Handler) disposition(ext string) string {
	return fmt.Sprintf("attachment; filename=\"expenses_%s.%s\"", h.now().Format("20060102"), ext)
}

// parseRange reads the inclusive start_date and end_date query parameters
// (YYYY-MM-DD, local time) as a half-open [start, end) range.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	var start, end time.Time

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("invalid start_date: %w", err)
		}

		start = t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("invalid end_date: %w", err)
		}

		end = t.AddDate(0, 0, 1)
	}

	return start, end, nil
}
