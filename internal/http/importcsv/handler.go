package importcsv

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/expense"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported int `json:"imported"`
}

// importCSV accepts the CSV either as a multipart "file" field or as the raw body.
// With ?format=cgd the input is read as a CGD bank statement instead.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	var src io.Reader = r.Body

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file field is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		src = file
	}

	importFn := h.importSvc.Import

	switch r.URL.Query().Get("format") {
	case "", "csv":
	case "cgd":
		importFn = h.importSvc.ImportStatement
	default:
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}

	imported, err := importFn(r.Context(), src)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrNoRows), errors.Is(err, cgd.ErrUnknownLayout):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, expense.ErrInvalid):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.Error("failed to import csv", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(importResponse{Imported: imported}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
