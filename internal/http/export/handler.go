package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/export/sheets"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/query"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sink receives a full export table, e.g. a Google spreadsheet.
type Sink interface {
	Replace(ctx context.Context, rows [][]string) (int64, error)
}

type Handler struct {
	svc      *workspace.Service
	sink     Sink
	currency string
}

// NewHandler builds the export handler. sink may be nil when no
// spreadsheet is configured.
func NewHandler(svc *workspace.Service, sink Sink, currency string) *Handler {
	return &Handler{svc: svc, sink: sink, currency: currency}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Post("/sheets", h.toSheets)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	f, err := query.Filter(r.URL.Query())
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	userID := auth.UserID(r.Context())
	format := r.URL.Query().Get("format")

	if format == "summary" {
		digest, err := h.svc.ExportSummary(userID, f, h.currency)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(digest))

		return
	}

	rows, err := h.svc.Export(userID, f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	name := "transactions-" + time.Now().Format("20060102")

	switch format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
		err = export.WriteCSV(w, rows)
	case "xlsx":
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".xlsx"))
		err = export.WriteXLSX(w, rows)
	default:
		respond.Fail(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format), nil)
		return
	}

	if err != nil {
		// Headers are already sent; the client sees a truncated file.
		slog.ErrorContext(r.Context(), "writing export failed", "format", format, "error", err)
	}
}

type sheetsResponse struct {
	Rows int64 `json:"rows"`
}

func (h *Handler) toSheets(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		respond.Error(w, r, sheets.ErrNotConfigured)
		return
	}

	f, err := query.Filter(r.URL.Query())
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rows, err := h.svc.Export(auth.UserID(r.Context()), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	n, err := h.sink.Replace(r.Context(), rows)
	if err != nil {
		respond.Error(w, r, fmt.Errorf("exporting to sheets: %w", err))
		return
	}

	respond.JSON(w, http.StatusOK, sheetsResponse{Rows: n})
}
