package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	httptransaction "github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type Handler struct {
	svc *workspace.Service
}

func NewHandler(svc *workspace.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported     int                        `json:"imported"`
	Transactions []httptransaction.Response `json:"transactions"`
}

// importCSV takes a multipart form with fields bank (cgd or tally), account
// (the account rows are bound to, optional for tally files) and file.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Fail(w, http.StatusBadRequest, "failed to parse form", map[string]string{"form": err.Error()})
		return
	}

	format := importer.Format(r.FormValue("bank"))
	if format == "" {
		respond.Fail(w, http.StatusBadRequest, "validation failed", map[string]string{"bank": "field is required"})
		return
	}

	accountID := uuid.Nil

	if s := r.FormValue("account"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "validation failed", map[string]string{"account": "invalid id"})
			return
		}

		accountID = id
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "validation failed", map[string]string{"file": "field is required"})
		return
	}
	defer file.Close()

	txs, err := h.svc.Import(r.Context(), auth.UserID(r.Context()), format, accountID, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported:     len(txs),
		Transactions: httptransaction.ToResponseList(txs),
	})
}
