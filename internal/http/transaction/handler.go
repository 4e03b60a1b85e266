package transaction

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/query"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type Handler struct {
	svc *workspace.Service
}

func NewHandler(svc *workspace.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/revert", h.revert)
}

type createTransactionRequest struct {
	Kind          string          `json:"kind" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	FromAccountID *uuid.UUID      `json:"from_account_id"`
	FromLabel     string          `json:"from_label" validate:"max=100"`
	ToAccountID   *uuid.UUID      `json:"to_account_id"`
	ToLabel       string          `json:"to_label" validate:"max=100"`
	Category      string          `json:"category" validate:"max=100"`
	Date          string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note          string          `json:"note" validate:"max=500"`
}

func (req createTransactionRequest) draft() (transaction.Draft, error) {
	kind, err := transaction.ParseKind(req.Kind)
	if err != nil {
		return transaction.Draft{}, err
	}

	d := transaction.Draft{
		Kind:                  kind,
		Amount:                req.Amount,
		From:                  transaction.ExternalParty(req.FromLabel),
		CounterpartyAccountID: req.ToAccountID,
		ToLabel:               req.ToLabel,
		Category:              req.Category,
		Note:                  req.Note,
	}

	if req.FromAccountID != nil {
		d.From = transaction.AccountParty(*req.FromAccountID)
	}

	if req.Date != "" {
		// Already checked by the validator.
		d.Date, _ = time.ParseInLocation(time.DateOnly, req.Date, time.Local)
	}

	return d, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	d, err := req.draft()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.AddTransaction(r.Context(), auth.UserID(r.Context()), d)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := query.Filter(r.URL.Query())
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	txs, err := h.svc.Transactions(auth.UserID(r.Context()), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	tx, err := h.svc.Transaction(auth.UserID(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	if err := h.svc.DeleteTransaction(r.Context(), auth.UserID(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	rev, err := h.svc.RevertTransaction(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(rev))
}
