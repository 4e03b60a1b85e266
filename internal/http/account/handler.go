package account

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type Handler struct {
	svc *workspace.Service
}

func NewHandler(svc *workspace.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/groups", h.groups)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type Response struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Group      account.Group   `json:"group"`
	GroupLabel string          `json:"group_label"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

func ToResponse(a account.Account) Response {
	return Response{
		ID:         a.ID,
		Name:       a.Name,
		Group:      a.Group,
		GroupLabel: a.Group.String(),
		Balance:    a.Balance,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func ToResponseList(accounts []account.Account) []Response {
	resp := make([]Response, len(accounts))
	for i, a := range accounts {
		resp[i] = ToResponse(a)
	}

	return resp
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.Accounts(auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(accounts))
}

type groupResponse struct {
	Group   account.Group   `json:"group"`
	Label   string          `json:"label"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

func (h *Handler) groups(w http.ResponseWriter, r *http.Request) {
	totals, err := h.svc.GroupTotals(auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]groupResponse, len(totals))
	for i, t := range totals {
		resp[i] = groupResponse{Group: t.Group, Label: t.Group.String(), Balance: t.Balance, Count: t.Count}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	a, err := h.svc.Account(auth.UserID(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(a))
}

type createAccountRequest struct {
	Name    string          `json:"name" validate:"required,max=100"`
	Group   string          `json:"group" validate:"required"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	group, err := account.ParseGroup(req.Group)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := h.svc.CreateAccount(r.Context(), auth.UserID(r.Context()), req.Name, group, req.Balance)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(a))
}

type updateAccountRequest struct {
	Name    *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Group   *string          `json:"group,omitempty"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	var req updateAccountRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	patch := account.Patch{Name: req.Name, Balance: req.Balance}

	if req.Group != nil {
		group, err := account.ParseGroup(*req.Group)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		patch.Group = &group
	}

	a, err := h.svc.UpdateAccount(r.Context(), auth.UserID(r.Context()), id, patch)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(a))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	if err := h.svc.DeleteAccount(r.Context(), auth.UserID(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
