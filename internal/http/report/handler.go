package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	httpaccount "github.com/MrJamesThe3rd/tally/internal/http/account"
	"github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/query"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	httptransaction "github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type Handler struct {
	svc *workspace.Service
}

func NewHandler(svc *workspace.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/daily", h.daily)
	r.Get("/dashboard", h.dashboard)
}

type summaryResponse struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetFlow      decimal.Decimal `json:"net_flow"`
	Count        int             `json:"count"`
}

func toSummary(s report.Summary) summaryResponse {
	return summaryResponse{
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		NetFlow:      s.NetFlow,
		Count:        s.Count,
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, err := query.Filter(r.URL.Query())
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s, err := h.svc.Summary(auth.UserID(r.Context()), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummary(s))
}

type dailyResponse struct {
	Date         string          `json:"date"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	SelfTransfer decimal.Decimal `json:"self_transfer"`
}

func (h *Handler) daily(w http.ResponseWriter, r *http.Request) {
	f, err := query.Filter(r.URL.Query())
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	days, err := h.svc.Daily(auth.UserID(r.Context()), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]dailyResponse, len(days))
	for i, d := range days {
		resp[i] = dailyResponse{
			Date:         d.Date.Format(time.DateOnly),
			Income:       d.Income,
			Expense:      d.Expense,
			SelfTransfer: d.SelfTransfer,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type categoryResponse struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type monthResponse struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type groupResponse struct {
	Group   account.Group   `json:"group"`
	Label   string          `json:"label"`
	Balance decimal.Decimal `json:"balance"`
	Count   int             `json:"count"`
}

type dashboardResponse struct {
	TotalBalance       decimal.Decimal            `json:"total_balance"`
	Accounts           []httpaccount.Response     `json:"accounts"`
	Recent             []httptransaction.Response `json:"recent"`
	Summary            summaryResponse            `json:"summary"`
	ExpensesByCategory []categoryResponse         `json:"expenses_by_category"`
	Monthly            []monthResponse            `json:"monthly"`
	Groups             []groupResponse            `json:"groups"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := dashboardResponse{
		TotalBalance:       d.TotalBalance,
		Accounts:           httpaccount.ToResponseList(d.Accounts),
		Recent:             httptransaction.ToResponseList(d.Recent),
		Summary:            toSummary(d.Summary),
		ExpensesByCategory: make([]categoryResponse, len(d.ExpensesByCategory)),
		Monthly:            make([]monthResponse, len(d.Monthly)),
		Groups:             make([]groupResponse, len(d.Groups)),
	}

	for i, c := range d.ExpensesByCategory {
		resp.ExpensesByCategory[i] = categoryResponse{Category: c.Category, Amount: c.Amount}
	}

	for i, m := range d.Monthly {
		resp.Monthly[i] = monthResponse{Month: m.Month.Format("2006-01"), Income: m.Income, Expense: m.Expense}
	}

	for i, g := range d.Groups {
		resp.Groups[i] = groupResponse{Group: g.Group, Label: g.Group.String(), Balance: g.Balance, Count: g.Count}
	}

	respond.JSON(w, http.StatusOK, resp)
}
