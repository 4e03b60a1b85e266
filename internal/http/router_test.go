package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/events"
	tallyhttp "github.com/MrJamesThe3rd/tally/internal/http"
	httpaccount "github.com/MrJamesThe3rd/tally/internal/http/account"
	httpauth "github.com/MrJamesThe3rd/tally/internal/http/auth"
	"github.com/MrJamesThe3rd/tally/internal/http/export"
	"github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	"github.com/MrJamesThe3rd/tally/internal/http/matching"
	"github.com/MrJamesThe3rd/tally/internal/http/report"
	"github.com/MrJamesThe3rd/tally/internal/http/respond"
	"github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/storage/memory"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type fakeSink struct {
	rows [][]string
}

func (s *fakeSink) Replace(_ context.Context, rows [][]string) (int64, error) {
	s.rows = rows
	return int64(len(rows) + 1), nil
}

type client struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func newServer(t *testing.T, sink export.Sink) *client {
	t.Helper()

	svc, err := workspace.New(context.Background(), memory.New(), events.Noop{}, auth.NewIssuer("secret", time.Hour))
	require.NoError(t, err)

	h := tallyhttp.Handlers{
		Auth:         httpauth.NewHandler(svc, false),
		Accounts:     httpaccount.NewHandler(svc),
		Transactions: transaction.NewHandler(svc),
		Reports:      report.NewHandler(svc),
		Import:       importcsv.NewHandler(svc),
		Rules:        matching.NewHandler(svc),
		Export:       export.NewHandler(svc, sink, "INR"),
	}

	srv := httptest.NewServer(tallyhttp.New(h, []string{"*"}))
	t.Cleanup(srv.Close)

	return &client{t: t, srv: srv}
}

func (c *client) do(method, path string, body io.Reader, contentType string) *http.Response {
	c.t.Helper()

	req, err := http.NewRequest(method, c.srv.URL+path, body)
	require.NoError(c.t, err)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func (c *client) json(method, path string, in, out any) int {
	c.t.Helper()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(c.t, err)

		body = bytes.NewReader(b)
	}

	resp := c.do(method, path, body, "application/json")

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

// login registers a user and keeps its token for later requests.
func (c *client) login() {
	c.t.Helper()

	status := c.json(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Sarath", "email": "sarath@example.com", "password": "password123",
	}, nil)
	require.Equal(c.t, http.StatusCreated, status)

	var session struct {
		Token string `json:"token"`
	}

	status = c.json(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "sarath@example.com", "password": "password123",
	}, &session)
	require.Equal(c.t, http.StatusOK, status)
	require.NotEmpty(c.t, session.Token)

	c.token = session.Token
}

type accountBody struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Group   string `json:"group"`
	Balance string `json:"balance"`
}

func (c *client) createAccount(name, group, balance string) accountBody {
	c.t.Helper()

	var a accountBody

	status := c.json(http.MethodPost, "/api/v1/accounts", map[string]any{
		"name": name, "group": group, "balance": balance,
	}, &a)
	require.Equal(c.t, http.StatusCreated, status)

	return a
}

type txBody struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	RevertedBy string `json:"reverted_by"`
	From       struct {
		AccountID string `json:"account_id"`
		Label     string `json:"label"`
	} `json:"from"`
}

func TestAuth(t *testing.T) {
	c := newServer(t, nil)

	status := c.json(http.MethodGet, "/api/v1/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = "garbage"
	status = c.json(http.MethodGet, "/api/v1/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = ""
	c.login()

	var errResp respond.ErrorResponse

	status = c.json(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Again", "email": "sarath@example.com", "password": "password123",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)

	status = c.json(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Bad", "email": "not-an-email", "password": "short",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp.Details, "email")
	assert.Contains(t, errResp.Details, "password")

	status = c.json(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "sarath@example.com", "password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var me struct {
		Email string `json:"email"`
	}

	status = c.json(http.MethodGet, "/api/v1/me", nil, &me)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "sarath@example.com", me.Email)
}

func TestAccounts(t *testing.T) {
	c := newServer(t, nil)
	c.login()

	wallet := c.createAccount("Wallet", "cash", "100")
	assert.Equal(t, "100", wallet.Balance)

	bank := c.createAccount("Bank", "Bank Account", "0")
	assert.Equal(t, "bank_account", bank.Group)

	status := c.json(http.MethodPost, "/api/v1/accounts", map[string]any{"name": "Wallet", "group": "cash"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	status = c.json(http.MethodPost, "/api/v1/accounts", map[string]any{"name": "Jar", "group": "piggy"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var renamed accountBody

	status = c.json(http.MethodPatch, "/api/v1/accounts/"+wallet.ID, map[string]any{"name": "Pocket"}, &renamed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Pocket", renamed.Name)

	var groups []struct {
		Group   string `json:"group"`
		Balance string `json:"balance"`
		Count   int    `json:"count"`
	}

	status = c.json(http.MethodGet, "/api/v1/accounts/groups", nil, &groups)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, groups, 4)
	assert.Equal(t, "cash", groups[0].Group)
	assert.Equal(t, 1, groups[0].Count)

	status = c.json(http.MethodDelete, "/api/v1/accounts/"+bank.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = c.json(http.MethodGet, "/api/v1/accounts/"+bank.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = c.json(http.MethodGet, "/api/v1/accounts/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTransactions(t *testing.T) {
	c := newServer(t, nil)
	c.login()

	wallet := c.createAccount("Wallet", "cash", "100")
	card := c.createAccount("Card", "credit", "5000")

	var tx txBody

	status := c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "1500", "from_account_id": card.ID,
		"category": "Rent", "date": "2024-03-02",
	}, &tx)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "expense", tx.Kind)

	var got accountBody

	c.json(http.MethodGet, "/api/v1/accounts/"+card.ID, nil, &got)
	assert.Equal(t, "6500", got.Balance)

	var errResp respond.ErrorResponse

	status = c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "250", "from_account_id": wallet.ID,
	}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Wallet", errResp.Details["account"])

	status = c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "-5", "from_account_id": wallet.ID,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status = c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "5", "from_account_id": wallet.ID, "date": "02/03/2024",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, errResp.Details, "date")

	var rev txBody

	status = c.json(http.MethodPost, "/api/v1/transactions/"+tx.ID+"/revert", nil, &rev)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "reversal", rev.Kind)

	c.json(http.MethodGet, "/api/v1/accounts/"+card.ID, nil, &got)
	assert.Equal(t, "5000", got.Balance)

	status = c.json(http.MethodPost, "/api/v1/transactions/"+tx.ID+"/revert", nil, nil)
	assert.Equal(t, http.StatusConflict, status)

	var orig txBody

	c.json(http.MethodGet, "/api/v1/transactions/"+tx.ID, nil, &orig)
	assert.Equal(t, rev.ID, orig.RevertedBy)

	var list []txBody

	status = c.json(http.MethodGet, "/api/v1/transactions?kind=reversal", nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, rev.ID, list[0].ID)

	status = c.json(http.MethodGet, "/api/v1/transactions?start=yesterday", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var income txBody

	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "income", "amount": "50", "from_label": "Salary", "to_account_id": wallet.ID,
	}, &income)

	status = c.json(http.MethodDelete, "/api/v1/transactions/"+income.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status = c.json(http.MethodGet, "/api/v1/transactions/"+income.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReports(t *testing.T) {
	c := newServer(t, nil)
	c.login()

	wallet := c.createAccount("Wallet", "cash", "0")

	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "income", "amount": "1000", "from_label": "Salary", "to_account_id": wallet.ID, "date": "2024-03-01",
	}, nil)
	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "300", "from_account_id": wallet.ID, "category": "Food", "date": "2024-03-03",
	}, nil)
	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "200", "from_account_id": wallet.ID, "category": "Rent", "date": "2024-03-03",
	}, nil)

	var summary struct {
		TotalIncome  string `json:"total_income"`
		TotalExpense string `json:"total_expense"`
		NetFlow      string `json:"net_flow"`
		Count        int    `json:"count"`
	}

	status := c.json(http.MethodGet, "/api/v1/reports/summary", nil, &summary)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1000", summary.TotalIncome)
	assert.Equal(t, "500", summary.TotalExpense)
	assert.Equal(t, "500", summary.NetFlow)
	assert.Equal(t, 3, summary.Count)

	var daily []struct {
		Date    string `json:"date"`
		Expense string `json:"expense"`
	}

	c.json(http.MethodGet, "/api/v1/reports/daily?start=2024-03-02", nil, &daily)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-03-03", daily[0].Date)
	assert.Equal(t, "500", daily[0].Expense)

	var dash struct {
		TotalBalance string `json:"total_balance"`
		Recent       []any  `json:"recent"`
		Expenses     []struct {
			Category string `json:"category"`
		} `json:"expenses_by_category"`
	}

	c.json(http.MethodGet, "/api/v1/reports/dashboard", nil, &dash)
	assert.Equal(t, "500", dash.TotalBalance)
	assert.Len(t, dash.Recent, 3)
	require.Len(t, dash.Expenses, 2)
	assert.Equal(t, "Food", dash.Expenses[0].Category)
}

func TestReports_DailyMixesDatedAndUndated(t *testing.T) {
	c := newServer(t, nil)
	c.login()

	wallet := c.createAccount("Wallet", "cash", "0")
	today := time.Now().Format(time.DateOnly)

	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "income", "amount": "100", "from_label": "Salary", "to_account_id": wallet.ID, "date": today,
	}, nil)
	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "40", "from_account_id": wallet.ID,
	}, nil)

	var daily []struct {
		Date    string `json:"date"`
		Income  string `json:"income"`
		Expense string `json:"expense"`
	}

	c.json(http.MethodGet, "/api/v1/reports/daily?start="+today+"&end="+today, nil, &daily)
	require.Len(t, daily, 1)
	assert.Equal(t, today, daily[0].Date)
	assert.Equal(t, "100", daily[0].Income)
	assert.Equal(t, "40", daily[0].Expense)
}

func TestExport(t *testing.T) {
	sink := &fakeSink{}
	c := newServer(t, sink)
	c.login()

	wallet := c.createAccount("Wallet", "cash", "100")

	c.json(http.MethodPost, "/api/v1/transactions", map[string]any{
		"kind": "expense", "amount": "40", "from_account_id": wallet.ID, "category": "Food", "date": "2024-03-03",
	}, nil)

	resp := c.do(http.MethodGet, "/api/v1/export?format=csv", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Date,Type,From,To,Amount,Tag,Note,Status\n2024-03-03,Expense,Wallet,Others,40.00,Food,,\n", string(body))

	resp = c.do(http.MethodGet, "/api/v1/export?format=xlsx", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))

	resp = c.do(http.MethodGet, "/api/v1/export?format=summary", nil, "")
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "-₹40.00")

	resp = c.do(http.MethodGet, "/api/v1/export?format=pdf", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out struct {
		Rows int64 `json:"rows"`
	}

	status := c.json(http.MethodPost, "/api/v1/export/sheets", nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(2), out.Rows)
	require.Len(t, sink.rows, 1)
	assert.Equal(t, "Wallet", sink.rows[0][2])
}

func TestExport_SheetsNotConfigured(t *testing.T) {
	c := newServer(t, nil)
	c.login()

	status := c.json(http.MethodPost, "/api/v1/export/sheets", nil, nil)
	assert.Equal(t, http.StatusNotImplemented, status)
}

func TestImportAndRules(t *testing.T) {
	c := newServer(t, nil)
	c.login()

	wallet := c.createAccount("Wallet", "cash", "500")

	var rule struct {
		Pattern  string `json:"pattern"`
		Category string `json:"category"`
	}

	status := c.json(http.MethodPost, "/api/v1/rules", map[string]string{"pattern": "swiggy", "category": "Food"}, &rule)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Food", rule.Category)

	var suggestion struct {
		Category string `json:"category"`
	}

	c.json(http.MethodGet, "/api/v1/rules/suggest?text=Swiggy+Bangalore", nil, &suggestion)
	assert.Equal(t, "Food", suggestion.Category)

	upload := func(bank, csv string) *http.Response {
		var buf bytes.Buffer

		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("bank", bank))
		require.NoError(t, mw.WriteField("account", wallet.ID))

		fw, err := mw.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(csv))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		return c.do(http.MethodPost, "/api/v1/import", &buf, mw.FormDataContentType())
	}

	resp := upload("tally", "Date,Type,From,To,Amount,Tag,Note\n2024-03-03,Expense,,,120,,Swiggy order\n")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var imported struct {
		Imported     int `json:"imported"`
		Transactions []struct {
			Category string `json:"category"`
		} `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&imported))
	assert.Equal(t, 1, imported.Imported)
	assert.Equal(t, "Food", imported.Transactions[0].Category)

	resp = upload("tally", "not,a,tally,file\n")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = upload("ofx", "whatever")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var got accountBody

	c.json(http.MethodGet, "/api/v1/accounts/"+wallet.ID, nil, &got)
	assert.Equal(t, "380", got.Balance)

	var rules []any

	c.json(http.MethodGet, "/api/v1/rules", nil, &rules)
	assert.Len(t, rules, 1)

	status = c.json(http.MethodPost, "/api/v1/rules", map[string]string{"pattern": "uber"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthz(t *testing.T) {
	c := newServer(t, nil)

	resp := c.do(http.MethodGet, "/healthz", strings.NewReader(""), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
