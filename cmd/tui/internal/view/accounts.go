package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/report"
)

type accountsState int

const (
	accountsStateBrowse accountsState = iota
	accountsStateCreate
)

type accountFields struct {
	name    string
	group   account.Group
	opening string
}

type AccountsModel struct {
	sess Session

	state    accountsState
	table    table.Model
	accounts []account.Account
	totals   []report.GroupTotal
	form     *huh.Form
	fields   *accountFields

	status string
	err    error
}

func NewAccountsModel(sess Session) AccountsModel {
	return AccountsModel{
		sess: sess,
		table: newTable([]table.Column{
			{Title: "Name", Width: 28},
			{Title: "Group", Width: 10},
			{Title: "Balance", Width: 18},
		}),
	}
}

func (m AccountsModel) Title() string { return "Accounts" }

func (m AccountsModel) ShortHelp() string {
	if m.state == accountsStateCreate {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | n: new account | d: delete | r: refresh"
}

func (m AccountsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AccountsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAccountsMsg:
		m.err = msg.err
		if msg.err == nil {
			m.accounts = msg.accounts
			m.totals = msg.totals
			m.refreshTable()
		}

		return m, nil

	case accountSavedMsg:
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-16))
		return m, nil
	}

	if m.state == accountsStateCreate {
		return m.updateCreate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.status = ""
			return m, m.loadCmd()
		case "n":
			return m.startCreate()
		case "d":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AccountsModel) startCreate() (tea.Model, tea.Cmd) {
	f := &accountFields{group: account.GroupBank, opening: "0"}

	options := make([]huh.Option[account.Group], 0, len(account.Groups))
	for _, g := range account.Groups {
		options = append(options, huh.NewOption(g.String(), g))
	}

	m.fields = f
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.name).
				Validate(required("name")),
			huh.NewSelect[account.Group]().
				Title("Group").
				Options(options...).
				Value(&f.group),
			huh.NewInput().
				Title("Opening Balance").
				Value(&f.opening).
				Validate(func(s string) error {
					if _, err := decimal.NewFromString(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("not a number")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = accountsStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m AccountsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = accountsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd()
}

func (m *AccountsModel) refreshTable() {
	rows := make([]table.Row, len(m.accounts))
	for i, a := range m.accounts {
		rows[i] = table.Row{a.Name, a.Group.String(), m.sess.FormatAmount(a.Balance)}
	}

	m.table.SetRows(rows)
}

func (m AccountsModel) View() string {
	if m.state == accountsStateCreate {
		return lipgloss.NewStyle().Padding(1).Render(
			headerStyle.Render("New Account") + "\n\n" + m.form.View(),
		)
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("Accounts") + "\n\n")
	b.WriteString(m.table.View() + "\n\n")

	for _, t := range m.totals {
		fmt.Fprintf(&b, "%-8s %3d  %s\n", t.Group.String(), t.Count, m.sess.FormatAmount(t.Balance))
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.status != "" {
		b.WriteString("\n" + faintStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

// Messages

type loadAccountsMsg struct {
	accounts []account.Account
	totals   []report.GroupTotal
	err      error
}

type accountSavedMsg struct {
	status string
	err    error
}

func (m AccountsModel) loadCmd() tea.Cmd {
	sess := m.sess

	return func() tea.Msg {
		accounts, err := sess.Svc.Accounts(sess.UserID)
		if err != nil {
			return loadAccountsMsg{err: err}
		}

		return loadAccountsMsg{accounts: accounts, totals: report.GroupTotals(accounts)}
	}
}

func (m AccountsModel) createCmd() tea.Cmd {
	sess := m.sess
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := SaveCtx()
		defer cancel()

		opening, err := decimal.NewFromString(strings.TrimSpace(f.opening))
		if err != nil {
			return accountSavedMsg{err: err}
		}

		a, err := sess.Svc.CreateAccount(ctx, sess.UserID, f.name, f.group, opening)
		if err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Created %s.", a.Name)}
	}
}

func (m AccountsModel) deleteCmd() tea.Cmd {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.accounts) {
		return nil
	}

	sess := m.sess
	a := m.accounts[i]

	return func() tea.Msg {
		ctx, cancel := SaveCtx()
		defer cancel()

		if err := sess.Svc.DeleteAccount(ctx, sess.UserID, a.ID); err != nil {
			return accountSavedMsg{err: err}
		}

		return accountSavedMsg{status: fmt.Sprintf("Deleted %s.", a.Name)}
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}
