package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type listState int

const (
	listStateTimeframe listState = iota
	listStateBrowse
)

type ListModel struct {
	sess Session

	state           listState
	timeframePicker TimeframePicker
	filter          report.Filter
	table           table.Model
	txs             []transaction.Transaction
	summary         report.Summary

	loading bool
	status  string
}

func NewListModel(sess Session) ListModel {
	return ListModel{
		sess:            sess,
		timeframePicker: NewTimeframePicker(TimeframeThisWeek),
		table: newTable([]table.Column{
			{Title: "Date", Width: 11},
			{Title: "Type", Width: 13},
			{Title: "From", Width: 18},
			{Title: "To", Width: 18},
			{Title: "Amount", Width: 15},
			{Title: "Tag", Width: 14},
			{Title: "", Width: 9},
		}),
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateTimeframe {
		return "Esc: back | Enter: select"
	}

	return "Esc: back | t: timeframe | v: revert | x: delete | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.filter = msg.Filter()
		m.state = listStateBrowse
		m.loading = true

		return m, m.loadCmd()

	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.txs = msg.txs
		m.summary = report.Aggregate(msg.txs)
		m.table.SetRows(m.rows(msg.names))

		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case listChangedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-12))
		return m, nil
	}

	if m.state == listStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.state = listStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "r":
			m.status = ""
			return m, m.loadCmd()
		case "v":
			return m, m.revertCmd()
		case "x":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) rows(names map[uuid.UUID]string) []table.Row {
	rows := make([]table.Row, len(m.txs))
	for i, t := range m.txs {
		mark := ""
		if t.Reverted() {
			mark = "reverted"
		}

		tag := t.Category
		if tag == "" {
			tag = t.Note
		}

		kind := t.Kind.String()
		if t.Kind == transaction.KindReversal {
			kind = "Rev. " + t.Reverses.String()
		}

		rows[i] = table.Row{
			FormatDate(t.Date),
			kind,
			partyName(names, t.From),
			partyName(names, t.To()),
			m.sess.FormatAmount(t.Amount),
			tag,
			mark,
		}
	}

	return rows
}

func (m ListModel) View() string {
	if m.state == listStateTimeframe {
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	var b strings.Builder

	b.WriteString(m.table.View() + "\n\n")
	fmt.Fprintf(&b, "%d transactions  |  in %s  |  out %s  |  net %s\n",
		m.summary.Count,
		m.sess.FormatAmount(m.summary.TotalIncome),
		m.sess.FormatAmount(m.summary.TotalExpense),
		m.sess.FormatAmount(m.summary.NetFlow),
	)

	if m.status != "" {
		b.WriteString(faintStyle.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(b.String())
}

func (m ListModel) selected() (transaction.Transaction, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.txs) {
		return transaction.Transaction{}, false
	}

	return m.txs[i], true
}

// Messages

type loadListMsg struct {
	txs   []transaction.Transaction
	names map[uuid.UUID]string
	err   error
}

type listChangedMsg struct {
	status string
	err    error
}

func (m ListModel) loadCmd() tea.Cmd {
	sess := m.sess
	filter := m.filter

	return func() tea.Msg {
		names, err := accountNames(sess)
		if err != nil {
			return loadListMsg{err: err}
		}

		txs, err := sess.Svc.Transactions(sess.UserID, filter)

		return loadListMsg{txs: txs, names: names, err: err}
	}
}

func (m ListModel) revertCmd() tea.Cmd {
	t, ok := m.selected()
	if !ok {
		return nil
	}

	sess := m.sess

	return func() tea.Msg {
		ctx, cancel := SaveCtx()
		defer cancel()

		if _, err := sess.Svc.RevertTransaction(ctx, sess.UserID, t.ID); err != nil {
			return listChangedMsg{err: err}
		}

		return listChangedMsg{status: fmt.Sprintf("Reverted %s of %s.", t.Kind, sess.FormatAmount(t.Amount))}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	t, ok := m.selected()
	if !ok {
		return nil
	}

	sess := m.sess

	return func() tea.Msg {
		ctx, cancel := SaveCtx()
		defer cancel()

		if err := sess.Svc.DeleteTransaction(ctx, sess.UserID, t.ID); err != nil {
			return listChangedMsg{err: err}
		}

		return listChangedMsg{status: fmt.Sprintf("Deleted %s of %s.", t.Kind, sess.FormatAmount(t.Amount))}
	}
}

func accountNames(sess Session) (map[uuid.UUID]string, error) {
	accounts, err := sess.Svc.Accounts(sess.UserID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	return names, nil
}

func partyName(names map[uuid.UUID]string, p transaction.Party) string {
	if !p.IsAccount() {
		return p.Label
	}

	if name, ok := names[*p.AccountID]; ok {
		return name
	}

	return p.AccountID.String()
}
