package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/report"
)

var boxStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	MarginRight(1)

// ReportModel shows the dashboard: balances, spending and recent activity.
type ReportModel struct {
	sess Session

	dash    report.Dashboard
	names   map[uuid.UUID]string
	loading bool
	err     error
}

func NewReportModel(sess Session) ReportModel {
	return ReportModel{sess: sess, loading: true}
}

func (m ReportModel) Title() string { return "Dashboard" }

func (m ReportModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m ReportModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDashboardMsg:
		m.loading = false
		m.err = msg.err
		m.dash = msg.dash
		m.names = msg.names

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m ReportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	if m.loading {
		return style.Render("Loading dashboard...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	d := m.dash

	header := headerStyle.Render("Total Balance  " + m.sess.FormatAmount(d.TotalBalance))

	flow := fmt.Sprintf("Income   %s\nExpense  %s\nNet      %s",
		m.sess.FormatAmount(d.Summary.TotalIncome),
		m.sess.FormatAmount(d.Summary.TotalExpense),
		m.sess.FormatAmount(d.Summary.NetFlow),
	)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.accountsBlock()),
		boxStyle.Render(m.groupsBlock()+"\n\n"+flow),
	)

	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(m.categoriesBlock()),
		boxStyle.Render(m.monthlyBlock()),
	)

	return style.Render(lipgloss.JoinVertical(lipgloss.Left,
		header, "", top, bottom, boxStyle.Render(m.recentBlock()),
	))
}

func (m ReportModel) accountsBlock() string {
	var b strings.Builder

	b.WriteString("Accounts\n")
	for _, a := range m.dash.Accounts {
		fmt.Fprintf(&b, "%-24s %16s\n", a.Name, m.sess.FormatAmount(a.Balance))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m ReportModel) groupsBlock() string {
	var b strings.Builder

	b.WriteString("Groups\n")
	for _, g := range m.dash.Groups {
		fmt.Fprintf(&b, "%-14s %16s\n", g.Group.String(), m.sess.FormatAmount(g.Balance))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m ReportModel) categoriesBlock() string {
	var b strings.Builder

	b.WriteString("Expenses by Tag\n")
	if len(m.dash.ExpensesByCategory) == 0 {
		b.WriteString(faintStyle.Render("none"))
	}

	for _, c := range m.dash.ExpensesByCategory {
		fmt.Fprintf(&b, "%-16s %16s\n", c.Category, m.sess.FormatAmount(c.Amount))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m ReportModel) monthlyBlock() string {
	var b strings.Builder

	b.WriteString("Monthly\n")
	for _, mt := range m.dash.Monthly {
		fmt.Fprintf(&b, "%s  +%s  -%s\n",
			mt.Month.Format("Jan 2006"),
			m.sess.FormatAmount(mt.Income),
			m.sess.FormatAmount(mt.Expense),
		)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m ReportModel) recentBlock() string {
	var b strings.Builder

	b.WriteString("Recent\n")
	for _, t := range m.dash.Recent {
		fmt.Fprintf(&b, "%s  %-13s %-18s -> %-18s %16s\n",
			FormatDate(t.Date),
			t.Kind.String(),
			partyName(m.names, t.From),
			partyName(m.names, t.To()),
			m.sess.FormatAmount(t.Amount),
		)
	}

	return strings.TrimRight(b.String(), "\n")
}

type loadDashboardMsg struct {
	dash  report.Dashboard
	names map[uuid.UUID]string
	err   error
}

func (m ReportModel) loadCmd() tea.Cmd {
	sess := m.sess

	return func() tea.Msg {
		dash, err := sess.Svc.Dashboard(sess.UserID)
		if err != nil {
			return loadDashboardMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(dash.Accounts))
		for _, a := range dash.Accounts {
			names[a.ID] = a.Name
		}

		return loadDashboardMsg{dash: dash, names: names}
	}
}
