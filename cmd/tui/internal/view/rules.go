package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/matching"
)

type ruleFields struct {
	pattern  string
	category string
}

// RulesModel lists the learned tag rules and teaches new ones.
type RulesModel struct {
	sess Session

	table   table.Model
	rules   []matching.Rule
	form    *huh.Form
	fields  *ruleFields
	editing bool

	status string
	err    error
}

func NewRulesModel(sess Session) RulesModel {
	return RulesModel{
		sess: sess,
		table: newTable([]table.Column{
			{Title: "Note contains", Width: 30},
			{Title: "Tag", Width: 20},
			{Title: "Learned", Width: 12},
		}),
	}
}

func (m RulesModel) Title() string { return "Tag Rules" }

func (m RulesModel) ShortHelp() string {
	if m.editing {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | n: new rule"
}

func (m RulesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m RulesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadRulesMsg:
		m.err = msg.err
		m.rules = msg.rules

		rows := make([]table.Row, len(msg.rules))
		for i, r := range msg.rules {
			rows[i] = table.Row{r.Pattern, r.Category, FormatDate(r.CreatedAt)}
		}

		m.table.SetRows(rows)

		return m, nil

	case ruleSavedMsg:
		m.editing = false
		m.form = nil
		m.table.Focus()
		m.status = msg.status

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		return m, m.loadCmd()
	}

	if m.editing {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "n":
			m.fields = &ruleFields{}
			m.form = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Note contains").
						Description("Case is ignored").
						Value(&m.fields.pattern).
						Validate(required("pattern")),
					huh.NewInput().
						Title("Tag").
						Value(&m.fields.category).
						Validate(required("tag")),
				),
			).WithWidth(50).WithShowHelp(false)
			m.editing = true
			m.table.Blur()

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m RulesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.editing = false
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

	return m, m.learnCmd()
}

func (m RulesModel) View() string {
	if m.editing {
		return lipgloss.NewStyle().Padding(1).Render(headerStyle.Render("New Rule") + "\n\n" + m.form.View())
	}

	s := headerStyle.Render("Tag Rules") + "\n\n" + m.table.View()

	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.status != "" {
		s += "\n" + faintStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(s)
}

// Messages

type loadRulesMsg struct {
	rules []matching.Rule
	err   error
}

type ruleSavedMsg struct {
	status string
	err    error
}

func (m RulesModel) loadCmd() tea.Cmd {
	sess := m.sess

	return func() tea.Msg {
		rules, err := sess.Svc.Rules(sess.UserID)
		return loadRulesMsg{rules: rules, err: err}
	}
}

func (m RulesModel) learnCmd() tea.Cmd {
	sess := m.sess
	f := *m.fields

	return func() tea.Msg {
		ctx, cancel := SaveCtx()
		defer cancel()

		r, err := sess.Svc.LearnRule(ctx, sess.UserID, f.pattern, f.category)
		if err != nil {
			return ruleSavedMsg{err: err}
		}

		return ruleSavedMsg{status: fmt.Sprintf("Notes containing %q are tagged %s.", r.Pattern, r.Category)}
	}
}
