package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

const (
	modeSignIn   = "Sign in"
	modeRegister = "Create account"
)

type loginFields struct {
	mode     string
	name     string
	email    string
	password string
}

// LoggedInMsg carries the session of a user who signed in.
type LoggedInMsg struct {
	Session Session
}

type LoginModel struct {
	svc      *workspace.Service
	currency string
	demo     bool

	fields  *loginFields
	form    *huh.Form
	pending bool
	err     error
}

// NewLoginModel builds the sign-in screen. With demo set, a user without
// accounts gets the sample data on sign-in.
func NewLoginModel(svc *workspace.Service, currency string, demo bool) LoginModel {
	m := LoginModel{
		svc:      svc,
		currency: currency,
		demo:     demo,
		fields:   &loginFields{mode: modeSignIn},
	}
	m.form = m.buildForm()

	return m
}

func (m LoginModel) Title() string { return "Sign In" }

func (m LoginModel) ShortHelp() string { return "Enter/Tab: navigate | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.pending = false
		m.err = res.err

		if res.err != nil {
			m.fields.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return LoggedInMsg{Session: res.session} }
	}

	if m.pending {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.pending = true

	return m, m.submitCmd()
}

func (m LoginModel) buildForm() *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Tally").
				Options(huh.NewOptions(modeSignIn, modeRegister)...).
				Value(&f.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.name).
				Validate(required("name")),
		).WithHideFunc(func() bool { return f.mode != modeRegister }),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&f.email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(required("password")),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m LoginModel) View() string {
	if m.pending {
		return lipgloss.NewStyle().Padding(2).Render("Signing in...")
	}

	s := m.form.View()
	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1).Render(s)
}

type loginResultMsg struct {
	session Session
	err     error
}

func (m LoginModel) submitCmd() tea.Cmd {
	f := *m.fields
	svc := m.svc
	cur := m.currency
	demo := m.demo

	return func() tea.Msg {
		ctx, cancel := SaveCtx()
		defer cancel()

		if f.mode == modeRegister {
			if _, err := svc.Register(ctx, f.name, f.email, f.password); err != nil {
				return loginResultMsg{err: err}
			}
		}

		sess, err := svc.Login(ctx, f.email, f.password)
		if err != nil {
			return loginResultMsg{err: err}
		}

		if demo {
			if err := svc.Seed(ctx, sess.User.ID); err != nil && !errors.Is(err, workspace.ErrNotEmpty) {
				return loginResultMsg{err: fmt.Errorf("loading demo data: %w", err)}
			}
		}

		return loginResultMsg{session: Session{
			Svc:      svc,
			UserID:   sess.User.ID,
			Name:     sess.User.Name,
			Currency: cur,
		}}
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}
