package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/storage"
	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

type menuItem struct {
	key   string
	label string
	open  func(view.Session) view.View
}

var menu = []menuItem{
	{"1", "Dashboard", func(s view.Session) view.View { return view.NewReportModel(s) }},
	{"2", "Accounts", func(s view.Session) view.View { return view.NewAccountsModel(s) }},
	{"3", "Transactions", func(s view.Session) view.View { return view.NewListModel(s) }},
	{"4", "Add Transaction", func(s view.Session) view.View { return view.NewAddModel(s) }},
	{"5", "Import Transactions", func(s view.Session) view.View { return view.NewImportModel(s) }},
	{"6", "Export Transactions", func(s view.Session) view.View { return view.NewExportModel(s) }},
	{"7", "Tag Rules", func(s view.Session) view.View { return view.NewRulesModel(s) }},
}

type model struct {
	session *view.Session
	size    tea.WindowSizeMsg

	// active is nil while the menu is shown.
	active view.View
}

func initialModel(svc *workspace.Service, currency string, demo bool) model {
	return model{active: view.NewLoginModel(svc, currency, demo)}
}

func (m model) Init() tea.Cmd {
	return m.active.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.active == nil {
			return m.updateMenu(msg)
		}
	case tea.WindowSizeMsg:
		m.size = msg
	case view.LoggedInMsg:
		m.session = &msg.Session
		m.active = nil

		return m, nil
	case view.BackMsg:
		m.active = nil
		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	newModel, cmd := m.active.Update(msg)
	if v, ok := newModel.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return m, tea.Quit
	}

	for _, item := range menu {
		if msg.String() != item.key {
			continue
		}

		m.active = item.open(*m.session)
		size := m.size

		return m, tea.Batch(m.active.Init(), func() tea.Msg { return size })
	}

	return m, nil
}

func (m model) View() string {
	if m.active == nil {
		return m.viewMenu()
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(m.active.Title() + "  ·  " + m.active.ShortHelp())

	return m.active.View() + "\n" + help
}

func (m model) viewMenu() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tally  ·  %s\n\n", m.session.Name)
	for _, item := range menu {
		fmt.Fprintf(&b, "%s. %s\n", item.key, item.label)
	}
	b.WriteString("\nq. Quit")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func main() {
	demo := flag.Bool("demo", false, "load sample data for a user without accounts")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	repo, closeRepo, err := storage.Open(cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	// Sessions live only as long as the process.
	secret := cfg.Auth.Secret
	if secret == "" {
		secret = uuid.NewString()
	}

	svc, err := workspace.New(context.Background(), repo, events.Noop{}, auth.NewIssuer(secret, cfg.Auth.TTL))
	if err != nil {
		slog.Error("failed to load workspace", "error", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile(filepath.Join(os.TempDir(), "tally-tui.log"), "tui")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	p := tea.NewProgram(initialModel(svc, cfg.App.Currency, *demo), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		closeRepo()
		os.Exit(1)
	}
}
