package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/workspace"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// Session binds the views to the signed-in user.
type Session struct {
	Svc      *workspace.Service
	UserID   uuid.UUID
	Name     string
	Currency string
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
