package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSource importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type importFields struct {
	format  importer.Format
	account uuid.UUID
}

type ImportModel struct {
	sess Session

	state      importState
	form       *huh.Form
	fields     *importFields
	filePicker filepicker.Model

	status string
	err    error
}

func NewImportModel(sess Session) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		sess:       sess,
		filePicker: fp,
		fields:     &importFields{format: importer.FormatCGD},
	}
}

func (m ImportModel) Title() string { return "Import Transactions" }

func (m ImportModel) ShortHelp() string { return "Esc: back | Enter: select" }

func (m ImportModel) Init() tea.Cmd {
	return m.loadAccountsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importAccountsMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.form = m.buildSourceForm(msg.options)
		m.state = importStateSource

		return m, m.form.Init()

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	switch m.state {
	case importStateSource:
		return m.updateSource(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	}

	return m, nil
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult:
		m.err = nil
		m.status = ""

		return m, m.loadAccountsCmd()
	}

	return m, Back
}

func (m ImportModel) updateSource(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) buildSourceForm(accounts []huh.Option[uuid.UUID]) *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[importer.Format]().
				Title("File Format").
				Options(
					huh.NewOption("CGD bank statement", importer.FormatCGD),
					huh.NewOption("Tally export", importer.FormatTally),
				).
				Value(&f.format),
			huh.NewSelect[uuid.UUID]().
				Title("Account").
				Description("Used for rows that name no account").
				Options(accounts...).
				Value(&f.account),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSource:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select file to import (%s):\n\n%s", m.fields.format, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		style := successStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type importAccountsMsg struct {
	options []huh.Option[uuid.UUID]
	err     error
}

type importResultMsg struct {
	count int
	err   error
}

func (m ImportModel) loadAccountsCmd() tea.Cmd {
	sess := m.sess

	return func() tea.Msg {
		accounts, err := sess.Svc.Accounts(sess.UserID)
		if err != nil {
			return importAccountsMsg{err: err}
		}

		options := []huh.Option[uuid.UUID]{huh.NewOption("None (file names accounts)", uuid.Nil)}
		for _, a := range accounts {
			options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, a.Group), a.ID))
		}

		return importAccountsMsg{options: options}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	sess := m.sess
	f := *m.fields

	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := sess.Svc.Import(ctx, sess.UserID, f.format, f.account, file)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{count: len(txs)}
	}
}
