package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type addState int

const (
	addStateKind addState = iota
	addStateDetails
	addStateSaving
)

// side describes one leg of a kind as the form offers it.
type side struct {
	allows   func(account.Group) bool
	external bool
}

// usesAccounts reports whether any account group may fill the side.
func (s side) usesAccounts() bool {
	return slices.ContainsFunc(account.Groups, s.allows)
}

func sidesOf(kind transaction.Kind) (from, to side) {
	from = side{
		allows:   func(g account.Group) bool { return transaction.AllowsFrom(kind, g) },
		external: transaction.ExternalFrom(kind),
	}
	to = side{
		allows:   func(g account.Group) bool { return transaction.AllowsTo(kind, g) },
		external: transaction.ExternalTo(kind),
	}

	return from, to
}

type txFields struct {
	kind      transaction.Kind
	amount    string
	from      uuid.UUID
	fromLabel string
	to        uuid.UUID
	toLabel   string
	category  string
	date      string
	note      string
}

type AddModel struct {
	sess Session

	state    addState
	form     *huh.Form
	fields   *txFields
	accounts []account.Account

	status string
	err    error
}

func NewAddModel(sess Session) AddModel {
	m := AddModel{sess: sess}
	m.form = m.buildKindForm()

	return m
}

func (m AddModel) Title() string { return "Add Transaction" }

func (m AddModel) ShortHelp() string { return "Esc: back | Enter/Tab: navigate form" }

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addSavedMsg:
		m.err = msg.err
		m.status = ""

		if msg.err != nil {
			m.state = addStateDetails
			m.form = m.buildDetailsForm()

			return m, m.form.Init()
		}

		m.status = fmt.Sprintf("Recorded %s of %s.", msg.tx.Kind, m.sess.FormatAmount(msg.tx.Amount))
		m.state = addStateKind
		m.form = m.buildKindForm()

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == addStateDetails {
				m.state = addStateKind
				m.err = nil
				m.form = m.buildKindForm()

				return m, m.form.Init()
			}

			return m, Back
		}
	}

	if m.state == addStateSaving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == addStateKind {
		accounts, err := m.sess.Svc.Accounts(m.sess.UserID)
		if err != nil {
			m.err = err
			m.form = m.buildKindForm()

			return m, m.form.Init()
		}

		m.accounts = accounts
		m.err = nil
		m.state = addStateDetails
		m.form = m.buildDetailsForm()

		return m, m.form.Init()
	}

	m.state = addStateSaving

	return m, m.saveCmd()
}

func (m *AddModel) buildKindForm() *huh.Form {
	m.fields = &txFields{
		kind:    transaction.KindExpense,
		date:    FormatDate(time.Now()),
		toLabel: transaction.OthersLabel,
	}

	options := make([]huh.Option[transaction.Kind], 0, len(transaction.Kinds))
	for _, k := range transaction.Kinds {
		options = append(options, huh.NewOption(k.String(), k))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Kind]().
				Title("Type").
				Options(options...).
				Value(&m.fields.kind),
		),
	).WithWidth(50).WithShowHelp(false)
}

// buildDetailsForm asks for the fields the chosen kind needs. Field values
// survive a failed save.
func (m AddModel) buildDetailsForm() *huh.Form {
	f := m.fields
	from, to := sidesOf(f.kind)

	fields := []huh.Field{
		huh.NewInput().
			Title("Amount").
			Value(&f.amount).
			Validate(func(v string) error {
				d, err := decimal.NewFromString(strings.TrimSpace(v))
				if err != nil || !d.IsPositive() {
					return fmt.Errorf("enter an amount greater than zero")
				}

				return nil
			}),
	}

	if from.usesAccounts() {
		fields = append(fields, m.accountSelect("From", from, &f.from))
	} else {
		fields = append(fields, huh.NewInput().Title("From").Placeholder("Salary").Value(&f.fromLabel).Validate(required("source")))
	}

	if to.usesAccounts() {
		fields = append(fields, m.accountSelect("To", to, &f.to))
	} else {
		fields = append(fields, huh.NewInput().Title("To").Value(&f.toLabel))
	}

	fields = append(fields,
		huh.NewInput().
			Title("Date").
			Placeholder("YYYY-MM-DD").
			Value(&f.date).
			Validate(func(v string) error {
				if _, err := time.ParseInLocation(time.DateOnly, v, time.Local); err != nil {
					return fmt.Errorf("invalid date (YYYY-MM-DD)")
				}

				return nil
			}),
		huh.NewInput().Title("Note").Value(&f.note),
		huh.NewInput().
			Title("Tag").
			Description("Left empty, a learned rule may fill it from the note").
			Value(&f.category),
	)

	return huh.NewForm(
		huh.NewGroup(fields...).Title(f.kind.String()),
	).WithWidth(60).WithShowHelp(false)
}

// accountSelect offers the accounts s allows. When s also takes an external
// party, uuid.Nil stands for it.
func (m AddModel) accountSelect(title string, s side, value *uuid.UUID) huh.Field {
	options := make([]huh.Option[uuid.UUID], 0, len(m.accounts)+1)
	for _, a := range m.accounts {
		if !s.allows(a.Group) {
			continue
		}

		label := fmt.Sprintf("%s (%s, %s)", a.Name, a.Group, m.sess.FormatAmount(a.Balance))
		options = append(options, huh.NewOption(label, a.ID))
	}

	if s.external {
		options = append(options, huh.NewOption(transaction.OthersLabel, uuid.Nil))
	}

	return huh.NewSelect[uuid.UUID]().
		Title(title).
		Options(options...).
		Value(value).
		Validate(func(id uuid.UUID) error {
			if id == uuid.Nil && !s.external {
				return fmt.Errorf("no matching account, create one first")
			}

			return nil
		})
}

func (m AddModel) View() string {
	if m.state == addStateSaving {
		return lipgloss.NewStyle().Padding(2).Render("Saving...")
	}

	s := headerStyle.Render("Add Transaction") + "\n\n" + m.form.View()

	if m.err != nil {
		s += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.status != "" {
		s += "\n" + successStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(s)
}

func (f txFields) draft() (transaction.Draft, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return transaction.Draft{}, fmt.Errorf("parsing amount: %w", err)
	}

	date, err := time.ParseInLocation(time.DateOnly, f.date, time.Local)
	if err != nil {
		return transaction.Draft{}, fmt.Errorf("parsing date: %w", err)
	}

	d := transaction.Draft{
		Kind:     f.kind,
		Amount:   amount,
		Category: strings.TrimSpace(f.category),
		Date:     date,
		Note:     strings.TrimSpace(f.note),
	}

	from, to := sidesOf(f.kind)

	switch {
	case from.usesAccounts() && f.from != uuid.Nil:
		d.From = transaction.AccountParty(f.from)
	case from.usesAccounts():
		d.From = transaction.ExternalParty(transaction.OthersLabel)
	default:
		d.From = transaction.ExternalParty(strings.TrimSpace(f.fromLabel))
	}

	switch {
	case to.usesAccounts() && f.to != uuid.Nil:
		d.CounterpartyAccountID = new(f.to)
	case to.usesAccounts():
		d.ToLabel = transaction.OthersLabel
	default:
		if label := strings.TrimSpace(f.toLabel); label != "" {
			d.ToLabel = label
		}
	}

	return d, nil
}

type addSavedMsg struct {
	tx  transaction.Transaction
	err error
}

func (m AddModel) saveCmd() tea.Cmd {
	sess := m.sess
	f := *m.fields

	return func() tea.Msg {
		d, err := f.draft()
		if err != nil {
			return addSavedMsg{err: err}
		}

		if d.Category == "" && d.Note != "" {
			if d.Category, err = sess.Svc.SuggestCategory(sess.UserID, d.Note); err != nil {
				return addSavedMsg{err: err}
			}
		}

		ctx, cancel := SaveCtx()
		defer cancel()

		t, err := sess.Svc.AddTransaction(ctx, sess.UserID, d)

		return addSavedMsg{tx: t, err: err}
	}
}
