package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/tally/internal/report"
)

type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

var timeframeLabels = []string{
	"This Week",
	"Last Week",
	"This Month",
	"Last Month",
	"This Year",
	"All Time",
	"Custom Range",
}

func (t Timeframe) String() string {
	if t < 0 || int(t) >= len(timeframeLabels) {
		return "Unknown"
	}

	return timeframeLabels[t]
}

// Range returns the local days covered by t relative to now. Weeks start on
// Monday.
func (t Timeframe) Range(now time.Time) (time.Time, time.Time) {
	today := startOfDay(now)
	weekday := (int(today.Weekday()) + 6) % 7

	switch t {
	case TimeframeThisWeek:
		return today.AddDate(0, 0, -weekday), report.EndOfDay(today)
	case TimeframeLastWeek:
		start := today.AddDate(0, 0, -weekday-7)
		return start, report.EndOfDay(start.AddDate(0, 0, 6))
	case TimeframeThisMonth:
		return today.AddDate(0, 0, 1-today.Day()), report.EndOfDay(today)
	case TimeframeLastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		return start, report.EndOfDay(start.AddDate(0, 1, -1))
	case TimeframeThisYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location()), report.EndOfDay(today)
	}

	return time.Time{}, time.Time{}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TimeframeSelectedMsg carries the chosen range. Start and End are zero when
// All is set.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

func (m TimeframeSelectedMsg) Filter() report.Filter {
	return report.Filter{Start: m.Start, End: m.End}
}

type rangeFields struct {
	start, end string
}

func (f rangeFields) parse() (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(f.start), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(f.end), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date is before start date")
	}

	return start, report.EndOfDay(end), nil
}

// TimeframePicker lists the timeframes from its first entry down to Custom
// Range. Custom Range asks for both dates in a form.
type TimeframePicker struct {
	first  Timeframe
	cursor Timeframe

	form   *huh.Form // non-nil while a custom range is entered
	fields *rangeFields
	err    error
}

func NewTimeframePicker(first Timeframe) TimeframePicker {
	return TimeframePicker{first: first, cursor: first}
}

func (m TimeframePicker) Init() tea.Cmd { return nil }

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if m.form != nil {
		return m.updateCustom(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, m.first)
	case "down", "j":
		m.cursor = min(m.cursor+1, TimeframeCustom)
	case "enter":
		return m.choose()
	}

	return m, nil
}

func (m TimeframePicker) choose() (TimeframePicker, tea.Cmd) {
	switch m.cursor {
	case TimeframeCustom:
		if m.fields == nil {
			m.fields = &rangeFields{}
		}

		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Start").Placeholder("YYYY-MM-DD").CharLimit(10).Value(&m.fields.start),
				huh.NewInput().Title("End").Placeholder("YYYY-MM-DD").CharLimit(10).Value(&m.fields.end),
			),
		).WithWidth(40).WithShowHelp(false)

		return m, m.form.Init()
	case TimeframeAll:
		return m, selected(TimeframeSelectedMsg{All: true})
	}

	start, end := m.cursor.Range(time.Now())

	return m, selected(TimeframeSelectedMsg{Start: start, End: end})
}

func selected(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) updateCustom(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.form = nil
		m.err = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	start, end, err := m.fields.parse()
	if err != nil {
		m.err = err

		return m.choose()
	}

	m.form = nil
	m.err = nil

	return m, selected(TimeframeSelectedMsg{Start: start, End: end})
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.form != nil {
		b.WriteString("Custom Range\n\n")
		b.WriteString(m.form.View())
		b.WriteString(faintStyle.Render("\n(Enter to confirm, Esc to go back)"))
	} else {
		b.WriteString("Select Timeframe\n\n")

		for tf := m.first; tf <= TimeframeCustom; tf++ {
			cursor := " "
			if tf == m.cursor {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s\n", cursor, tf)
		}

		b.WriteString(faintStyle.Render("\n(Enter to select, Esc to go back)"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return b.String()
}

// IsSelecting reports whether the list is shown rather than the custom form.
func (m TimeframePicker) IsSelecting() bool {
	return m.form == nil
}

func (m *TimeframePicker) Reset() {
	*m = NewTimeframePicker(m.first)
}
