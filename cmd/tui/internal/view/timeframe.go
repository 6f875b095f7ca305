package view

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

// Timeframe is a predefined or custom period of the history.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeAll:
		return "Todo"
	case TimeframeThisWeek:
		return "Esta semana"
	case TimeframeThisMonth:
		return "Este mes"
	case TimeframeLastMonth:
		return "Mes pasado"
	case TimeframeThisYear:
		return "Este año"
	case TimeframeCustom:
		return "Rango personalizado"
	}

	return "Desconocido"
}

// Period is a closed date range. The zero Period holds every date.
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	if p.Start.IsZero() && p.End.IsZero() {
		return true
	}

	return !t.Before(p.Start) && !t.After(p.End)
}

// Filter keeps the transactions dated inside p, in their original order.
func (p Period) Filter(txs []*transaction.Transaction) []*transaction.Transaction {
	out := make([]*transaction.Transaction, 0, len(txs))

	for _, tx := range txs {
		if p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}

	return out
}

// PeriodFor resolves tf relative to now. Weeks start on Monday.
func PeriodFor(tf Timeframe, now time.Time) Period {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	var start, end time.Time

	switch tf {
	case TimeframeThisWeek:
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}

		start = day(now.AddDate(0, 0, -offset+1))
		end = now
	case TimeframeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = now
	case TimeframeLastMonth:
		end = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start = end.AddDate(0, -1, 0)
		end = end.Add(-time.Nanosecond)
	case TimeframeThisYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end = now
	default:
		return Period{Label: TimeframeAll.String()}
	}

	return Period{Label: tf.String(), Start: start, End: endOfDay(end)}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// PeriodSelectedMsg is emitted once the user picked a period.
type PeriodSelectedMsg struct {
	Period Period
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker selects the period the dashboard history shows.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err string
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "AAAA-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Desde: "

	ei := textinput.New()
	ei.Placeholder = "AAAA-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "Hasta: "

	return TimeframePicker{startInput: si, endInput: ei}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(key)
		case timeframeStateCustom:
			if next, cmd, handled := m.updateCustom(key); handled {
				return next, cmd
			}
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > TimeframeAll {
			m.selected--
		}
	case "down", "j":
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case "enter":
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		p := PeriodFor(m.selected, time.Now())

		return m, func() tea.Msg { return PeriodSelectedMsg{Period: p} }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true
	case "enter":
		start, ok := ParseDate(m.startInput.Value())
		if !ok {
			m.err = "Fecha de inicio inválida"
			return m, nil, true
		}

		end, ok := ParseDate(m.endInput.Value())
		if !ok {
			m.err = "Fecha de fin inválida"
			return m, nil, true
		}

		if end.Before(start) {
			m.err = "La fecha de fin es anterior al inicio"
			return m, nil, true
		}

		m.err = ""
		p := Period{
			Label: FormatDate(start) + " - " + FormatDate(end),
			Start: start,
			End:   endOfDay(end),
		}

		return m, func() tea.Msg { return PeriodSelectedMsg{Period: p} }, true
	case "esc":
		m.state = timeframeStateSelect
		m.err = ""

		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var start, end tea.Cmd

	m.startInput, start = m.startInput.Update(msg)
	m.endInput, end = m.endInput.Update(msg)

	return m, tea.Batch(start, end)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != "" {
		errStr = "\n\n" + errorStyle.Render(m.err)
	}

	if m.state == timeframeStateCustom {
		return "Rango personalizado:\n\n" +
			m.startInput.View() + "\n" +
			m.endInput.View() + "\n\n" +
			faintStyle.Render("(Enter confirma, Tab cambia de campo, Esc vuelve)") +
			errStr
	}

	s := "Periodo:\n\n"
	for tf := TimeframeAll; tf <= TimeframeCustom; tf++ {
		cursor := "  "
		if tf == m.selected {
			cursor = "> "
		}

		s += cursor + tf.String() + "\n"
	}

	return s + "\n" + faintStyle.Render("(Enter selecciona, Esc vuelve)") + errStr
}

// IsSelecting reports whether the picker shows the predefined list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = ""
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
