package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

// View is implemented by every screen.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// ChangedMsg is sent whenever a view-model reports a state change. From is
// the channel that fired.
type ChangedMsg struct {
	From <-chan struct{}
}

// OpDoneMsg ends an asynchronous view-model call.
type OpDoneMsg struct {
	Err error
}

// WaitForChange blocks until ch fires. Callers re-issue it with msg.From
// after every ChangedMsg to keep listening.
func WaitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return ChangedMsg{From: ch}
	}
}

// Drain pops every pending result, oldest first.
func Drain(queues ...*viewmodel.Results) []viewmodel.Result {
	var out []viewmodel.Result

	for _, q := range queues {
		for {
			r, ok := q.TryNext()
			if !ok {
				break
			}

			out = append(out, r)
		}
	}

	return out
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	boxStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// Notice renders a view-model result as a one-line status.
func Notice(r viewmodel.Result) string {
	if r.OK() {
		return okStyle.Render(r.Message)
	}

	return errorStyle.Render(r.Message)
}

// fieldErrors renders non-empty messages one per line.
func fieldErrors(msgs ...string) string {
	s := ""

	for _, msg := range msgs {
		if msg != "" {
			s += errorStyle.Render("• "+msg) + "\n"
		}
	}

	return s
}
