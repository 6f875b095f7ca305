package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/FinanceTrackerAP/FinanceTracker/cmd/tui/internal/view"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/app"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/config"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/logging"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type Screen int

const (
	ScreenAuth Screen = iota
	ScreenDashboard
	ScreenForm
	ScreenCategories
	ScreenImport
)

type model struct {
	app *app.App

	authVM     *viewmodel.AuthViewModel
	txVM       *viewmodel.TransactionViewModel
	categoryVM *viewmodel.CategoryViewModel

	current Screen
	user    *auth.User
	screens map[Screen]view.View
	notice  string
	width   int
	height  int
}

func newModel(a *app.App) model {
	authVM := viewmodel.NewAuthViewModel(a.Auth)

	return model{
		app:        a,
		authVM:     authVM,
		txVM:       viewmodel.NewTransactionViewModel(a.Transactions, a.Auth),
		categoryVM: viewmodel.NewCategoryViewModel(a.Categories),
		current:    ScreenAuth,
		screens:    map[Screen]view.View{ScreenAuth: view.NewAuthModel(authVM)},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.screens[ScreenAuth].Init(),
		view.WaitForChange(m.authVM.Changes()),
		view.WaitForChange(m.txVM.Changes()),
		view.WaitForChange(m.categoryVM.Changes()),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var extra tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		m.notice = ""
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case view.ChangedMsg:
		extra = view.WaitForChange(msg.From)
		m.collectNotices()
	case view.OpDoneMsg:
		m.collectNotices()
	case view.LoggedInMsg:
		m.user = msg.User
		m.collectNotices()

		return m.open(ScreenDashboard, view.NewDashboardModel(m.txVM, m.user))
	case view.NewTransactionMsg:
		return m.open(ScreenForm, view.NewTransactionFormModel(m.txVM, m.categoryVM, nil))
	case view.EditTransactionMsg:
		return m.open(ScreenForm, view.NewTransactionFormModel(m.txVM, m.categoryVM, msg.Tx))
	case view.OpenCategoriesMsg:
		return m.open(ScreenCategories, view.NewCategoriesModel(m.categoryVM))
	case view.OpenImportMsg:
		return m.open(ScreenImport, view.NewImportModel(m.app.Importer, m.user))
	case view.SignOutMsg:
		return m.signOut()
	case view.BackMsg:
		m.collectNotices()

		if m.user == nil {
			return m, nil
		}

		return m.open(ScreenDashboard, view.NewDashboardModel(m.txVM, m.user))
	}

	screen, cmd := m.screens[m.current].Update(msg)
	m.screens[m.current] = screen.(view.View)

	return m, tea.Batch(cmd, extra)
}

func (m model) open(s Screen, v view.View) (tea.Model, tea.Cmd) {
	m.current = s
	m.screens[s] = v

	cmds := []tea.Cmd{v.Init()}
	if m.width > 0 {
		cmds = append(cmds, func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} })
	}

	return m, tea.Batch(cmds...)
}

func (m model) signOut() (tea.Model, tea.Cmd) {
	ctx, cancel := view.DbCtx()
	defer cancel()

	if err := m.app.Auth.SignOut(ctx); err != nil {
		slog.Warn("sign out failed", "error", err)
	}

	m.txVM.Close()
	m.user = nil
	m.authVM.Reset()
	m.notice = "Sesión cerrada"

	return m.open(ScreenAuth, view.NewAuthModel(m.authVM))
}

func (m *model) collectNotices() {
	for _, r := range view.Drain(m.authVM.Results(), m.txVM.Results(), m.categoryVM.Results()) {
		if r.Message != "" {
			m.notice = view.Notice(r)
		}
	}
}

func (m model) View() string {
	screen := m.screens[m.current]

	footer := lipgloss.NewStyle().Faint(true).Render(screen.ShortHelp())
	if m.notice != "" {
		footer = m.notice + "\n" + footer
	}

	return screen.View() + "\n" + lipgloss.NewStyle().PaddingLeft(2).Render(footer)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(cfg.TUI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	if err := logging.Setup(logFile, cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	a, err := app.New(context.Background(), cfg, app.Options{RememberSession: true})
	if err != nil {
		return fmt.Errorf("failed to start services: %w", err)
	}
	defer a.Close()

	p := tea.NewProgram(newModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		return err
	}

	return nil
}
