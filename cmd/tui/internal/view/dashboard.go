package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type dashState int

const (
	dashStateList dashState = iota
	dashStatePeriod
	dashStateConfirmDelete
)

// Navigation requests handled by the root model.
type (
	NewTransactionMsg  struct{}
	EditTransactionMsg struct{ Tx *transaction.Transaction }
	OpenCategoriesMsg  struct{}
	OpenImportMsg      struct{}
	SignOutMsg         struct{}
)

type DashboardModel struct {
	vm   *viewmodel.TransactionViewModel
	user *auth.User

	state   dashState
	table   table.Model
	picker  TimeframePicker
	period  Period
	visible []*transaction.Transaction

	confirm   *huh.Form
	confirmed *bool
	target    *transaction.Transaction
}

func NewDashboardModel(vm *viewmodel.TransactionViewModel, user *auth.User) DashboardModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Fecha", Width: 10},
			{Title: "Tipo", Width: 8},
			{Title: "Monto", Width: 16},
			{Title: "Categoría", Width: 22},
			{Title: "Descripción", Width: 34},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m := DashboardModel{
		vm:     vm,
		user:   user,
		table:  t,
		picker: NewTimeframePicker(),
		period: PeriodFor(TimeframeAll, time.Now()),
	}
	m.rebuild()

	return m
}

func (m DashboardModel) Title() string { return "Resumen" }

func (m DashboardModel) ShortHelp() string {
	switch m.state {
	case dashStatePeriod:
		return "Enter: seleccionar | Esc: volver"
	case dashStateConfirmDelete:
		return "Enter: confirmar | Esc: cancelar"
	}

	return "n: nueva | e: editar | d: eliminar | p: periodo | c: categorías | i: importar | r: recargar | s: cerrar sesión | q: salir"
}

func (m DashboardModel) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg, OpDoneMsg:
		m.rebuild()
		return m, nil
	case PeriodSelectedMsg:
		m.period = msg.Period
		m.state = dashStateList
		m.picker.Reset()
		m.rebuild()

		return m, nil
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-14, 5))
		return m, nil
	}

	switch m.state {
	case dashStatePeriod:
		return m.updatePeriod(msg)
	case dashStateConfirmDelete:
		return m.updateConfirm(msg)
	}

	return m.updateList(msg)
}

func (m DashboardModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "n":
			return m, func() tea.Msg { return NewTransactionMsg{} }
		case "e", "enter":
			if tx := m.selected(); tx != nil {
				return m, func() tea.Msg { return EditTransactionMsg{Tx: tx} }
			}

			return m, nil
		case "d":
			return m.startDelete()
		case "p":
			m.state = dashStatePeriod
			return m, nil
		case "c":
			return m, func() tea.Msg { return OpenCategoriesMsg{} }
		case "i":
			return m, func() tea.Msg { return OpenImportMsg{} }
		case "r":
			return m, m.refreshCmd()
		case "s":
			return m, func() tea.Msg { return SignOutMsg{} }
		case "q":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DashboardModel) updatePeriod(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = dashStateList
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m DashboardModel) startDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.target = tx
	m.confirmed = new(bool)
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("¿Eliminar esta transacción?").
				Description(fmt.Sprintf("%s  %s  %s", FormatDate(tx.Date), FormatAmount(tx.Amount), tx.Description)).
				Affirmative("Eliminar").
				Negative("Cancelar").
				Value(m.confirmed),
		),
	).WithWidth(60).WithShowHelp(false)
	m.state = dashStateConfirmDelete

	return m, m.confirm.Init()
}

func (m DashboardModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = dashStateList
		m.confirm = nil

		return m, nil
	}

	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = dashStateList
	m.confirm = nil

	if !*m.confirmed {
		return m, nil
	}

	return m, m.deleteCmd(m.target.ID)
}

func (m DashboardModel) refreshCmd() tea.Cmd {
	vm := m.vm

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		vm.Refresh(ctx)

		return OpDoneMsg{}
	}
}

func (m DashboardModel) deleteCmd(id string) tea.Cmd {
	vm := m.vm

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return OpDoneMsg{Err: vm.Delete(ctx, id)}
	}
}

func (m DashboardModel) selected() *transaction.Transaction {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return nil
	}

	return m.visible[i]
}

// rebuild reloads the rows from the view-model, applying the period.
func (m *DashboardModel) rebuild() {
	m.visible = m.period.Filter(m.vm.State().Transactions)

	rows := make([]table.Row, len(m.visible))
	for i, tx := range m.visible {
		rows[i] = table.Row{
			FormatDate(tx.Date),
			TypeLabel(tx.Type),
			FormatAmount(tx.Amount),
			tx.Category,
			tx.Description,
		}
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m DashboardModel) View() string {
	switch m.state {
	case dashStatePeriod:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.picker.View())
	case dashStateConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.View())
	}

	state := m.vm.State()

	balanceStyle := okStyle
	if state.Balance.IsNegative() {
		balanceStyle = errorStyle
	}

	income, expense := totals(m.visible)

	header := boxStyle.Render(fmt.Sprintf(
		"%s\nBalance: %s\n%s: ingresos %s | gastos %s",
		titleStyle.Render(m.user.Email),
		balanceStyle.Render(FormatAmount(state.Balance)),
		m.period.Label,
		FormatAmount(income),
		FormatAmount(expense),
	))

	body := m.table.View()

	switch {
	case state.Loading:
		body = faintStyle.Render("Cargando...") + "\n" + body
	case len(m.visible) == 0:
		body = faintStyle.Render("No hay transacciones en este periodo.")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(header + "\n\n" + body)
}

func totals(txs []*transaction.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			income = income.Add(tx.Amount)
		case transaction.TypeExpense:
			expense = expense.Add(tx.Amount)
		}
	}

	return income, expense
}
