package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type txFormValues struct {
	Type        transaction.Type
	Amount      string
	Description string
	Category    string
	Date        string
}

type saveTxMsg struct {
	err error
}

// TransactionFormModel creates a transaction, or edits one when opened
// with a target.
type TransactionFormModel struct {
	vm         *viewmodel.TransactionViewModel
	categories *viewmodel.CategoryViewModel

	editing bool
	values  *txFormValues
	form    *huh.Form
	dateErr string
}

func NewTransactionFormModel(vm *viewmodel.TransactionViewModel, categories *viewmodel.CategoryViewModel, edit *transaction.Transaction) TransactionFormModel {
	if edit != nil {
		vm.LoadForEdit(edit)
	} else {
		vm.ClearEdit()
	}

	f := vm.State().Form

	m := TransactionFormModel{
		vm:         vm,
		categories: categories,
		editing:    edit != nil,
		values: &txFormValues{
			Type:        f.Type,
			Amount:      f.Amount,
			Description: f.Description,
			Category:    f.Category,
			Date:        f.Date.Format("2006-01-02"),
		},
	}
	m.form = m.buildForm()

	return m
}

func (m TransactionFormModel) Title() string {
	if m.editing {
		return "Editar transacción"
	}

	return "Nueva transacción"
}

func (m TransactionFormModel) ShortHelp() string {
	return "Esc: cancelar | Enter/Tab: siguiente campo"
}

func (m TransactionFormModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.loadCategoriesCmd())
}

func (m TransactionFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveTxMsg:
		if msg.err == nil {
			return m, Back
		}

		m.form = m.buildForm()

		return m, m.form.Init()
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			m.vm.ClearEdit()
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	date, ok := ParseDate(m.values.Date)
	if !ok {
		m.dateErr = "Fecha inválida, usa AAAA-MM-DD o DD/MM/AAAA"
		m.form = m.buildForm()

		return m, m.form.Init()
	}

	m.dateErr = ""

	return m, m.saveCmd(date)
}

func (m TransactionFormModel) saveCmd(date time.Time) tea.Cmd {
	vm := m.vm
	v := *m.values

	return func() tea.Msg {
		vm.SetType(v.Type)
		vm.SetAmount(v.Amount)
		vm.SetDescription(v.Description)
		vm.SetCategory(v.Category)
		vm.SetDate(date)

		ctx, cancel := DbCtx()
		defer cancel()

		return saveTxMsg{err: vm.Save(ctx)}
	}
}

func (m TransactionFormModel) loadCategoriesCmd() tea.Cmd {
	categories := m.categories

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return OpDoneMsg{Err: categories.Load(ctx)}
	}
}

func (m TransactionFormModel) categoryOptions() []huh.Option[string] {
	state := m.categories.State()

	list := state.Income
	if m.values.Type == transaction.TypeExpense {
		list = state.Expense
	}

	if len(list) == 0 {
		list = category.Defaults(m.values.Type)
	}

	opts := make([]huh.Option[string], len(list))
	for i, c := range list {
		opts[i] = huh.NewOption(c.Name, c.Name)
	}

	return opts
}

func (m TransactionFormModel) buildForm() *huh.Form {
	v := m.values

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Type]().
				Title("Tipo").
				Options(
					huh.NewOption("Ingreso", transaction.TypeIncome),
					huh.NewOption("Gasto", transaction.TypeExpense),
				).
				Value(&v.Type),
			huh.NewInput().Title("Monto (S/)").Placeholder("0.00").Value(&v.Amount),
			huh.NewInput().Title("Descripción").CharLimit(200).Value(&v.Description),
			huh.NewSelect[string]().
				Title("Categoría").
				OptionsFunc(m.categoryOptions, &v.Type).
				Value(&v.Category),
			huh.NewInput().Title("Fecha").Placeholder("AAAA-MM-DD").Value(&v.Date),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m TransactionFormModel) View() string {
	state := m.vm.State()

	body := titleStyle.Render(m.Title()) + "\n\n" + m.form.View() + "\n" +
		fieldErrors(state.Errors.Amount, state.Errors.Description, state.Errors.Category, m.dateErr)

	if state.Loading {
		body += faintStyle.Render("Guardando...") + "\n"
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}
