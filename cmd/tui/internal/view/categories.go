package view

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type categoryItem struct {
	c category.Category
}

func (i categoryItem) Title() string { return i.c.Name }

func (i categoryItem) Description() string {
	if i.c.Default {
		return "Predeterminada"
	}

	return "Personalizada"
}

func (i categoryItem) FilterValue() string { return i.c.Name }

type categoryValues struct {
	Name string
	Type transaction.Type
}

type createCategoryMsg struct {
	err error
}

type CategoriesModel struct {
	vm *viewmodel.CategoryViewModel

	showing transaction.Type
	list    list.Model
	values  *categoryValues
	form    *huh.Form
}

func NewCategoriesModel(vm *viewmodel.CategoryViewModel) CategoriesModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 60, 16)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	m := CategoriesModel{
		vm:      vm,
		showing: transaction.TypeIncome,
		list:    l,
		values:  &categoryValues{Type: transaction.TypeIncome},
	}
	m.refreshItems()

	return m
}

func (m CategoriesModel) Title() string { return "Categorías" }

func (m CategoriesModel) ShortHelp() string {
	if m.form != nil {
		return "Esc: cancelar | Enter: guardar"
	}

	return "Tab: ingresos/gastos | a: agregar | /: filtrar | Esc: volver"
}

func (m CategoriesModel) Init() tea.Cmd {
	vm := m.vm

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return OpDoneMsg{Err: vm.Load(ctx)}
	}
}

func (m CategoriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangedMsg, OpDoneMsg:
		m.refreshItems()
		return m, nil
	case createCategoryMsg:
		if msg.err != nil {
			return m.openForm()
		}

		m.form = nil
		m.showing = m.values.Type
		m.refreshItems()

		return m, nil
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "esc":
			return m, Back
		case "tab":
			m.showing = other(m.showing)
			m.refreshItems()

			return m, nil
		case "a":
			m.values.Name = ""
			m.values.Type = m.showing

			return m.openForm()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m CategoriesModel) openForm() (tea.Model, tea.Cmd) {
	v := m.values

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Nombre").Value(&v.Name),
			huh.NewSelect[transaction.Type]().
				Title("Tipo").
				Options(
					huh.NewOption("Ingreso", transaction.TypeIncome),
					huh.NewOption("Gasto", transaction.TypeExpense),
				).
				Value(&v.Type),
		),
	).WithWidth(50).WithShowHelp(false)

	return m, m.form.Init()
}

func (m CategoriesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	vm := m.vm
	v := *m.values

	return m, func() tea.Msg {
		vm.SetName(v.Name)
		vm.SetType(v.Type)

		ctx, cancel := DbCtx()
		defer cancel()

		return createCategoryMsg{err: vm.Create(ctx)}
	}
}

func (m *CategoriesModel) refreshItems() {
	state := m.vm.State()

	cats := state.Income
	m.list.Title = "Categorías de ingreso"

	if m.showing == transaction.TypeExpense {
		cats = state.Expense
		m.list.Title = "Categorías de gasto"
	}

	items := make([]list.Item, len(cats))
	for i, c := range cats {
		items[i] = categoryItem{c: c}
	}

	m.list.SetItems(items)
}

func (m CategoriesModel) View() string {
	if m.form != nil {
		body := titleStyle.Render("Nueva categoría") + "\n\n" + m.form.View() + "\n" +
			fieldErrors(m.vm.State().NameError)

		return lipgloss.NewStyle().Padding(1, 2).Render(body)
	}

	return lipgloss.NewStyle().Padding(1).Render(m.list.View())
}

func other(t transaction.Type) transaction.Type {
	if t == transaction.TypeIncome {
		return transaction.TypeExpense
	}

	return transaction.TypeIncome
}
