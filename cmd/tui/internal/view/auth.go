package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type authMode int

const (
	authModeMenu authMode = iota
	authModeLogin
	authModeRegister
	authModeReset
)

var authFieldOrder = []string{"email", "password", "confirm", "businessName", "taxId", "phone"}

// LoggedInMsg is emitted after a successful login or registration.
type LoggedInMsg struct {
	User *auth.User
}

type authDoneMsg struct {
	mode authMode
	err  error
}

// authValues lives on the heap so the form bindings survive model copies.
type authValues struct {
	form   viewmodel.RegisterForm
	choice authMode
}

type AuthModel struct {
	vm *viewmodel.AuthViewModel

	mode   authMode
	values *authValues
	form   *huh.Form
}

func NewAuthModel(vm *viewmodel.AuthViewModel) AuthModel {
	m := AuthModel{vm: vm, values: &authValues{}}
	m.form = m.menuForm()

	return m
}

func (m AuthModel) Title() string { return "Acceso" }

func (m AuthModel) ShortHelp() string {
	if m.mode == authModeMenu {
		return "Enter: seleccionar | Ctrl+C: salir"
	}

	return "Esc: volver | Enter/Tab: siguiente campo"
}

func (m AuthModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		return m.finish(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.mode != authModeMenu {
			return m.open(authModeMenu)
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.mode == authModeMenu {
		return m.open(m.values.choice)
	}

	return m, m.submitCmd()
}

func (m AuthModel) open(mode authMode) (tea.Model, tea.Cmd) {
	m.mode = mode

	switch mode {
	case authModeLogin:
		m.form = m.loginForm()
	case authModeRegister:
		m.form = m.registerForm()
	case authModeReset:
		m.form = m.resetForm()
	default:
		m.vm.Reset()
		m.form = m.menuForm()
	}

	return m, m.form.Init()
}

func (m AuthModel) submitCmd() tea.Cmd {
	vm := m.vm
	mode := m.mode
	form := m.values.form

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var err error

		switch mode {
		case authModeLogin:
			err = vm.Login(ctx, form.Email, form.Password)
		case authModeRegister:
			err = vm.Register(ctx, form)
		case authModeReset:
			err = vm.ResetPassword(ctx, form.Email)
		}

		return authDoneMsg{mode: mode, err: err}
	}
}

// finish reopens the form on failure so the user can correct it, keeping
// what was typed. Messages reach the user through the results queue.
func (m AuthModel) finish(msg authDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.err != nil:
		return m.open(msg.mode)
	case msg.mode == authModeReset:
		return m.open(authModeLogin)
	}

	user := m.vm.State().User
	m.values.form.Password = ""
	m.values.form.Confirm = ""

	return m, func() tea.Msg { return LoggedInMsg{User: user} }
}

func (m AuthModel) View() string {
	title := titleStyle.Render("FinanceTracker")

	var subtitle string

	switch m.mode {
	case authModeLogin:
		subtitle = "Iniciar sesión"
	case authModeRegister:
		subtitle = "Crear cuenta"
	case authModeReset:
		subtitle = "Recuperar contraseña"
	}

	state := m.vm.State()

	errs := make([]string, 0, len(authFieldOrder))
	for _, field := range authFieldOrder {
		errs = append(errs, state.Errors[field])
	}

	body := title + "\n" + faintStyle.Render(subtitle) + "\n\n" + m.form.View() + "\n" + fieldErrors(errs...)

	if state.Status == viewmodel.StatusLoading {
		body += faintStyle.Render("Procesando...") + "\n"
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(body)
}

func (m AuthModel) menuForm() *huh.Form {
	m.values.choice = authModeLogin

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[authMode]().
				Title("¿Qué deseas hacer?").
				Options(
					huh.NewOption("Iniciar sesión", authModeLogin),
					huh.NewOption("Crear una cuenta", authModeRegister),
					huh.NewOption("Olvidé mi contraseña", authModeReset),
				).
				Value(&m.values.choice),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AuthModel) loginForm() *huh.Form {
	f := &m.values.form

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&f.Email),
			huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(&f.Password),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AuthModel) registerForm() *huh.Form {
	f := &m.values.form

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&f.Email),
			huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(&f.Password),
			huh.NewInput().Title("Confirmar contraseña").EchoMode(huh.EchoModePassword).Value(&f.Confirm),
		),
		huh.NewGroup(
			huh.NewInput().Title("Nombre del negocio").Value(&f.BusinessName),
			huh.NewInput().Title("Tipo de negocio").Placeholder("General").Value(&f.BusinessType),
			huh.NewInput().Title("RUC (opcional)").CharLimit(11).Value(&f.TaxID),
			huh.NewInput().Title("Dirección").Value(&f.Address),
			huh.NewInput().Title("Teléfono").Value(&f.Phone),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AuthModel) resetForm() *huh.Form {
	f := &m.values.form

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email de tu cuenta").Value(&f.Email),
		),
	).WithWidth(50).WithShowHelp(false)
}
