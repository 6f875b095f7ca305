package viewmodel

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.User, error)
	Register(ctx context.Context, email, password string, draft auth.Business) (*auth.User, error)
	ResetPassword(ctx context.Context, email string) (*auth.User, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

const defaultBusinessType = "General"

// RegisterForm is the raw input of the registration screen. TaxID is
// optional; when given it must be a valid RUC.
type RegisterForm struct {
	Email        string
	Password     string
	Confirm      string
	BusinessName string
	BusinessType string
	TaxID        string
	Address      string
	Phone        string
}

// AuthErrors maps a form field name to its message. Field names are the
// lower camel case names of the form fields.
type AuthErrors map[string]string

type AuthState struct {
	Status  Status
	User    *auth.User
	Message string
	Errors  AuthErrors
}

type AuthViewModel struct {
	auth    Authenticator
	results *Results
	changes signal

	mu      sync.Mutex
	status  Status
	user    *auth.User
	message string
	errs    AuthErrors
}

func NewAuthViewModel(a Authenticator) *AuthViewModel {
	return &AuthViewModel{
		auth:    a,
		results: newResults(),
		changes: newSignal(),
		errs:    AuthErrors{},
	}
}

func (vm *AuthViewModel) Results() *Results {
	return vm.results
}

func (vm *AuthViewModel) Changes() <-chan struct{} {
	return vm.changes
}

func (vm *AuthViewModel) State() AuthState {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return AuthState{Status: vm.status, User: vm.user, Message: vm.message, Errors: maps.Clone(vm.errs)}
}

func (vm *AuthViewModel) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)

	errs := collect(map[string]validation.Result{
		"email":    validation.Email(email),
		"password": validation.Password(password),
	})

	return vm.run(errs, func() (*auth.User, error) {
		return vm.auth.Login(ctx, email, password)
	})
}

func (vm *AuthViewModel) Register(ctx context.Context, form RegisterForm) error {
	form.Email = strings.TrimSpace(form.Email)
	form.BusinessName = strings.TrimSpace(form.BusinessName)
	form.TaxID = strings.TrimSpace(form.TaxID)
	form.Phone = strings.TrimSpace(form.Phone)

	checks := map[string]validation.Result{
		"email":        validation.Email(form.Email),
		"password":     validation.Password(form.Password),
		"confirm":      validation.PasswordConfirmation(form.Password, form.Confirm),
		"businessName": validation.BusinessName(form.BusinessName),
		"phone":        validation.Phone(form.Phone),
	}

	if form.TaxID != "" {
		checks["taxId"] = validation.TaxID(form.TaxID)
	}

	businessType := strings.TrimSpace(form.BusinessType)
	if businessType == "" {
		businessType = defaultBusinessType
	}

	draft := auth.Business{
		Name:    form.BusinessName,
		Type:    businessType,
		TaxID:   form.TaxID,
		Address: strings.TrimSpace(form.Address),
		Phone:   form.Phone,
	}

	return vm.run(collect(checks), func() (*auth.User, error) {
		return vm.auth.Register(ctx, form.Email, form.Password, draft)
	})
}

// ResetPassword sends a reset mail. Its outcome only goes to Results; the
// main status is left alone.
func (vm *AuthViewModel) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	if r := validation.Email(email); !r.Valid {
		vm.mu.Lock()
		vm.errs = AuthErrors{"email": r.Message}
		vm.mu.Unlock()
		vm.changes.notify()

		return ErrInvalidForm
	}

	if _, err := vm.auth.ResetPassword(ctx, email); err != nil {
		vm.results.publish(Result{Err: err, Message: message(err)})
		return err
	}

	vm.results.publish(Result{Message: "Se envió un correo para restablecer tu contraseña"})

	return nil
}

// Reset returns the view-model to idle, dropping user and message.
func (vm *AuthViewModel) Reset() {
	vm.mu.Lock()
	vm.status = StatusIdle
	vm.user = nil
	vm.message = ""
	vm.errs = AuthErrors{}
	vm.mu.Unlock()

	vm.changes.notify()
}

func (vm *AuthViewModel) run(errs AuthErrors, call func() (*auth.User, error)) error {
	vm.mu.Lock()

	if vm.status == StatusLoading {
		vm.mu.Unlock()
		return ErrBusy
	}

	vm.errs = errs
	if len(errs) > 0 {
		vm.mu.Unlock()
		vm.changes.notify()

		return ErrInvalidForm
	}

	vm.status = StatusLoading
	vm.message = ""
	vm.mu.Unlock()
	vm.changes.notify()

	user, err := call()

	vm.mu.Lock()
	if err != nil {
		vm.status = StatusFailed
		vm.user = nil
		vm.message = message(err)
	} else {
		vm.status = StatusSucceeded
		vm.user = user
	}
	msg := vm.message
	vm.mu.Unlock()
	vm.changes.notify()

	vm.results.publish(Result{Err: err, Message: msg})

	return err
}

func collect(checks map[string]validation.Result) AuthErrors {
	errs := AuthErrors{}

	for field, r := range checks {
		if !r.Valid {
			errs[field] = r.Message
		}
	}

	return errs
}
