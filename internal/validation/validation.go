// Package validation checks raw form input against the business rules of the
// tracker. Every check is pure and returns a Result; nothing here touches the
// network or storage.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Result is the outcome of a single field check.
type Result struct {
	Valid   bool
	Message string
}

var ok = Result{Valid: true}

func fail(msg string) Result {
	return Result{Message: msg}
}

// MaxAmount is the largest amount a single transaction may carry.
var MaxAmount = decimal.RequireFromString("999999999.99")

var validate = validator.New()

func Email(email string) Result {
	switch {
	case isBlank(email):
		return fail("El email es requerido")
	case validate.Var(email, "email") != nil:
		return fail("Formato de email inválido")
	}

	return ok
}

func Password(password string) Result {
	switch {
	case isBlank(password):
		return fail("La contraseña es requerida")
	case length(password) < 6:
		return fail("La contraseña debe tener al menos 6 caracteres")
	}

	return ok
}

func PasswordConfirmation(password, confirm string) Result {
	switch {
	case isBlank(confirm):
		return fail("Confirma tu contraseña")
	case password != confirm:
		return fail("Las contraseñas no coinciden")
	}

	return ok
}

func BusinessName(name string) Result {
	switch {
	case isBlank(name):
		return fail("El nombre del negocio es requerido")
	case length(name) < 2:
		return fail("El nombre debe tener al menos 2 caracteres")
	}

	return ok
}

// TaxID checks the 11-digit taxpayer number (RUC).
func TaxID(id string) Result {
	switch {
	case isBlank(id):
		return fail("El RUC es requerido")
	case length(id) != 11:
		return fail("El RUC debe tener 11 dígitos")
	case !allDigits(id):
		return fail("El RUC debe contener solo números")
	}

	return ok
}

func Phone(phone string) Result {
	switch {
	case isBlank(phone):
		return fail("El teléfono es requerido")
	case length(phone) < 9:
		return fail("El teléfono debe tener al menos 9 dígitos")
	case !allDigits(phone):
		return fail("El teléfono debe contener solo números")
	}

	return ok
}

func Amount(amount string) Result {
	if isBlank(amount) {
		return fail("El monto es requerido")
	}

	d, err := ParseAmount(amount)

	switch {
	case err != nil:
		return fail("Ingresa un monto válido")
	case !d.IsPositive():
		return fail("El monto debe ser mayor a 0")
	case d.GreaterThan(MaxAmount):
		return fail("El monto es demasiado grande")
	}

	return ok
}

// ParseAmount parses an amount the same way Amount validates it.
func ParseAmount(amount string) (decimal.Decimal, error) {
	return decimal.NewFromString(amount)
}

func Description(description string) Result {
	switch {
	case isBlank(description):
		return fail("La descripción es requerida")
	case length(description) < 3:
		return fail("La descripción debe tener al menos 3 caracteres")
	case length(description) > 200:
		return fail("La descripción es demasiado larga (máximo 200 caracteres)")
	}

	return ok
}

func CategoryName(name string) Result {
	switch {
	case isBlank(name):
		return fail("La categoría es requerida")
	case length(name) < 2:
		return fail("La categoría debe tener al menos 2 caracteres")
	}

	return ok
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
