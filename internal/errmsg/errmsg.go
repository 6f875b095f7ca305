// Package errmsg turns auth provider error codes and messages into the
// messages shown to users.
package errmsg

type entry struct {
	key     string
	message string
}

// Lookup is first-match, in this order.
var table = []entry{
	{"ERROR_INVALID_EMAIL", "El formato del email es inválido"},
	{"ERROR_USER_DISABLED", "Esta cuenta ha sido deshabilitada"},
	{"ERROR_USER_NOT_FOUND", "No existe una cuenta con este email"},
	{"ERROR_WRONG_PASSWORD", "Contraseña incorrecta"},
	{"ERROR_EMAIL_ALREADY_IN_USE", "Ya existe una cuenta con este email"},
	{"ERROR_WEAK_PASSWORD", "La contraseña es muy débil"},
	{"ERROR_NETWORK_REQUEST_FAILED", "Error de conexión. Verifica tu internet"},
	{"The email address is already in use by another account.", "Ya existe una cuenta con este email"},
	{"The password is invalid or the user does not have a password.", "Contraseña incorrecta"},
	{"There is no user record corresponding to this identifier. The user may have been deleted.", "No existe una cuenta con este email"},
	{"The email address is badly formatted.", "El formato del email es inválido"},
	{"Password should be at least 6 characters", "La contraseña debe tener al menos 6 caracteres"},
}

const maxEcho = 100

// Translate returns the user-facing message for a provider code or message.
// Unknown input is echoed back, truncated to 100 characters.
func Translate(raw string) string {
	for _, e := range table {
		if e.key == raw {
			return e.message
		}
	}

	r := []rune(raw)
	if len(r) > maxEcho {
		r = r[:maxEcho]
	}

	return "Error: " + string(r)
}
