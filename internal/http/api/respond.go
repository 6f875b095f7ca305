// Package api holds what every HTTP handler of the tracker shares: JSON
// responses, the error to status mapping and bearer authentication.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/errmsg"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/importer"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

// ValidationError carries one message per invalid request field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "invalid request"
}

// Invalid returns a *ValidationError for the failing fields, or nil when
// fields is empty.
func Invalid(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	return &ValidationError{Fields: fields}
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as a JSON error body. Server errors are logged and their
// detail is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	resp := errorResponse{Error: Message(err)}

	var verr *ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)

		resp.Error = http.StatusText(status)
	}

	JSON(w, status, resp)
}

// Status maps err to an HTTP status.
func Status(err error) int {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, importer.ErrNoHeader):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, transaction.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, transaction.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, transaction.ErrDeleted):
		return http.StatusConflict
	}

	switch identity.Code(err) {
	case identity.CodeInvalidEmail, identity.CodeWeakPassword:
		return http.StatusBadRequest
	case identity.CodeUserNotFound, identity.CodeWrongPassword, identity.CodeInvalidToken, identity.CodeNoCurrentUser:
		return http.StatusUnauthorized
	case identity.CodeUserDisabled:
		return http.StatusForbidden
	case identity.CodeEmailInUse:
		return http.StatusConflict
	case identity.CodeNetworkFailed:
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// Message is the client-facing text of err.
func Message(err error) string {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return authErr.Message
	}

	switch {
	case errors.Is(err, identity.ErrNoSession):
		return "Usuario no autenticado"
	case errors.Is(err, transaction.ErrPermissionDenied):
		return "No tienes permisos para modificar esta transacción"
	case errors.Is(err, transaction.ErrDeleted):
		return "La transacción fue eliminada"
	case errors.Is(err, transaction.ErrNotFound):
		return "Transacción no encontrada"
	case errors.Is(err, transaction.ErrInvalidAmount):
		return "Ingresa un monto válido"
	case errors.Is(err, transaction.ErrInvalidType):
		return "Tipo inválido, usa INCOME o EXPENSE"
	case errors.Is(err, importer.ErrNoHeader):
		return "No se encontró la fila de encabezados del archivo"
	}

	switch code := identity.Code(err); code {
	case "":
	case identity.CodeInvalidToken:
		return "El enlace no es válido o ya expiró"
	default:
		return errmsg.Translate(code)
	}

	return err.Error()
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return &ValidationError{Fields: map[string]string{"body": err.Error()}}
	}

	return nil
}
