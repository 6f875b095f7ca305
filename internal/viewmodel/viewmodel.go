// Package viewmodel holds the form and list state behind the tracker's
// screens. View-models are safe for concurrent use; blocking methods are
// meant to run inside UI commands or request handlers.
package viewmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

var (
	// ErrBusy is returned when an operation starts while another one is
	// still in flight on the same view-model.
	ErrBusy = errors.New("operation already in progress")
	// ErrInvalidForm is returned when at least one field failed validation.
	ErrInvalidForm = errors.New("form has invalid fields")
)

const msgNotAuthenticated = "Usuario no autenticado"

// Result is a one-shot notification of a finished operation.
type Result struct {
	Err     error
	Message string
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Results is a single-subscriber FIFO of operation results. Results
// published while nobody listens stay queued until they are consumed.
type Results struct {
	mu    sync.Mutex
	items []Result
	ready chan struct{}
}

func newResults() *Results {
	return &Results{ready: make(chan struct{}, 1)}
}

func (q *Results) publish(r Result) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryNext pops the oldest result without waiting.
func (q *Results) TryNext() (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Result{}, false
	}

	r := q.items[0]
	q.items = q.items[1:]

	return r, true
}

// Next waits for the oldest result or for ctx to end.
func (q *Results) Next(ctx context.Context) (Result, error) {
	for {
		if r, ok := q.TryNext(); ok {
			return r, nil
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}

// Len reports how many results are waiting.
func (q *Results) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// signal coalesces state change notifications; a reader only learns that
// something changed and then reads a fresh snapshot.
type signal chan struct{}

func newSignal() signal {
	return make(signal, 1)
}

func (s signal) notify() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// message turns an operation error into the text shown to the user.
func message(err error) string {
	var authErr *auth.Error

	switch {
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.Is(err, identity.ErrNoSession):
		return msgNotAuthenticated
	case errors.Is(err, transaction.ErrPermissionDenied):
		return "No tienes permisos para modificar esta transacción"
	case errors.Is(err, transaction.ErrDeleted):
		return "La transacción fue eliminada"
	case errors.Is(err, transaction.ErrNotFound):
		return "Transacción no encontrada"
	case errors.Is(err, transaction.ErrInvalidAmount):
		return "Ingresa un monto válido"
	}

	return err.Error()
}

// fieldError is the message a field shows for r; "" when r passed.
func fieldError(r validation.Result) string {
	if r.Valid {
		return ""
	}

	return r.Message
}
