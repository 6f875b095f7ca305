package viewmodel

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

// UserSource resolves the signed in user; nil, nil means nobody is.
type UserSource interface {
	CurrentUser(ctx context.Context) (*auth.User, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx *transaction.Transaction) (string, error)
	Update(ctx context.Context, tx *transaction.Transaction) error
	SoftDelete(ctx context.Context, id string) error
	ListByBusinessOnce(ctx context.Context, businessID string) []*transaction.Transaction
}

// TransactionForm holds the raw values of the transaction form.
type TransactionForm struct {
	Type        transaction.Type
	Amount      string
	Description string
	Category    string
	Date        time.Time
}

// TransactionErrors holds one message per invalid field; "" means valid.
type TransactionErrors struct {
	Amount      string
	Description string
	Category    string
}

func (e TransactionErrors) Any() bool {
	return e.Amount != "" || e.Description != "" || e.Category != ""
}

// TransactionState is a snapshot of everything a transaction screen renders.
type TransactionState struct {
	Form         TransactionForm
	Errors       TransactionErrors
	Loading      bool
	Editing      *transaction.Transaction
	Transactions []*transaction.Transaction
	Balance      decimal.Decimal
}

type TransactionViewModel struct {
	store   TransactionStore
	users   UserSource
	now     func() time.Time
	results *Results
	changes signal

	mu           sync.Mutex
	form         TransactionForm
	errs         TransactionErrors
	loading      bool
	editing      *transaction.Transaction
	transactions []*transaction.Transaction
	balance      decimal.Decimal

	generation uint64
	cancelLoad context.CancelFunc
}

func NewTransactionViewModel(store TransactionStore, users UserSource) *TransactionViewModel {
	vm := &TransactionViewModel{
		store:        store,
		users:        users,
		now:          time.Now,
		results:      newResults(),
		changes:      newSignal(),
		transactions: []*transaction.Transaction{},
		balance:      decimal.Zero,
	}

	vm.form = vm.blankForm()

	return vm
}

func (vm *TransactionViewModel) Results() *Results {
	return vm.results
}

// Changes delivers a value after state changed. Notifications coalesce.
func (vm *TransactionViewModel) Changes() <-chan struct{} {
	return vm.changes
}

func (vm *TransactionViewModel) State() TransactionState {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return TransactionState{
		Form:         vm.form,
		Errors:       vm.errs,
		Loading:      vm.loading,
		Editing:      vm.editing,
		Transactions: vm.transactions,
		Balance:      vm.balance,
	}
}

// SetType switches the form type and clears every field error.
func (vm *TransactionViewModel) SetType(t transaction.Type) {
	vm.update(func() {
		vm.form.Type = t
		vm.errs = TransactionErrors{}
	})
}

func (vm *TransactionViewModel) SetAmount(amount string) {
	vm.update(func() {
		vm.form.Amount = amount
		vm.errs.Amount = fieldError(validation.Amount(amount))
	})
}

func (vm *TransactionViewModel) SetDescription(description string) {
	vm.update(func() {
		vm.form.Description = description
		vm.errs.Description = fieldError(validation.Description(description))
	})
}

func (vm *TransactionViewModel) SetCategory(category string) {
	vm.update(func() {
		vm.form.Category = category
		vm.errs.Category = fieldError(validation.CategoryName(category))
	})
}

func (vm *TransactionViewModel) SetDate(date time.Time) {
	vm.update(func() {
		vm.form.Date = date
	})
}

// LoadForEdit fills the form from tx; the next Save updates tx instead of
// creating a new transaction.
func (vm *TransactionViewModel) LoadForEdit(tx *transaction.Transaction) {
	vm.update(func() {
		vm.editing = tx
		vm.form = TransactionForm{
			Type:        tx.Type,
			Amount:      tx.Amount.String(),
			Description: tx.Description,
			Category:    tx.Category,
			Date:        tx.Date,
		}
		vm.errs = TransactionErrors{}
	})
}

// ClearEdit leaves edit mode but keeps the form values.
func (vm *TransactionViewModel) ClearEdit() {
	vm.update(func() {
		vm.editing = nil
	})
}

// Save validates the form and then creates or updates a transaction. The
// outcome is returned and also published on Results, except for ErrBusy and
// ErrInvalidForm which only fill the returned error and field errors.
func (vm *TransactionViewModel) Save(ctx context.Context) error {
	vm.mu.Lock()

	if vm.loading {
		vm.mu.Unlock()
		return ErrBusy
	}

	vm.errs = TransactionErrors{
		Amount:      fieldError(validation.Amount(vm.form.Amount)),
		Description: fieldError(validation.Description(vm.form.Description)),
		Category:    fieldError(validation.CategoryName(vm.form.Category)),
	}

	if vm.errs.Any() {
		vm.mu.Unlock()
		vm.changes.notify()

		return ErrInvalidForm
	}

	form := vm.form
	editing := vm.editing
	vm.loading = true
	vm.mu.Unlock()
	vm.changes.notify()

	msg, err := vm.save(ctx, form, editing)

	vm.update(func() {
		vm.loading = false
		if err == nil {
			vm.form = vm.blankForm()
			vm.errs = TransactionErrors{}
			vm.editing = nil
		}
	})

	if err != nil {
		vm.results.publish(Result{Err: err, Message: message(err)})
		return err
	}

	vm.results.publish(Result{Message: msg})
	vm.Refresh(ctx)

	return nil
}

func (vm *TransactionViewModel) save(ctx context.Context, form TransactionForm, editing *transaction.Transaction) (string, error) {
	user, err := vm.users.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	if user == nil {
		return "", identity.ErrNoSession
	}

	amount, err := validation.ParseAmount(strings.TrimSpace(form.Amount))
	if err != nil {
		return "", transaction.ErrInvalidAmount
	}

	if editing != nil {
		tx := *editing
		tx.Type = form.Type
		tx.Amount = amount
		tx.Description = strings.TrimSpace(form.Description)
		tx.Category = strings.TrimSpace(form.Category)
		tx.Date = form.Date

		if err := vm.store.Update(ctx, &tx); err != nil {
			return "", err
		}

		return "Transacción actualizada correctamente", nil
	}

	tx := transaction.New()
	tx.BusinessID = businessID(user)
	tx.Type = form.Type
	tx.Amount = amount
	tx.Description = strings.TrimSpace(form.Description)
	tx.Category = strings.TrimSpace(form.Category)
	tx.Date = form.Date

	if _, err := vm.store.Create(ctx, tx); err != nil {
		return "", err
	}

	return "Transacción registrada correctamente", nil
}

// Delete soft deletes the transaction with id and reloads the list.
func (vm *TransactionViewModel) Delete(ctx context.Context, id string) error {
	vm.mu.Lock()

	if vm.loading {
		vm.mu.Unlock()
		return ErrBusy
	}

	vm.loading = true
	vm.mu.Unlock()
	vm.changes.notify()

	err := vm.store.SoftDelete(ctx, id)

	vm.update(func() {
		vm.loading = false
	})

	if err != nil {
		vm.results.publish(Result{Err: err, Message: message(err)})
		return err
	}

	vm.results.publish(Result{Message: "Transacción eliminada correctamente"})
	vm.Refresh(ctx)

	return nil
}

// Refresh reloads the current user's transactions and balance. Starting a
// refresh cancels the previous one, and a load that finishes after a newer
// one started is discarded.
func (vm *TransactionViewModel) Refresh(ctx context.Context) {
	vm.mu.Lock()

	if vm.cancelLoad != nil {
		vm.cancelLoad()
	}

	loadCtx, cancel := context.WithCancel(ctx)
	vm.cancelLoad = cancel
	vm.generation++
	gen := vm.generation
	vm.mu.Unlock()

	defer cancel()

	user, err := vm.users.CurrentUser(loadCtx)
	if loadCtx.Err() != nil {
		return
	}

	if err != nil {
		slog.WarnContext(ctx, "load transactions failed", "error", err)
		vm.apply(gen, []*transaction.Transaction{})

		return
	}

	if user == nil {
		vm.apply(gen, []*transaction.Transaction{})
		return
	}

	txs := vm.store.ListByBusinessOnce(loadCtx, businessID(user))
	if loadCtx.Err() != nil {
		return
	}

	vm.apply(gen, txs)
}

func (vm *TransactionViewModel) apply(gen uint64, txs []*transaction.Transaction) {
	vm.mu.Lock()

	if gen != vm.generation {
		vm.mu.Unlock()
		return
	}

	vm.transactions = txs
	vm.balance = transaction.Balance(txs)
	vm.mu.Unlock()

	vm.changes.notify()
}

// Close cancels any load in flight.
func (vm *TransactionViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.cancelLoad != nil {
		vm.cancelLoad()
		vm.cancelLoad = nil
	}
}

func (vm *TransactionViewModel) update(fn func()) {
	vm.mu.Lock()
	fn()
	vm.mu.Unlock()

	vm.changes.notify()
}

// blankForm keeps the selected type so consecutive entries of the same kind
// need no extra step.
func (vm *TransactionViewModel) blankForm() TransactionForm {
	t := vm.form.Type
	if !t.Valid() {
		t = transaction.TypeIncome
	}

	return TransactionForm{Type: t, Date: vm.now()}
}

// businessID is where a user's transactions live. Users without a business
// keep theirs under their own id.
func businessID(u *auth.User) string {
	if u.BusinessID != "" {
		return u.BusinessID
	}

	return u.ID
}
