package viewmodel

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

type CategoryStore interface {
	GetAll(ctx context.Context, t transaction.Type) []category.Category
	Create(ctx context.Context, draft category.Category) (*category.Category, error)
}

type CategoryState struct {
	Income    []category.Category
	Expense   []category.Category
	Name      string
	Type      transaction.Type
	NameError string
	Loading   bool
}

type CategoryViewModel struct {
	store   CategoryStore
	results *Results
	changes signal

	mu      sync.Mutex
	income  []category.Category
	expense []category.Category
	name    string
	kind    transaction.Type
	nameErr string
	loading bool
}

func NewCategoryViewModel(store CategoryStore) *CategoryViewModel {
	return &CategoryViewModel{
		store:   store,
		results: newResults(),
		changes: newSignal(),
		income:  []category.Category{},
		expense: []category.Category{},
		kind:    transaction.TypeIncome,
	}
}

func (vm *CategoryViewModel) Results() *Results {
	return vm.results
}

func (vm *CategoryViewModel) Changes() <-chan struct{} {
	return vm.changes
}

func (vm *CategoryViewModel) State() CategoryState {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	return CategoryState{
		Income:    vm.income,
		Expense:   vm.expense,
		Name:      vm.name,
		Type:      vm.kind,
		NameError: vm.nameErr,
		Loading:   vm.loading,
	}
}

// Load fetches income and expense categories side by side.
func (vm *CategoryViewModel) Load(ctx context.Context) error {
	var income, expense []category.Category

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		income = vm.store.GetAll(gctx, transaction.TypeIncome)
		return gctx.Err()
	})

	g.Go(func() error {
		expense = vm.store.GetAll(gctx, transaction.TypeExpense)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	vm.mu.Lock()
	vm.income = income
	vm.expense = expense
	vm.mu.Unlock()

	vm.changes.notify()

	return nil
}

func (vm *CategoryViewModel) SetName(name string) {
	vm.mu.Lock()
	vm.name = name
	vm.nameErr = ""
	vm.mu.Unlock()

	vm.changes.notify()
}

func (vm *CategoryViewModel) SetType(t transaction.Type) {
	vm.mu.Lock()
	vm.kind = t
	vm.mu.Unlock()

	vm.changes.notify()
}

// Create stores the form as a new custom category, then clears the form
// and reloads both lists.
func (vm *CategoryViewModel) Create(ctx context.Context) error {
	vm.mu.Lock()

	if vm.loading {
		vm.mu.Unlock()
		return ErrBusy
	}

	name := strings.TrimSpace(vm.name)

	vm.nameErr = fieldError(validation.CategoryName(name))
	if vm.nameErr != "" {
		vm.mu.Unlock()
		vm.changes.notify()

		return ErrInvalidForm
	}

	kind := vm.kind
	vm.loading = true
	vm.mu.Unlock()
	vm.changes.notify()

	_, err := vm.store.Create(ctx, category.Category{Name: name, Type: kind})

	vm.mu.Lock()
	vm.loading = false
	if err == nil {
		vm.name = ""
		vm.kind = transaction.TypeIncome
	}
	vm.mu.Unlock()
	vm.changes.notify()

	if err != nil {
		vm.results.publish(Result{Err: err, Message: message(err)})
		return err
	}

	vm.results.publish(Result{Message: "Categoría creada exitosamente."})

	return vm.Load(ctx)
}
