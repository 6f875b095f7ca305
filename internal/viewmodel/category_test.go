package viewmodel_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type fakeCategories struct {
	mu        sync.Mutex
	custom    []category.Category
	createErr error
}

func (f *fakeCategories) GetAll(_ context.Context, t transaction.Type) []category.Category {
	f.mu.Lock()
	defer f.mu.Unlock()

	all := category.Defaults(t)
	for _, c := range f.custom {
		if c.Type == t {
			all = append(all, c)
		}
	}

	return all
}

func (f *fakeCategories) Create(_ context.Context, draft category.Category) (*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	draft.ID = "cat-new"
	f.custom = append(f.custom, draft)

	return &draft, nil
}

func TestCategoryViewModel_Load(t *testing.T) {
	vm := viewmodel.NewCategoryViewModel(&fakeCategories{})

	require.NoError(t, vm.Load(context.Background()))

	state := vm.State()
	assert.Len(t, state.Income, 3)
	assert.Len(t, state.Expense, 6)
	assert.Equal(t, transaction.TypeIncome, state.Type)
}

func TestCategoryViewModel_LoadCanceled(t *testing.T) {
	vm := viewmodel.NewCategoryViewModel(&fakeCategories{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, vm.Load(ctx), context.Canceled)
	assert.Empty(t, vm.State().Income)
}

func TestCategoryViewModel_Create(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		createErr error
		wantErr   error
		wantMsg   string
		wantName  string
		wantField string
	}

	tests := []testCase{
		{
			name:     "Success",
			input:    "  Transporte ",
			wantMsg:  "Categoría creada exitosamente.",
			wantName: "",
		},
		{
			name:      "Blank",
			input:     "   ",
			wantErr:   viewmodel.ErrInvalidForm,
			wantName:  "   ",
			wantField: "La categoría es requerida",
		},
		{
			name:      "TooShort",
			input:     "T",
			wantErr:   viewmodel.ErrInvalidForm,
			wantName:  "T",
			wantField: "La categoría debe tener al menos 2 caracteres",
		},
		{
			name:      "NotAuthenticated",
			input:     "Transporte",
			createErr: identity.ErrNoSession,
			wantErr:   identity.ErrNoSession,
			wantMsg:   "Usuario no autenticado",
			wantName:  "Transporte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeCategories{createErr: tt.createErr}
			vm := viewmodel.NewCategoryViewModel(store)

			vm.SetName(tt.input)
			vm.SetType(transaction.TypeExpense)

			err := vm.Create(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			state := vm.State()
			assert.Equal(t, tt.wantName, state.Name)
			assert.Equal(t, tt.wantField, state.NameError)
			assert.False(t, state.Loading)

			res, ok := vm.Results().TryNext()
			if tt.wantMsg == "" {
				assert.False(t, ok)
				return
			}

			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, res.Message)
		})
	}
}

func TestCategoryViewModel_CreateReloadsAndResetsType(t *testing.T) {
	store := &fakeCategories{}
	vm := viewmodel.NewCategoryViewModel(store)

	vm.SetName("Transporte")
	vm.SetType(transaction.TypeExpense)
	require.NoError(t, vm.Create(context.Background()))

	require.Len(t, store.custom, 1)
	assert.Equal(t, "Transporte", store.custom[0].Name)
	assert.Equal(t, transaction.TypeExpense, store.custom[0].Type)

	state := vm.State()
	assert.Equal(t, transaction.TypeIncome, state.Type)
	assert.Len(t, state.Expense, 7)
	assert.Equal(t, "Transporte", state.Expense[6].Name)
}

func TestCategoryViewModel_CreateFailureKeepsForm(t *testing.T) {
	vm := viewmodel.NewCategoryViewModel(&fakeCategories{createErr: errors.New("write failed")})

	vm.SetName("Transporte")
	vm.SetType(transaction.TypeExpense)
	require.Error(t, vm.Create(context.Background()))

	state := vm.State()
	assert.Equal(t, "Transporte", state.Name)
	assert.Equal(t, transaction.TypeExpense, state.Type)
}
