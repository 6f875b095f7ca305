package viewmodel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

type fakeAuth struct {
	user     *auth.User
	err      error
	logins   int
	drafts   []auth.Business
	resetFor []string
}

func (f *fakeAuth) Login(context.Context, string, string) (*auth.User, error) {
	f.logins++
	return f.user, f.err
}

func (f *fakeAuth) Register(_ context.Context, _, _ string, draft auth.Business) (*auth.User, error) {
	f.drafts = append(f.drafts, draft)
	return f.user, f.err
}

func (f *fakeAuth) ResetPassword(_ context.Context, email string) (*auth.User, error) {
	f.resetFor = append(f.resetFor, email)
	if f.err != nil {
		return nil, f.err
	}

	return &auth.User{}, nil
}

func TestAuthViewModel_Login(t *testing.T) {
	type testCase struct {
		name       string
		email      string
		password   string
		authErr    error
		wantErr    error
		wantStatus viewmodel.Status
		wantFields viewmodel.AuthErrors
		wantCalls  int
	}

	tests := []testCase{
		{
			name:       "Success",
			email:      " ana@example.com ",
			password:   "secret1",
			wantStatus: viewmodel.StatusSucceeded,
			wantFields: viewmodel.AuthErrors{},
			wantCalls:  1,
		},
		{
			name:       "InvalidFields",
			email:      "not-an-email",
			password:   "123",
			wantErr:    viewmodel.ErrInvalidForm,
			wantStatus: viewmodel.StatusIdle,
			wantFields: viewmodel.AuthErrors{
				"email":    "Formato de email inválido",
				"password": "La contraseña debe tener al menos 6 caracteres",
			},
		},
		{
			name:       "WrongPassword",
			email:      "ana@example.com",
			password:   "secret1",
			authErr:    &auth.Error{Message: "Contraseña incorrecta"},
			wantStatus: viewmodel.StatusFailed,
			wantFields: viewmodel.AuthErrors{},
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAuth{user: &auth.User{ID: "user-1"}, err: tt.authErr}
			vm := viewmodel.NewAuthViewModel(fake)

			err := vm.Login(context.Background(), tt.email, tt.password)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.authErr != nil:
				require.ErrorIs(t, err, tt.authErr)
			default:
				require.NoError(t, err)
			}

			state := vm.State()
			assert.Equal(t, tt.wantStatus, state.Status)
			assert.Equal(t, tt.wantFields, state.Errors)
			assert.Equal(t, tt.wantCalls, fake.logins)

			if tt.authErr != nil {
				assert.Equal(t, "Contraseña incorrecta", state.Message)
				assert.Nil(t, state.User)
			}

			if tt.wantStatus == viewmodel.StatusSucceeded {
				assert.Equal(t, "user-1", state.User.ID)
			}
		})
	}
}

func TestAuthViewModel_Register(t *testing.T) {
	valid := viewmodel.RegisterForm{
		Email:        "ana@example.com",
		Password:     "secret1",
		Confirm:      "secret1",
		BusinessName: " Bodega Ana ",
		Phone:        "987654321",
	}

	t.Run("Success", func(t *testing.T) {
		fake := &fakeAuth{user: &auth.User{ID: "user-1", BusinessID: "biz-1"}}
		vm := viewmodel.NewAuthViewModel(fake)

		require.NoError(t, vm.Register(context.Background(), valid))

		require.Len(t, fake.drafts, 1)
		assert.Equal(t, "Bodega Ana", fake.drafts[0].Name)
		assert.Equal(t, "General", fake.drafts[0].Type)
		assert.Equal(t, "987654321", fake.drafts[0].Phone)
		assert.Equal(t, viewmodel.StatusSucceeded, vm.State().Status)

		res, ok := vm.Results().TryNext()
		require.True(t, ok)
		assert.True(t, res.OK())
	})

	t.Run("InvalidFields", func(t *testing.T) {
		fake := &fakeAuth{}
		vm := viewmodel.NewAuthViewModel(fake)

		form := valid
		form.Confirm = "other"
		form.BusinessName = "A"
		form.TaxID = "123"
		form.Phone = "98765abcd"

		require.ErrorIs(t, vm.Register(context.Background(), form), viewmodel.ErrInvalidForm)
		assert.Empty(t, fake.drafts)
		assert.Equal(t, viewmodel.AuthErrors{
			"confirm":      "Las contraseñas no coinciden",
			"businessName": "El nombre debe tener al menos 2 caracteres",
			"taxId":        "El RUC debe tener 11 dígitos",
			"phone":        "El teléfono debe contener solo números",
		}, vm.State().Errors)
	})
}

func TestAuthViewModel_ResetPasswordKeepsStatus(t *testing.T) {
	fake := &fakeAuth{user: &auth.User{ID: "user-1"}}
	vm := viewmodel.NewAuthViewModel(fake)

	require.NoError(t, vm.Login(context.Background(), "ana@example.com", "secret1"))
	_, _ = vm.Results().TryNext()

	require.NoError(t, vm.ResetPassword(context.Background(), "ana@example.com"))
	assert.Equal(t, viewmodel.StatusSucceeded, vm.State().Status)
	assert.Equal(t, []string{"ana@example.com"}, fake.resetFor)

	res, ok := vm.Results().TryNext()
	require.True(t, ok)
	assert.True(t, res.OK())

	require.ErrorIs(t, vm.ResetPassword(context.Background(), ""), viewmodel.ErrInvalidForm)
	assert.Equal(t, "El email es requerido", vm.State().Errors["email"])
	assert.Len(t, fake.resetFor, 1)
}

func TestAuthViewModel_Reset(t *testing.T) {
	vm := viewmodel.NewAuthViewModel(&fakeAuth{err: &auth.Error{Message: "Usuario no encontrado"}})

	require.Error(t, vm.Login(context.Background(), "ana@example.com", "secret1"))
	assert.Equal(t, viewmodel.StatusFailed, vm.State().Status)

	vm.Reset()

	state := vm.State()
	assert.Equal(t, viewmodel.StatusIdle, state.Status)
	assert.Empty(t, state.Message)
	assert.Equal(t, "idle", state.Status.String())
}
