package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

var owner = &identity.Session{UserID: "user-1"}

func names(cs []category.Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}

	return out
}

func TestDefaults(t *testing.T) {
	income := category.Defaults(transaction.TypeIncome)
	expense := category.Defaults(transaction.TypeExpense)

	assert.Equal(t, []string{"Ventas", "Servicios", "Otros ingresos"}, names(income))
	assert.Len(t, expense, 6)

	for _, c := range append(income, expense...) {
		assert.True(t, c.Default)
		assert.Empty(t, c.UserID)
	}

	// Callers get copies.
	expense[0].Name = "mutated"
	assert.Equal(t, "Gastos operativos", category.Defaults(transaction.TypeExpense)[0].Name)
}

func TestService_GetAll(t *testing.T) {
	custom := []category.Category{
		{ID: "c1", Name: "Propinas", Type: transaction.TypeIncome, UserID: "user-1"},
		{ID: "c2", Name: "Transporte", Type: transaction.TypeExpense, UserID: "user-1"},
	}

	type testCase struct {
		name      string
		typ       transaction.Type
		setupMock func(r *category.MockRepository, s *category.MockSessions)
		want      []string
	}

	tests := []testCase{
		{
			name: "ExpenseWithCustom",
			typ:  transaction.TypeExpense,
			setupMock: func(r *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(owner, true)
				r.EXPECT().ListByUser(gomock.Any(), "user-1").Return(custom, nil)
			},
			want: []string{
				"Gastos operativos", "Materiales y suministros", "Marketing y publicidad",
				"Servicios públicos", "Alquiler", "Otros gastos", "Transporte",
			},
		},
		{
			name: "IncomeWithCustom",
			typ:  transaction.TypeIncome,
			setupMock: func(r *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(owner, true)
				r.EXPECT().ListByUser(gomock.Any(), "user-1").Return(custom, nil)
			},
			want: []string{"Ventas", "Servicios", "Otros ingresos", "Propinas"},
		},
		{
			name: "RepoFailureKeepsDefaults",
			typ:  transaction.TypeExpense,
			setupMock: func(r *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(owner, true)
				r.EXPECT().ListByUser(gomock.Any(), "user-1").Return(nil, errors.New("offline"))
			},
			want: names(category.Defaults(transaction.TypeExpense)),
		},
		{
			name: "NoSessionKeepsDefaults",
			typ:  transaction.TypeIncome,
			setupMock: func(_ *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(nil, false)
			},
			want: names(category.Defaults(transaction.TypeIncome)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			sessions := category.NewMockSessions(ctrl)
			tt.setupMock(repo, sessions)

			svc := category.NewService(repo, sessions)
			assert.Equal(t, tt.want, names(svc.GetAll(context.Background(), tt.typ)))
		})
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(r *category.MockRepository, s *category.MockSessions)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(r *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(owner, true)
				r.EXPECT().NewID().Return("cat-1")
				r.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "NoSession",
			setupMock: func(_ *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(nil, false)
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			setupMock: func(r *category.MockRepository, s *category.MockSessions) {
				s.EXPECT().CurrentSession(gomock.Any()).Return(owner, true)
				r.EXPECT().NewID().Return("cat-1")
				r.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			sessions := category.NewMockSessions(ctrl)
			tt.setupMock(repo, sessions)

			svc := category.NewService(repo, sessions)
			got, err := svc.Create(context.Background(), category.Category{
				Name:    "Propinas",
				Type:    transaction.TypeIncome,
				Default: true,
				UserID:  "someone-else",
			})

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, &category.Category{
				ID:     "cat-1",
				Name:   "Propinas",
				Type:   transaction.TypeIncome,
				UserID: "user-1",
			}, got)
		})
	}
}
