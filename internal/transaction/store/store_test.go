package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore/memory"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction/store"
)

func day(d int) time.Time {
	return time.Date(2025, 2, d, 12, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, s *store.Store) {
	t.Helper()

	ctx := context.Background()
	rows := []*transaction.Transaction{
		{ID: "t1", BusinessID: "biz-1", UserID: "u1", Type: transaction.TypeIncome, Amount: decimal.RequireFromString("100"), Date: day(1), Active: true},
		{ID: "t2", BusinessID: "biz-1", UserID: "u1", Type: transaction.TypeExpense, Amount: decimal.RequireFromString("30"), Date: day(3), Active: true},
		{ID: "t3", BusinessID: "biz-1", UserID: "u2", Type: transaction.TypeIncome, Amount: decimal.RequireFromString("20"), Date: day(2), Active: true},
		{ID: "t4", BusinessID: "biz-1", UserID: "u1", Type: transaction.TypeIncome, Amount: decimal.RequireFromString("999"), Date: day(4), Active: false},
		{ID: "t5", BusinessID: "biz-2", UserID: "u1", Type: transaction.TypeIncome, Amount: decimal.RequireFromString("5"), Date: day(5), Active: true},
	}

	for _, tx := range rows {
		require.NoError(t, s.Save(ctx, tx))
	}
}

func ids(txs []*transaction.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}

	return out
}

func TestStore_Find(t *testing.T) {
	expense := transaction.TypeExpense

	type testCase struct {
		name    string
		query   transaction.Query
		wantIDs []string
	}

	tests := []testCase{
		{
			name:    "ActiveByBusinessNewestFirst",
			query:   transaction.Query{BusinessID: "biz-1", ActiveOnly: true, NewestFirst: true},
			wantIDs: []string{"t2", "t3", "t1"},
		},
		{
			name:    "AllByBusiness",
			query:   transaction.Query{BusinessID: "biz-1"},
			wantIDs: []string{"t1", "t2", "t3", "t4"},
		},
		{
			name:    "ByUser",
			query:   transaction.Query{UserID: "u1", ActiveOnly: true, NewestFirst: true},
			wantIDs: []string{"t5", "t2", "t1"},
		},
		{
			name:    "ByType",
			query:   transaction.Query{BusinessID: "biz-1", Type: &expense, ActiveOnly: true},
			wantIDs: []string{"t2"},
		},
	}

	s := store.New(memory.New())
	seed(t, s)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Find(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	docs := memory.New()
	s := store.New(docs)
	ctx := context.Background()

	tx := &transaction.Transaction{
		ID:          "t1",
		BusinessID:  "biz-1",
		UserID:      "u1",
		Type:        transaction.TypeExpense,
		Amount:      decimal.RequireFromString("1234.56"),
		Description: "Alquiler de local",
		Category:    "Alquiler",
		Date:        day(7),
		CreatedAt:   day(7),
		UpdatedAt:   day(8),
		Active:      true,
	}

	require.NoError(t, s.Save(ctx, tx))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", got.Amount.String())
	assert.Equal(t, "Alquiler de local", got.Description)
	assert.True(t, got.Date.Equal(tx.Date))
	assert.True(t, got.UpdatedAt.Equal(tx.UpdatedAt))

	raw, err := docs.Get(ctx, "transactions", "t1")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", raw["amount"])
	assert.Equal(t, "EXPENSE", raw["type"])
	assert.Equal(t, float64(day(7).UnixMilli()), raw["date"])
	assert.Equal(t, true, raw["active"])
}

func TestStore_GetDefaultsAndNumericAmount(t *testing.T) {
	docs := memory.New()
	s := store.New(docs)
	ctx := context.Background()

	require.NoError(t, docs.Set(ctx, "transactions", "legacy", docstore.Document{
		"id":     "legacy",
		"amount": 45.5,
	}))

	got, err := s.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "45.5", got.Amount.String())
	assert.Equal(t, transaction.TypeIncome, got.Type)
	assert.True(t, got.Active)
}

func TestStore_GetMissing(t *testing.T) {
	s := store.New(memory.New())

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestStore_Deactivate(t *testing.T) {
	s := store.New(memory.New())
	ctx := context.Background()

	seed(t, s)

	at := day(20)
	require.NoError(t, s.Deactivate(ctx, "t1", at))

	got, err := s.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.True(t, got.UpdatedAt.Equal(at))
	assert.Equal(t, "100", got.Amount.String())

	active, err := s.Find(ctx, transaction.Query{BusinessID: "biz-1", ActiveOnly: true})
	require.NoError(t, err)
	assert.NotContains(t, ids(active), "t1")

	assert.ErrorIs(t, s.Deactivate(ctx, "nope", at), transaction.ErrNotFound)
}

func TestStore_FindSkipsUndecodable(t *testing.T) {
	docs := memory.New()
	s := store.New(docs)
	ctx := context.Background()

	seed(t, s)
	require.NoError(t, docs.Set(ctx, "transactions", "bad", docstore.Document{
		"id":         "bad",
		"businessId": "biz-1",
		"amount":     "not a number",
		"active":     true,
	}))

	got, err := s.Find(ctx, transaction.Query{BusinessID: "biz-1", ActiveOnly: true})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, ids(got))
}
