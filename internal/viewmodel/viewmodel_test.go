package viewmodel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/viewmodel"
)

func TestResults_QueuedUntilConsumed(t *testing.T) {
	fake := &fakeAuth{user: &auth.User{ID: "user-1"}}
	vm := viewmodel.NewAuthViewModel(fake)

	require.NoError(t, vm.ResetPassword(context.Background(), "a@example.com"))
	require.NoError(t, vm.ResetPassword(context.Background(), "b@example.com"))

	q := vm.Results()
	assert.Equal(t, 2, q.Len())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := q.Next(ctx)
	require.NoError(t, err)
	assert.True(t, first.OK())

	_, ok := q.TryNext()
	require.True(t, ok)

	_, ok = q.TryNext()
	assert.False(t, ok, "results are delivered once")
}

func TestResults_NextWaits(t *testing.T) {
	vm := viewmodel.NewTransactionViewModel(&fakeTransactions{deleteErr: transaction.ErrNotFound}, fakeUsers{})

	got := make(chan viewmodel.Result, 1)

	go func() {
		r, err := vm.Results().Next(context.Background())
		if err == nil {
			got <- r
		}
	}()

	require.Error(t, vm.Delete(context.Background(), "missing"))

	select {
	case r := <-got:
		assert.True(t, errors.Is(r.Err, transaction.ErrNotFound))
		assert.Equal(t, "Transacción no encontrada", r.Message)
	case <-time.After(time.Second):
		t.Fatal("result not delivered")
	}
}

func TestResults_NextHonorsContext(t *testing.T) {
	vm := viewmodel.NewCategoryViewModel(&fakeCategories{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := vm.Results().Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
