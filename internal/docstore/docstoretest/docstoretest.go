// Package docstoretest is a behavioural suite every docstore.Store adapter
// must pass.
package docstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
)

// Run exercises store. newStore must return an empty store on every call.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Helper()

	t.Run("NewIDDistinct", func(t *testing.T) {
		s := newStore(t)
		seen := make(map[string]struct{})

		for range 100 {
			id := s.NewID("things")
			require.NotEmpty(t, id)

			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)

			seen[id] = struct{}{}
		}
	})

	t.Run("SetGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{
			"name":   "first",
			"count":  3,
			"active": true,
		}))

		got, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "first", got["name"])
		assert.Equal(t, float64(3), got["count"])
		assert.Equal(t, true, got["active"])
	})

	t.Run("SetReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"name": "first", "extra": "x"}))
		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"name": "second"}))

		got, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "second", got["name"])
		assert.NotContains(t, got, "extra")
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(context.Background(), "things", "missing")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("CollectionsAreSeparate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"name": "thing"}))

		_, err := s.Get(ctx, "others", "a")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("UpdateMerges", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"name": "first", "active": true}))
		require.NoError(t, s.Update(ctx, "things", "a", docstore.Document{"active": false, "updatedAt": 42}))

		got, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "first", got["name"])
		assert.Equal(t, false, got["active"])
		assert.Equal(t, float64(42), got["updatedAt"])
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)

		err := s.Update(context.Background(), "things", "missing", docstore.Document{"active": false})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"name": "first"}))
		require.NoError(t, s.Delete(ctx, "things", "a"))

		_, err := s.Get(ctx, "things", "a")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		assert.ErrorIs(t, s.Delete(ctx, "things", "a"), docstore.ErrNotFound)
	})

	t.Run("QueryFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seed(t, s)

		got, err := s.Query(ctx, "things", docstore.Query{
			Filters: []docstore.Filter{
				docstore.Eq("owner", "u1"),
				docstore.Eq("active", true),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, ids(got))

		got, err = s.Query(ctx, "things", docstore.Query{
			Filters: []docstore.Filter{docstore.Eq("owner", "nobody")},
		})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("QueryOrdersByField", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seed(t, s)

		got, err := s.Query(ctx, "things", docstore.Query{
			Filters: []docstore.Filter{docstore.Eq("owner", "u1")},
			OrderBy: &docstore.Order{Field: "date", Direction: docstore.Descending},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, ids(got))

		got, err = s.Query(ctx, "things", docstore.Query{
			OrderBy: &docstore.Order{Field: "date", Direction: docstore.Ascending},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "a", "b", "c"}, ids(got))
	})

	t.Run("QueryDefaultOrderIsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seed(t, s)

		got, err := s.Query(ctx, "things", docstore.Query{})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(got))
	})

	t.Run("QueryRejectsBadField", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Query(context.Background(), "things", docstore.Query{
			Filters: []docstore.Filter{docstore.Eq("owner'; DROP", "x")},
		})
		assert.ErrorIs(t, err, docstore.ErrInvalidField)
	})
}

func seed(t *testing.T, s docstore.Store) {
	t.Helper()

	ctx := context.Background()
	docs := map[string]docstore.Document{
		"a": {"id": "a", "owner": "u1", "active": true, "date": 2000},
		"b": {"id": "b", "owner": "u1", "active": false, "date": 3000},
		"c": {"id": "c", "owner": "u1", "active": true, "date": 4000},
		"d": {"id": "d", "owner": "u2", "active": true, "date": 1000},
	}

	for id, doc := range docs {
		require.NoError(t, s.Set(ctx, "things", id, doc))
	}
}

func ids(docs []docstore.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.String("id")
	}

	return out
}
