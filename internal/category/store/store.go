package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/category"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

const collection = "categories"

type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

type record struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default bool   `json:"default"`
	UserID  string `json:"userId"`
}

func (s *Store) NewID() string {
	return s.docs.NewID(collection)
}

func (s *Store) Save(ctx context.Context, c *category.Category) error {
	doc, err := docstore.Encode(record{
		ID:      c.ID,
		Name:    c.Name,
		Type:    string(c.Type),
		Default: c.Default,
		UserID:  c.UserID,
	})
	if err != nil {
		return err
	}

	if err := s.docs.Set(ctx, collection, c.ID, doc); err != nil {
		return fmt.Errorf("saving category: %w", err)
	}

	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]category.Category, error) {
	docs, err := s.docs.Query(ctx, collection, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("userId", userID)},
	})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	out := make([]category.Category, 0, len(docs))

	for _, doc := range docs {
		r := record{Type: string(transaction.TypeIncome)}
		if err := docstore.Decode(doc, &r); err != nil {
			slog.WarnContext(ctx, "skipping undecodable category", "id", doc.String("id"), "error", err)
			continue
		}

		out = append(out, category.Category{
			ID:      r.ID,
			Name:    r.Name,
			Type:    transaction.Type(r.Type),
			Default: r.Default,
			UserID:  r.UserID,
		})
	}

	return out, nil
}
