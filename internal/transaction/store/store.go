package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

const collection = "transactions"

type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

// record is the stored shape. Times are Unix milliseconds.
type record struct {
	ID          string          `json:"id"`
	BusinessID  string          `json:"businessId"`
	UserID      string          `json:"userId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        int64           `json:"date"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
	Active      bool            `json:"active"`
}

func toRecord(tx *transaction.Transaction) record {
	return record{
		ID:          tx.ID,
		BusinessID:  tx.BusinessID,
		UserID:      tx.UserID,
		Type:        string(tx.Type),
		Amount:      tx.Amount,
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date.UnixMilli(),
		CreatedAt:   tx.CreatedAt.UnixMilli(),
		UpdatedAt:   tx.UpdatedAt.UnixMilli(),
		Active:      tx.Active,
	}
}

// fromDocument decodes over the record defaults so absent fields keep them.
func fromDocument(doc docstore.Document) (*transaction.Transaction, error) {
	r := toRecord(transaction.New())
	if err := docstore.Decode(doc, &r); err != nil {
		return nil, err
	}

	return &transaction.Transaction{
		ID:          r.ID,
		BusinessID:  r.BusinessID,
		UserID:      r.UserID,
		Type:        transaction.Type(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Category:    r.Category,
		Date:        time.UnixMilli(r.Date),
		CreatedAt:   time.UnixMilli(r.CreatedAt),
		UpdatedAt:   time.UnixMilli(r.UpdatedAt),
		Active:      r.Active,
	}, nil
}

func (s *Store) NewID() string {
	return s.docs.NewID(collection)
}

func (s *Store) Save(ctx context.Context, tx *transaction.Transaction) error {
	doc, err := docstore.Encode(toRecord(tx))
	if err != nil {
		return err
	}

	if err := s.docs.Set(ctx, collection, tx.ID, doc); err != nil {
		return fmt.Errorf("saving transaction: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*transaction.Transaction, error) {
	doc, err := s.docs.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	tx, err := fromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) Deactivate(ctx context.Context, id string, at time.Time) error {
	err := s.docs.Update(ctx, collection, id, docstore.Document{
		"active":    false,
		"updatedAt": at.UnixMilli(),
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("deactivating transaction: %w", err)
	}

	return nil
}

// Find skips documents that do not decode.
func (s *Store) Find(ctx context.Context, q transaction.Query) ([]*transaction.Transaction, error) {
	var dq docstore.Query

	if q.BusinessID != "" {
		dq.Filters = append(dq.Filters, docstore.Eq("businessId", q.BusinessID))
	}

	if q.UserID != "" {
		dq.Filters = append(dq.Filters, docstore.Eq("userId", q.UserID))
	}

	if q.Type != nil {
		dq.Filters = append(dq.Filters, docstore.Eq("type", string(*q.Type)))
	}

	if q.ActiveOnly {
		dq.Filters = append(dq.Filters, docstore.Eq("active", true))
	}

	if q.NewestFirst {
		dq.OrderBy = &docstore.Order{Field: "date", Direction: docstore.Descending}
	}

	docs, err := s.docs.Query(ctx, collection, dq)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	txs := make([]*transaction.Transaction, 0, len(docs))

	for _, doc := range docs {
		tx, err := fromDocument(doc)
		if err != nil {
			slog.WarnContext(ctx, "skipping undecodable transaction", "id", doc.String("id"), "error", err)
			continue
		}

		txs = append(txs, tx)
	}

	return txs, nil
}
