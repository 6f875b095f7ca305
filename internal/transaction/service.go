package transaction

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	NewID() string
	// Save writes tx in full, replacing any stored version.
	Save(ctx context.Context, tx *Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	Deactivate(ctx context.Context, id string, at time.Time) error
	Find(ctx context.Context, q Query) ([]*Transaction, error)
}

type Sessions interface {
	CurrentSession(ctx context.Context) (*identity.Session, bool)
}

// Query selects transactions by equality on the set fields.
type Query struct {
	BusinessID  string
	UserID      string
	Type        *Type
	ActiveOnly  bool
	NewestFirst bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

type Service struct {
	repo     Repository
	sessions Sessions
	now      func() time.Time
}

func NewService(repo Repository, sessions Sessions, opts ...Option) *Service {
	s := &Service{repo: repo, sessions: sessions, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create stores tx under the current user and returns its new id. On
// success tx holds the stored record.
func (s *Service) Create(ctx context.Context, tx *Transaction) (string, error) {
	sess, ok := s.sessions.CurrentSession(ctx)
	if !ok {
		return "", identity.ErrNoSession
	}

	if err := check(tx); err != nil {
		return "", err
	}

	now := s.now()

	stored := *tx
	stored.ID = s.repo.NewID()
	stored.UserID = sess.UserID
	stored.Active = true
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if err := s.repo.Save(ctx, &stored); err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	*tx = stored

	return stored.ID, nil
}

// Update replaces an active transaction owned by the current user.
func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	sess, ok := s.sessions.CurrentSession(ctx)
	if !ok {
		return identity.ErrNoSession
	}

	if tx.UserID != sess.UserID {
		return ErrPermissionDenied
	}

	if err := check(tx); err != nil {
		return err
	}

	stored, err := s.owned(ctx, tx.ID, sess.UserID)
	if err != nil {
		return err
	}

	updated := *tx
	updated.CreatedAt = stored.CreatedAt
	updated.Active = true
	updated.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, &updated); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	*tx = updated

	return nil
}

// SoftDelete marks a transaction inactive. Deleted transactions stay
// readable by id but drop out of listings and balances.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	sess, ok := s.sessions.CurrentSession(ctx)
	if !ok {
		return identity.ErrNoSession
	}

	if _, err := s.owned(ctx, id, sess.UserID); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, id, s.now()); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	return nil
}

// GetByID never fails: any error yields a default transaction with an
// empty ID.
func (s *Service) GetByID(ctx context.Context, id string) *Transaction {
	tx, err := s.repo.Get(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "get transaction failed", "id", id, "error", err)
		return New()
	}

	return tx
}

// ListByBusiness yields the active transactions of a business, newest
// first, as a single list.
func (s *Service) ListByBusiness(ctx context.Context, businessID string) iter.Seq[[]*Transaction] {
	return s.list(ctx, Query{BusinessID: businessID, ActiveOnly: true, NewestFirst: true})
}

// ListByUser yields nothing but an empty list unless userID is the
// current user.
func (s *Service) ListByUser(ctx context.Context, userID string) iter.Seq[[]*Transaction] {
	return func(yield func([]*Transaction) bool) {
		sess, ok := s.sessions.CurrentSession(ctx)
		if !ok || sess.UserID != userID {
			yield([]*Transaction{})
			return
		}

		yield(s.find(ctx, Query{UserID: userID, ActiveOnly: true, NewestFirst: true}))
	}
}

func (s *Service) ListByType(ctx context.Context, businessID string, t Type) iter.Seq[[]*Transaction] {
	return s.list(ctx, Query{BusinessID: businessID, Type: &t, ActiveOnly: true, NewestFirst: true})
}

// ListByBusinessOnce fetches every transaction of a business and filters
// and orders them in process.
func (s *Service) ListByBusinessOnce(ctx context.Context, businessID string) []*Transaction {
	if _, ok := s.sessions.CurrentSession(ctx); !ok {
		return []*Transaction{}
	}

	all := s.find(ctx, Query{BusinessID: businessID})

	active := make([]*Transaction, 0, len(all))
	for _, tx := range all {
		if tx.Active {
			active = append(active, tx)
		}
	}

	slices.SortStableFunc(active, func(a, b *Transaction) int {
		return cmp.Compare(b.Date.UnixMilli(), a.Date.UnixMilli())
	})

	return active
}

func (s *Service) GetBalance(ctx context.Context, businessID string) (decimal.Decimal, error) {
	if _, ok := s.sessions.CurrentSession(ctx); !ok {
		return decimal.Zero, identity.ErrNoSession
	}

	txs, err := s.repo.Find(ctx, Query{BusinessID: businessID, ActiveOnly: true})
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return Balance(txs), nil
}

// First returns the single list a listing yields.
func First(seq iter.Seq[[]*Transaction]) []*Transaction {
	for txs := range seq {
		return txs
	}

	return []*Transaction{}
}

func (s *Service) list(ctx context.Context, q Query) iter.Seq[[]*Transaction] {
	return func(yield func([]*Transaction) bool) {
		if _, ok := s.sessions.CurrentSession(ctx); !ok {
			yield([]*Transaction{})
			return
		}

		yield(s.find(ctx, q))
	}
}

func (s *Service) find(ctx context.Context, q Query) []*Transaction {
	txs, err := s.repo.Find(ctx, q)
	if err != nil {
		slog.WarnContext(ctx, "list transactions failed", "business_id", q.BusinessID, "user_id", q.UserID, "error", err)
		return []*Transaction{}
	}

	if txs == nil {
		return []*Transaction{}
	}

	return txs
}

func (s *Service) owned(ctx context.Context, id, userID string) (*Transaction, error) {
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get transaction: %w", err)
	}

	if stored.UserID != userID {
		return nil, ErrPermissionDenied
	}

	if !stored.Active {
		return nil, ErrDeleted
	}

	return stored, nil
}

func check(tx *Transaction) error {
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !tx.Type.Valid() {
		return ErrInvalidType
	}

	return nil
}
