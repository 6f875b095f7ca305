package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	NewID() string
	Save(ctx context.Context, c *Category) error
	ListByUser(ctx context.Context, userID string) ([]Category, error)
}

type Sessions interface {
	CurrentSession(ctx context.Context) (*identity.Session, bool)
}

type Service struct {
	repo     Repository
	sessions Sessions
}

func NewService(repo Repository, sessions Sessions) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// GetAll returns the defaults for t followed by the current user's own
// categories of that type. Without a session, or when the user's
// categories cannot be read, only the defaults come back.
func (s *Service) GetAll(ctx context.Context, t transaction.Type) []Category {
	all := Defaults(t)

	sess, ok := s.sessions.CurrentSession(ctx)
	if !ok {
		return all
	}

	custom, err := s.repo.ListByUser(ctx, sess.UserID)
	if err != nil {
		slog.WarnContext(ctx, "list custom categories failed", "user_id", sess.UserID, "error", err)
		return all
	}

	for _, c := range custom {
		if c.Type == t {
			all = append(all, c)
		}
	}

	return all
}

// Create stores draft as a custom category of the current user.
func (s *Service) Create(ctx context.Context, draft Category) (*Category, error) {
	sess, ok := s.sessions.CurrentSession(ctx)
	if !ok {
		return nil, identity.ErrNoSession
	}

	c := draft
	c.ID = s.repo.NewID()
	c.UserID = sess.UserID
	c.Default = false

	if err := s.repo.Save(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	return &c, nil
}
