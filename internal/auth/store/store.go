package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/auth"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
)

const (
	usersCollection      = "users"
	businessesCollection = "businesses"
)

type Store struct {
	docs docstore.Store
	now  func() time.Time
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs, now: time.Now}
}

type userDoc struct {
	UID        string `json:"uid"`
	Email      string `json:"email"`
	BusinessID string `json:"businessId"`
	Role       string `json:"role"`
	CreatedAt  int64  `json:"createdAt"`
	Active     bool   `json:"active"`
}

type businessDoc struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessType string `json:"businessType"`
	RUC          string `json:"ruc"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	OwnerID      string `json:"ownerId"`
	CreatedAt    int64  `json:"createdAt"`
	Active       bool   `json:"active"`
}

func (s *Store) NewBusinessID() string {
	return s.docs.NewID(businessesCollection)
}

func (s *Store) CreateBusiness(ctx context.Context, b *auth.Business) error {
	doc, err := docstore.Encode(businessDoc{
		ID:           b.ID,
		Name:         b.Name,
		BusinessType: b.Type,
		RUC:          b.TaxID,
		Address:      b.Address,
		Phone:        b.Phone,
		OwnerID:      b.OwnerID,
		CreatedAt:    b.CreatedAt.UnixMilli(),
		Active:       b.Active,
	})
	if err != nil {
		return err
	}

	if err := s.docs.Set(ctx, businessesCollection, b.ID, doc); err != nil {
		return fmt.Errorf("creating business: %w", err)
	}

	return nil
}

func (s *Store) DeleteBusiness(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, businessesCollection, id); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("deleting business: %w", err)
	}

	return nil
}

func (s *Store) SaveUser(ctx context.Context, u *auth.User) error {
	doc, err := docstore.Encode(userDoc{
		UID:        u.ID,
		Email:      u.Email,
		BusinessID: u.BusinessID,
		Role:       string(u.Role),
		CreatedAt:  u.CreatedAt.UnixMilli(),
		Active:     u.Active,
	})
	if err != nil {
		return err
	}

	if err := s.docs.Set(ctx, usersCollection, u.ID, doc); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, usersCollection, id); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// GetUser returns auth.ErrProfileNotFound for a missing profile and
// *auth.MalformedProfileError for one that does not decode.
func (s *Store) GetUser(ctx context.Context, id string) (*auth.User, error) {
	doc, err := s.docs.Get(ctx, usersCollection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, auth.ErrProfileNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	d := userDoc{
		UID:       id,
		Role:      string(auth.RoleOwner),
		CreatedAt: s.now().UnixMilli(),
		Active:    true,
	}

	if err := docstore.Decode(doc, &d); err != nil {
		return nil, &auth.MalformedProfileError{BusinessID: doc.String("businessId"), Err: err}
	}

	role := auth.Role(d.Role)
	if !role.Valid() {
		return nil, &auth.MalformedProfileError{
			BusinessID: d.BusinessID,
			Err:        fmt.Errorf("unknown role %q", d.Role),
		}
	}

	return &auth.User{
		ID:         d.UID,
		Email:      d.Email,
		BusinessID: d.BusinessID,
		Role:       role,
		CreatedAt:  time.UnixMilli(d.CreatedAt),
		Active:     d.Active,
	}, nil
}
