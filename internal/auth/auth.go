// Package auth registers and signs in business owners and resolves the
// profile behind the current session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Role string

const (
	RoleOwner      Role = "OWNER"
	RoleEmployee   Role = "EMPLOYEE"
	RoleAccountant Role = "ACCOUNTANT"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEmployee, RoleAccountant:
		return true
	}

	return false
}

// User is the profile stored for an identity. BusinessID may be empty.
type User struct {
	ID         string
	Email      string
	BusinessID string
	Role       Role
	CreatedAt  time.Time
	Active     bool
}

type Business struct {
	ID        string
	Name      string
	Type      string
	TaxID     string
	Address   string
	Phone     string
	OwnerID   string
	CreatedAt time.Time
	Active    bool
}

var ErrProfileNotFound = errors.New("profile not found")

// MalformedProfileError is returned when a stored profile exists but cannot
// be decoded. BusinessID holds whatever could still be read from it.
type MalformedProfileError struct {
	BusinessID string
	Err        error
}

func (e *MalformedProfileError) Error() string {
	return fmt.Sprintf("malformed profile: %v", e.Err)
}

func (e *MalformedProfileError) Unwrap() error {
	return e.Err
}

// Error is a failed gateway operation. Message is ready to show to users.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

//go:generate mockgen -source=auth.go -destination=repository_mock.go -package=auth
type Repository interface {
	NewBusinessID() string
	CreateBusiness(ctx context.Context, b *Business) error
	DeleteBusiness(ctx context.Context, id string) error
	SaveUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*User, error)
}
