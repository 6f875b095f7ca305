// Package identity is the port to the authentication backend: account
// creation, sign-in, and the current session.
package identity

import (
	"context"
	"errors"
)

// Error codes reported by providers. They double as keys for errmsg.
const (
	CodeInvalidEmail  = "ERROR_INVALID_EMAIL"
	CodeUserDisabled  = "ERROR_USER_DISABLED"
	CodeUserNotFound  = "ERROR_USER_NOT_FOUND"
	CodeWrongPassword = "ERROR_WRONG_PASSWORD"
	CodeEmailInUse    = "ERROR_EMAIL_ALREADY_IN_USE"
	CodeWeakPassword  = "ERROR_WEAK_PASSWORD"
	CodeNetworkFailed = "ERROR_NETWORK_REQUEST_FAILED"
	CodeNoCurrentUser = "ERROR_NO_CURRENT_USER"
	CodeInvalidToken  = "ERROR_INVALID_TOKEN"
	CodeInternal      = "ERROR_INTERNAL"
)

var ErrNoSession = errors.New("not authenticated")

// Error is a provider failure identified by Code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the provider code carried by err, or "".
func Code(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}

	return ""
}

// Session is an authenticated identity.
type Session struct {
	UserID        string
	Email         string
	Token         string
	EmailVerified bool
}

//go:generate mockgen -source=identity.go -destination=identity_mock.go -package=identity
type Provider interface {
	CreateAccount(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SendPasswordReset(ctx context.Context, email string) error
	SendEmailVerification(ctx context.Context) error
	CurrentSession(ctx context.Context) (*Session, bool)
	SignOut(ctx context.Context) error
	DeleteAccount(ctx context.Context, userID string) error
}

type sessionKey struct{}

// WithSession scopes s to ctx. Providers prefer it over any remembered
// session, which is how per-request identities reach the stores.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
