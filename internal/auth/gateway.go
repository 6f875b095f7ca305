package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/errmsg"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
)

var errNoSession = errors.New("provider returned no session")

type Options struct {
	// DegradedProfiles lets a signed-in identity whose profile is missing or
	// unreadable through as a minimal OWNER user instead of failing.
	DegradedProfiles bool
	Now              func() time.Time
}

type Gateway struct {
	provider identity.Provider
	repo     Repository
	opts     Options
}

func NewGateway(provider identity.Provider, repo Repository, opts Options) *Gateway {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Gateway{provider: provider, repo: repo, opts: opts}
}

func (g *Gateway) Register(ctx context.Context, email, password string, draft Business) (*User, error) {
	u, _, err := g.RegisterWithSession(ctx, email, password, draft)
	return u, err
}

// RegisterWithSession creates the identity, its business and its profile,
// then sends the verification mail. A failing step undoes the earlier ones.
func (g *Gateway) RegisterWithSession(ctx context.Context, email, password string, draft Business) (*User, *identity.Session, error) {
	var undo compensations

	sess, err := g.provider.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, nil, fail(err)
	}

	if sess == nil {
		return nil, nil, fail(errNoSession)
	}

	undo.add("sign out", g.provider.SignOut)
	undo.add("delete account", func(ctx context.Context) error {
		return g.provider.DeleteAccount(ctx, sess.UserID)
	})

	ctx = identity.WithSession(ctx, sess)
	now := g.opts.Now()

	business := draft
	business.ID = g.repo.NewBusinessID()
	business.OwnerID = sess.UserID
	business.CreatedAt = now
	business.Active = true

	if err := g.repo.CreateBusiness(ctx, &business); err != nil {
		undo.run(ctx)
		return nil, nil, fail(err)
	}

	undo.add("delete business", func(ctx context.Context) error {
		return g.repo.DeleteBusiness(ctx, business.ID)
	})

	user := &User{
		ID:         sess.UserID,
		Email:      sessionEmail(sess, email),
		BusinessID: business.ID,
		Role:       RoleOwner,
		CreatedAt:  now,
		Active:     true,
	}

	if err := g.repo.SaveUser(ctx, user); err != nil {
		undo.run(ctx)
		return nil, nil, fail(err)
	}

	undo.add("delete user", func(ctx context.Context) error {
		return g.repo.DeleteUser(ctx, user.ID)
	})

	if err := g.provider.SendEmailVerification(ctx); err != nil {
		undo.run(ctx)
		return nil, nil, fail(err)
	}

	return user, sess, nil
}

func (g *Gateway) Login(ctx context.Context, email, password string) (*User, error) {
	u, _, err := g.LoginWithSession(ctx, email, password)
	return u, err
}

func (g *Gateway) LoginWithSession(ctx context.Context, email, password string) (*User, *identity.Session, error) {
	sess, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, nil, fail(err)
	}

	if sess == nil {
		return nil, nil, fail(errNoSession)
	}

	ctx = identity.WithSession(ctx, sess)

	user, err := g.repo.GetUser(ctx, sess.UserID)
	if err == nil {
		return user, sess, nil
	}

	var malformed *MalformedProfileError

	// Lookup failures other than a missing or unreadable profile fail the
	// login regardless of policy.
	if !errors.Is(err, ErrProfileNotFound) && !errors.As(err, &malformed) {
		g.signOutQuietly(ctx)
		return nil, nil, fail(err)
	}

	if !g.opts.DegradedProfiles {
		g.signOutQuietly(ctx)
		return nil, nil, fail(err)
	}

	slog.WarnContext(ctx, "using degraded profile", "user_id", sess.UserID, "error", err)

	return g.degraded(sess, email, err), sess, nil
}

// ResetPassword sends a reset mail. Success carries an empty user.
func (g *Gateway) ResetPassword(ctx context.Context, email string) (*User, error) {
	if err := g.provider.SendPasswordReset(ctx, email); err != nil {
		return nil, fail(err)
	}

	return &User{}, nil
}

func (g *Gateway) IsLoggedIn(ctx context.Context) bool {
	_, ok := g.provider.CurrentSession(ctx)
	return ok
}

// CurrentUser returns nil, nil when nobody is signed in.
func (g *Gateway) CurrentUser(ctx context.Context) (*User, error) {
	sess, ok := g.provider.CurrentSession(ctx)
	if !ok {
		return nil, nil
	}

	user, err := g.repo.GetUser(ctx, sess.UserID)
	if err == nil {
		return user, nil
	}

	if !g.opts.DegradedProfiles {
		return nil, fail(err)
	}

	slog.WarnContext(ctx, "using degraded profile", "user_id", sess.UserID, "error", err)

	return g.degraded(sess, "", err), nil
}

func (g *Gateway) CurrentSession(ctx context.Context) (*identity.Session, bool) {
	return g.provider.CurrentSession(ctx)
}

func (g *Gateway) SignOut(ctx context.Context) error {
	if err := g.provider.SignOut(ctx); err != nil {
		return fail(err)
	}

	return nil
}

func (g *Gateway) degraded(sess *identity.Session, email string, cause error) *User {
	u := &User{
		ID:        sess.UserID,
		Email:     sessionEmail(sess, email),
		Role:      RoleOwner,
		CreatedAt: g.opts.Now(),
		Active:    true,
	}

	var malformed *MalformedProfileError
	if errors.As(cause, &malformed) {
		u.BusinessID = malformed.BusinessID
	}

	return u
}

func (g *Gateway) signOutQuietly(ctx context.Context) {
	if err := g.provider.SignOut(ctx); err != nil {
		slog.WarnContext(ctx, "sign out failed", "error", err)
	}
}

func sessionEmail(sess *identity.Session, fallback string) string {
	if sess.Email != "" {
		return sess.Email
	}

	return fallback
}

// fail wraps err with its user-facing message. Provider codes take priority
// over the error text.
func fail(err error) *Error {
	if code := identity.Code(err); code != "" {
		return &Error{Message: errmsg.Translate(code), Err: err}
	}

	return &Error{Message: errmsg.Translate(err.Error()), Err: err}
}
