// Package local is an identity.Provider backed by the document store:
// bcrypt password hashes and HS256 JWTs for sessions, password resets and
// email verification.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/mail"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/validation"
)

const (
	collection     = "accounts"
	minPasswordLen = 6

	purposeSession = "session"
	purposeReset   = "reset"
	purposeVerify  = "verify"
)

type Options struct {
	Secret   []byte
	TokenTTL time.Duration
	ResetTTL time.Duration
	// RememberSession keeps the last signed-in session for callers that
	// carry none in their context. Single-user clients turn it on; servers
	// must not.
	RememberSession bool
	Now             func() time.Time
}

type Provider struct {
	store  docstore.Store
	mailer mail.Mailer
	opts   Options

	mu      sync.Mutex
	current *identity.Session

	// signup holds the email uniqueness check and the insert together.
	signup sync.Mutex
}

func New(store docstore.Store, mailer mail.Mailer, opts Options) *Provider {
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}

	if opts.ResetTTL == 0 {
		opts.ResetTTL = time.Hour
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Provider{store: store, mailer: mailer, opts: opts}
}

type account struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	PasswordHash  string `json:"passwordHash"`
	EmailVerified bool   `json:"emailVerified"`
	Disabled      bool   `json:"disabled"`
	CreatedAt     int64  `json:"createdAt"`
}

type claims struct {
	Email         string `json:"email"`
	Purpose       string `json:"purpose"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	jwt.RegisteredClaims
}

func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*identity.Session, error) {
	email = normalize(email)

	if !validation.Email(email).Valid {
		return nil, &identity.Error{Code: identity.CodeInvalidEmail}
	}

	if len(password) < minPasswordLen {
		return nil, &identity.Error{Code: identity.CodeWeakPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &identity.Error{Code: identity.CodeInternal, Err: fmt.Errorf("hashing password: %w", err)}
	}

	acc := account{
		UID:          p.store.NewID(collection),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.opts.Now().UnixMilli(),
	}

	p.signup.Lock()
	defer p.signup.Unlock()

	existing, err := p.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, &identity.Error{Code: identity.CodeEmailInUse}
	}

	if err := p.save(ctx, acc); err != nil {
		return nil, err
	}

	return p.startSession(acc)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	acc, err := p.findByEmail(ctx, normalize(email))
	if err != nil {
		return nil, err
	}

	if acc == nil {
		return nil, &identity.Error{Code: identity.CodeUserNotFound}
	}

	if acc.Disabled {
		return nil, &identity.Error{Code: identity.CodeUserDisabled}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, &identity.Error{Code: identity.CodeWrongPassword}
	}

	return p.startSession(*acc)
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	email = normalize(email)

	if !validation.Email(email).Valid {
		return &identity.Error{Code: identity.CodeInvalidEmail}
	}

	acc, err := p.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if acc == nil {
		return &identity.Error{Code: identity.CodeUserNotFound}
	}

	token, err := p.sign(*acc, purposeReset, p.opts.ResetTTL)
	if err != nil {
		return err
	}

	return p.deliver(ctx, mail.KindPasswordReset, acc.Email, token)
}

func (p *Provider) SendEmailVerification(ctx context.Context) error {
	s, ok := p.CurrentSession(ctx)
	if !ok {
		return &identity.Error{Code: identity.CodeNoCurrentUser}
	}

	acc, err := p.load(ctx, s.UserID)
	if err != nil {
		return err
	}

	token, err := p.sign(*acc, purposeVerify, p.opts.ResetTTL)
	if err != nil {
		return err
	}

	return p.deliver(ctx, mail.KindVerifyEmail, acc.Email, token)
}

func (p *Provider) CurrentSession(ctx context.Context) (*identity.Session, bool) {
	if s, ok := identity.SessionFromContext(ctx); ok {
		return s, true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current, p.current != nil
}

func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	return nil
}

func (p *Provider) DeleteAccount(ctx context.Context, userID string) error {
	if err := p.store.Delete(ctx, collection, userID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return storageError("deleting account", err)
	}

	p.mu.Lock()
	if p.current != nil && p.current.UserID == userID {
		p.current = nil
	}
	p.mu.Unlock()

	return nil
}

// Verify checks a session token and returns the session it carries.
func (p *Provider) Verify(token string) (*identity.Session, error) {
	c, err := p.parse(token, purposeSession)
	if err != nil {
		return nil, err
	}

	return &identity.Session{
		UserID:        c.Subject,
		Email:         c.Email,
		Token:         token,
		EmailVerified: c.EmailVerified,
	}, nil
}

// ConfirmPasswordReset sets a new password using a token from a reset mail.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	c, err := p.parse(token, purposeReset)
	if err != nil {
		return err
	}

	if len(password) < minPasswordLen {
		return &identity.Error{Code: identity.CodeWeakPassword}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return &identity.Error{Code: identity.CodeInternal, Err: fmt.Errorf("hashing password: %w", err)}
	}

	return p.patch(ctx, c.Subject, docstore.Document{"passwordHash": string(hash)})
}

// VerifyEmail marks the account named by a verification token as verified.
func (p *Provider) VerifyEmail(ctx context.Context, token string) error {
	c, err := p.parse(token, purposeVerify)
	if err != nil {
		return err
	}

	if err := p.patch(ctx, c.Subject, docstore.Document{"emailVerified": true}); err != nil {
		return err
	}

	p.mu.Lock()
	if p.current != nil && p.current.UserID == c.Subject {
		verified := *p.current
		verified.EmailVerified = true
		p.current = &verified
	}
	p.mu.Unlock()

	return nil
}

func (p *Provider) startSession(acc account) (*identity.Session, error) {
	token, err := p.sign(acc, purposeSession, p.opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	s := &identity.Session{
		UserID:        acc.UID,
		Email:         acc.Email,
		Token:         token,
		EmailVerified: acc.EmailVerified,
	}

	if p.opts.RememberSession {
		p.mu.Lock()
		p.current = s
		p.mu.Unlock()
	}

	return s, nil
}

func (p *Provider) sign(acc account, purpose string, ttl time.Duration) (string, error) {
	now := p.opts.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:         acc.Email,
		Purpose:       purpose,
		EmailVerified: acc.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(p.opts.Secret)
	if err != nil {
		return "", &identity.Error{Code: identity.CodeInternal, Err: fmt.Errorf("signing token: %w", err)}
	}

	return signed, nil
}

func (p *Provider) parse(token, purpose string) (*claims, error) {
	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return p.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.opts.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, &identity.Error{Code: identity.CodeInvalidToken, Err: err}
	}

	if c.Purpose != purpose || c.Subject == "" {
		return nil, &identity.Error{Code: identity.CodeInvalidToken}
	}

	return &c, nil
}

func (p *Provider) deliver(ctx context.Context, kind mail.Kind, to, token string) error {
	err := p.mailer.Send(ctx, mail.Message{
		Kind:    kind,
		To:      to,
		Subject: mail.Subject(kind),
		Token:   token,
		SentAt:  p.opts.Now(),
	})
	if err != nil {
		return &identity.Error{Code: identity.CodeNetworkFailed, Err: fmt.Errorf("sending %s mail: %w", kind, err)}
	}

	return nil
}

func (p *Provider) findByEmail(ctx context.Context, email string) (*account, error) {
	docs, err := p.store.Query(ctx, collection, docstore.Query{
		Filters: []docstore.Filter{docstore.Eq("email", email)},
	})
	if err != nil {
		return nil, storageError("finding account", err)
	}

	if len(docs) == 0 {
		return nil, nil
	}

	var acc account
	if err := docstore.Decode(docs[0], &acc); err != nil {
		return nil, storageError("finding account", err)
	}

	return &acc, nil
}

func (p *Provider) load(ctx context.Context, uid string) (*account, error) {
	doc, err := p.store.Get(ctx, collection, uid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, &identity.Error{Code: identity.CodeUserNotFound, Err: err}
		}

		return nil, storageError("loading account", err)
	}

	var acc account
	if err := docstore.Decode(doc, &acc); err != nil {
		return nil, storageError("loading account", err)
	}

	return &acc, nil
}

func (p *Provider) save(ctx context.Context, acc account) error {
	doc, err := docstore.Encode(acc)
	if err != nil {
		return storageError("saving account", err)
	}

	if err := p.store.Set(ctx, collection, acc.UID, doc); err != nil {
		return storageError("saving account", err)
	}

	return nil
}

func (p *Provider) patch(ctx context.Context, uid string, fields docstore.Document) error {
	if err := p.store.Update(ctx, collection, uid, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return &identity.Error{Code: identity.CodeUserNotFound, Err: err}
		}

		return storageError("updating account", err)
	}

	return nil
}

// storageError reports an unreachable account store the way a remote
// provider reports a failed request.
func storageError(op string, err error) error {
	return &identity.Error{Code: identity.CodeNetworkFailed, Err: fmt.Errorf("%s: %w", op, err)}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
