package local_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/docstore/memory"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/identity/local"
	"github.com/FinanceTrackerAP/FinanceTracker/internal/mail"
)

func newProvider(t *testing.T, remember bool) (*local.Provider, *mail.Outbox) {
	t.Helper()

	outbox := &mail.Outbox{}
	p := local.New(memory.New(), outbox, local.Options{
		Secret:          []byte("test-secret"),
		RememberSession: remember,
	})

	return p, outbox
}

func TestProvider_CreateAccount(t *testing.T) {
	type testCase struct {
		name     string
		email    string
		password string
		wantCode string
	}

	tests := []testCase{
		{name: "Success", email: "Owner@Example.com ", password: "secret1"},
		{name: "InvalidEmail", email: "not-an-email", password: "secret1", wantCode: identity.CodeInvalidEmail},
		{name: "WeakPassword", email: "owner@example.com", password: "12345", wantCode: identity.CodeWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newProvider(t, false)

			s, err := p.CreateAccount(context.Background(), tt.email, tt.password)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, identity.Code(err))
				assert.Nil(t, s)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, s.UserID)
			assert.Equal(t, "owner@example.com", s.Email)
			assert.NotEmpty(t, s.Token)
			assert.False(t, s.EmailVerified)
		})
	}
}

func TestProvider_CreateAccountDuplicateEmail(t *testing.T) {
	p, _ := newProvider(t, false)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.CreateAccount(ctx, "OWNER@example.com", "other-secret")
	assert.Equal(t, identity.CodeEmailInUse, identity.Code(err))
}

func TestProvider_CreateAccountConcurrentSameEmail(t *testing.T) {
	store := memory.New()
	p := local.New(store, &mail.Outbox{}, local.Options{Secret: []byte("test-secret")})
	ctx := context.Background()

	const attempts = 8

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		inUse   atomic.Int32
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := p.CreateAccount(ctx, "ana@example.com", "secret1")
			switch {
			case err == nil:
				created.Add(1)
			case identity.Code(err) == identity.CodeEmailInUse:
				inUse.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(attempts-1), inUse.Load())

	docs, err := store.Query(ctx, "accounts", docstore.Query{Filters: []docstore.Filter{docstore.Eq("email", "ana@example.com")}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestProvider_SignIn(t *testing.T) {
	p, _ := newProvider(t, false)
	ctx := context.Background()

	created, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
	require.NoError(t, err)

	type testCase struct {
		name     string
		email    string
		password string
		wantCode string
	}

	tests := []testCase{
		{name: "Success", email: "owner@example.com", password: "secret1"},
		{name: "WrongPassword", email: "owner@example.com", password: "secret2", wantCode: identity.CodeWrongPassword},
		{name: "UnknownUser", email: "ghost@example.com", password: "secret1", wantCode: identity.CodeUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := p.SignIn(ctx, tt.email, tt.password)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, identity.Code(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, created.UserID, s.UserID)
		})
	}
}

func TestProvider_RememberSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Remembered", func(t *testing.T) {
		p, _ := newProvider(t, true)

		s, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
		require.NoError(t, err)

		got, ok := p.CurrentSession(ctx)
		require.True(t, ok)
		assert.Equal(t, s.UserID, got.UserID)

		require.NoError(t, p.SignOut(ctx))

		_, ok = p.CurrentSession(ctx)
		assert.False(t, ok)
	})

	t.Run("NotRemembered", func(t *testing.T) {
		p, _ := newProvider(t, false)

		s, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
		require.NoError(t, err)

		_, ok := p.CurrentSession(ctx)
		assert.False(t, ok)

		got, ok := p.CurrentSession(identity.WithSession(ctx, s))
		require.True(t, ok)
		assert.Equal(t, s.UserID, got.UserID)
	})
}

func TestProvider_Verify(t *testing.T) {
	p, _ := newProvider(t, false)

	s, err := p.CreateAccount(context.Background(), "owner@example.com", "secret1")
	require.NoError(t, err)

	got, err := p.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, "owner@example.com", got.Email)

	_, err = p.Verify(s.Token + "x")
	assert.Equal(t, identity.CodeInvalidToken, identity.Code(err))

	other := local.New(memory.New(), &mail.Outbox{}, local.Options{Secret: []byte("other")})
	_, err = other.Verify(s.Token)
	assert.Equal(t, identity.CodeInvalidToken, identity.Code(err))
}

func TestProvider_VerifyExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := local.New(memory.New(), &mail.Outbox{}, local.Options{
		Secret:   []byte("test-secret"),
		TokenTTL: time.Hour,
		Now:      func() time.Time { return now },
	})

	s, err := p.CreateAccount(context.Background(), "owner@example.com", "secret1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)

	_, err = p.Verify(s.Token)
	assert.Equal(t, identity.CodeInvalidToken, identity.Code(err))
}

func TestProvider_PasswordReset(t *testing.T) {
	p, outbox := newProvider(t, false)
	ctx := context.Background()

	_, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, p.SendPasswordReset(ctx, "owner@example.com"))

	msg, ok := outbox.Last("owner@example.com")
	require.True(t, ok)
	assert.Equal(t, mail.KindPasswordReset, msg.Kind)

	// A reset token is not a session token.
	_, err = p.Verify(msg.Token)
	assert.Equal(t, identity.CodeInvalidToken, identity.Code(err))

	require.NoError(t, p.ConfirmPasswordReset(ctx, msg.Token, "new-secret"))

	_, err = p.SignIn(ctx, "owner@example.com", "secret1")
	assert.Equal(t, identity.CodeWrongPassword, identity.Code(err))

	_, err = p.SignIn(ctx, "owner@example.com", "new-secret")
	assert.NoError(t, err)

	err = p.SendPasswordReset(ctx, "ghost@example.com")
	assert.Equal(t, identity.CodeUserNotFound, identity.Code(err))
}

func TestProvider_EmailVerification(t *testing.T) {
	p, outbox := newProvider(t, false)
	ctx := context.Background()

	err := p.SendEmailVerification(ctx)
	assert.Equal(t, identity.CodeNoCurrentUser, identity.Code(err))

	s, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, p.SendEmailVerification(identity.WithSession(ctx, s)))

	msg, ok := outbox.Last("owner@example.com")
	require.True(t, ok)
	assert.Equal(t, mail.KindVerifyEmail, msg.Kind)

	require.NoError(t, p.VerifyEmail(ctx, msg.Token))

	signedIn, err := p.SignIn(ctx, "owner@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, signedIn.EmailVerified)
}

func TestProvider_DeleteAccount(t *testing.T) {
	p, _ := newProvider(t, true)
	ctx := context.Background()

	s, err := p.CreateAccount(ctx, "owner@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, p.DeleteAccount(ctx, s.UserID))

	_, ok := p.CurrentSession(ctx)
	assert.False(t, ok)

	_, err = p.SignIn(ctx, "owner@example.com", "secret1")
	assert.Equal(t, identity.CodeUserNotFound, identity.Code(err))

	// The address is free again.
	_, err = p.CreateAccount(ctx, "owner@example.com", "secret1")
	assert.NoError(t, err)
}
