package mail_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FinanceTrackerAP/FinanceTracker/internal/mail"
)

func TestOutbox(t *testing.T) {
	var o mail.Outbox

	ctx := context.Background()

	require.NoError(t, o.Send(ctx, mail.Message{Kind: mail.KindVerifyEmail, To: "a@x.com", Token: "t1"}))
	require.NoError(t, o.Send(ctx, mail.Message{Kind: mail.KindPasswordReset, To: "b@x.com", Token: "t2"}))
	require.NoError(t, o.Send(ctx, mail.Message{Kind: mail.KindPasswordReset, To: "a@x.com", Token: "t3"}))

	assert.Len(t, o.Sent(), 3)

	last, ok := o.Last("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "t3", last.Token)

	_, ok = o.Last("nobody@x.com")
	assert.False(t, ok)
}

func TestMessage_JSON(t *testing.T) {
	sent := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := mail.Message{
		Kind:    mail.KindPasswordReset,
		To:      "a@x.com",
		Subject: mail.Subject(mail.KindPasswordReset),
		Token:   "tok",
		SentAt:  sent,
	}

	raw, err := msg.JSON()
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "password_reset", fields["kind"])
	assert.Equal(t, "a@x.com", fields["to"])
	assert.Equal(t, "Restablece tu contraseña", fields["subject"])
}
