// Package mail delivers account messages: email verification and password
// reset links.
package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	KindVerifyEmail   Kind = "verify_email"
	KindPasswordReset Kind = "password_reset"
)

type Message struct {
	Kind    Kind      `json:"kind"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Token   string    `json:"token"`
	SentAt  time.Time `json:"sent_at"`
}

func (m Message) JSON() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return b, nil
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Subject returns the subject line used for kind.
func Subject(kind Kind) string {
	switch kind {
	case KindVerifyEmail:
		return "Verifica tu correo electrónico"
	case KindPasswordReset:
		return "Restablece tu contraseña"
	default:
		return string(kind)
	}
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "mail queued",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject,
		"token", msg.Token)

	return nil
}

// Outbox keeps sent messages in memory.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sent = append(o.sent, msg)

	return nil
}

func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]Message(nil), o.sent...)
}

// Last returns the most recent message to the given address.
func (o *Outbox) Last(to string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].To == to {
			return o.sent[i], true
		}
	}

	return Message{}, false
}
