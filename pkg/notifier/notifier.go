// Package notifier delivers out-of-band messages (OTP codes, welcome mails)
// to account holders. Senders are provider specific; the Dispatcher moves
// delivery off the request path with a bounded queue and retries.
package notifier

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Message is a provider-agnostic notification.
type Message struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

const (
	KindOTP     = "otp"
	KindWelcome = "welcome"
)

// NewMessage builds a message with a fresh id.
func NewMessage(kind, to, subject, htmlBody string) Message {
	return Message{
		ID:       uuid.NewString(),
		Kind:     kind,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
	}
}

// Sender delivers a single message. Implementations must honour ctx.
type Sender interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}
