// Package email renders stored templates and delivers queued messages
// through an external provider.
package email

import (
	"context"
	"fmt"
	"time"

	"clr-site/internal/core"
)

// Message is a fully rendered email ready for delivery
type Message struct {
	To       string
	ToName   string
	From     string
	FromName string
	Subject  string
	HTML     string
	Text     string
}

// SendResult carries the provider's reference for a delivered message
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender is the interface for sending emails via an external provider
type Sender interface {
	Send(ctx context.Context, msg Message) (SendResult, error)
}

// NewSender returns the sender selected by the email configuration
func NewSender(cfg core.EmailConfig, logger *core.Logger) (Sender, error) {
	switch cfg.Provider {
	case "resend":
		return NewResendSender(cfg.ResendAPIKey, logger), nil
	case "noop", "":
		return NewNoopSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Provider)
	}
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
