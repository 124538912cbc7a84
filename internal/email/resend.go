package email

import (
	"context"
	"fmt"
	"time"

	"clr-site/internal/core"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API
type ResendSender struct {
	client *resend.Client
	logger *core.Logger
}

// NewResendSender creates a sender for the given Resend API key
func NewResendSender(apiKey string, logger *core.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		logger: logger,
	}
}

// Send delivers a single message and returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	params := &resend.SendEmailRequest{
		From:    formatAddress(msg.FromName, msg.From),
		To:      []string{formatAddress(msg.ToName, msg.To)},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.logger.Info("Email sent", "provider", "resend", "message_id", sent.Id, "subject", msg.Subject)
	return SendResult{MessageID: sent.Id, SentAt: time.Now()}, nil
}
