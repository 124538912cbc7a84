package email

import (
	"context"
	"sync"
	"time"

	"clr-site/internal/core"

	"github.com/google/uuid"
)

// NoopSender records messages instead of delivering them. It backs local
// development and tests.
type NoopSender struct {
	logger *core.Logger

	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a sender that only logs
func NewNoopSender(logger *core.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the message and returns a synthetic message ID
func (s *NoopSender) Send(_ context.Context, msg Message) (SendResult, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	id := "noop-" + uuid.NewString()
	s.logger.Info("Email not delivered (noop provider)", "message_id", id, "subject", msg.Subject)
	return SendResult{MessageID: id, SentAt: time.Now()}, nil
}

// Sent returns a copy of every message passed to Send
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
