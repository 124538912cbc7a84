package services

import (
	"context"
	"fmt"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/contact/models"
	"clr-site/internal/store"
)

// Mailer queues transactional email
type Mailer interface {
	Enqueue(ctx context.Context, templateName string, to email.Recipient, vars email.Vars, sendNow bool) (int64, error)
}

// Receipt is the outcome of a stored contact message
type Receipt struct {
	ID          int64 `json:"id"`
	EmailQueued bool  `json:"email_queued"`
}

// Service stores contact form submissions
type Service struct {
	store  store.Store
	mailer Mailer
	logger *core.Logger
	now    func() time.Time
}

// NewService creates a new contact service
func NewService(s store.Store, mailer Mailer, logger *core.Logger) *Service {
	return &Service{
		store:  s,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// Submit validates and stores msg, then sends the visitor a confirmation
func (s *Service) Submit(ctx context.Context, msg models.Message) (Receipt, error) {
	msg.Normalize()
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}

	now := s.now().UTC()
	row, err := s.store.Insert(ctx, store.TableContactMessages, store.Row{
		"name":              msg.Name,
		"email":             msg.Email,
		"phone":             msg.Phone,
		"purpose":           msg.Purpose,
		"subject":           msg.Subject,
		"message":           msg.Message,
		"preferred_contact": msg.PreferredContact,
		"company":           msg.Company,
		"website":           msg.Website,
		"budget":            msg.Budget,
		"timeline":          msg.Timeline,
		"status":            models.StatusNew,
		"created_at":        now,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to store contact message: %w", err)
	}

	id, _ := row.Int64("id")
	s.logger.Info("Contact message received", "id", id, "purpose", msg.Purpose)

	_, err = s.mailer.Enqueue(ctx, email.TemplateContactConfirmation,
		email.Recipient{Email: msg.Email, Name: msg.Name},
		email.Vars{
			"name":              msg.Name,
			"purpose":           msg.Purpose,
			"subject":           msg.Subject,
			"preferred_contact": msg.PreferredContact,
			"submitted_date":    now.Format("January 2, 2006 at 03:04 PM"),
		}, true)
	if err != nil {
		s.logger.Warn("Failed to send contact confirmation", "id", id, "error", err)
	}

	return Receipt{ID: id, EmailQueued: err == nil}, nil
}

// NewCount returns the number of messages nobody has handled yet
func (s *Service) NewCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx, store.TableContactMessages, store.Eq("status", models.StatusNew))
}
