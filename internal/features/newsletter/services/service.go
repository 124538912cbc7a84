package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/newsletter/models"
	"clr-site/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when no subscriber holds the given token
	ErrInvalidToken = errors.New("invalid subscriber token")

	// ErrInvalidEmail is returned for addresses that fail validation
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrInvalidPreferences is returned for incomplete or unknown preferences
	ErrInvalidPreferences = errors.New("invalid preferences")
)

// Mailer queues transactional email
type Mailer interface {
	Enqueue(ctx context.Context, templateName string, to email.Recipient, vars email.Vars, sendNow bool) (int64, error)
}

// SubscribeRequest is a signup from the site
type SubscribeRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// SubscribeResult is the outcome of Subscribe. WelcomeQueued is false when
// the welcome email could not be queued; the subscription still stands.
type SubscribeResult struct {
	Outcome       models.Outcome     `json:"outcome"`
	Subscriber    *models.Subscriber `json:"subscriber,omitempty"`
	WelcomeQueued bool               `json:"welcome_queued"`
}

// Service manages the newsletter subscriber lifecycle
type Service struct {
	store   store.Store
	mailer  Mailer
	logger  *core.Logger
	baseURL string
	now     func() time.Time
}

// NewService creates a new newsletter service. Links in outgoing email are
// built from baseURL.
func NewService(s store.Store, mailer Mailer, baseURL string, logger *core.Logger) *Service {
	return &Service{
		store:   s,
		mailer:  mailer,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Subscribe adds a subscriber. An address that is already on the list
// yields OutcomeAlreadySubscribed rather than an error.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (SubscribeResult, error) {
	address := core.NormalizeEmail(req.Email)
	if !core.ValidEmail(address) {
		return SubscribeResult{}, ErrInvalidEmail
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = models.DefaultSource
	}

	var name any
	if trimmed := strings.TrimSpace(req.Name); trimmed != "" {
		name = trimmed
	}

	prefs, err := json.Marshal(models.DefaultPreferences())
	if err != nil {
		return SubscribeResult{}, err
	}

	row, err := s.store.Insert(ctx, store.TableSubscribers, store.Row{
		"email":             address,
		"name":              name,
		"source":            source,
		"status":            models.StatusActive,
		"unsubscribe_token": uuid.NewString(),
		"preferences":       string(prefs),
		"subscribed_at":     s.now().UTC(),
	})
	if errors.Is(err, store.ErrUniqueViolation) {
		s.logger.Info("Subscriber already on the list", "source", source)
		return SubscribeResult{Outcome: models.OutcomeAlreadySubscribed}, nil
	}
	if err != nil {
		return SubscribeResult{}, fmt.Errorf("failed to add subscriber: %w", err)
	}

	sub, err := decodeSubscriber(row)
	if err != nil {
		return SubscribeResult{}, err
	}
	s.logger.Info("New subscriber", "id", sub.ID, "source", source)

	return SubscribeResult{
		Outcome:       models.OutcomeSubscribed,
		Subscriber:    &sub,
		WelcomeQueued: s.sendWelcome(ctx, sub),
	}, nil
}

func (s *Service) sendWelcome(ctx context.Context, sub models.Subscriber) bool {
	_, err := s.mailer.Enqueue(ctx, email.TemplateNewsletterWelcome,
		email.Recipient{Email: sub.Email, Name: sub.DisplayName()},
		email.Vars{
			"name":               sub.DisplayName(),
			"latest_episode_url": s.baseURL + "/podcast",
			"unsubscribe_url":    s.baseURL + "/unsubscribe?token=" + sub.UnsubscribeToken,
			"preferences_url":    s.baseURL + "/preferences?token=" + sub.UnsubscribeToken,
		}, true)
	if err != nil {
		s.logger.Warn("Failed to send welcome email", "subscriber_id", sub.ID, "error", err)
		return false
	}
	return true
}

// Unsubscribe marks the subscriber holding token as unsubscribed
func (s *Service) Unsubscribe(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}

	now := s.now().UTC()
	n, err := s.store.Update(ctx, store.TableSubscribers, store.Row{
		"status":          models.StatusUnsubscribed,
		"unsubscribed_at": now,
		"updated_at":      now,
	}, store.Eq("unsubscribe_token", token))
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	if n == 0 {
		return ErrInvalidToken
	}

	s.logger.Info("Subscriber unsubscribed")
	return nil
}

// UpdatePreferences replaces the preferences of the subscriber holding token
func (s *Service) UpdatePreferences(ctx context.Context, token string, prefs models.Preferences) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidToken
	}
	if err := prefs.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	n, err := s.store.Update(ctx, store.TableSubscribers, store.Row{
		"preferences": string(data),
		"updated_at":  s.now().UTC(),
	}, store.Eq("unsubscribe_token", token))
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if n == 0 {
		return ErrInvalidToken
	}
	return nil
}

// Lookup returns the subscriber holding token
func (s *Service) Lookup(ctx context.Context, token string) (models.Subscriber, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Subscriber{}, ErrInvalidToken
	}

	rows, err := s.store.Select(ctx, store.Query{
		Table:   store.TableSubscribers,
		Filters: []store.Filter{store.Eq("unsubscribe_token", token)},
		Limit:   1,
	})
	if err != nil {
		return models.Subscriber{}, fmt.Errorf("failed to look up subscriber: %w", err)
	}
	if len(rows) == 0 {
		return models.Subscriber{}, ErrInvalidToken
	}
	return decodeSubscriber(rows[0])
}

// ActiveCount returns the number of active subscribers
func (s *Service) ActiveCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx, store.TableSubscribers, store.Eq("status", models.StatusActive))
}

func decodeSubscriber(row store.Row) (models.Subscriber, error) {
	id, ok := row.Int64("id")
	if !ok {
		return models.Subscriber{}, fmt.Errorf("subscriber row has no id")
	}

	sub := models.Subscriber{
		ID:               id,
		Email:            row.String("email"),
		Name:             row.NullString("name"),
		Source:           row.String("source"),
		Status:           row.String("status"),
		UnsubscribeToken: row.String("unsubscribe_token"),
		Preferences:      models.DefaultPreferences(),
	}
	if err := row.JSON("preferences", &sub.Preferences); err != nil {
		return models.Subscriber{}, fmt.Errorf("subscriber %d has malformed preferences: %w", id, err)
	}
	if t, ok := row.Time("subscribed_at"); ok {
		sub.SubscribedAt = t
	}
	if t, ok := row.Time("unsubscribed_at"); ok {
		sub.UnsubscribedAt = &t
	}
	return sub, nil
}
