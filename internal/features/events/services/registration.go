package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/email"
	contentmodels "clr-site/internal/features/content/models"
	contentservices "clr-site/internal/features/content/services"
	"clr-site/internal/store"
)

// MaxTickets is the largest number of tickets one registration may hold
const MaxTickets = 5

const confirmationAttempts = 3

var (
	// ErrSoldOut is returned when an event cannot take the requested tickets
	ErrSoldOut = errors.New("event is sold out")

	// ErrEventNotFound is returned for registrations against unknown events
	ErrEventNotFound = errors.New("event not found")

	// ErrNoCheckout is returned for events without a usable checkout link
	ErrNoCheckout = errors.New("event has no checkout link")
)

// EventSource reads single events
type EventSource interface {
	EventByID(ctx context.Context, id int64) (contentmodels.Event, error)
}

// Mailer queues transactional email
type Mailer interface {
	Enqueue(ctx context.Context, templateName string, to email.Recipient, vars email.Vars, sendNow bool) (int64, error)
}

// Registration is an attendee signing up for an event
type Registration struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Tickets int    `json:"tickets"`
}

// Normalize trims the registration fields and lowercases the email
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = core.NormalizeEmail(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
}

// Validate reports the first problem with a normalized registration
func (r Registration) Validate() error {
	switch {
	case r.Name == "":
		return core.NewValidationError("Name is required", nil)
	case !core.ValidEmail(r.Email):
		return core.NewValidationError("Please enter a valid email address.", nil)
	case r.Tickets < 1 || r.Tickets > MaxTickets:
		return core.NewValidationError(fmt.Sprintf("Tickets must be between 1 and %d", MaxTickets), nil)
	}
	return nil
}

// Confirmation is the result of a successful registration
type Confirmation struct {
	ConfirmationNumber string  `json:"confirmation_number"`
	EventID            int64   `json:"event_id"`
	Tickets            int     `json:"tickets"`
	TotalAmount        float64 `json:"total_amount"`
	CheckoutURL        string  `json:"checkout_url,omitempty"`
	EmailQueued        bool    `json:"email_queued"`
}

// Service registers attendees for events
type Service struct {
	store  store.Store
	events EventSource
	mailer Mailer
	logger *core.Logger
	now    func() time.Time
}

// NewService creates a new event registration service
func NewService(s store.Store, events EventSource, mailer Mailer, logger *core.Logger) *Service {
	return &Service{
		store:  s,
		events: events,
		mailer: mailer,
		logger: logger,
		now:    time.Now,
	}
}

// Register claims tickets for eventID. Capacity is checked and claimed in a
// single store procedure, so a full event yields ErrSoldOut and no
// registration row.
func (s *Service) Register(ctx context.Context, eventID int64, reg Registration) (Confirmation, error) {
	reg.Normalize()
	if err := reg.Validate(); err != nil {
		return Confirmation{}, err
	}

	event, err := s.events.EventByID(ctx, eventID)
	if errors.Is(err, contentservices.ErrNotFound) {
		return Confirmation{}, ErrEventNotFound
	}
	if err != nil {
		return Confirmation{}, err
	}

	row, err := s.claim(ctx, eventID, reg)
	switch {
	case errors.Is(err, store.ErrCapacity):
		s.logger.Info("Registration rejected, event full", "event_id", eventID, "tickets", reg.Tickets)
		return Confirmation{}, ErrSoldOut
	case errors.Is(err, store.ErrNotFound):
		return Confirmation{}, ErrEventNotFound
	case err != nil:
		return Confirmation{}, fmt.Errorf("failed to register for event %d: %w", eventID, err)
	}

	confirmation := Confirmation{
		ConfirmationNumber: row.String("confirmation_number"),
		EventID:            eventID,
		Tickets:            reg.Tickets,
		TotalAmount:        row.Float("total_amount"),
	}
	if checkout, err := CheckoutURL(event); err == nil {
		confirmation.CheckoutURL = checkout
	}

	s.logger.Info("Event registration confirmed", "event_id", eventID, "tickets", reg.Tickets,
		"confirmation", confirmation.ConfirmationNumber)

	confirmation.EmailQueued = s.sendConfirmation(ctx, event, reg, confirmation)
	return confirmation, nil
}

// claim runs the registration procedure. Confirmation numbers are derived
// from the clock, so a collision with a registration in the same
// millisecond is retried with a fresh number.
func (s *Service) claim(ctx context.Context, eventID int64, reg Registration) (store.Row, error) {
	var err error
	for attempt := 0; attempt < confirmationAttempts; attempt++ {
		var row store.Row
		row, err = s.store.Call(ctx, store.ProcRegisterForEvent, store.Args{
			"event_id":            eventID,
			"name":                reg.Name,
			"email":               reg.Email,
			"phone":               reg.Phone,
			"tickets":             reg.Tickets,
			"confirmation_number": ConfirmationNumber(s.now()),
		})
		if !errors.Is(err, store.ErrUniqueViolation) {
			return row, err
		}
		time.Sleep(time.Millisecond)
	}
	return nil, err
}

func (s *Service) sendConfirmation(ctx context.Context, event contentmodels.Event, reg Registration, c Confirmation) bool {
	eventDate := event.Date
	if day, err := event.Day(); err == nil {
		eventDate = day.Format("Monday, January 2, 2006")
	}

	_, err := s.mailer.Enqueue(ctx, email.TemplateEventRegistration,
		email.Recipient{Email: reg.Email, Name: reg.Name},
		email.Vars{
			"name":                reg.Name,
			"event_title":         event.Title,
			"event_date":          eventDate,
			"event_time":          event.Time,
			"event_location":      event.Venue,
			"ticket_count":        strconv.Itoa(reg.Tickets),
			"ticket_price":        formatAmount(event.Price),
			"total_amount":        formatAmount(c.TotalAmount),
			"confirmation_number": c.ConfirmationNumber,
		}, true)
	if err != nil {
		s.logger.Warn("Failed to send registration confirmation", "event_id", event.ID,
			"confirmation", c.ConfirmationNumber, "error", err)
		return false
	}
	return true
}

// ConfirmationNumber formats the confirmation number issued at t
func ConfirmationNumber(t time.Time) string {
	return fmt.Sprintf("CLR-%d", t.UnixMilli())
}

// CheckoutURL returns the external payment page for an event. Payment
// happens entirely off-site.
func CheckoutURL(event contentmodels.Event) (string, error) {
	if event.CheckoutURL == "" {
		return "", ErrNoCheckout
	}
	u, err := url.Parse(event.CheckoutURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoCheckout, event.CheckoutURL)
	}
	return u.String(), nil
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
