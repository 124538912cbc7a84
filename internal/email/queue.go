package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/store"

	"github.com/a-h/templ"
)

// Queue statuses
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Template names used by the site
const (
	TemplateNewsletterWelcome   = "newsletter_welcome"
	TemplateContactConfirmation = "contact_confirmation"
	TemplateEventRegistration   = "event_registration_confirmation"
)

const statsWindow = 30 * 24 * time.Hour

var (
	// ErrTemplateNotFound is returned when no active template has the requested name
	ErrTemplateNotFound = errors.New("email template not found")

	// ErrNotPending is returned when dispatching a message that already left the queue
	ErrNotPending = errors.New("email is not pending")
)

// Recipient identifies who a queued email is addressed to
type Recipient struct {
	Email string
	Name  string
}

// Stats summarises queue outcomes over the last 30 days
type Stats struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Pending int `json:"pending"`
}

// DispatchResult counts the outcome of a ProcessPending run
type DispatchResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Queue renders templates into the email_queue collection and dispatches
// pending rows through a Sender. Failed rows are recorded and left for an
// operator; nothing is retried automatically.
type Queue struct {
	store    store.Store
	sender   Sender
	logger   *core.Logger
	from     string
	fromName string
	now      func() time.Time
}

// NewQueue creates a queue sending from the configured address
func NewQueue(s store.Store, sender Sender, cfg core.EmailConfig, logger *core.Logger) *Queue {
	from := cfg.FromAddress
	if from == "" {
		from = "hello@chefliferadio.com"
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Chef Life Radio"
	}

	return &Queue{
		store:    s,
		sender:   sender,
		logger:   logger,
		from:     from,
		fromName: fromName,
		now:      time.Now,
	}
}

// Template loads an active template by name
func (q *Queue) Template(ctx context.Context, name string) (Template, error) {
	rows, err := q.store.Select(ctx, store.Query{
		Table:   store.TableEmailTemplates,
		Filters: []store.Filter{store.Eq("name", name), store.Eq("is_active", true)},
		Limit:   1,
	})
	if err != nil {
		return Template{}, fmt.Errorf("failed to load template %s: %w", name, err)
	}
	if len(rows) == 0 {
		return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	row := rows[0]
	return Template{
		Name:      row.String("name"),
		Subject:   row.String("subject"),
		HTML:      row.String("html_content"),
		Text:      row.String("text_content"),
		Variables: row.Strings("variables"),
	}, nil
}

// Enqueue renders the named template and stores it as a pending email.
// When sendNow is set the message is dispatched straight away; a delivery
// failure is recorded on the row and returned alongside its id.
func (q *Queue) Enqueue(ctx context.Context, templateName string, to Recipient, vars Vars, sendNow bool) (int64, error) {
	tmpl, err := q.Template(ctx, templateName)
	if err != nil {
		return 0, err
	}

	rendered, err := Render(tmpl, vars)
	if err != nil {
		return 0, fmt.Errorf("failed to render %s: %w", templateName, err)
	}

	variables, err := json.Marshal(vars)
	if err != nil {
		return 0, fmt.Errorf("failed to encode variables: %w", err)
	}

	row, err := q.store.Insert(ctx, store.TableEmailQueue, store.Row{
		"to_email":      to.Email,
		"to_name":       to.Name,
		"from_email":    q.from,
		"from_name":     q.fromName,
		"subject":       rendered.Subject,
		"html_content":  rendered.HTML,
		"text_content":  rendered.Text,
		"template_name": templateName,
		"variables":     string(variables),
		"status":        StatusPending,
		"created_at":    q.now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to queue %s: %w", templateName, err)
	}

	id, _ := row.Int64("id")
	q.logger.Info("Email queued", "id", id, "template", templateName)

	if !sendNow {
		return id, nil
	}
	return id, q.Dispatch(ctx, id)
}

// Dispatch sends one pending email and records the outcome on its row
func (q *Queue) Dispatch(ctx context.Context, id int64) error {
	rows, err := q.store.Select(ctx, store.Query{
		Table:   store.TableEmailQueue,
		Filters: []store.Filter{store.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to load email %d: %w", id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("email %d: %w", id, store.ErrNotFound)
	}

	return q.send(ctx, rows[0])
}

// ProcessPending dispatches up to limit pending emails, oldest first
func (q *Queue) ProcessPending(ctx context.Context, limit int) (DispatchResult, error) {
	rows, err := q.store.Select(ctx, store.Query{
		Table:   store.TableEmailQueue,
		Filters: []store.Filter{store.Eq("status", StatusPending)},
		Order:   []store.Order{{Column: "created_at"}, {Column: "id"}},
		Limit:   limit,
	})
	if err != nil {
		return DispatchResult{}, fmt.Errorf("failed to load pending email: %w", err)
	}

	var result DispatchResult
	for _, row := range rows {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := q.send(ctx, row); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	if len(rows) > 0 {
		q.logger.Info("Processed email queue", "sent", result.Sent, "failed", result.Failed)
	}
	return result, nil
}

func (q *Queue) send(ctx context.Context, row store.Row) error {
	id, _ := row.Int64("id")
	if status := row.String("status"); status != StatusPending {
		return fmt.Errorf("email %d is %s: %w", id, status, ErrNotPending)
	}

	msg := Message{
		To:       row.String("to_email"),
		ToName:   row.String("to_name"),
		From:     row.String("from_email"),
		FromName: row.String("from_name"),
		Subject:  row.String("subject"),
		HTML:     row.String("html_content"),
		Text:     row.String("text_content"),
	}

	result, sendErr := q.sender.Send(ctx, msg)
	if sendErr != nil {
		retries, _ := row.Int64("retry_count")
		if _, err := q.store.Update(ctx, store.TableEmailQueue, store.Row{
			"status":        StatusFailed,
			"error_message": sendErr.Error(),
			"retry_count":   retries + 1,
		}, store.Eq("id", id)); err != nil {
			q.logger.Error("Failed to record email failure", "id", id, "error", err)
		}
		q.logger.Warn("Email delivery failed", "id", id, "template", row.String("template_name"), "error", sendErr)
		return fmt.Errorf("failed to send email %d: %w", id, sendErr)
	}

	if _, err := q.store.Update(ctx, store.TableEmailQueue, store.Row{
		"status":  StatusSent,
		"sent_at": result.SentAt.UTC(),
	}, store.Eq("id", id)); err != nil {
		return fmt.Errorf("failed to mark email %d sent: %w", id, err)
	}
	return nil
}

// Notify sends a plain operator notification straight through the sender.
// It is not recorded in the queue.
func (q *Queue) Notify(ctx context.Context, to, subject, text string) error {
	_, err := q.sender.Send(ctx, Message{
		To:       to,
		From:     q.from,
		FromName: q.fromName,
		Subject:  subject,
		HTML:     "<pre>" + templ.EscapeString(text) + "</pre>",
		Text:     text,
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to %s: %w", to, err)
	}
	return nil
}

// Stats counts queue outcomes over the last 30 days
func (q *Queue) Stats(ctx context.Context) (Stats, error) {
	since := store.Filter{Column: "created_at", Op: store.OpGte, Value: q.now().Add(-statsWindow).UTC()}

	var stats Stats
	for status, dst := range map[string]*int{
		StatusSent:    &stats.Sent,
		StatusFailed:  &stats.Failed,
		StatusPending: &stats.Pending,
	} {
		n, err := q.store.Count(ctx, store.TableEmailQueue, store.Eq("status", status), since)
		if err != nil {
			return Stats{}, fmt.Errorf("failed to count %s email: %w", status, err)
		}
		*dst = n
	}
	return stats, nil
}
