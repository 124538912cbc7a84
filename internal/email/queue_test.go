package email_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/store"
	"clr-site/internal/store/storetest"
)

type failingSender struct{}

func (failingSender) Send(context.Context, email.Message) (email.SendResult, error) {
	return email.SendResult{}, errors.New("provider rejected message")
}

func newQueue(t *testing.T, sender email.Sender) (*email.Queue, store.Store) {
	t.Helper()
	s := storetest.New(t)
	return email.NewQueue(s, sender, core.EmailConfig{}, core.NewDiscardLogger()), s
}

func queueRow(t *testing.T, s store.Store, id int64) store.Row {
	t.Helper()
	rows, err := s.Select(context.Background(), store.Query{
		Table:   store.TableEmailQueue,
		Filters: []store.Filter{store.Eq("id", id)},
	})
	if err != nil || len(rows) != 1 {
		t.Fatalf("Failed to load queue row %d: %v", id, err)
	}
	return rows[0]
}

func TestEnqueueAndSendNow(t *testing.T) {
	sender := email.NewNoopSender(core.NewDiscardLogger())
	q, s := newQueue(t, sender)

	id, err := q.Enqueue(context.Background(), email.TemplateNewsletterWelcome,
		email.Recipient{Email: "ana@example.com", Name: "Ana"},
		email.Vars{"name": "Ana", "unsubscribe_url": "https://chefliferadio.com/unsubscribe?token=abc"}, true)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	row := queueRow(t, s, id)
	if row.String("status") != email.StatusSent {
		t.Errorf("Expected status sent, got %q", row.String("status"))
	}
	if _, ok := row.Time("sent_at"); !ok {
		t.Error("Expected sent_at to be set")
	}
	if row.String("from_email") != "hello@chefliferadio.com" || row.String("from_name") != "Chef Life Radio" {
		t.Errorf("Unexpected sender %q %q", row.String("from_email"), row.String("from_name"))
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 delivered message, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Subject, "Ana") || !strings.Contains(sent[0].HTML, "token=abc") {
		t.Errorf("Template not rendered: %+v", sent[0])
	}
}

func TestEnqueueWithoutSendNowStaysPending(t *testing.T) {
	sender := email.NewNoopSender(core.NewDiscardLogger())
	q, s := newQueue(t, sender)

	id, err := q.Enqueue(context.Background(), email.TemplateContactConfirmation,
		email.Recipient{Email: "ana@example.com"}, email.Vars{"name": "Ana"}, false)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if got := queueRow(t, s, id).String("status"); got != email.StatusPending {
		t.Errorf("Expected pending, got %q", got)
	}
	if len(sender.Sent()) != 0 {
		t.Error("Expected nothing delivered")
	}

	result, err := q.ProcessPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if result.Sent != 1 || result.Failed != 0 {
		t.Errorf("Unexpected result %+v", result)
	}

	// Already sent rows are not picked up again
	result, err = q.ProcessPending(context.Background(), 10)
	if err != nil || result.Sent != 0 {
		t.Errorf("Expected empty second run, got %+v %v", result, err)
	}
}

func TestDeliveryFailureIsRecorded(t *testing.T) {
	q, s := newQueue(t, failingSender{})

	id, err := q.Enqueue(context.Background(), email.TemplateEventRegistration,
		email.Recipient{Email: "ana@example.com"}, email.Vars{"name": "Ana"}, true)
	if err == nil {
		t.Fatal("Expected delivery error")
	}

	row := queueRow(t, s, id)
	if row.String("status") != email.StatusFailed {
		t.Errorf("Expected failed, got %q", row.String("status"))
	}
	if n, _ := row.Int64("retry_count"); n != 1 {
		t.Errorf("Expected retry_count 1, got %d", n)
	}
	if row.String("error_message") == "" {
		t.Error("Expected error message to be recorded")
	}

	// Failed rows are not dispatched again
	if err := q.Dispatch(context.Background(), id); !errors.Is(err, email.ErrNotPending) {
		t.Errorf("Expected ErrNotPending, got %v", err)
	}

	stats, err := q.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Failed != 1 || stats.Sent != 0 || stats.Pending != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestEnqueueUnknownTemplate(t *testing.T) {
	q, _ := newQueue(t, email.NewNoopSender(core.NewDiscardLogger()))

	_, err := q.Enqueue(context.Background(), "missing", email.Recipient{Email: "a@example.com"}, nil, true)
	if !errors.Is(err, email.ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
}

func TestNotifyBypassesQueue(t *testing.T) {
	sender := email.NewNoopSender(core.NewDiscardLogger())
	q, s := newQueue(t, sender)

	if err := q.Notify(context.Background(), "admin@example.com", "Link down", "a < b"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(sent))
	}
	if sent[0].From != "hello@chefliferadio.com" || !strings.Contains(sent[0].HTML, "a &lt; b") {
		t.Errorf("Unexpected notification %+v", sent[0])
	}
	if n, _ := s.Count(context.Background(), store.TableEmailQueue); n != 0 {
		t.Errorf("Expected empty queue, got %d rows", n)
	}
}
