package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/contact/models"
	"clr-site/internal/store"
	"clr-site/internal/store/storetest"
)

type recordingMailer struct {
	vars []email.Vars
	err  error
}

func (m *recordingMailer) Enqueue(_ context.Context, _ string, _ email.Recipient, vars email.Vars, _ bool) (int64, error) {
	m.vars = append(m.vars, vars)
	return 1, m.err
}

func validMessage() models.Message {
	return models.Message{
		Name:    " Rosa ",
		Email:   "Rosa@Example.com ",
		Purpose: "Podcast Guest Appearance",
		Subject: " Twenty years on the line ",
		Message: "I'd love to share my story.",
	}
}

func TestSubmit(t *testing.T) {
	s := storetest.New(t)
	mailer := &recordingMailer{}
	svc := NewService(s, mailer, core.NewDiscardLogger())
	svc.now = func() time.Time { return time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC) }

	receipt, err := svc.Submit(context.Background(), validMessage())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if receipt.ID == 0 || !receipt.EmailQueued {
		t.Errorf("Unexpected receipt %+v", receipt)
	}

	rows, err := s.Select(context.Background(), store.Query{Table: store.TableContactMessages})
	if err != nil || len(rows) != 1 {
		t.Fatalf("Expected one stored message, got %d (%v)", len(rows), err)
	}
	row := rows[0]
	if row.String("status") != models.StatusNew || row.String("email") != "rosa@example.com" ||
		row.String("name") != "Rosa" || row.String("preferred_contact") != models.ContactByEmail {
		t.Errorf("Unexpected row %v", row)
	}

	vars := mailer.vars[0]
	if vars["submitted_date"] != "March 5, 2026 at 02:30 PM" || vars["subject"] != "Twenty years on the line" {
		t.Errorf("Unexpected vars %v", vars)
	}

	count, err := svc.NewCount(context.Background())
	if err != nil || count != 1 {
		t.Errorf("NewCount() = %d, %v", count, err)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(storetest.New(t), &recordingMailer{}, core.NewDiscardLogger())

	tests := []struct {
		name   string
		mutate func(*models.Message)
	}{
		{"missing name", func(m *models.Message) { m.Name = "  " }},
		{"bad email", func(m *models.Message) { m.Email = "rosa" }},
		{"unknown purpose", func(m *models.Message) { m.Purpose = "Recipes" }},
		{"missing subject", func(m *models.Message) { m.Subject = "" }},
		{"missing message", func(m *models.Message) { m.Message = "" }},
		{"bad preferred contact", func(m *models.Message) { m.PreferredContact = "fax" }},
		{"phone without number", func(m *models.Message) { m.PreferredContact = "phone" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validMessage()
			tt.mutate(&msg)
			_, err := svc.Submit(context.Background(), msg)
			var appErr *core.AppError
			if !errors.As(err, &appErr) || appErr.Code != core.ErrCodeValidation {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmitFailures(t *testing.T) {
	broken := NewService(storetest.Failing{Err: errors.New("down")}, &recordingMailer{}, core.NewDiscardLogger())
	if _, err := broken.Submit(context.Background(), validMessage()); err == nil {
		t.Error("Expected store failure to surface")
	}

	mailer := &recordingMailer{err: errors.New("queue down")}
	svc := NewService(storetest.New(t), mailer, core.NewDiscardLogger())
	receipt, err := svc.Submit(context.Background(), validMessage())
	if err != nil {
		t.Fatalf("Email failure must not fail the submission: %v", err)
	}
	if receipt.EmailQueued {
		t.Error("Expected EmailQueued to be false")
	}
}
