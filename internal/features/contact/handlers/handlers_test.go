package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/contact/services"
	"clr-site/internal/store"
	"clr-site/internal/store/storetest"
)

type nopMailer struct{}

func (nopMailer) Enqueue(context.Context, string, email.Recipient, email.Vars, bool) (int64, error) {
	return 1, nil
}

const validBody = `{"name":"Rosa","email":"rosa@example.com","purpose":"Media Interview","subject":"Hi","message":"Hello"}`

func newHandlers(s store.Store) *Handlers {
	return NewHandlers(core.NewDiscardLogger(), services.NewService(s, nopMailer{}, core.NewDiscardLogger()))
}

func TestSubmitEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		store  func(t *testing.T) store.Store
		body   string
		status int
		want   string
	}{
		{"success", func(t *testing.T) store.Store { return storetest.New(t) }, validBody, http.StatusCreated, "confirmation email"},
		{"validation", func(t *testing.T) store.Store { return storetest.New(t) }, `{"name":"Rosa"}`, http.StatusBadRequest, core.ErrCodeValidation},
		{"store down", func(t *testing.T) store.Store { return storetest.Failing{Err: errors.New("down")} }, validBody, http.StatusInternalServerError, "try again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newHandlers(tt.store(t)).Submit(w, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body)))

			if w.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("Expected %q in %s", tt.want, w.Body.String())
			}
		})
	}
}
