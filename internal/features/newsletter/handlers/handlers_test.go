package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/newsletter/services"
	"clr-site/internal/store/storetest"
)

type nopMailer struct{}

func (nopMailer) Enqueue(context.Context, string, email.Recipient, email.Vars, bool) (int64, error) {
	return 1, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *services.Service) {
	t.Helper()
	svc := services.NewService(storetest.New(t), nopMailer{}, "https://chefliferadio.com", core.NewDiscardLogger())
	return NewHandlers(core.NewDiscardLogger(), svc), svc
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func TestSubscribeEndpoint(t *testing.T) {
	h, _ := newTestHandlers(t)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/newsletter/subscribe",
			strings.NewReader(`{"email":"Chef@Example.com","source":"home"}`))
		w := httptest.NewRecorder()
		h.Subscribe(w, req)
		return w
	}

	first := post()
	if first.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", first.Code)
	}
	if body := decode(t, first); body["outcome"] != "subscribed" || body["message"] != msgSubscribed {
		t.Errorf("Unexpected first response %v", body)
	}

	second := post()
	if second.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", second.Code)
	}
	if body := decode(t, second); body["outcome"] != "already_subscribed" || body["success"] != true {
		t.Errorf("Unexpected second response %v", body)
	}
}

func TestSubscribeRejectsBadInput(t *testing.T) {
	h, _ := newTestHandlers(t)

	for _, payload := range []string{`{"email":"nope"}`, `{"email":"a@example.com","extra":1}`, `not json`} {
		w := httptest.NewRecorder()
		h.Subscribe(w, httptest.NewRequest(http.MethodPost, "/api/newsletter/subscribe", strings.NewReader(payload)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Payload %s: expected 400, got %d", payload, w.Code)
		}
	}
}

func TestUnsubscribeInvalidToken(t *testing.T) {
	h, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Unsubscribe(w, httptest.NewRequest(http.MethodPost, "/api/newsletter/unsubscribe", strings.NewReader(`{"token":"bogus"}`)))

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	body := decode(t, w)
	errBody, _ := body["error"].(map[string]any)
	if errBody["code"] != core.ErrCodeInvalidToken {
		t.Errorf("Expected INVALID_TOKEN, got %v", body)
	}
}

func TestPreferencesPages(t *testing.T) {
	h, svc := newTestHandlers(t)

	result, err := svc.Subscribe(context.Background(), services.SubscribeRequest{Email: "cook@example.com"})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	token := result.Subscriber.UnsubscribeToken

	w := httptest.NewRecorder()
	h.PreferencesPage(w, httptest.NewRequest(http.MethodGet, "/preferences?token="+token, nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `value="weekly" checked`) {
		t.Fatalf("Unexpected preferences page %d", w.Code)
	}

	form := url.Values{"token": {token}, "frequency": {"monthly"}, "topics": {"events"}, "format": {"text"}}
	req := httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.PreferencesForm(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "updated successfully") {
		t.Fatalf("Unexpected form response %d", w.Code)
	}

	sub, err := svc.Lookup(context.Background(), token)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if sub.Preferences.Frequency != "monthly" || sub.Preferences.Format != "text" {
		t.Errorf("Preferences not saved: %+v", sub.Preferences)
	}

	w = httptest.NewRecorder()
	h.UnsubscribePage(w, httptest.NewRequest(http.MethodGet, "/unsubscribe?token=bogus", nil))
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "Invalid Link") {
		t.Errorf("Expected invalid link page, got %d", w.Code)
	}
}
