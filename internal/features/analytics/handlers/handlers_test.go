package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clr-site/internal/core"
	"clr-site/internal/features/analytics/services"
	"clr-site/internal/store"
	"clr-site/internal/store/storetest"
)

func TestTrackAccepts(t *testing.T) {
	s := storetest.New(t)
	tracker := services.NewTracker(s, core.NewDiscardLogger(), services.NewStoreSink(s))
	tracker.Init(context.Background())
	h := NewHandlers(core.NewDiscardLogger(), tracker, false)

	body := `{"kind":"page_view","path":"/podcast","title":"Podcast"}`
	w := httptest.NewRecorder()
	h.Track(w, httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(body)))

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) != 2 {
		t.Errorf("Expected session cookies on first visit")
	}

	n, err := s.Count(context.Background(), store.TableAnalyticsEvents, store.Eq("page_path", "/podcast"))
	if err != nil || n != 1 {
		t.Errorf("Expected one stored page view, got %d (%v)", n, err)
	}
}

func TestTrackAcceptsWhenSinksFail(t *testing.T) {
	failing := storetest.Failing{Err: errors.New("store down")}
	tracker := services.NewTracker(failing, core.NewDiscardLogger(), services.NewStoreSink(failing))
	tracker.Init(context.Background())
	h := NewHandlers(core.NewDiscardLogger(), tracker, false)

	body := `{"kind":"newsletter_signup","source":"footer"}`
	w := httptest.NewRecorder()
	h.Track(w, httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(body)))

	if w.Code != http.StatusAccepted {
		t.Errorf("Expected 202 despite sink failures, got %d", w.Code)
	}
}

func TestTrackRejectsBadRequests(t *testing.T) {
	tracker := services.NewTracker(nil, core.NewDiscardLogger())
	h := NewHandlers(core.NewDiscardLogger(), tracker, false)

	for _, body := range []string{
		`not json`,
		`{"kind":"teleport"}`,
		`{"event":{"category":"engagement"}}`,
		`{"kind":"social_share","platform":"x"}`,
	} {
		w := httptest.NewRecorder()
		h.Track(w, httptest.NewRequest(http.MethodPost, "/api/analytics/events", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Body %s: expected 400, got %d", body, w.Code)
		}
	}
}
