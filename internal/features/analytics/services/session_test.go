package services

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

var (
	userIDPattern    = regexp.MustCompile(`^clr_1760000000000_[0-9a-z]{9}$`)
	sessionIDPattern = regexp.MustCompile(`^session_1760000000000_[0-9a-z]{9}$`)
)

func TestEnsureSessionCreatesThenReuses(t *testing.T) {
	store := &MemoryStore{}
	now := time.UnixMilli(1760000000000)

	first := EnsureSession(store, now)
	if !userIDPattern.MatchString(first.UserID) {
		t.Errorf("Unexpected user id %q", first.UserID)
	}
	if !sessionIDPattern.MatchString(first.SessionID) {
		t.Errorf("Unexpected session id %q", first.SessionID)
	}

	second := EnsureSession(store, now.Add(time.Hour))
	if second != first {
		t.Errorf("Expected the stored session to be reused, got %+v then %+v", first, second)
	}
}

func TestEnsureSessionKeepsUserAcrossSessions(t *testing.T) {
	store := &MemoryStore{}
	store.Save(Session{UserID: "clr_1_abc"})

	sess := EnsureSession(store, time.UnixMilli(1760000000000))
	if sess.UserID != "clr_1_abc" {
		t.Errorf("Expected user id to survive, got %q", sess.UserID)
	}
	if !sessionIDPattern.MatchString(sess.SessionID) {
		t.Errorf("Expected a new session id, got %q", sess.SessionID)
	}
}

func TestCookieStore(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/analytics/events", nil)

	sess := EnsureSession(NewCookieStore(w, r, true), time.Now())

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if !c.HttpOnly || !c.Secure {
			t.Errorf("Cookie %s should be HttpOnly and Secure", c.Name)
		}
	}

	next := httptest.NewRequest(http.MethodPost, "/api/analytics/events", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	w = httptest.NewRecorder()
	again := EnsureSession(NewCookieStore(w, next, true), time.Now())

	if again != sess {
		t.Errorf("Expected %+v from cookies, got %+v", sess, again)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("Expected no cookies to be rewritten for a known visitor")
	}
}
