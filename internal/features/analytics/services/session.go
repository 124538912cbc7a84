package services

import (
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Session identifies a visitor for analytics only. It carries no
// authority and is never used for access decisions.
type Session struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// SessionStore persists the visitor identity between requests
type SessionStore interface {
	Load() (Session, bool)
	Save(Session)
}

// EnsureSession returns the stored session, creating and saving one on
// first use. A stored user id survives a new browser session.
func EnsureSession(store SessionStore, now time.Time) Session {
	sess, _ := store.Load()
	changed := false
	if sess.UserID == "" {
		sess.UserID = newID("clr", now)
		changed = true
	}
	if sess.SessionID == "" {
		sess.SessionID = newID("session", now)
		changed = true
	}
	if changed {
		store.Save(sess)
	}
	return sess
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newID builds "<prefix>_<unix millis>_<9 base36 chars>"
func newID(prefix string, now time.Time) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('_')
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('_')
	for range 9 {
		b.WriteByte(base36[rand.IntN(len(base36))])
	}
	return b.String()
}

// Cookie names for the visitor identity
const (
	UserCookie    = "clr_user_id"
	SessionCookie = "clr_session_id"
)

const userCookieTTL = 365 * 24 * time.Hour

// CookieStore keeps the session in two cookies: a long-lived user id and
// a browser-session id.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
}

// NewCookieStore binds a store to one request/response pair
func NewCookieStore(w http.ResponseWriter, r *http.Request, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, secure: secure}
}

func (c *CookieStore) Load() (Session, bool) {
	var sess Session
	if cookie, err := c.r.Cookie(UserCookie); err == nil {
		sess.UserID = cookie.Value
	}
	if cookie, err := c.r.Cookie(SessionCookie); err == nil {
		sess.SessionID = cookie.Value
	}
	return sess, sess.UserID != "" && sess.SessionID != ""
}

func (c *CookieStore) Save(sess Session) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     UserCookie,
		Value:    sess.UserID,
		Path:     "/",
		Expires:  time.Now().Add(userCookieTTL),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.SessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// MemoryStore holds one session in memory
type MemoryStore struct {
	mu   sync.Mutex
	sess Session
}

func (m *MemoryStore) Load() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, m.sess.UserID != "" && m.sess.SessionID != ""
}

func (m *MemoryStore) Save(sess Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = sess
}
