package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clr-site/internal/core"
)

type contextKey string

const userContextKey = contextKey("user")

// Middleware resolves and enforces admin sessions
type Middleware struct {
	service *Service
	logger  *core.Logger
}

// NewMiddleware creates new authentication middleware
func NewMiddleware(service *Service, logger *core.Logger) *Middleware {
	return &Middleware{
		service: service,
		logger:  logger,
	}
}

// Authenticate puts the admin named by the session cookie or a Bearer
// token into the request context, or AnonymousUser when there is none
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		token, ok := tokenFrom(r)
		if !ok {
			next.ServeHTTP(w, contextSetUser(r, AnonymousUser))
			return
		}

		user, err := m.service.ValidateToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidToken) {
				m.logger.WithContext(r.Context()).Error("Token validation error", "error", err)
			}
			next.ServeHTTP(w, contextSetUser(r, AnonymousUser))
			return
		}

		next.ServeHTTP(w, contextSetUser(r, user))
	})
}

// RequireAdmin rejects requests without an authenticated admin
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUserFromContext(r).IsAnonymous() {
			core.HandleError(w, core.NewUnauthorizedError("Authentication required", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFrom(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && scheme == "Bearer" && token != "" {
			return token, true
		}
		return "", false
	}
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

func contextSetUser(r *http.Request, user *User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// GetUserFromContext extracts the admin from the request context
func GetUserFromContext(r *http.Request) *User {
	user, ok := r.Context().Value(userContextKey).(*User)
	if !ok {
		return AnonymousUser
	}
	return user
}
