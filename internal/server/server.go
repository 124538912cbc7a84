// Package server mounts the registered features on one chi router and runs
// the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"clr-site/internal/auth"
	"clr-site/internal/core"
	"clr-site/internal/server/handlers"
	"clr-site/internal/store"
	"clr-site/internal/views"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
)

const shutdownTimeout = 15 * time.Second

// Server is the site's HTTP server
type Server struct {
	config   *core.Config
	logger   *core.Logger
	store    store.Store
	registry *core.Registry
	auth     *auth.Middleware
	handler  http.Handler
	server   *http.Server
}

// New creates a server for the features in registry
func New(config *core.Config, logger *core.Logger, s store.Store, registry *core.Registry, authMiddleware *auth.Middleware) *Server {
	srv := &Server{
		config:   config,
		logger:   logger,
		store:    s,
		registry: registry,
		auth:     authMiddleware,
	}
	srv.setupRoutes()

	srv.server = &http.Server{
		Addr:              net.JoinHostPort(config.Server.Host, fmt.Sprint(config.Server.Port)),
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return srv
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) setupRoutes() {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)
	mux.Use(securityHeaders)
	mux.Use(s.auth.Authenticate)

	mux.Method(http.MethodGet, "/health", handlers.NewHealthHandler(s.store, s.registry, s.logger))
	mux.Get("/assets/*", handlers.StaticHandler(s.config.Server.StaticDir))

	routes := s.registry.GetAllRoutes()
	byAccess := make(map[core.RouteAccess][]core.Route)
	for _, route := range routes {
		byAccess[route.Access] = append(byAccess[route.Access], route)
	}

	mux.Group(func(r chi.Router) {
		mount(r, byAccess[core.AccessPublic])
	})

	mux.Group(func(r chi.Router) {
		r.Use(s.csrf())
		mount(r, byAccess[core.AccessForm])
	})

	mux.Group(func(r chi.Router) {
		r.Use(s.auth.RequireAdmin)
		mount(r, byAccess[core.AccessAdmin])
	})

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		core.HandleError(w, core.NewNotFoundError("Not found", nil))
	})

	for access, group := range byAccess {
		s.logger.Info("Routes mounted", "access", access.String(), "count", len(group))
	}
	s.handler = mux
}

func mount(r chi.Router, routes []core.Route) {
	for _, route := range routes {
		r.Method(route.Method, route.Path, route.Handler)
	}
}

// csrf protects the server-rendered form pages
func (s *Server) csrf() func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(s.config.Auth.SecureCookies),
		csrf.Path("/"),
		csrf.FieldName(views.CSRFFieldName),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	}
	if u, err := url.Parse(s.config.Server.BaseURL); err == nil && u.Host != "" {
		opts = append(opts, csrf.TrustedOrigins([]string{u.Host}))
	}
	protect := csrf.Protect([]byte(s.config.Auth.CSRFKey), opts...)

	if s.config.Auth.SecureCookies {
		return protect
	}
	// Local development serves forms over plain HTTP
	return func(next http.Handler) http.Handler {
		inner := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inner.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	views.MessagePage("Form expired",
		"This form has expired. Please go back, reload the page and try again.",
		views.ToneError).Render(r.Context(), w)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Run initializes the features and serves until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := s.registry.InitAll(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.registry.ShutdownAll(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, then shuts the features down
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.server.Shutdown(ctx)
	s.registry.ShutdownAll(ctx)

	if err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
