package events

import (
	"clr-site/internal/core"
	contentservices "clr-site/internal/features/content/services"
	"clr-site/internal/features/events/handlers"
	"clr-site/internal/features/events/services"
	"clr-site/internal/store"
)

// Feature lists events and takes registrations
type Feature struct {
	*core.BaseFeature
	config   *Config
	service  *services.Service
	handlers *handlers.Handlers
}

// NewFeature creates a new events feature. Events are read through the
// content fetcher so they share its fallback policy.
func NewFeature(logger *core.Logger, s store.Store, fetcher *contentservices.Fetcher, mailer services.Mailer, config *Config) *Feature {
	featureLogger := logger.ForFeature("events")
	service := services.NewService(s, fetcher, mailer, featureLogger)

	return &Feature{
		BaseFeature: core.NewBaseFeature("events", "Live events, registration and checkout", config.Enabled, logger),
		config:      config,
		service:     service,
		handlers:    handlers.NewHandlers(featureLogger, fetcher, service),
	}
}

// Routes returns the HTTP routes for the events feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: "GET", Path: "/api/events", Handler: f.handlers.ListEvents},
		{Method: "GET", Path: "/api/events/upcoming", Handler: f.handlers.UpcomingEvents},
		{Method: "GET", Path: "/api/events/calendar", Handler: f.handlers.Calendar},
		{Method: "GET", Path: "/api/events/{id}", Handler: f.handlers.GetEvent},
		{Method: "POST", Path: "/api/events/{id}/register", Handler: f.handlers.Register},
		{Method: "GET", Path: "/events/{id}/checkout", Handler: f.handlers.Checkout},
	}
}
