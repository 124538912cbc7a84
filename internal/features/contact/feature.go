package contact

import (
	"clr-site/internal/core"
	"clr-site/internal/features/contact/handlers"
	"clr-site/internal/features/contact/services"
	"clr-site/internal/store"
)

// Feature takes contact form submissions
type Feature struct {
	*core.BaseFeature
	config   *Config
	service  *services.Service
	handlers *handlers.Handlers
}

// NewFeature creates a new contact feature
func NewFeature(logger *core.Logger, s store.Store, mailer services.Mailer, config *Config) *Feature {
	featureLogger := logger.ForFeature("contact")
	service := services.NewService(s, mailer, featureLogger)

	return &Feature{
		BaseFeature: core.NewBaseFeature("contact", "Contact form", config.Enabled, logger),
		config:      config,
		service:     service,
		handlers:    handlers.NewHandlers(featureLogger, service),
	}
}

// Routes returns the HTTP routes for the contact feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: "GET", Path: "/api/contact/purposes", Handler: f.handlers.Purposes},
		{Method: "POST", Path: "/api/contact", Handler: f.handlers.Submit},
	}
}

// Service returns the contact service
func (f *Feature) Service() *services.Service {
	return f.service
}
