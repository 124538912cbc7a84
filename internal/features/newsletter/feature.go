package newsletter

import (
	"context"

	"clr-site/internal/core"
	"clr-site/internal/features/newsletter/handlers"
	"clr-site/internal/features/newsletter/services"
	"clr-site/internal/store"
)

// Feature manages newsletter subscriptions
type Feature struct {
	*core.BaseFeature
	config   *Config
	service  *services.Service
	handlers *handlers.Handlers
}

// NewFeature creates a new newsletter feature
func NewFeature(logger *core.Logger, s store.Store, mailer services.Mailer, config *Config) *Feature {
	featureLogger := logger.ForFeature("newsletter")
	service := services.NewService(s, mailer, config.BaseURL, featureLogger)

	return &Feature{
		BaseFeature: core.NewBaseFeature("newsletter", "Newsletter signup, unsubscribe and preferences", config.Enabled, logger),
		config:      config,
		service:     service,
		handlers:    handlers.NewHandlers(featureLogger, service),
	}
}

// Init validates the feature configuration
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}
	return f.config.Validate()
}

// Routes returns the HTTP routes for the newsletter feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		// API
		{Method: "POST", Path: "/api/newsletter/subscribe", Handler: f.handlers.Subscribe},
		{Method: "POST", Path: "/api/newsletter/unsubscribe", Handler: f.handlers.Unsubscribe},
		{Method: "GET", Path: "/api/newsletter/preferences", Handler: f.handlers.GetPreferences},
		{Method: "PUT", Path: "/api/newsletter/preferences", Handler: f.handlers.UpdatePreferences},

		// Pages linked from email
		{Method: "GET", Path: "/unsubscribe", Handler: f.handlers.UnsubscribePage, Access: core.AccessForm},
		{Method: "POST", Path: "/unsubscribe", Handler: f.handlers.UnsubscribeForm, Access: core.AccessForm},
		{Method: "GET", Path: "/preferences", Handler: f.handlers.PreferencesPage, Access: core.AccessForm},
		{Method: "POST", Path: "/preferences", Handler: f.handlers.PreferencesForm, Access: core.AccessForm},
	}
}

// Service returns the subscriber service
func (f *Feature) Service() *services.Service {
	return f.service
}
