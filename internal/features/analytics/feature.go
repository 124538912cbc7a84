package analytics

import (
	"context"

	"clr-site/internal/core"
	"clr-site/internal/features/analytics/handlers"
	"clr-site/internal/features/analytics/services"
	"clr-site/internal/store"
)

// Feature records visitor analytics
type Feature struct {
	*core.BaseFeature
	config   *Config
	tracker  *services.Tracker
	handlers *handlers.Handlers
}

// NewFeature creates a new analytics feature
func NewFeature(logger *core.Logger, s store.Store, config *Config) *Feature {
	featureLogger := logger.ForFeature("analytics")

	sinks := []services.Sink{services.NewStoreSink(s)}
	tagManager := services.NewTagManager(config.TagManager)
	if tagManager.Enabled() {
		sinks = append(sinks, tagManager)
	}
	tracker := services.NewTracker(s, featureLogger, sinks...)

	return &Feature{
		BaseFeature: core.NewBaseFeature("analytics", "Visitor analytics", config.Enabled, logger),
		config:      config,
		tracker:     tracker,
		handlers:    handlers.NewHandlers(featureLogger, tracker, config.SecureCookies),
	}
}

// Init starts event delivery
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	f.tracker.Init(ctx)
	f.Logger().Info("Analytics initialized", "measurement_id", f.config.TagManager.MeasurementID)
	return nil
}

// Routes returns the HTTP routes for the analytics feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: "POST", Path: "/api/analytics/events", Handler: f.handlers.Track},
	}
}

// Tracker returns the analytics tracker
func (f *Feature) Tracker() *services.Tracker {
	return f.tracker
}
