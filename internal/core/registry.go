package core

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Registry holds the site's features. Features are initialized in
// registration order and shut down in reverse.
type Registry struct {
	mu       sync.RWMutex
	features []Feature
	names    map[string]struct{}
	logger   *Logger
}

// NewRegistry creates a new feature registry
func NewRegistry(logger *Logger) *Registry {
	return &Registry{
		names:  make(map[string]struct{}),
		logger: logger,
	}
}

// Register adds a feature. Names must be unique.
func (r *Registry) Register(feature Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := feature.Name()
	if _, taken := r.names[name]; taken {
		return fmt.Errorf("feature %s already registered", name)
	}

	r.features = append(r.features, feature)
	r.names[name] = struct{}{}
	r.logger.Info("Registered feature", "name", name, "enabled", feature.Enabled())
	return nil
}

// ListEnabled returns enabled features in registration order
func (r *Registry) ListEnabled() []Feature {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Feature, 0, len(r.features))
	for _, feature := range r.features {
		if feature.Enabled() {
			enabled = append(enabled, feature)
		}
	}
	return enabled
}

// InitAll initializes the enabled features, stopping at the first failure
func (r *Registry) InitAll(ctx context.Context) error {
	for _, feature := range r.ListEnabled() {
		if err := feature.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize feature %s: %w", feature.Name(), err)
		}
	}
	return nil
}

// ShutdownAll shuts down the enabled features in reverse order. A failure
// is logged and the remaining features are still shut down.
func (r *Registry) ShutdownAll(ctx context.Context) {
	features := r.ListEnabled()
	for _, feature := range slices.Backward(features) {
		if err := feature.Shutdown(ctx); err != nil {
			r.logger.Error("Failed to shutdown feature", "name", feature.Name(), "error", err)
		}
	}
}

// GetAllRoutes collects the routes of the enabled features
func (r *Registry) GetAllRoutes() []Route {
	var routes []Route
	for _, feature := range r.ListEnabled() {
		routes = append(routes, feature.Routes()...)
	}
	return routes
}

// FeatureStatus is how a feature is reported on /health and the admin API
type FeatureStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// GetFeatureStatus reports every registered feature, disabled ones included
func (r *Registry) GetFeatureStatus() []FeatureStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make([]FeatureStatus, 0, len(r.features))
	for _, feature := range r.features {
		status = append(status, FeatureStatus{
			Name:        feature.Name(),
			Description: feature.Description(),
			Enabled:     feature.Enabled(),
		})
	}
	return status
}
