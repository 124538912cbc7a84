package pricing

import (
	"clr-site/internal/core"
	"clr-site/internal/features/pricing/handlers"
	"clr-site/internal/features/pricing/services"
)

// Feature serves membership plans and their checkout redirects
type Feature struct {
	*core.BaseFeature
	config   *Config
	catalog  *services.Catalog
	handlers *handlers.Handlers
}

// NewFeature creates a new pricing feature
func NewFeature(logger *core.Logger, config *Config) (*Feature, error) {
	catalog, err := services.LoadCatalog()
	if err != nil {
		return nil, err
	}

	return &Feature{
		BaseFeature: core.NewBaseFeature("pricing", "Membership plans and checkout", config.Enabled, logger),
		config:      config,
		catalog:     catalog,
		handlers:    handlers.NewHandlers(logger.ForFeature("pricing"), catalog),
	}, nil
}

// Routes returns the HTTP routes for the pricing feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: "GET", Path: "/api/pricing", Handler: f.handlers.ListPlans},
		{Method: "GET", Path: "/pricing/{plan}/checkout", Handler: f.handlers.Checkout},
	}
}

// Catalog returns the loaded plan catalog
func (f *Feature) Catalog() *services.Catalog {
	return f.catalog
}
