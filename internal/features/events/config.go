package events

import "clr-site/internal/core"

// Config represents events feature configuration
type Config struct {
	Enabled bool
}

// NewConfig creates events config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled: coreConfig.IsFeatureEnabled("events"),
	}
}
