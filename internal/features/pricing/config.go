package pricing

import "clr-site/internal/core"

// Config represents pricing feature configuration
type Config struct {
	Enabled bool
}

// NewConfig creates pricing config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled: coreConfig.IsFeatureEnabled("pricing"),
	}
}
