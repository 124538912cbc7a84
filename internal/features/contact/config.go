package contact

import "clr-site/internal/core"

// Config represents contact feature configuration
type Config struct {
	Enabled bool
}

// NewConfig creates contact config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled: coreConfig.IsFeatureEnabled("contact"),
	}
}
