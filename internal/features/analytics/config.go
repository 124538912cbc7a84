package analytics

import "clr-site/internal/core"

// Config represents analytics feature configuration
type Config struct {
	Enabled       bool
	SecureCookies bool
	TagManager    core.AnalyticsConfig
}

// NewConfig creates analytics config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled:       coreConfig.IsFeatureEnabled("analytics"),
		SecureCookies: coreConfig.Auth.SecureCookies,
		TagManager:    coreConfig.Analytics,
	}
}
