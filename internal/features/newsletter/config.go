package newsletter

import (
	"fmt"
	"net/url"

	"clr-site/internal/core"
)

// Config represents newsletter feature configuration
type Config struct {
	Enabled bool
	BaseURL string
}

// NewConfig creates newsletter config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled: coreConfig.IsFeatureEnabled("newsletter"),
		BaseURL: coreConfig.Server.BaseURL,
	}
}

// Validate validates the newsletter configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site base URL must be absolute for email links: %q", c.BaseURL)
	}
	return nil
}
