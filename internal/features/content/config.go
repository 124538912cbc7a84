package content

import (
	"fmt"
	"net/url"

	"clr-site/internal/core"
)

// Config represents content feature configuration
type Config struct {
	Enabled  bool
	FeedURL  string
	FeedSync bool
	SyncSpec string
}

// NewConfig creates content config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		Enabled:  coreConfig.IsFeatureEnabled("content"),
		FeedURL:  coreConfig.Podcast.FeedURL,
		FeedSync: coreConfig.IsFeatureEnabled("feedsync"),
		SyncSpec: coreConfig.Podcast.SyncSpec,
	}
}

// Validate validates the content configuration
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return nil
	}

	u, err := url.Parse(c.FeedURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("podcast feed URL must be an absolute http(s) URL: %q", c.FeedURL)
	}
	if c.FeedSync && c.SyncSpec == "" {
		return fmt.Errorf("feed sync schedule is required when feed sync is enabled")
	}
	return nil
}
