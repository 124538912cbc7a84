package core

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config represents the main configuration for the Chef Life Radio site
type Config struct {
	Server    ServerConfig    `envPrefix:"CLR_"`
	Database  DatabaseConfig  `envPrefix:"CLR_DB_"`
	Auth      AuthConfig      `envPrefix:"CLR_AUTH_"`
	Email     EmailConfig     `envPrefix:"CLR_EMAIL_"`
	Analytics AnalyticsConfig `envPrefix:"CLR_ANALYTICS_"`
	Podcast   PodcastConfig   `envPrefix:"CLR_PODCAST_"`
	Features  FeatureConfig   `envPrefix:"CLR_ENABLE_"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port      int    `env:"PORT"       envDefault:"4000"`
	Host      string `env:"HOST"       envDefault:"0.0.0.0"`
	BaseURL   string `env:"BASE_URL"   envDefault:"https://chefliferadio.com"`
	StaticDir string `env:"STATIC_DIR" envDefault:"./public"`
}

// DatabaseConfig selects the RemoteStore backend
type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	Path   string `env:"PATH"   envDefault:"./clr.db"`
	DSN    string `env:"DSN"`
}

// AuthConfig contains admin authentication configuration
type AuthConfig struct {
	AdminName     string `env:"ADMIN_NAME"     envDefault:"Site Admin"`
	AdminEmail    string `env:"ADMIN_EMAIL"    envDefault:"hello@chefliferadio.com"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	CSRFKey       string `env:"CSRF_KEY"`
	SecureCookies bool   `env:"SECURE_COOKIES" envDefault:"true"`
}

// EmailConfig selects the delivery provider for queued email
type EmailConfig struct {
	Provider     string `env:"PROVIDER"      envDefault:"noop"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	FromAddress  string `env:"FROM_ADDRESS"  envDefault:"hello@chefliferadio.com"`
	FromName     string `env:"FROM_NAME"     envDefault:"Chef Life Radio"`
	DispatchSpec string `env:"DISPATCH_SPEC" envDefault:"*/5 * * * *"`
}

// AnalyticsConfig contains tag manager forwarding configuration
type AnalyticsConfig struct {
	MeasurementID string `env:"MEASUREMENT_ID" envDefault:"G-J22BB7N5LF"`
	ContainerID   string `env:"CONTAINER_ID"   envDefault:"GT-MBLK5B3"`
	APISecret     string `env:"API_SECRET"`
	Endpoint      string `env:"ENDPOINT"       envDefault:"https://www.google-analytics.com/mp/collect"`
}

// PodcastConfig contains podcast feed sync configuration
type PodcastConfig struct {
	FeedURL  string `env:"FEED_URL"  envDefault:"https://feeds.captivate.fm/therealchefliferadio/"`
	SyncSpec string `env:"SYNC_SPEC" envDefault:"0 * * * *"`
}

// FeatureConfig toggles site features
type FeatureConfig struct {
	Content    bool `env:"CONTENT"    envDefault:"true"`
	Newsletter bool `env:"NEWSLETTER" envDefault:"true"`
	Events     bool `env:"EVENTS"     envDefault:"true"`
	Contact    bool `env:"CONTACT"    envDefault:"true"`
	Pricing    bool `env:"PRICING"    envDefault:"true"`
	Analytics  bool `env:"ANALYTICS"  envDefault:"true"`
	FeedSync   bool `env:"FEED_SYNC"  envDefault:"false"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}

	if c.Auth.AdminEmail == "" {
		return fmt.Errorf("admin email is required")
	}

	if len(c.Auth.CSRFKey) < 32 {
		return fmt.Errorf("CSRF key must be at least 32 bytes")
	}

	switch c.Email.Provider {
	case "noop":
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("resend API key is required when the resend provider is selected")
		}
	default:
		return fmt.Errorf("unknown email provider: %q", c.Email.Provider)
	}

	if c.Features.FeedSync && c.Podcast.FeedURL == "" {
		return fmt.Errorf("podcast feed URL is required when feed sync is enabled")
	}

	return nil
}

// IsFeatureEnabled checks if a feature is enabled
func (c *Config) IsFeatureEnabled(featureName string) bool {
	switch strings.ToLower(featureName) {
	case "content":
		return c.Features.Content
	case "newsletter":
		return c.Features.Newsletter
	case "events":
		return c.Features.Events
	case "contact":
		return c.Features.Contact
	case "pricing":
		return c.Features.Pricing
	case "analytics":
		return c.Features.Analytics
	case "feedsync":
		return c.Features.FeedSync
	default:
		return false
	}
}
