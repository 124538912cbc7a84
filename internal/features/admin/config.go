package admin

import (
	"fmt"

	"clr-site/internal/core"

	"github.com/robfig/cron/v3"
)

// Config represents admin feature configuration
type Config struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	SecureCookies bool
	DispatchSpec  string
}

// NewConfig creates admin config from core config
func NewConfig(coreConfig *core.Config) *Config {
	return &Config{
		AdminName:     coreConfig.Auth.AdminName,
		AdminEmail:    coreConfig.Auth.AdminEmail,
		AdminPassword: coreConfig.Auth.AdminPassword,
		SecureCookies: coreConfig.Auth.SecureCookies,
		DispatchSpec:  coreConfig.Email.DispatchSpec,
	}
}

// Validate validates the admin configuration
func (c *Config) Validate() error {
	if c.DispatchSpec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.DispatchSpec); err != nil {
		return fmt.Errorf("invalid email dispatch schedule %q: %w", c.DispatchSpec, err)
	}
	return nil
}
