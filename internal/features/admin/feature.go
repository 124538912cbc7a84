package admin

import (
	"context"
	"fmt"
	"time"

	"clr-site/internal/auth"
	"clr-site/internal/core"
	"clr-site/internal/features/admin/handlers"
	"clr-site/internal/features/admin/services"
	"clr-site/internal/scheduler"
)

const (
	// tokenPurgeSpec runs the expired admin token cleanup nightly
	tokenPurgeSpec = "30 3 * * *"
	linkCheckSpec  = "@hourly"
)

// Feature serves the admin login and the admin API, and runs the
// background email dispatch and link checks
type Feature struct {
	*core.BaseFeature
	config    *Config
	auth      *auth.Service
	authH     *auth.Handler
	deps      handlers.Deps
	handlers  *handlers.Handlers
	monitor   *services.LinkMonitor
	scheduler *scheduler.Scheduler
}

// NewFeature creates the admin feature. It is always enabled.
// Link alerts go to the configured admin email through notifier.
func NewFeature(logger *core.Logger, authService *auth.Service, deps handlers.Deps, notifier services.Notifier, config *Config) *Feature {
	featureLogger := logger.ForFeature("admin")
	monitor := services.NewLinkMonitor(notifier, config.AdminEmail, featureLogger)

	return &Feature{
		BaseFeature: core.NewBaseFeature("admin", "Admin login, dashboard API and email dispatch", true, logger),
		config:      config,
		auth:        authService,
		authH:       auth.NewHandler(authService, featureLogger, config.SecureCookies),
		deps:        deps,
		handlers:    handlers.NewHandlers(featureLogger, deps, monitor),
		monitor:     monitor,
	}
}

// Init bootstraps the first admin and starts background jobs
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	if err := f.config.Validate(); err != nil {
		return err
	}

	if err := f.auth.EnsureAdmin(ctx, f.config.AdminName, f.config.AdminEmail, f.config.AdminPassword); err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}

	f.scheduler = scheduler.New(context.WithoutCancel(ctx), f.Logger())
	if f.config.DispatchSpec != "" {
		if err := f.scheduler.Add(scheduler.Job{
			Name:    "email-dispatch",
			Spec:    f.config.DispatchSpec,
			Timeout: 4 * time.Minute,
			Run: func(ctx context.Context) error {
				_, err := f.deps.Email.ProcessPending(ctx, handlers.DefaultBatch)
				return err
			},
		}); err != nil {
			return err
		}
	}
	if err := f.scheduler.Add(scheduler.Job{
		Name: "admin-token-purge",
		Spec: tokenPurgeSpec,
		Run: func(ctx context.Context) error {
			n, err := f.auth.PurgeExpiredTokens(ctx)
			if err == nil && n > 0 {
				f.Logger().Info("Purged expired admin tokens", "count", n)
			}
			return err
		},
	}); err != nil {
		return err
	}
	if f.deps.Links != nil {
		if err := f.scheduler.Add(scheduler.Job{
			Name:    "link-check",
			Spec:    linkCheckSpec,
			Timeout: 5 * time.Minute,
			Run: func(ctx context.Context) error {
				f.monitor.CheckAll(ctx, f.deps.Links(ctx))
				return nil
			},
		}); err != nil {
			return err
		}
	}
	f.scheduler.Start()

	return nil
}

// Routes returns the HTTP routes for the admin feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		{Method: "POST", Path: "/auth/login", Handler: f.authH.LoginHandler},
		{Method: "POST", Path: "/auth/logout", Handler: f.authH.LogoutHandler, Access: core.AccessAdmin},

		{Method: "GET", Path: "/admin/api/me", Handler: f.authH.MeHandler, Access: core.AccessAdmin},
		{Method: "GET", Path: "/admin/api/stats", Handler: f.handlers.Stats, Access: core.AccessAdmin},
		{Method: "GET", Path: "/admin/api/features", Handler: f.handlers.Features, Access: core.AccessAdmin},
		{Method: "POST", Path: "/admin/api/feed/sync", Handler: f.handlers.SyncFeed, Access: core.AccessAdmin},
		{Method: "POST", Path: "/admin/api/email/process", Handler: f.handlers.ProcessEmail, Access: core.AccessAdmin},
		{Method: "GET", Path: "/admin/api/links", Handler: f.handlers.Links, Access: core.AccessAdmin},
		{Method: "POST", Path: "/admin/api/links/check", Handler: f.handlers.CheckLinks, Access: core.AccessAdmin},
	}
}

// Shutdown stops background jobs
func (f *Feature) Shutdown(ctx context.Context) error {
	if f.scheduler != nil {
		f.scheduler.Stop()
	}
	return f.BaseFeature.Shutdown(ctx)
}
