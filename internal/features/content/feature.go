package content

import (
	"context"
	"fmt"

	"clr-site/internal/core"
	"clr-site/internal/features/content/handlers"
	"clr-site/internal/features/content/models"
	"clr-site/internal/features/content/services"
	"clr-site/internal/scheduler"
	"clr-site/internal/store"
)

// Feature serves podcast episodes, blog posts and videos
type Feature struct {
	*core.BaseFeature
	config    *Config
	fetcher   *services.Fetcher
	syncer    *services.FeedSyncer
	scheduler *scheduler.Scheduler
	handlers  *handlers.Handlers
}

// NewFeature creates a new content feature
func NewFeature(logger *core.Logger, s store.Store, config *Config) (*Feature, error) {
	fallback, err := services.LoadFallback()
	if err != nil {
		return nil, err
	}

	featureLogger := logger.ForFeature("content")
	fetcher := services.NewFetcher(s, fallback, config.FeedURL, featureLogger)

	return &Feature{
		BaseFeature: core.NewBaseFeature("content", "Podcast, blog and video content", config.Enabled, logger),
		config:      config,
		fetcher:     fetcher,
		syncer:      services.NewFeedSyncer(s, featureLogger),
		handlers:    handlers.NewHandlers(featureLogger, fetcher),
	}, nil
}

// Init validates configuration and starts the feed sync schedule
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	if err := f.config.Validate(); err != nil {
		return err
	}

	if f.config.FeedSync {
		f.scheduler = scheduler.New(context.WithoutCancel(ctx), f.Logger())
		if err := f.scheduler.Add(scheduler.Job{
			Name: "podcast-feed-sync",
			Spec: f.config.SyncSpec,
			Run: func(ctx context.Context) error {
				_, err := f.SyncFeed(ctx)
				return err
			},
		}); err != nil {
			return fmt.Errorf("failed to schedule feed sync: %w", err)
		}
		f.scheduler.Start()
		f.Logger().Info("Podcast feed sync scheduled", "spec", f.config.SyncSpec, "feed", f.config.FeedURL)
	}

	return nil
}

// Routes returns the HTTP routes for the content feature
func (f *Feature) Routes() []core.Route {
	return []core.Route{
		// Podcast
		{Method: "GET", Path: "/api/episodes", Handler: f.handlers.ListEpisodes},
		{Method: "GET", Path: "/api/episodes/latest", Handler: f.handlers.LatestEpisode},
		{Method: "GET", Path: "/api/episodes/featured", Handler: f.handlers.FeaturedEpisodes},

		// Blog
		{Method: "GET", Path: "/api/posts", Handler: f.handlers.ListPosts},
		{Method: "GET", Path: "/api/posts/recent", Handler: f.handlers.RecentPosts},
		{Method: "GET", Path: "/api/posts/search", Handler: f.handlers.SearchPosts},
		{Method: "GET", Path: "/api/posts/{slug}", Handler: f.handlers.GetPost},

		// Videos
		{Method: "GET", Path: "/api/videos", Handler: f.handlers.ListVideos},
	}
}

// Shutdown stops the feed sync schedule and waits for pending view counts
func (f *Feature) Shutdown(ctx context.Context) error {
	if f.scheduler != nil {
		f.scheduler.Stop()
	}
	f.fetcher.Wait()

	return f.BaseFeature.Shutdown(ctx)
}

// SyncFeed imports new episodes from the configured podcast feed
func (f *Feature) SyncFeed(ctx context.Context) (services.SyncResult, error) {
	if f.config.FeedURL == "" {
		return services.SyncResult{}, fmt.Errorf("no podcast feed URL configured")
	}
	return f.syncer.Sync(ctx, f.config.FeedURL)
}

// Fetcher returns the content fetcher
func (f *Feature) Fetcher() *services.Fetcher {
	return f.fetcher
}

// Stats counts published content
func (f *Feature) Stats(ctx context.Context) models.Stats {
	return f.fetcher.Stats(ctx)
}
