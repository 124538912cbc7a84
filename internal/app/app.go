// Package app wires the store, email queue and features together for the
// server and the admin CLI.
package app

import (
	"context"
	"fmt"

	"clr-site/internal/auth"
	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/admin"
	adminhandlers "clr-site/internal/features/admin/handlers"
	adminservices "clr-site/internal/features/admin/services"
	"clr-site/internal/features/analytics"
	"clr-site/internal/features/contact"
	"clr-site/internal/features/content"
	contentservices "clr-site/internal/features/content/services"
	"clr-site/internal/features/events"
	"clr-site/internal/features/newsletter"
	"clr-site/internal/features/pricing"
	pricingservices "clr-site/internal/features/pricing/services"
	"clr-site/internal/store"
)

// App holds the wired components of the site
type App struct {
	Config   *core.Config
	Logger   *core.Logger
	Store    store.Store
	Queue    *email.Queue
	Auth     *auth.Service
	Registry *core.Registry

	Content    *content.Feature
	Newsletter *newsletter.Feature
	Contact    *contact.Feature
}

// New opens and migrates the store, then builds and registers every feature
func New(ctx context.Context, config *core.Config, logger *core.Logger) (*App, error) {
	s, err := store.Open(ctx, config.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a, err := build(config, logger, s)
	if err != nil {
		s.Close()
		return nil, err
	}
	return a, nil
}

func build(config *core.Config, logger *core.Logger, s store.Store) (*App, error) {
	sender, err := email.NewSender(config.Email, logger)
	if err != nil {
		return nil, err
	}
	queue := email.NewQueue(s, sender, config.Email, logger.ForFeature("email"))
	authService := auth.NewService(s, logger.ForFeature("auth"))

	contentFeature, err := content.NewFeature(logger, s, content.NewConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create content feature: %w", err)
	}
	pricingFeature, err := pricing.NewFeature(logger, pricing.NewConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create pricing feature: %w", err)
	}
	newsletterFeature := newsletter.NewFeature(logger, s, queue, newsletter.NewConfig(config))
	contactFeature := contact.NewFeature(logger, s, queue, contact.NewConfig(config))
	eventsFeature := events.NewFeature(logger, s, contentFeature.Fetcher(), queue, events.NewConfig(config))
	analyticsFeature := analytics.NewFeature(logger, s, analytics.NewConfig(config))

	registry := core.NewRegistry(logger)
	adminFeature := admin.NewFeature(logger, authService, adminhandlers.Deps{
		Content:     contentFeature,
		Email:       queue,
		Subscribers: newsletterFeature.Service().ActiveCount,
		NewMessages: contactFeature.Service().NewCount,
		Features:    registry,
		Links:       outboundLinks(config.Podcast.FeedURL, pricingFeature.Catalog(), contentFeature.Fetcher()),
	}, queue, admin.NewConfig(config))

	for _, feature := range []core.Feature{
		contentFeature,
		eventsFeature,
		newsletterFeature,
		contactFeature,
		pricingFeature,
		analyticsFeature,
		adminFeature,
	} {
		if err := registry.Register(feature); err != nil {
			return nil, err
		}
	}

	return &App{
		Config:     config,
		Logger:     logger,
		Store:      s,
		Queue:      queue,
		Auth:       authService,
		Registry:   registry,
		Content:    contentFeature,
		Newsletter: newsletterFeature,
		Contact:    contactFeature,
	}, nil
}

// outboundLinks lists the external URLs visitors are sent to: the podcast
// feed, every plan's payment link and every event checkout
func outboundLinks(feedURL string, catalog *pricingservices.Catalog, fetcher *contentservices.Fetcher) adminhandlers.LinkSource {
	return func(ctx context.Context) []adminservices.Link {
		var links []adminservices.Link
		if feedURL != "" {
			links = append(links, adminservices.Link{Name: "Podcast feed", URL: feedURL})
		}
		for _, plan := range catalog.Plans() {
			links = append(links, adminservices.Link{Name: "Plan: " + plan.Name, URL: plan.PaymentLink})
		}
		// Live rows only; fallback events carry no real checkout
		events := fetcher.AllEvents(ctx, contentservices.PolicyListing)
		if events.Source == contentservices.SourceLive {
			for _, event := range events.Items {
				if event.CheckoutURL != "" {
					links = append(links, adminservices.Link{Name: "Event: " + event.Title, URL: event.CheckoutURL})
				}
			}
		}
		return links
	}
}

// Close releases the store
func (a *App) Close() error {
	return a.Store.Close()
}
