package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/features/content/models"
	"clr-site/internal/store"
)

// Policy decides what an empty live result turns into
type Policy int

const (
	// PolicyWidget substitutes the fallback set for an empty result
	PolicyWidget Policy = iota
	// PolicyListing returns an empty result unchanged so the page can show
	// its empty state
	PolicyListing
)

func (p Policy) String() string {
	if p == PolicyListing {
		return "listing"
	}
	return "widget"
}

// Source tells where the items of a Result came from
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is the outcome of a fail-open fetch. It never carries an error:
// store failures are logged and replaced by the fallback set.
type Result[T any] struct {
	Items  []T    `json:"items"`
	Source Source `json:"source"`
}

// ErrNotFound is returned by single-item lookups. Single-item pages show a
// not-found state rather than fallback content.
var ErrNotFound = errors.New("content not found")

const (
	defaultImageURL     = "/clr-podcast-cover.png"
	viewIncrementBudget = 5 * time.Second
	featuredLimit       = 3
)

// Fetcher reads published content from the store with fail-open fallback
type Fetcher struct {
	store    store.Store
	fallback *FallbackSet
	logger   *core.Logger
	feedURL  string
	now      func() time.Time
	pending  sync.WaitGroup
}

// NewFetcher creates a new content fetcher
func NewFetcher(s store.Store, fallback *FallbackSet, feedURL string, logger *core.Logger) *Fetcher {
	return &Fetcher{
		store:    s,
		fallback: fallback,
		logger:   logger,
		feedURL:  feedURL,
		now:      time.Now,
	}
}

// SetClock overrides the clock used to decide which events are in the future
func (f *Fetcher) SetClock(now func() time.Time) {
	f.now = now
}

// Wait blocks until fire-and-forget side effects have finished
func (f *Fetcher) Wait() {
	f.pending.Wait()
}

// fetch runs q and applies policy. Rows that fail validation are dropped.
func fetch[T any](ctx context.Context, f *Fetcher, kind string, q store.Query, decode func(store.Row) (T, error), fallback func() []T, policy Policy) Result[T] {
	rows, err := f.store.Select(ctx, q)
	if err != nil {
		f.logger.WithContext(ctx).Error("Content fetch failed, serving fallback",
			"kind", kind, "policy", policy.String(), "error", err)
		return Result[T]{Items: fallback(), Source: SourceFallback}
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := decode(row)
		if err != nil {
			f.logger.Warn("Dropping invalid content row", "kind", kind, "id", row["id"], "error", err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 && policy == PolicyWidget {
		return Result[T]{Items: fallback(), Source: SourceFallback}
	}
	return Result[T]{Items: items, Source: SourceLive}
}

func published() store.Filter {
	return store.Eq("status", models.StatusPublished)
}

func newestFirst() []store.Order {
	return []store.Order{{Column: "published_at", Desc: true}}
}

// LatestEpisode returns the newest published episode for the home page player
func (f *Fetcher) LatestEpisode(ctx context.Context) (models.Episode, Source) {
	result := fetch(ctx, f, "episode", store.Query{
		Table:   store.TableEpisodes,
		Filters: []store.Filter{published()},
		Order:   newestFirst(),
		Limit:   1,
	}, models.DecodeEpisode, func() []models.Episode {
		return []models.Episode{f.fallback.Latest()}
	}, PolicyWidget)

	episode := result.Items[0]
	if episode.AudioURL == "" {
		episode.AudioURL = f.feedURL
	}
	if episode.ImageURL == "" {
		episode.ImageURL = defaultImageURL
	}
	return episode, result.Source
}

// Episodes returns published episodes, newest first. A limit <= 0 means no limit.
func (f *Fetcher) Episodes(ctx context.Context, limit int, policy Policy) Result[models.Episode] {
	return fetch(ctx, f, "episode", store.Query{
		Table:   store.TableEpisodes,
		Filters: []store.Filter{published()},
		Order:   newestFirst(),
		Limit:   limit,
	}, models.DecodeEpisode, f.fallback.EpisodeList, policy)
}

// FeaturedEpisodes returns up to three featured episodes
func (f *Fetcher) FeaturedEpisodes(ctx context.Context) Result[models.Episode] {
	return fetch(ctx, f, "episode", store.Query{
		Table:   store.TableEpisodes,
		Filters: []store.Filter{published(), store.Eq("featured", true)},
		Order:   newestFirst(),
		Limit:   featuredLimit,
	}, models.DecodeEpisode, f.fallback.EpisodeList, PolicyWidget)
}

// RecentPosts returns the newest published posts
func (f *Fetcher) RecentPosts(ctx context.Context, limit int, policy Policy) Result[models.Post] {
	return fetch(ctx, f, "post", store.Query{
		Table:   store.TablePosts,
		Filters: []store.Filter{published()},
		Order:   newestFirst(),
		Limit:   limit,
	}, models.DecodePost, f.fallback.PostList, policy)
}

// Posts returns every published post
func (f *Fetcher) Posts(ctx context.Context, policy Policy) Result[models.Post] {
	return f.RecentPosts(ctx, 0, policy)
}

// SearchPosts returns published posts whose title, excerpt or tags contain
// term, case-insensitively. The store narrows by status and category; the
// term is matched here so the result agrees with the listing filter. An
// empty term or the "all" category disables that condition.
func (f *Fetcher) SearchPosts(ctx context.Context, term, category string) Result[models.Post] {
	filters := []store.Filter{published()}
	if category != "" && category != models.CategoryAll {
		filters = append(filters, store.Eq("category", category))
	}

	result := fetch(ctx, f, "post", store.Query{
		Table:   store.TablePosts,
		Filters: filters,
		Order:   newestFirst(),
	}, models.DecodePost, f.fallback.PostList, PolicyListing)

	q := ListingQuery{SearchTerm: strings.TrimSpace(term), Category: category}
	result.Items = Filter(result.Items, q)
	return result
}

// PostBySlug returns one published post and records a view. A missing post
// is ErrNotFound; a store failure is returned as is. The view increment runs
// in the background and its failure never reaches the caller.
func (f *Fetcher) PostBySlug(ctx context.Context, slug string) (models.Post, error) {
	rows, err := f.store.Select(ctx, store.Query{
		Table:   store.TablePosts,
		Filters: []store.Filter{published(), store.Eq("slug", slug)},
		Limit:   1,
	})
	if err != nil {
		f.logger.WithContext(ctx).Error("Failed to fetch post", "slug", slug, "error", err)
		return models.Post{}, fmt.Errorf("failed to fetch post %q: %w", slug, err)
	}
	if len(rows) == 0 {
		return models.Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}

	post, err := models.DecodePost(rows[0])
	if err != nil {
		f.logger.Warn("Dropping invalid post row", "slug", slug, "error", err)
		return models.Post{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
	}

	f.recordView(ctx, post.ID)
	return post, nil
}

func (f *Fetcher) recordView(ctx context.Context, postID int64) {
	f.pending.Add(1)
	go func() {
		defer f.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), viewIncrementBudget)
		defer cancel()

		if _, err := f.store.Call(ctx, store.ProcIncrementBlogViews, store.Args{"post_id": postID}); err != nil {
			f.logger.Warn("Failed to increment blog views", "post_id", postID, "error", err)
		}
	}()
}

// UpcomingEvents returns events that are not completed, soonest first. With
// futureOnly, events dated before today are excluded.
func (f *Fetcher) UpcomingEvents(ctx context.Context, limit int, futureOnly bool, policy Policy) Result[models.Event] {
	filters := []store.Filter{{Column: "status", Op: store.OpNeq, Value: models.StatusCompleted}}
	if futureOnly {
		today := f.now().Format(models.EventDateLayout)
		filters = append(filters, store.Filter{Column: "date", Op: store.OpGte, Value: today})
	}

	return fetch(ctx, f, "event", store.Query{
		Table:   store.TableEvents,
		Filters: filters,
		Order:   []store.Order{{Column: "date"}},
		Limit:   limit,
	}, models.DecodeEvent, f.fallback.EventList, policy)
}

// AllEvents returns every event that is not completed, past ones included
func (f *Fetcher) AllEvents(ctx context.Context, policy Policy) Result[models.Event] {
	return f.UpcomingEvents(ctx, 0, false, policy)
}

// EventByID returns one event. Errors are returned, not replaced by fallback
// content, because registration must never target a fake event.
func (f *Fetcher) EventByID(ctx context.Context, id int64) (models.Event, error) {
	rows, err := f.store.Select(ctx, store.Query{
		Table:   store.TableEvents,
		Filters: []store.Filter{store.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to fetch event %d: %w", id, err)
	}
	if len(rows) == 0 {
		return models.Event{}, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}

	event, err := models.DecodeEvent(rows[0])
	if err != nil {
		return models.Event{}, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return event, nil
}

// Videos returns published videos, newest first
func (f *Fetcher) Videos(ctx context.Context, policy Policy) Result[models.Video] {
	return fetch(ctx, f, "video", store.Query{
		Table:   store.TableVideos,
		Filters: []store.Filter{published()},
		Order:   newestFirst(),
	}, models.DecodeVideo, f.fallback.VideoList, policy)
}

// Stats counts published content and active subscribers. Counts that fail
// are reported as zero.
func (f *Fetcher) Stats(ctx context.Context) models.Stats {
	count := func(table string, filters ...store.Filter) int {
		n, err := f.store.Count(ctx, table, filters...)
		if err != nil {
			f.logger.Error("Failed to count content", "table", table, "error", err)
			return 0
		}
		return n
	}

	return models.Stats{
		Episodes:          count(store.TableEpisodes, published()),
		Posts:             count(store.TablePosts, published()),
		Events:            count(store.TableEvents),
		ActiveSubscribers: count(store.TableSubscribers, store.Eq("status", "active")),
	}
}
