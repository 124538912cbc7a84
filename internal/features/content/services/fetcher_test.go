package services

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/features/content/models"
	"clr-site/internal/store"
	"clr-site/internal/store/storetest"
)

const testFeedURL = "https://feeds.captivate.fm/therealchefliferadio/"

func newTestFetcher(t *testing.T, s store.Store) *Fetcher {
	t.Helper()

	fallback, err := LoadFallback()
	if err != nil {
		t.Fatalf("LoadFallback() error = %v", err)
	}
	return NewFetcher(s, fallback, testFeedURL, core.NewDiscardLogger())
}

func insert(t *testing.T, s store.Store, table string, row store.Row) store.Row {
	t.Helper()

	inserted, err := s.Insert(context.Background(), table, row)
	if err != nil {
		t.Fatalf("Insert(%s) error = %v", table, err)
	}
	return inserted
}

func TestFetcherFallsBackOnStoreError(t *testing.T) {
	f := newTestFetcher(t, storetest.Failing{Err: errors.New("connection refused")})
	ctx := context.Background()
	fallback := MustLoadFallback()

	for _, policy := range []Policy{PolicyWidget, PolicyListing} {
		episodes := f.Episodes(ctx, 1, policy)
		if episodes.Source != SourceFallback || !reflect.DeepEqual(episodes.Items, fallback.EpisodeList()) {
			t.Errorf("%s: expected episode fallback set, got %+v", policy, episodes)
		}

		posts := f.RecentPosts(ctx, 3, policy)
		if posts.Source != SourceFallback || !reflect.DeepEqual(posts.Items, fallback.PostList()) {
			t.Errorf("%s: expected post fallback set, got %+v", policy, posts)
		}

		events := f.UpcomingEvents(ctx, 3, true, policy)
		if events.Source != SourceFallback || !reflect.DeepEqual(events.Items, fallback.EventList()) {
			t.Errorf("%s: expected event fallback set, got %+v", policy, events)
		}

		videos := f.Videos(ctx, policy)
		if videos.Source != SourceFallback || len(videos.Items) == 0 {
			t.Errorf("%s: expected video fallback set, got %+v", policy, videos)
		}
	}

	latest, source := f.LatestEpisode(ctx)
	if source != SourceFallback || latest.Title != "Breaking the Toxic Kitchen Culture: The Mirror Episode" {
		t.Errorf("Expected fallback latest episode, got %q from %s", latest.Title, source)
	}
}

func TestFetcherEmptyResultPolicies(t *testing.T) {
	f := newTestFetcher(t, storetest.New(t))
	ctx := context.Background()

	widget := f.RecentPosts(ctx, 3, PolicyWidget)
	if widget.Source != SourceFallback || len(widget.Items) == 0 {
		t.Errorf("Expected widget policy to substitute fallback, got %+v", widget)
	}

	listing := f.Posts(ctx, PolicyListing)
	if listing.Source != SourceLive || len(listing.Items) != 0 {
		t.Errorf("Expected listing policy to keep the empty result, got %+v", listing)
	}

	events := f.AllEvents(ctx, PolicyListing)
	if events.Source != SourceLive || len(events.Items) != 0 {
		t.Errorf("Expected empty event listing, got %+v", events)
	}
}

func TestFetcherNeverMergesFallbackWithLiveRows(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)

	insert(t, s, store.TablePosts, store.Row{
		"slug": "only-post", "title": "Only Post", "status": models.StatusPublished,
		"published_at": time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	result := f.RecentPosts(context.Background(), 3, PolicyWidget)
	if result.Source != SourceLive || len(result.Items) != 1 || result.Items[0].Slug != "only-post" {
		t.Errorf("Expected exactly the live post, got %+v", result)
	}
}

func TestFetcherLatestEpisodeIsUnmodified(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)
	published := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	insert(t, s, store.TableEpisodes, store.Row{
		"guid": "old", "title": "Older", "status": models.StatusPublished,
		"published_at": published.AddDate(0, -1, 0),
	})
	insert(t, s, store.TableEpisodes, store.Row{
		"guid": "draft", "title": "Draft", "status": models.StatusDraft,
		"published_at": published.AddDate(0, 1, 0),
	})
	row := insert(t, s, store.TableEpisodes, store.Row{
		"guid":           "new",
		"title":          "Sustainable Success",
		"description":    "Building without burning out",
		"audio_url":      "https://cdn.example.com/ep.mp3",
		"image_url":      "/cover.png",
		"duration":       "35:45",
		"episode_number": int64(12),
		"guest_name":     "Maria Rodriguez",
		"category":       "Wellness",
		"tags":           `["burnout","wellness"]`,
		"status":         models.StatusPublished,
		"published_at":   published,
	})

	result := f.Episodes(context.Background(), 1, PolicyListing)
	if result.Source != SourceLive || len(result.Items) != 1 {
		t.Fatalf("Expected one live episode, got %+v", result)
	}

	want, err := models.DecodeEpisode(row)
	if err != nil {
		t.Fatalf("DecodeEpisode() error = %v", err)
	}
	got := result.Items[0]
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Episode = %+v\nwant %+v", got, want)
	}
	if !got.PublishedAt.Equal(published) || got.EpisodeNumber != 12 || !reflect.DeepEqual(got.Tags, []string{"burnout", "wellness"}) {
		t.Errorf("Episode fields were altered: %+v", got)
	}
}

func TestFetcherLatestEpisodeDefaults(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)

	insert(t, s, store.TableEpisodes, store.Row{
		"guid": "bare", "title": "Bare Episode", "status": models.StatusPublished,
		"published_at": time.Now().UTC(),
	})

	episode, source := f.LatestEpisode(context.Background())
	if source != SourceLive {
		t.Fatalf("Expected live episode, got %s", source)
	}
	if episode.AudioURL != testFeedURL || episode.ImageURL != "/clr-podcast-cover.png" {
		t.Errorf("Expected feed and cover defaults, got %q and %q", episode.AudioURL, episode.ImageURL)
	}
}

func TestFetcherFutureEventsOnly(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)
	f.SetClock(func() time.Time { return time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC) })

	for _, e := range []store.Row{
		{"title": "Next Month", "date": "2026-11-20", "status": models.StatusUpcoming},
		{"title": "Last Week", "date": "2026-10-10", "status": models.StatusUpcoming},
		{"title": "Today", "date": "2026-10-17", "status": models.StatusUpcoming},
		{"title": "Done Early", "date": "2026-10-30", "status": models.StatusCompleted},
		{"title": "Tomorrow", "date": "2026-10-18", "status": models.StatusUpcoming},
	} {
		insert(t, s, store.TableEvents, e)
	}

	result := f.UpcomingEvents(context.Background(), 3, true, PolicyListing)
	var titles []string
	for _, e := range result.Items {
		titles = append(titles, e.Title)
	}
	if want := []string{"Today", "Tomorrow", "Next Month"}; !reflect.DeepEqual(titles, want) {
		t.Errorf("UpcomingEvents() = %v, want %v", titles, want)
	}

	all := f.AllEvents(context.Background(), PolicyListing)
	if len(all.Items) != 4 || all.Items[0].Title != "Last Week" {
		t.Errorf("Expected all four non-completed events soonest first, got %+v", all.Items)
	}
}

func TestFetcherDropsInvalidRows(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)

	insert(t, s, store.TableVideos, store.Row{"title": "   ", "status": models.StatusPublished})
	insert(t, s, store.TableVideos, store.Row{"title": "Toxic vs. Tough", "status": models.StatusPublished})

	result := f.Videos(context.Background(), PolicyListing)
	if len(result.Items) != 1 || result.Items[0].Title != "Toxic vs. Tough" {
		t.Errorf("Expected only the valid video, got %+v", result.Items)
	}
}

func TestPostBySlug(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)
	ctx := context.Background()

	insert(t, s, store.TablePosts, store.Row{
		"slug": "mirror", "title": "The Mirror", "content": "# Look closer", "status": models.StatusPublished,
	})
	insert(t, s, store.TablePosts, store.Row{
		"slug": "unfinished", "title": "Unfinished", "status": models.StatusDraft,
	})

	post, err := f.PostBySlug(ctx, "mirror")
	if err != nil {
		t.Fatalf("PostBySlug() error = %v", err)
	}
	f.Wait()

	post, err = f.PostBySlug(ctx, "mirror")
	if err != nil {
		t.Fatalf("PostBySlug() error = %v", err)
	}
	f.Wait()
	if post.Views != 1 {
		t.Errorf("Expected the first read to be counted, got %d views", post.Views)
	}

	if _, err := f.PostBySlug(ctx, "unfinished"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected drafts to be hidden, got %v", err)
	}
	if _, err := f.PostBySlug(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	down := errors.New("down")
	failing := newTestFetcher(t, storetest.Failing{Err: down})
	_, err = failing.PostBySlug(ctx, "mirror")
	if !errors.Is(err, down) || errors.Is(err, ErrNotFound) {
		t.Errorf("Expected the store failure to be returned, got %v", err)
	}
}

// viewFailingStore serves reads but rejects procedure calls
type viewFailingStore struct {
	store.Store
}

func (viewFailingStore) Call(context.Context, string, store.Args) (store.Row, error) {
	return nil, errors.New("procedure unavailable")
}

func TestPostBySlugSwallowsViewFailures(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, viewFailingStore{Store: s})

	insert(t, s, store.TablePosts, store.Row{"slug": "p", "title": "P", "status": models.StatusPublished})

	post, err := f.PostBySlug(context.Background(), "p")
	f.Wait()
	if err != nil || post.Slug != "p" {
		t.Fatalf("PostBySlug() = %+v, %v", post, err)
	}
}

func TestSearchPosts(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)

	insert(t, s, store.TablePosts, store.Row{
		"slug": "a", "title": "The MIRROR doesn't lie", "category": "Transformation", "status": models.StatusPublished,
	})
	insert(t, s, store.TablePosts, store.Row{
		"slug": "b", "title": "Toxic normal", "category": "Culture Change", "tags": `["mirror work"]`, "status": models.StatusPublished,
	})
	insert(t, s, store.TablePosts, store.Row{
		"slug": "c", "title": "Passion", "category": "Mindset", "status": models.StatusPublished,
	})

	result := f.SearchPosts(context.Background(), "mirror", models.CategoryAll)
	if len(result.Items) != 2 {
		t.Errorf("Expected title and tag matches, got %+v", result.Items)
	}

	result = f.SearchPosts(context.Background(), "mirror", "Culture Change")
	if len(result.Items) != 1 || result.Items[0].Slug != "b" {
		t.Errorf("Expected category to narrow results, got %+v", result.Items)
	}

	result = f.SearchPosts(context.Background(), "nothing matches", models.CategoryAll)
	if result.Source != SourceLive || len(result.Items) != 0 {
		t.Errorf("Expected empty live result, got %+v", result)
	}
}

func TestSearchPostsAgreesWithListingFilter(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)
	ctx := context.Background()

	insert(t, s, store.TablePosts, store.Row{
		"slug": "creme", "title": "Crème brûlée under pressure", "category": "Mindset", "status": models.StatusPublished,
	})
	insert(t, s, store.TablePosts, store.Row{
		"slug": "mise", "title": "Why mise_en_place matters", "category": "Mindset", "status": models.StatusPublished,
	})
	insert(t, s, store.TablePosts, store.Row{
		"slug": "rnd", "title": "Test kitchen", "category": "Mindset", "tags": `["R\u0026D"]`, "status": models.StatusPublished,
	})
	insert(t, s, store.TablePosts, store.Row{
		"slug": "plain", "title": "Miseenplace without the underscores", "category": "Mindset", "status": models.StatusPublished,
	})

	tests := []struct {
		term string
		want []string
	}{
		{"CRÈME", []string{"creme"}},
		{"mise_en_place", []string{"mise"}},
		{"r&d", []string{"rnd"}},
		{"100%", nil},
	}
	for _, tt := range tests {
		got := f.SearchPosts(ctx, tt.term, models.CategoryAll)

		inMemory := Filter(f.Posts(ctx, PolicyListing).Items, ListingQuery{SearchTerm: tt.term, Category: models.CategoryAll})
		if len(got.Items) != len(inMemory) {
			t.Errorf("term %q: search found %d posts, listing filter %d", tt.term, len(got.Items), len(inMemory))
		}

		var slugs []string
		for _, p := range got.Items {
			slugs = append(slugs, p.Slug)
		}
		if !slices.Equal(slugs, tt.want) {
			t.Errorf("term %q: got %v, want %v", tt.term, slugs, tt.want)
		}
	}
}

func TestSearchPostsFiltersFallback(t *testing.T) {
	f := newTestFetcher(t, storetest.Failing{Err: errors.New("down")})

	result := f.SearchPosts(context.Background(), "no fallback post says this", models.CategoryAll)
	if result.Source != SourceFallback || len(result.Items) != 0 {
		t.Errorf("Expected the fallback set to be searched too, got %+v", result)
	}
}

func TestStats(t *testing.T) {
	s := storetest.New(t)
	f := newTestFetcher(t, s)

	insert(t, s, store.TableEpisodes, store.Row{"guid": "1", "title": "E", "status": models.StatusPublished})
	insert(t, s, store.TablePosts, store.Row{"slug": "d", "title": "Draft", "status": models.StatusDraft})
	insert(t, s, store.TableEvents, store.Row{"title": "Live", "date": "2026-11-01"})
	insert(t, s, store.TableSubscribers, store.Row{"email": "a@b.co", "unsubscribe_token": "t1", "status": "active"})
	insert(t, s, store.TableSubscribers, store.Row{"email": "c@d.co", "unsubscribe_token": "t2", "status": "unsubscribed"})

	want := models.Stats{Episodes: 1, Posts: 0, Events: 1, ActiveSubscribers: 1}
	if got := f.Stats(context.Background()); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	failing := newTestFetcher(t, storetest.Failing{Err: errors.New("down")})
	if got := failing.Stats(context.Background()); got != (models.Stats{}) {
		t.Errorf("Expected zero stats on failure, got %+v", got)
	}
}

func TestFallbackCopiesAreIndependent(t *testing.T) {
	set := MustLoadFallback()

	posts := set.PostList()
	posts[0].Title = "changed"
	posts[0].Tags[0] = "changed"

	again := set.PostList()
	if again[0].Title == "changed" || again[0].Tags[0] == "changed" {
		t.Error("Expected fallback content to be immune to caller mutation")
	}
	if len(set.EventList()) != 2 || len(set.VideoList()) != 6 || len(set.EpisodeList()) != 4 {
		t.Error("Unexpected fallback set sizes")
	}
}
