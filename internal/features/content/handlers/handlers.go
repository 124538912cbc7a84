package handlers

import (
	"errors"
	"net/http"

	"clr-site/internal/core"
	"clr-site/internal/features/content/models"
	"clr-site/internal/features/content/services"

	"github.com/go-chi/chi/v5"
)

// Handlers contains all content feature HTTP handlers
type Handlers struct {
	logger  *core.Logger
	fetcher *services.Fetcher
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, fetcher *services.Fetcher) *Handlers {
	return &Handlers{
		logger:  logger,
		fetcher: fetcher,
	}
}

func listingQuery(r *http.Request) services.ListingQuery {
	q := services.NewListingQuery()
	q.SetSearchTerm(r.URL.Query().Get("q"))
	q.SetCategory(r.URL.Query().Get("category"))
	q.Page = core.QueryInt(r, "page", 1)
	return q
}

// Episode handlers

// LatestEpisode serves the home page player
func (h *Handlers) LatestEpisode(w http.ResponseWriter, r *http.Request) {
	episode, source := h.fetcher.LatestEpisode(r.Context())
	if core.ClientGone(r) {
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"episode": episode, "source": source})
}

// FeaturedEpisodes serves the featured episodes widget
func (h *Handlers) FeaturedEpisodes(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.FeaturedEpisodes(r.Context())
	if core.ClientGone(r) {
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"episodes": result.Items, "source": result.Source})
}

// ListEpisodes serves the searchable podcast listing
func (h *Handlers) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.Episodes(r.Context(), 0, services.PolicyListing)
	if core.ClientGone(r) {
		return
	}
	listing := services.BuildListing(result, listingQuery(r), services.EpisodesPageSize)
	core.WriteJSON(w, http.StatusOK, map[string]any{"listing": listing, "categories": models.PodcastCategories})
}

// Post handlers

// RecentPosts serves the home page blog widget
func (h *Handlers) RecentPosts(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.RecentPosts(r.Context(), core.QueryInt(r, "limit", 3), services.PolicyWidget)
	if core.ClientGone(r) {
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"posts": result.Items, "source": result.Source})
}

// ListPosts serves the searchable blog listing
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.Posts(r.Context(), services.PolicyListing)
	if core.ClientGone(r) {
		return
	}
	listing := services.BuildListing(result, listingQuery(r), services.PostsPageSize)
	core.WriteJSON(w, http.StatusOK, map[string]any{"listing": listing, "categories": models.BlogCategories})
}

// SearchPosts runs the blog search in the store rather than in memory
func (h *Handlers) SearchPosts(w http.ResponseWriter, r *http.Request) {
	q := listingQuery(r)
	result := h.fetcher.SearchPosts(r.Context(), q.SearchTerm, q.Category)
	if core.ClientGone(r) {
		return
	}
	listing := services.BuildListing(result, q, services.PostsPageSize)
	core.WriteJSON(w, http.StatusOK, map[string]any{"listing": listing})
}

// GetPost serves a single post with its rendered body
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.fetcher.PostBySlug(r.Context(), slug)
	if core.ClientGone(r) {
		return
	}
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			core.HandleError(w, core.NewNotFoundError("Post not found", err))
			return
		}
		core.HandleError(w, err)
		return
	}

	body, err := services.RenderMarkdown(post.Content)
	if err != nil {
		h.logger.Error("Failed to render post", "slug", slug, "error", err)
		core.HandleError(w, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"post": post, "content_html": body})
}

// Video handlers

// ListVideos serves the searchable video listing
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.Videos(r.Context(), services.PolicyListing)
	if core.ClientGone(r) {
		return
	}
	listing := services.BuildListing(result, listingQuery(r), services.VideosPageSize)
	core.WriteJSON(w, http.StatusOK, map[string]any{"listing": listing, "categories": models.VideoCategories})
}
