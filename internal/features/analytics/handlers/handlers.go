package handlers

import (
	"net/http"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/features/analytics/services"
)

// Handlers contains all analytics feature HTTP handlers
type Handlers struct {
	logger        *core.Logger
	tracker       *services.Tracker
	secureCookies bool
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, tracker *services.Tracker, secureCookies bool) *Handlers {
	return &Handlers{
		logger:        logger,
		tracker:       tracker,
		secureCookies: secureCookies,
	}
}

// TrackRequest is the body of POST /api/analytics/events. Kind selects a
// domain helper; an empty kind records Event as given.
type TrackRequest struct {
	Kind        string         `json:"kind"`
	Event       services.Event `json:"event"`
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	ContentID   string         `json:"content_id"`
	ContentType string         `json:"content_type"`
	Interaction string         `json:"interaction"`
	Platform    string         `json:"platform"`
	Source      string         `json:"source"`
	BrandVoice  string         `json:"brand_voice"`
	Seconds     int            `json:"seconds"`
	Amount      float64        `json:"amount"`
	Metadata    map[string]any `json:"metadata"`
}

// Validate checks that the fields the kind needs are present
func (t TrackRequest) Validate() error {
	require := func(field, v string) error {
		if v == "" {
			return core.NewValidationError(field+" is required for "+t.Kind, nil)
		}
		return nil
	}

	switch t.Kind {
	case "":
		return require("event.name", t.Event.Name)
	case "page_view":
		return require("path", t.Path)
	case "podcast_play", "blog_read", "event_registration":
		return require("content_id", t.ContentID)
	case "social_share":
		if err := require("platform", t.Platform); err != nil {
			return err
		}
		return require("content_type", t.ContentType)
	case "content_interaction":
		if err := require("content_type", t.ContentType); err != nil {
			return err
		}
		return require("interaction", t.Interaction)
	case "conversion":
		return require("source", t.Source)
	case "newsletter_signup", "feedback":
		return nil
	default:
		return core.NewValidationError("unknown event kind "+t.Kind, nil)
	}
}

// Track records a front-end analytics event. Once the body is accepted
// the response is always 202; delivery problems are only logged.
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		core.HandleError(w, err)
		return
	}

	sess := services.EnsureSession(services.NewCookieStore(w, r, h.secureCookies), time.Now())
	ctx := r.Context()

	switch req.Kind {
	case "page_view":
		h.tracker.TrackPageView(ctx, sess, req.Path, req.Title)
	case "podcast_play":
		h.tracker.TrackPodcastPlay(ctx, sess, req.ContentID, req.Title, req.Seconds)
	case "blog_read":
		h.tracker.TrackBlogRead(ctx, sess, req.ContentID, req.Title, req.BrandVoice, req.Seconds)
	case "newsletter_signup":
		h.tracker.TrackNewsletterSignup(ctx, sess, req.Source)
	case "event_registration":
		h.tracker.TrackEventRegistration(ctx, sess, req.ContentID, req.Title, req.Amount)
	case "feedback":
		h.tracker.TrackFeedback(ctx, sess, req.Source)
	case "social_share":
		h.tracker.TrackSocialShare(ctx, sess, req.Platform, req.ContentType, req.ContentID)
	case "content_interaction":
		h.tracker.TrackContentInteraction(ctx, sess, req.ContentType, req.ContentID, req.Interaction, req.Metadata)
	case "conversion":
		h.tracker.TrackConversion(ctx, sess, req.Source, req.Amount, req.Metadata)
	default:
		h.tracker.Track(ctx, sess, req.Event)
	}

	core.WriteJSON(w, http.StatusAccepted, map[string]any{"session": sess})
}
