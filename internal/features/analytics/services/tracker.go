package services

import (
	"context"
	"sync"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/store"
)

// Event is one tracked interaction
type Event struct {
	Name       string         `json:"name"`
	Category   string         `json:"category"`
	Label      string         `json:"label,omitempty"`
	Value      *float64       `json:"value,omitempty"`
	PagePath   string         `json:"page_path,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// maxQueued bounds the events held before Init
const maxQueued = 500

type queued struct {
	sess  Session
	event Event
}

// Tracker fans events out to its sinks. Events tracked before Init are
// queued and delivered when Init runs. Sink failures are logged and never
// returned.
type Tracker struct {
	store  store.Store
	sinks  []Sink
	logger *core.Logger
	now    func() time.Time

	mu          sync.Mutex
	initialized bool
	queue       []queued
}

// NewTracker creates a tracker. s backs the interaction and conversion
// procedures and may be nil to skip them.
func NewTracker(s store.Store, logger *core.Logger, sinks ...Sink) *Tracker {
	return &Tracker{
		store:  s,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}
}

// Init starts delivery and flushes the queue
func (t *Tracker) Init(ctx context.Context) {
	t.mu.Lock()
	if t.initialized {
		t.mu.Unlock()
		return
	}
	t.initialized = true
	pending := t.queue
	t.queue = nil
	t.mu.Unlock()

	for _, q := range pending {
		t.deliver(ctx, q.sess, q.event)
	}
	if len(pending) > 0 {
		t.logger.Info("Flushed queued analytics events", "count", len(pending))
	}
}

// Initialized reports whether Init has run
func (t *Tracker) Initialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

// Track enriches an event with session context and delivers it
func (t *Tracker) Track(ctx context.Context, sess Session, event Event) {
	if event.Properties == nil {
		event.Properties = make(map[string]any)
	}
	event.Properties["timestamp"] = t.now().UTC().Format(time.RFC3339)
	if event.PagePath != "" {
		if _, ok := event.Properties["site_section"]; !ok {
			event.Properties["site_section"] = SiteSection(event.PagePath)
		}
	}

	t.mu.Lock()
	if !t.initialized {
		if len(t.queue) < maxQueued {
			t.queue = append(t.queue, queued{sess: sess, event: event})
		} else {
			t.logger.Warn("Analytics queue full, dropping event", "event", event.Name)
		}
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	t.deliver(ctx, sess, event)
}

func (t *Tracker) deliver(ctx context.Context, sess Session, event Event) {
	for _, sink := range t.sinks {
		if err := sink.Send(ctx, sess, event); err != nil {
			t.logger.WithContext(ctx).Warn("Analytics sink failed",
				"sink", sink.Name(), "event", event.Name, "error", err)
		}
	}
}

func (t *Tracker) call(ctx context.Context, proc string, args store.Args) {
	if t.store == nil {
		return
	}
	if _, err := t.store.Call(ctx, proc, args); err != nil {
		t.logger.WithContext(ctx).Warn("Analytics procedure failed", "procedure", proc, "error", err)
	}
}

func value(v float64) *float64 {
	return &v
}

// TrackPageView records a page view with its section and content type
func (t *Tracker) TrackPageView(ctx context.Context, sess Session, path, title string) {
	t.Track(ctx, sess, Event{
		Name:     "page_view",
		Category: "engagement",
		Label:    path,
		PagePath: path,
		Properties: map[string]any{
			"page_title":         title,
			"content_type":       ContentType(path),
			"user_journey_stage": "discovery",
		},
	})
}

// TrackPodcastPlay records an episode play. duration is in seconds and
// may be zero when unknown.
func (t *Tracker) TrackPodcastPlay(ctx context.Context, sess Session, episodeID, title string, duration int) {
	t.Track(ctx, sess, Event{
		Name:     "podcast_play",
		Category: "audio_engagement",
		Label:    title,
		Properties: map[string]any{
			"content_type":       "podcast",
			"content_id":         episodeID,
			"content_category":   "audio_content",
			"user_journey_stage": "engagement",
			"content_theme":      ContentTheme(title),
		},
	})

	meta := map[string]any{"episode_title": title}
	if duration > 0 {
		meta["duration"] = duration
	}
	t.TrackContentInteraction(ctx, sess, "podcast", episodeID, "play", meta)
}

// TrackBlogRead records a post read. readTime is in seconds and may be zero.
func (t *Tracker) TrackBlogRead(ctx context.Context, sess Session, postID, title, brandVoice string, readTime int) {
	props := map[string]any{
		"content_type":       "blog",
		"content_id":         postID,
		"content_category":   "article_content",
		"user_journey_stage": "engagement",
		"content_theme":      ContentTheme(title),
	}
	if brandVoice != "" {
		props["brand_voice"] = brandVoice
	}
	if readTime > 0 {
		props["read_time"] = readTime
	}
	t.Track(ctx, sess, Event{Name: "blog_read", Category: "content_engagement", Label: title, Properties: props})

	t.TrackContentInteraction(ctx, sess, "blog", postID, "view", map[string]any{"post_title": title})
}

// TrackNewsletterSignup records a signup conversion
func (t *Tracker) TrackNewsletterSignup(ctx context.Context, sess Session, source string) {
	if source == "" {
		source = "website"
	}
	t.Track(ctx, sess, Event{
		Name:     "newsletter_signup",
		Category: "conversion",
		Label:    "newsletter_form",
		Value:    value(1),
		Properties: map[string]any{
			"source":             source,
			"user_journey_stage": "conversion",
			"content_theme":      "community_building",
		},
	})
	t.TrackConversion(ctx, sess, "newsletter_signup", 1, map[string]any{"source": source})
}

// TrackEventRegistration records a ticket registration conversion
func (t *Tracker) TrackEventRegistration(ctx context.Context, sess Session, eventID, title string, ticketPrice float64) {
	t.Track(ctx, sess, Event{
		Name:     "event_registration",
		Category: "conversion",
		Label:    title,
		Value:    value(ticketPrice),
		Properties: map[string]any{
			"content_type":       "event",
			"content_id":         eventID,
			"user_journey_stage": "conversion",
			"content_theme":      "live_events",
		},
	})
	t.TrackConversion(ctx, sess, "event_registration", ticketPrice, map[string]any{
		"event_id":     eventID,
		"event_title":  title,
		"ticket_price": ticketPrice,
	})
}

// TrackFeedback records a feedback widget submission
func (t *Tracker) TrackFeedback(ctx context.Context, sess Session, feedbackType string) {
	if feedbackType == "" {
		feedbackType = "general"
	}
	t.Track(ctx, sess, Event{
		Name:     "feedback_submission",
		Category: "conversion",
		Label:    "feedback_form",
		Value:    value(1),
		Properties: map[string]any{
			"feedback_type":      feedbackType,
			"user_journey_stage": "engagement",
			"content_theme":      "user_feedback",
		},
	})
	t.TrackConversion(ctx, sess, "feedback_submission", 1, map[string]any{
		"feedback_type": feedbackType,
		"source":        "floating_widget",
	})
}

// TrackSocialShare records a share of some content to a platform
func (t *Tracker) TrackSocialShare(ctx context.Context, sess Session, platform, contentType, contentID string) {
	t.Track(ctx, sess, Event{
		Name:     "social_share",
		Category: "social_engagement",
		Label:    platform + "_" + contentType,
		Properties: map[string]any{
			"platform":           platform,
			"content_type":       contentType,
			"content_id":         contentID,
			"user_journey_stage": "engagement",
		},
	})
}

// TrackContentInteraction records an interaction event and stores it
// through the track_content_interaction procedure
func (t *Tracker) TrackContentInteraction(ctx context.Context, sess Session, contentType, contentID, interaction string, meta map[string]any) {
	t.Track(ctx, sess, Event{
		Name:     contentType + "_" + interaction,
		Category: "content_engagement",
		Label:    contentType + "_" + contentID,
		Properties: map[string]any{
			"content_type":     contentType,
			"content_id":       contentID,
			"interaction_type": interaction,
		},
	})
	t.call(ctx, store.ProcTrackContentInteraction, store.Args{
		"user_id":          sess.UserID,
		"session_id":       sess.SessionID,
		"content_type":     contentType,
		"content_id":       contentID,
		"interaction_type": interaction,
		"metadata":         meta,
	})
}

// TrackConversion records a conversion event and stores it through the
// track_conversion procedure
func (t *Tracker) TrackConversion(ctx context.Context, sess Session, conversionType string, amount float64, meta map[string]any) {
	t.Track(ctx, sess, Event{
		Name:     "conversion",
		Category: "conversion",
		Label:    conversionType,
		Value:    value(amount),
	})
	t.call(ctx, store.ProcTrackConversion, store.Args{
		"user_id":         sess.UserID,
		"session_id":      sess.SessionID,
		"conversion_type": conversionType,
		"value":           amount,
		"metadata":        meta,
	})
}
