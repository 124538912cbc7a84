package handlers

import (
	"context"
	"net/http"

	"clr-site/internal/core"
	"clr-site/internal/email"
	"clr-site/internal/features/admin/services"
	contentmodels "clr-site/internal/features/content/models"
	contentservices "clr-site/internal/features/content/services"
)

// ContentSource reports content counts and runs feed syncs
type ContentSource interface {
	Stats(ctx context.Context) contentmodels.Stats
	SyncFeed(ctx context.Context) (contentservices.SyncResult, error)
}

// EmailQueue reports on and drains the outgoing email queue
type EmailQueue interface {
	Stats(ctx context.Context) (email.Stats, error)
	ProcessPending(ctx context.Context, limit int) (email.DispatchResult, error)
}

// Counter returns a single count, such as active subscribers
type Counter func(ctx context.Context) (int, error)

// StatusLister lists registered features
type StatusLister interface {
	GetFeatureStatus() []core.FeatureStatus
}

// LinkSource lists the outbound links to monitor
type LinkSource func(ctx context.Context) []services.Link

// Deps are the services the admin API reads from
type Deps struct {
	Content     ContentSource
	Email       EmailQueue
	Subscribers Counter
	NewMessages Counter
	Features    StatusLister
	Links       LinkSource
}

// DefaultBatch is how many queued emails one processing request sends
const DefaultBatch = 50

// Handlers contains all admin API handlers
type Handlers struct {
	logger  *core.Logger
	deps    Deps
	monitor *services.LinkMonitor
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, deps Deps, monitor *services.LinkMonitor) *Handlers {
	return &Handlers{logger: logger, deps: deps, monitor: monitor}
}

// Stats serves the dashboard counters. A failing counter is logged and
// reported as zero so the rest of the dashboard still loads.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.WithContext(ctx)

	count := func(name string, fn Counter) int {
		if fn == nil {
			return 0
		}
		n, err := fn(ctx)
		if err != nil {
			logger.Error("Failed to load admin counter", "counter", name, "error", err)
			return 0
		}
		return n
	}

	emailStats, err := h.deps.Email.Stats(ctx)
	if err != nil {
		logger.Error("Failed to load email stats", "error", err)
	}

	core.WriteJSON(w, http.StatusOK, map[string]any{
		"content":      h.deps.Content.Stats(ctx),
		"email":        emailStats,
		"subscribers":  count("subscribers", h.deps.Subscribers),
		"new_messages": count("new_messages", h.deps.NewMessages),
	})
}

// Features lists every registered feature and whether it is enabled
func (h *Handlers) Features(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{"features": h.deps.Features.GetFeatureStatus()})
}

// SyncFeed imports new episodes from the podcast feed now
func (h *Handlers) SyncFeed(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Content.SyncFeed(r.Context())
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Manual feed sync failed", "error", err)
		core.HandleError(w, core.NewInternalError("Feed sync failed", err))
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"sync": result})
}

// ProcessEmail sends a batch of pending emails now
func (h *Handlers) ProcessEmail(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Email.ProcessPending(r.Context(), core.QueryInt(r, "limit", DefaultBatch))
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Manual email processing failed", "error", err)
		core.HandleError(w, core.NewDatabaseError("Email processing failed", err))
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"dispatch": result})
}

// Links returns the latest status of every monitored link
func (h *Handlers) Links(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{"links": h.monitor.Latest()})
}

// CheckLinks checks every monitored link now
func (h *Handlers) CheckLinks(w http.ResponseWriter, r *http.Request) {
	var links []services.Link
	if h.deps.Links != nil {
		links = h.deps.Links(r.Context())
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"links": h.monitor.CheckAll(r.Context(), links)})
}
