package handlers

import (
	"context"
	"net/http"
	"time"

	"clr-site/internal/core"
	"clr-site/internal/store"
)

// HealthHandler reports whether the site and its store are reachable
type HealthHandler struct {
	store    store.Store
	registry *core.Registry
	logger   *core.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s store.Store, registry *core.Registry, logger *core.Logger) *HealthHandler {
	return &HealthHandler{store: s, registry: registry, logger: logger}
}

// ServeHTTP answers 200 when the store responds and 503 otherwise. The
// site keeps serving fallback content either way.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if _, err := h.store.Count(ctx, store.TableEpisodes); err != nil {
		h.logger.WithContext(r.Context()).Warn("Health check: store unreachable", "error", err)
		status, code = "degraded", http.StatusServiceUnavailable
	}

	core.WriteJSON(w, code, map[string]any{
		"status":   status,
		"service":  "clr-site",
		"store":    h.store.Driver(),
		"features": h.registry.GetFeatureStatus(),
	})
}
