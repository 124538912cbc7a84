package handlers

import (
	"net/http"

	"clr-site/internal/core"
	"clr-site/internal/features/pricing/services"

	"github.com/go-chi/chi/v5"
)

// Handlers contains the pricing HTTP handlers
type Handlers struct {
	logger  *core.Logger
	catalog *services.Catalog
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, catalog *services.Catalog) *Handlers {
	return &Handlers{
		logger:  logger,
		catalog: catalog,
	}
}

// ListPlans serves the pricing cards
func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{"plans": h.catalog.Plans()})
}

// Checkout redirects to a plan's payment page
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "plan")
	target, err := h.catalog.CheckoutURL(slug)
	if err != nil {
		core.HandleError(w, core.NewNotFoundError("Plan not found", err))
		return
	}

	h.logger.Info("Redirecting to checkout", "plan", slug)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
