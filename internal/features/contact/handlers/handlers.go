package handlers

import (
	"errors"
	"net/http"

	"clr-site/internal/core"
	"clr-site/internal/features/contact/models"
	"clr-site/internal/features/contact/services"
)

// Handlers contains the contact form HTTP handlers
type Handlers struct {
	logger  *core.Logger
	service *services.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, service *services.Service) *Handlers {
	return &Handlers{
		logger:  logger,
		service: service,
	}
}

// Submit handles contact form submissions
func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var msg models.Message
	if err := core.DecodeJSON(w, r, &msg); err != nil {
		core.HandleError(w, err)
		return
	}

	receipt, err := h.service.Submit(r.Context(), msg)
	if err != nil {
		var appErr *core.AppError
		if errors.As(err, &appErr) {
			core.HandleError(w, appErr)
			return
		}
		h.logger.WithContext(r.Context()).Error("Contact submission failed", "error", err)
		core.HandleError(w, core.NewDatabaseError(
			"Something went wrong. Please try again or email us directly at hello@chefliferadio.com", err))
		return
	}

	message := "Thank you! Your message has been sent and you'll receive a confirmation email shortly. We'll respond within 24 hours."
	if !receipt.EmailQueued {
		message = "Thank you! Your message has been sent successfully. We'll respond within 24 hours."
	}
	core.WriteJSON(w, http.StatusCreated, map[string]any{"message": message})
}

// Purposes lists the choices for the contact form
func (h *Handlers) Purposes(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{"purposes": models.Purposes})
}
