package handlers

import (
	"errors"
	"net/http"

	"clr-site/internal/core"
	"clr-site/internal/features/newsletter/models"
	"clr-site/internal/features/newsletter/services"
)

const (
	msgSubscribed        = "Welcome to the transformation! Check your email for confirmation and your first dose of insight."
	msgSubscribedNoEmail = "You're now part of the transformation! Welcome email coming soon."
	msgAlreadySubscribed = "You're already part of the transformation! Check your email for our latest insights."
	msgInvalidLink       = "Invalid link. Please contact us directly."
	msgTryAgain          = "Something went wrong. Please try again or contact us directly."
)

// Handlers contains all newsletter HTTP handlers
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

// Subscribe handles newsletter signups
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req services.SubscribeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}

	result, err := h.service.Subscribe(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	switch {
	case result.Outcome == models.OutcomeAlreadySubscribed:
		core.WriteJSON(w, http.StatusOK, map[string]any{"outcome": result.Outcome, "message": msgAlreadySubscribed})
	case result.WelcomeQueued:
		core.WriteJSON(w, http.StatusCreated, map[string]any{"outcome": result.Outcome, "message": msgSubscribed})
	default:
		core.WriteJSON(w, http.StatusCreated, map[string]any{"outcome": result.Outcome, "message": msgSubscribedNoEmail})
	}
}

type tokenRequest struct {
	Token string `json:"token"`
}

// Unsubscribe handles unsubscribe requests from the site
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}

	if err := h.service.Unsubscribe(r.Context(), req.Token); err != nil {
		h.handleError(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"message": "You have been successfully unsubscribed."})
}

// GetPreferences returns the preferences of the subscriber holding ?token
func (h *Handlers) GetPreferences(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Lookup(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"preferences": sub.Preferences, "status": sub.Status})
}

type preferencesRequest struct {
	Token       string             `json:"token"`
	Preferences models.Preferences `json:"preferences"`
}

// UpdatePreferences replaces a subscriber's preferences
func (h *Handlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}

	if err := h.service.UpdatePreferences(r.Context(), req.Token, req.Preferences); err != nil {
		h.handleError(w, r, err)
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"message": "Your email preferences have been updated successfully."})
}

func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail):
		core.HandleError(w, core.NewValidationError("Please enter a valid email address.", err))
	case errors.Is(err, services.ErrInvalidPreferences):
		core.HandleError(w, core.NewValidationError(err.Error(), err))
	case errors.Is(err, services.ErrInvalidToken):
		core.HandleError(w, core.NewAppError(core.ErrCodeInvalidToken, msgInvalidLink, err))
	default:
		h.logger.WithContext(r.Context()).Error("Newsletter request failed", "path", r.URL.Path, "error", err)
		core.HandleError(w, core.NewDatabaseError(msgTryAgain, err))
	}
}
