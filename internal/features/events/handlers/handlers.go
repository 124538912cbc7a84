package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"clr-site/internal/core"
	contentmodels "clr-site/internal/features/content/models"
	contentservices "clr-site/internal/features/content/services"
	"clr-site/internal/features/events/services"

	"github.com/go-chi/chi/v5"
)

const msgRegistrationFailed = "Registration failed. Please try again or contact us directly."

// Handlers contains all events feature HTTP handlers
type Handlers struct {
	logger  *core.Logger
	fetcher *contentservices.Fetcher
	service *services.Service
	now     func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(logger *core.Logger, fetcher *contentservices.Fetcher, service *services.Service) *Handlers {
	return &Handlers{
		logger:  logger,
		fetcher: fetcher,
		service: service,
		now:     time.Now,
	}
}

type eventView struct {
	contentmodels.Event
	SpotsLeft     int    `json:"spots_left"`
	CapacityLevel string `json:"capacity_level"`
}

func viewsOf(events []contentmodels.Event) []eventView {
	out := make([]eventView, len(events))
	for i, e := range events {
		out[i] = eventView{Event: e, SpotsLeft: e.SpotsLeft(), CapacityLevel: services.CapacityLevel(e)}
	}
	return out
}

func eventID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewNotFoundError("Event not found", err)
	}
	return id, nil
}

// ListEvents serves the Events page: upcoming and past events
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.AllEvents(r.Context(), contentservices.PolicyListing)
	if core.ClientGone(r) {
		return
	}

	upcoming, past := services.Partition(result.Items, h.now())
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"upcoming": viewsOf(upcoming),
		"past":     viewsOf(past),
		"empty":    len(result.Items) == 0,
		"source":   result.Source,
	})
}

// UpcomingEvents serves the home page events widget
func (h *Handlers) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	result := h.fetcher.UpcomingEvents(r.Context(), core.QueryInt(r, "limit", 3), true, contentservices.PolicyWidget)
	if core.ClientGone(r) {
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{"events": viewsOf(result.Items), "source": result.Source})
}

// Calendar serves events grouped by day for ?month=YYYY-MM
func (h *Handlers) Calendar(w http.ResponseWriter, r *http.Request) {
	month := h.now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			core.HandleError(w, core.NewValidationError("month must be formatted YYYY-MM", err))
			return
		}
		month = parsed
	}

	result := h.fetcher.AllEvents(r.Context(), contentservices.PolicyWidget)
	if core.ClientGone(r) {
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"month":  month.Format("2006-01"),
		"days":   services.Calendar(result.Items, month),
		"source": result.Source,
	})
}

// GetEvent serves one event
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	event, err := h.fetcher.EventByID(r.Context(), id)
	if core.ClientGone(r) {
		return
	}
	if err != nil {
		if errors.Is(err, contentservices.ErrNotFound) {
			core.HandleError(w, core.NewNotFoundError("Event not found", err))
			return
		}
		h.logger.WithContext(r.Context()).Error("Failed to load event", "event_id", id, "error", err)
		core.HandleError(w, err)
		return
	}

	core.WriteJSON(w, http.StatusOK, map[string]any{"event": viewsOf([]contentmodels.Event{event})[0]})
}

// Register signs an attendee up for an event
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	var reg services.Registration
	if err := core.DecodeJSON(w, r, &reg); err != nil {
		core.HandleError(w, err)
		return
	}

	confirmation, err := h.service.Register(r.Context(), id, reg)
	if err != nil {
		var appErr *core.AppError
		switch {
		case errors.As(err, &appErr):
			core.HandleError(w, appErr)
		case errors.Is(err, services.ErrSoldOut):
			core.HandleError(w, core.NewAppError(core.ErrCodeSoldOut, "Sorry, this event is sold out.", err))
		case errors.Is(err, services.ErrEventNotFound):
			core.HandleError(w, core.NewNotFoundError("Event not found", err))
		default:
			h.logger.WithContext(r.Context()).Error("Event registration failed", "event_id", id, "error", err)
			core.HandleError(w, core.NewDatabaseError(msgRegistrationFailed, err))
		}
		return
	}

	message := "Registration successful! Check your email for confirmation and event details."
	if !confirmation.EmailQueued {
		message = "Registration successful! Confirmation email coming soon."
	}
	core.WriteJSON(w, http.StatusCreated, map[string]any{"registration": confirmation, "message": message})
}

// Checkout redirects to the event's external payment page
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	event, err := h.fetcher.EventByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, contentservices.ErrNotFound) {
			core.HandleError(w, core.NewNotFoundError("Event not found", err))
			return
		}
		core.HandleError(w, err)
		return
	}

	target, err := services.CheckoutURL(event)
	if err != nil {
		core.HandleError(w, core.NewNotFoundError("This event has no online checkout", err))
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
