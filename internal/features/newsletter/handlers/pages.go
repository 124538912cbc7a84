package handlers

import (
	"errors"
	"net/http"

	"clr-site/internal/features/newsletter/models"
	"clr-site/internal/features/newsletter/services"
	"clr-site/internal/views"

	"github.com/a-h/templ"
	"github.com/gorilla/csrf"
)

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil && !errors.Is(err, r.Context().Err()) {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handlers) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrInvalidToken) {
		render(w, r, http.StatusNotFound, views.MessagePage("Invalid Link", msgInvalidLink, views.ToneError))
		return
	}
	h.logger.WithContext(r.Context()).Error("Newsletter page failed", "path", r.URL.Path, "error", err)
	render(w, r, http.StatusInternalServerError, views.MessagePage("Something went wrong", msgTryAgain, views.ToneError))
}

// UnsubscribePage serves the page unsubscribe links in email point at
func (h *Handlers) UnsubscribePage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if _, err := h.service.Lookup(r.Context(), token); err != nil {
		h.pageError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, views.UnsubscribePage(token, csrf.Token(r)))
}

// UnsubscribeForm handles the confirmation form on the unsubscribe page
func (h *Handlers) UnsubscribeForm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unsubscribe(r.Context(), r.PostFormValue("token")); err != nil {
		h.pageError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, views.MessagePage("You're unsubscribed",
		"You have been successfully unsubscribed. You won't receive any more emails from us.", views.ToneSuccess))
}

// PreferencesPage serves the preferences form for the subscriber holding ?token
func (h *Handlers) PreferencesPage(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	sub, err := h.service.Lookup(r.Context(), token)
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, views.PreferencesPage(views.PreferencesForm{
		Token:     token,
		CSRFToken: csrf.Token(r),
		Frequency: sub.Preferences.Frequency,
		Topics:    sub.Preferences.Topics,
		Format:    sub.Preferences.Format,
	}))
}

// PreferencesForm saves the preferences form
func (h *Handlers) PreferencesForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, r, http.StatusBadRequest, views.MessagePage("Something went wrong", msgTryAgain, views.ToneError))
		return
	}

	token := r.PostForm.Get("token")
	prefs := models.Preferences{
		Frequency: r.PostForm.Get("frequency"),
		Topics:    r.PostForm["topics"],
		Format:    r.PostForm.Get("format"),
	}
	form := views.PreferencesForm{
		Token:     token,
		CSRFToken: csrf.Token(r),
		Frequency: prefs.Frequency,
		Topics:    prefs.Topics,
		Format:    prefs.Format,
	}

	err := h.service.UpdatePreferences(r.Context(), token, prefs)
	switch {
	case err == nil:
		form.Saved = true
		render(w, r, http.StatusOK, views.PreferencesPage(form))
	case errors.Is(err, services.ErrInvalidPreferences):
		form.Error = "Please choose a frequency, a format and at least one topic."
		render(w, r, http.StatusBadRequest, views.PreferencesPage(form))
	default:
		h.pageError(w, r, err)
	}
}
