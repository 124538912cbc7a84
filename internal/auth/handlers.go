package auth

import (
	"errors"
	"net/http"
	"time"

	"clr-site/internal/core"
)

// CookieName holds the admin session token
const CookieName = "clr_admin_token"

// Handler provides authentication HTTP handlers
type Handler struct {
	service       *Service
	logger        *core.Logger
	secureCookies bool
}

// NewHandler creates a new authentication handler
func NewHandler(service *Service, logger *core.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	User  *User  `json:"user"`
	Token *Token `json:"token"`
}

// LoginHandler handles admin login
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		core.HandleError(w, core.NewValidationError("Email and password are required", nil))
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.HandleError(w, core.NewUnauthorizedError("Invalid credentials", err))
		case errors.Is(err, ErrUserNotActivated):
			core.HandleError(w, core.NewAppError(core.ErrCodeForbidden, "Account not activated", err))
		default:
			h.logger.WithContext(r.Context()).Error("Authentication error", "error", err)
			core.HandleError(w, core.NewInternalError("Authentication failed", err))
		}
		return
	}

	token, err := h.service.CreateAuthenticationToken(r.Context(), user)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Token creation error", "error", err)
		core.HandleError(w, core.NewInternalError("Failed to create authentication token", err))
		return
	}

	h.setCookie(w, token.Plaintext, token.Expiry)
	core.WriteJSON(w, http.StatusOK, map[string]any{"data": LoginResponse{User: user, Token: token}})

	h.logger.WithAdmin(user.ID, user.Email).Info("Admin logged in")
}

// LogoutHandler handles admin logout
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if user.IsAnonymous() {
		core.HandleError(w, core.NewUnauthorizedError("Not authenticated", nil))
		return
	}

	if err := h.service.LogoutUser(r.Context(), user.ID); err != nil {
		h.logger.WithContext(r.Context()).Error("Logout error", "error", err)
		core.HandleError(w, core.NewInternalError("Logout failed", err))
		return
	}

	h.clearCookie(w)
	core.WriteJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

// MeHandler returns the signed-in admin
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, map[string]any{"user": GetUserFromContext(r)})
}

func (h *Handler) setCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  expires,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
