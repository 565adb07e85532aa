package auth

import (
	"errors"
	"net/http"

	"reelhouse/internal/core"
)

// Handler provides authentication HTTP handlers
type Handler struct {
	service *Service
	logger  *core.Logger
}

// NewHandler creates a new authentication handler
func NewHandler(service *Service, logger *core.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// LoginHandler verifies a username and password and returns the user
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}
	if err := core.ValidateStruct(&req); err != nil {
		core.HandleError(w, err)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.HandleError(w, core.NewUnauthorizedError("Invalid credentials", err))
		default:
			h.logger.WithContext(r.Context()).Error("Authentication error", "error", err)
			core.HandleError(w, core.NewInternalError("Authentication failed", err))
		}
		return
	}

	h.logger.WithContext(r.Context()).WithUser(user.ID, user.Username).Info("User logged in")
	core.WriteJSON(w, http.StatusOK, user)
}

// RegisterHandler creates a regular user
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.HandleError(w, err)
		return
	}
	if err := core.ValidateStruct(&req); err != nil {
		core.HandleError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username, req.Password, false)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			core.HandleError(w, core.NewValidationError("Username already taken", err).
				WithDetails(map[string]any{"field": "username"}))
		default:
			h.logger.WithContext(r.Context()).Error("Registration error", "error", err)
			core.HandleError(w, core.NewInternalError("Registration failed", err))
		}
		return
	}

	core.WriteJSON(w, http.StatusCreated, user)
}

// MeHandler returns the resolved caller
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentity(r.Context())
	if !identity.Known() {
		core.HandleError(w, core.NewNotFoundError("User not found", nil))
		return
	}
	core.WriteJSON(w, http.StatusOK, identity.User)
}
