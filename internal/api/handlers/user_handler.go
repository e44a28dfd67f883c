package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/starter-web/internal/auth"
	"github.com/isdelr/starter-web/internal/schemas"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management and login.
type UserHandler struct {
	service      services.UserServiceProvider
	issuer       *auth.Issuer
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. secureCookie marks the session cookie Secure.
func NewUserHandler(service services.UserServiceProvider, issuer *auth.Issuer, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, issuer: issuer, secureCookie: secureCookie}
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload schemas.UserCreate
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		if !errors.Is(err, services.ErrConflict) {
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		}
		writeServiceError(w, err, "User")
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	writeJSON(w, http.StatusCreated, schemas.NewUserResponse(user))
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload schemas.LoginRequest
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		writeServiceError(w, err, "User")
		return
	}

	token, expiresAt, err := h.issuer.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, expiresAt, h.secureCookie))
	writeJSON(w, http.StatusOK, schemas.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      schemas.NewUserResponse(user),
	})
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearedSessionCookie(h.secureCookie))
	w.WriteHeader(http.StatusNoContent)
}

// GetAll lists every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewUserResponses(users))
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewUserResponse(user))
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewUserResponse(user))
}

// Update handles updating a user's profile information.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireSelf(w, r, id) {
		return
	}

	var payload schemas.UserUpdate
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, payload.Username, payload.Email)
	if err != nil {
		writeServiceError(w, err, "User")
		return
	}
	writeJSON(w, http.StatusOK, schemas.NewUserResponse(user))
}

// ChangePassword handles changing a user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireSelf(w, r, id) {
		return
	}

	var payload schemas.PasswordChange
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	err := h.service.UpdatePassword(r.Context(), id, payload.CurrentPassword, payload.NewPassword)
	if err != nil {
		// The caller is authenticated; a wrong current password is a refusal, not a login failure.
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusForbidden, "Current password is incorrect")
			return
		}
		writeServiceError(w, err, "User")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireSelf(w, r, id) {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, err, "User")
		return
	}

	log.Info().Str("user_id", id).Msg("User deleted")
	http.SetCookie(w, auth.ClearedSessionCookie(h.secureCookie))
	w.WriteHeader(http.StatusNoContent)
}

// requireSelf allows only the account owner to act on /users/{id}.
func (h *UserHandler) requireSelf(w http.ResponseWriter, r *http.Request, id string) bool {
	caller, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing auth token")
		return false
	}
	if caller != id {
		writeError(w, http.StatusForbidden, "You can only modify your own account")
		return false
	}
	return true
}
