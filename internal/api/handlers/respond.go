package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/isdelr/starter-web/internal/auth"
	"github.com/isdelr/starter-web/internal/schemas"
	"github.com/isdelr/starter-web/internal/services"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeAndValidate reads a JSON body into dst and runs its validation rules.
// On failure it writes the 400 response itself and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is empty"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Request body must contain a single JSON object")
		return false
	}

	if err := schemas.Validate(dst); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: verr.Fields})
			return false
		}
		log.Error().Err(err).Msg("Failed to validate request")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	return true
}

// writeServiceError maps service sentinel errors to HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without leaking details.
func writeServiceError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", resource))
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Error().Err(err).Str("resource", resource).Msg("Service call failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// callerID returns the authenticated user's id. Routes using it sit behind auth middleware.
func callerID(r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

// APINotFound answers unmatched /api routes with a JSON 404.
func APINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Resource not found")
}

// APIMethodNotAllowed answers /api routes hit with an unsupported method.
func APIMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
