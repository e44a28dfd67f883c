package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/starter-web/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = models.User{ID: "u-1", Username: "alice"}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	token, exp, err := iss.GenerateJWT(testUser)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestIssuer_RejectsWrongSecret(t *testing.T) {
	token, _, err := NewIssuer("secret", time.Hour).GenerateJWT(testUser)
	require.NoError(t, err)

	_, err = NewIssuer("other", time.Hour).ValidateJWT(token)
	assert.Error(t, err)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := iss.GenerateJWT(testUser)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.ValidateJWT(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, _, err := iss.GenerateJWT(testUser)
	require.NoError(t, err)

	var seen *Claims
	h := iss.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing auth token")
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, "u-1", seen.UserID)
	})

	t.Run("cookie", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(SessionCookie(token, time.Now().Add(time.Hour), false))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
	})
}

func TestOptional_NeverRejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	called := false
	h := iss.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := ClaimsFromContext(r.Context())
		assert.False(t, ok)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer junk")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}
