package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func signToken(t *testing.T, key string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func protected(t *testing.T) (http.Handler, *string) {
	t.Helper()
	var subject string
	handler := RequireAuth(NewVerifier(testKey), slog.New(slog.DiscardHandler))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject = Subject(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
	return handler, &subject
}

func TestRequireAuth(t *testing.T) {
	t.Run("admits a valid token and exposes the subject", func(t *testing.T) {
		handler, subject := protected(t)
		token := signToken(t, testKey, jwt.RegisteredClaims{
			Subject:   "advisor-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "advisor-42", *subject)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		handler, _ := protected(t)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		handler, _ := protected(t)
		token := signToken(t, "other-key", jwt.RegisteredClaims{
			Subject:   "advisor-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		handler, _ := protected(t)
		token := signToken(t, testKey, jwt.RegisteredClaims{
			Subject:   "advisor-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
