// Package auth provides the optional bearer-token middleware. When the
// server is configured with a signing key, every API request must carry a
// valid HS256 JWT; without a key the middleware is not installed and the
// API is open, which is the mode used in local development.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "clientele/pkg/domain-errors"
	"clientele/pkg/requestcontext"
)

type contextKeySubject struct{}

// Subject returns the authenticated subject stored by the middleware, or
// the empty string for unauthenticated contexts.
func Subject(ctx context.Context) string {
	if sub, ok := ctx.Value(contextKeySubject{}).(string); ok {
		return sub
	}
	return ""
}

// Verifier validates HS256 bearer tokens against a shared signing key.
type Verifier struct {
	signingKey []byte
}

// NewVerifier creates a verifier for the given key.
func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

// Verify parses and validates the token and returns its subject.
func (v *Verifier) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims.Subject, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token subject in the context for handlers downstream.
func RequireAuth(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				unauthorized(w, r, logger, "missing bearer token", nil)
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, r, logger, "invalid bearer token", err)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeySubject{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	ctx := r.Context()
	logger.WarnContext(ctx, "unauthorized request",
		"reason", msg,
		"error", err,
		"correlation_id", requestcontext.CorrelationID(ctx))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
