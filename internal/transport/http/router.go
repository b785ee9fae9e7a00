// Package httptransport assembles the public HTTP surface: the client
// records API, liveness and readiness probes, and the metrics endpoint.
package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clientele/internal/client/handler"
	"clientele/pkg/platform/circuit"
	"clientele/pkg/platform/middleware/auth"
	"clientele/pkg/platform/middleware/correlation"
	"clientele/pkg/platform/middleware/requesttime"
)

// Config carries the router dependencies.
type Config struct {
	ClientHandler *handler.Handler
	// Breaker drives the readiness probe: an open circuit reports the
	// service as degraded. Optional.
	Breaker *circuit.Breaker
	// Verifier, when set, puts the client API behind bearer-token auth.
	Verifier *auth.Verifier
	Logger   *slog.Logger
}

// NewRouter wires all public endpoints. Probes and metrics stay outside
// the auth boundary so orchestrators can reach them without credentials.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requesttime.Middleware)
	r.Use(correlation.Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", handleReady(cfg.Breaker))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Verifier != nil {
			r.Use(auth.RequireAuth(cfg.Verifier, logger))
		}
		cfg.ClientHandler.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports degraded while the address-lookup circuit is open.
// The service still serves traffic in that state (validation fails open),
// so this is a signal for operators and dashboards, not a traffic gate
// for the API itself.
func handleReady(breaker *circuit.Breaker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if breaker != nil && breaker.State() == circuit.StateOpen {
			writeStatus(w, http.StatusServiceUnavailable, map[string]string{
				"status":         "degraded",
				"address_lookup": circuit.StateOpen.String(),
			})
			return
		}
		writeStatus(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
