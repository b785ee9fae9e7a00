// Package gateway guards address validation behind a circuit breaker with
// an explicit fail-open fallback.
//
// The validation policy favors availability over consistency: when the
// breaker is open or the lookup dependency faults, the check is skipped
// and the business operation proceeds. A genuinely inconsistent postal
// code/city pair can therefore slip through during an outage. That is the
// documented business policy, so SkippedDegraded stays observably distinct
// from Valid in logs and metrics and is never reported as a real pass.
package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"clientele/internal/addressing/lookup"
	addrmetrics "clientele/internal/addressing/metrics"
	"clientele/pkg/platform/circuit"
	"clientele/pkg/requestcontext"
)

// Outcome is the result of one address validation.
type Outcome int

const (
	// OutcomeValid means the reference data confirms the pair.
	OutcomeValid Outcome = iota
	// OutcomeInvalid means the reference data rejects the pair. The only
	// outcome that blocks a write.
	OutcomeInvalid
	// OutcomeSkippedDegraded means no answer could be obtained; the
	// caller treats it as a pass but telemetry does not.
	OutcomeSkippedDegraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeSkippedDegraded:
		return "skipped_degraded"
	default:
		return "unknown"
	}
}

// Blocks reports whether the outcome must abort the business operation.
func (o Outcome) Blocks() bool {
	return o == OutcomeInvalid
}

// Gateway wraps the lookup source with the breaker and the fallback policy.
type Gateway struct {
	source  lookup.Source
	breaker *circuit.Breaker
	timeout time.Duration
	logger  *slog.Logger
	metrics *addrmetrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout bounds the lookup call independently of the caller's
// deadline. Must stay shorter than any caller-facing timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics attaches validation metrics.
func WithMetrics(m *addrmetrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// New creates a gateway over the given source and breaker.
func New(source lookup.Source, breaker *circuit.Breaker, opts ...Option) *Gateway {
	g := &Gateway{
		source:  source,
		breaker: breaker,
		timeout: 3 * time.Second,
		logger:  slog.Default(),
		tracer:  otel.Tracer("clientele/addressing/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Breaker exposes the guarded breaker for health and metrics endpoints.
func (g *Gateway) Breaker() *circuit.Breaker {
	return g.breaker
}

// Validate answers whether the (postalCode, city) pair is consistent
// according to the external reference data.
//
// Never returns an error: every failure mode resolves to one of the three
// outcomes. A completed lookup is recorded as a breaker success even when
// the city does not match; "not found" is a valid answer, not a fault.
func (g *Gateway) Validate(ctx context.Context, postalCode, city string) Outcome {
	ctx, span := g.tracer.Start(ctx, "gateway.Validate", trace.WithAttributes(
		attribute.String("postal_code", postalCode),
		attribute.String("correlation_id", requestcontext.CorrelationID(ctx)),
	))
	defer span.End()

	outcome := g.validate(ctx, postalCode, city)
	span.SetAttributes(attribute.String("outcome", outcome.String()))
	if g.metrics != nil {
		g.metrics.RecordOutcome(outcome.String())
	}
	return outcome
}

func (g *Gateway) validate(ctx context.Context, postalCode, city string) Outcome {
	if !g.breaker.Allow() {
		// The breaker already counted the rejection.
		g.logger.Warn("address validation skipped, circuit open",
			"postal_code", postalCode,
			"city", city,
			"correlation_id", requestcontext.CorrelationID(ctx))
		return OutcomeSkippedDegraded
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	localities, err := g.source.Localities(ctx, postalCode)
	elapsed := time.Since(start)

	if err != nil {
		g.breaker.RecordFailure()
		g.logger.Warn("address validation skipped, lookup fault",
			"postal_code", postalCode,
			"city", city,
			"error", err,
			"correlation_id", requestcontext.CorrelationID(ctx))
		return OutcomeSkippedDegraded
	}

	g.breaker.RecordSuccess(elapsed)

	for _, locality := range localities {
		if strings.EqualFold(locality.City, city) {
			return OutcomeValid
		}
	}
	return OutcomeInvalid
}
