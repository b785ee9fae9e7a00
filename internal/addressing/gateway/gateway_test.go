package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientele/internal/addressing/lookup"
	"clientele/pkg/platform/circuit"
)

// fakeSource scripts lookup answers and records how often it was called.
type fakeSource struct {
	mu         sync.Mutex
	calls      int
	localities []lookup.Locality
	err        error
	delay      time.Duration
}

func (f *fakeSource) Localities(ctx context.Context, postalCode string) ([]lookup.Locality, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.localities, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestGateway_Validate_MatchIsValid(t *testing.T) {
	source := &fakeSource{localities: []lookup.Locality{
		{City: "Paris", PostalCode: "75011"},
		{City: "Paris 11e Arrondissement", PostalCode: "75011"},
	}}
	g := New(source, circuit.New("apiIgn"))

	outcome := g.Validate(context.Background(), "75011", "Paris")
	assert.Equal(t, OutcomeValid, outcome)
	assert.False(t, outcome.Blocks())
}

func TestGateway_Validate_MatchIsCaseInsensitive(t *testing.T) {
	source := &fakeSource{localities: []lookup.Locality{{City: "BORDEAUX", PostalCode: "33800"}}}
	g := New(source, circuit.New("apiIgn"))

	assert.Equal(t, OutcomeValid, g.Validate(context.Background(), "33800", "bordeaux"))
}

func TestGateway_Validate_NoMatchIsInvalid(t *testing.T) {
	source := &fakeSource{localities: []lookup.Locality{{City: "Bordeaux", PostalCode: "33800"}}}
	breaker := circuit.New("apiIgn")
	g := New(source, breaker)

	outcome := g.Validate(context.Background(), "33800", "Paris")
	assert.Equal(t, OutcomeInvalid, outcome)
	assert.True(t, outcome.Blocks())

	// The lookup itself completed, so the breaker saw a success.
	m := breaker.Metrics()
	assert.Equal(t, 1, m.BufferedCalls)
	assert.Equal(t, 0, m.FailedCalls)
}

func TestGateway_Validate_EmptyAnswerIsInvalid(t *testing.T) {
	source := &fakeSource{}
	g := New(source, circuit.New("apiIgn"))

	assert.Equal(t, OutcomeInvalid, g.Validate(context.Background(), "99999", "Nowhere"))
}

func TestGateway_Validate_FaultFailsOpen(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	breaker := circuit.New("apiIgn")
	g := New(source, breaker)

	outcome := g.Validate(context.Background(), "33800", "Bordeaux")
	assert.Equal(t, OutcomeSkippedDegraded, outcome)
	assert.False(t, outcome.Blocks(), "degraded mode must not block the operation")

	m := breaker.Metrics()
	assert.Equal(t, 1, m.FailedCalls)
}

func TestGateway_Validate_OpenCircuitSkipsWithoutCalling(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}
	breaker := circuit.New("apiIgn",
		circuit.WithMinimumCalls(2),
		circuit.WithFailureRateThreshold(50),
	)
	g := New(source, breaker)

	// Two faults trip the breaker.
	g.Validate(context.Background(), "33800", "Bordeaux")
	g.Validate(context.Background(), "33800", "Bordeaux")
	require.Equal(t, circuit.StateOpen, breaker.State())
	callsBefore := source.callCount()

	outcome := g.Validate(context.Background(), "33800", "Bordeaux")
	assert.Equal(t, OutcomeSkippedDegraded, outcome)
	assert.Equal(t, callsBefore, source.callCount(), "no external call while open")
	assert.Equal(t, uint64(1), breaker.Metrics().NotPermittedCalls)
}

func TestGateway_Validate_TimeoutIsFault(t *testing.T) {
	source := &fakeSource{delay: 200 * time.Millisecond, localities: []lookup.Locality{{City: "Bordeaux"}}}
	breaker := circuit.New("apiIgn")
	g := New(source, breaker, WithTimeout(20*time.Millisecond))

	outcome := g.Validate(context.Background(), "33800", "Bordeaux")
	assert.Equal(t, OutcomeSkippedDegraded, outcome)
	assert.Equal(t, 1, breaker.Metrics().FailedCalls)
}
