// Package circuit implements a sliding-window circuit breaker guarding a
// single external operation.
//
// The breaker tracks the outcome (success, slow success, failure) of the
// last N calls in a ring buffer. Once enough calls have been observed, a
// failure rate or slow-call rate above the configured thresholds opens the
// circuit for a cooldown period. After the cooldown, exactly one caller is
// admitted as a probe; its outcome decides whether the circuit closes again
// or re-opens.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker's position in its lifecycle.
type State int

const (
	// StateClosed admits every call.
	StateClosed State = iota
	// StateOpen rejects every call until the open period elapses.
	StateOpen
	// StateHalfOpen admits no further calls while the single probe
	// admitted at the Open->HalfOpen transition is in flight.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

type outcome uint8

const (
	outcomeSuccess outcome = iota
	outcomeSlow
	outcomeFailure
)

// Breaker is safe for concurrent use. All configuration is fixed at
// construction.
type Breaker struct {
	name string

	windowSize       int
	minimumCalls     int
	failureRate      float64 // percent, 0-100
	slowCallRate     float64 // percent, 0-100
	slowCallDuration time.Duration
	openDuration     time.Duration
	now              func() time.Time

	mu           sync.Mutex
	state        State
	openUntil    time.Time
	window       []outcome
	next         int // ring buffer write position
	buffered     int // number of valid entries in window
	notPermitted uint64
}

// Option configures a Breaker at construction time.
type Option func(*Breaker)

// WithSlidingWindowSize sets the number of call outcomes retained for rate
// calculations.
func WithSlidingWindowSize(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.windowSize = n
		}
	}
}

// WithMinimumCalls sets how many calls must be buffered before rates are
// evaluated at all.
func WithMinimumCalls(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.minimumCalls = n
		}
	}
}

// WithFailureRateThreshold sets the failure percentage (0-100) at which the
// circuit opens.
func WithFailureRateThreshold(pct float64) Option {
	return func(b *Breaker) {
		if pct > 0 {
			b.failureRate = pct
		}
	}
}

// WithSlowCallRateThreshold sets the slow-call percentage (0-100) at which
// the circuit opens.
func WithSlowCallRateThreshold(pct float64) Option {
	return func(b *Breaker) {
		if pct > 0 {
			b.slowCallRate = pct
		}
	}
}

// WithSlowCallDurationThreshold sets the duration above which a successful
// call is recorded as slow.
func WithSlowCallDurationThreshold(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.slowCallDuration = d
		}
	}
}

// WithOpenStateDuration sets how long the circuit stays open before a probe
// is admitted.
func WithOpenStateDuration(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.openDuration = d
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a closed breaker. Defaults match the production configuration
// of the postal-code lookup this breaker was built for: window 10, minimum
// 5 calls, 30% failure rate, 50% slow-call rate, 3s slow-call threshold,
// 60s open duration.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		windowSize:       10,
		minimumCalls:     5,
		failureRate:      30,
		slowCallRate:     50,
		slowCallDuration: 3 * time.Second,
		openDuration:     60 * time.Second,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.window = make([]outcome, b.windowSize)
	return b
}

// Name returns the identifier given at construction.
func (b *Breaker) Name() string {
	return b.name
}

// Allow reports whether a call may proceed.
//
// Closed always admits. Open rejects until the open period elapses; the
// first caller to arrive after that moment flips the state to HalfOpen and
// becomes the single probe. Concurrent callers arriving while the probe is
// in flight are rejected: the Open->HalfOpen transition happens under the
// lock, so only one caller can observe it.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		// The probe slot is taken.
		b.notPermitted++
		return false
	default: // StateOpen
		if b.now().Before(b.openUntil) {
			b.notPermitted++
			return false
		}
		b.state = StateHalfOpen
		return true
	}
}

// RecordSuccess records a completed call. Calls slower than the slow-call
// threshold are recorded as slow successes. A success while half-open
// closes the circuit and clears the window.
func (b *Breaker) RecordSuccess(duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.state = StateClosed
		b.clearWindowLocked()
		return
	}

	o := outcomeSuccess
	if duration > b.slowCallDuration {
		o = outcomeSlow
	}
	b.appendLocked(o)
}

// RecordFailure records a failed call. A failure while half-open re-opens
// the circuit immediately; otherwise the window rates are evaluated once
// the minimum call count is reached.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.openLocked()
		return
	}

	b.appendLocked(outcomeFailure)

	if b.buffered < b.minimumCalls {
		return
	}
	failureRate, slowRate := b.ratesLocked()
	if failureRate >= b.failureRate || slowRate >= b.slowCallRate {
		b.openLocked()
	}
}

// State returns the current state. An expired open period still reports
// Open: the transition to HalfOpen only happens when a caller asks Allow.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot is a point-in-time view of the breaker for observability.
type Snapshot struct {
	State             State
	FailureRate       float64
	SlowCallRate      float64
	BufferedCalls     int
	SuccessfulCalls   int
	FailedCalls       int
	SlowCalls         int
	NotPermittedCalls uint64
}

// Metrics returns a read-only snapshot of the breaker's counters. Rates are
// computed over the buffered window only; rejected calls never enter the
// window and are reported separately as NotPermittedCalls.
func (b *Breaker) Metrics() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	var successes, failures, slows int
	for i := 0; i < b.buffered; i++ {
		switch b.window[i] {
		case outcomeFailure:
			failures++
		case outcomeSlow:
			slows++
		default:
			successes++
		}
	}
	failureRate, slowRate := b.ratesLocked()
	return Snapshot{
		State:             b.state,
		FailureRate:       failureRate,
		SlowCallRate:      slowRate,
		BufferedCalls:     b.buffered,
		SuccessfulCalls:   successes,
		FailedCalls:       failures,
		SlowCalls:         slows,
		NotPermittedCalls: b.notPermitted,
	}
}

// Reset forces the breaker closed and clears the window.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.clearWindowLocked()
}

func (b *Breaker) appendLocked(o outcome) {
	b.window[b.next] = o
	b.next = (b.next + 1) % b.windowSize
	if b.buffered < b.windowSize {
		b.buffered++
	}
}

func (b *Breaker) clearWindowLocked() {
	b.next = 0
	b.buffered = 0
}

func (b *Breaker) openLocked() {
	b.state = StateOpen
	b.openUntil = b.now().Add(b.openDuration)
}

// ratesLocked computes failure and slow-call percentages over the buffered
// window. Returns zeros for an empty window.
func (b *Breaker) ratesLocked() (failureRate, slowRate float64) {
	if b.buffered == 0 {
		return 0, 0
	}
	var failures, slows int
	for i := 0; i < b.buffered; i++ {
		switch b.window[i] {
		case outcomeFailure:
			failures++
		case outcomeSlow:
			slows++
		}
	}
	total := float64(b.buffered)
	return float64(failures) / total * 100, float64(slows) / total * 100
}
