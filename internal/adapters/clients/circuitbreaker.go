package clients

import (
	"sync"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

// State is the circuit breaker state.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen blocks requests until the open timeout elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probe requests through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of a breaker.
type Snapshot struct {
	State    State
	Failures int

	// RetryAfter is how long an open breaker keeps refusing requests.
	// Zero in other states.
	RetryAfter time.Duration
}

type transition struct{ from, to State }

// CircuitBreaker keeps the sync engine from hammering a remote that is down.
//
//   - Closed → Open after MaxFailures consecutive failures
//   - Open → HalfOpen once Timeout has passed since the last failure
//   - HalfOpen → Closed after HalfOpenLimit consecutive successes
//   - HalfOpen → Open on any failure
type CircuitBreaker struct {
	mu          sync.Mutex
	cfg         config.CircuitBreakerConfig
	state       State
	failures    int
	successes   int
	probes      int // admitted while half-open and not yet recorded
	lastFailure time.Time
	pending     []transition

	onChange func(from, to State)
	now      func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers a callback for transitions. It runs synchronously,
// in order, after the breaker's lock is released, so it may call back into
// the breaker.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onChange = fn
}

// Allow reports whether a request may proceed. An open breaker whose timeout
// has passed moves to half-open and admits the caller as the first probe.
func (cb *CircuitBreaker) Allow() bool {
	defer cb.notify()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.lastFailure) < cb.cfg.Timeout {
			return false
		}

		cb.moveTo(StateHalfOpen)
		cb.probes = 1

		return true
	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.probes++

		return true
	default:
		return false
	}
}

// RecordSuccess records a request that reached the remote and got an answer.
func (cb *CircuitBreaker) RecordSuccess() {
	defer cb.notify()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.probes = max(cb.probes-1, 0)
		cb.successes++

		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	case StateOpen:
	}
}

// RecordFailure records a request that could not reach the remote.
func (cb *CircuitBreaker) RecordFailure() {
	defer cb.notify()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.probes = 0
		cb.moveTo(StateOpen)
	case StateOpen:
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	return cb.Snapshot().State
}

// Snapshot returns the current state with its failure streak and, when
// open, the remaining cool-down.
func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	snap := Snapshot{State: cb.state, Failures: cb.failures}
	if cb.state == StateOpen {
		snap.RetryAfter = max(cb.cfg.Timeout-cb.now().Sub(cb.lastFailure), 0)
	}

	return snap
}

// moveTo must be called with mu held.
func (cb *CircuitBreaker) moveTo(to State) {
	if cb.state == to {
		return
	}

	cb.pending = append(cb.pending, transition{from: cb.state, to: to})
	cb.state = to
	cb.successes = 0

	if to != StateOpen {
		cb.failures = 0
	}
}

// notify delivers queued transitions. It must run without mu held.
func (cb *CircuitBreaker) notify() {
	cb.mu.Lock()
	pending, fn := cb.pending, cb.onChange
	cb.pending = nil
	cb.mu.Unlock()

	if fn == nil {
		return
	}

	for _, t := range pending {
		fn(t.from, t.to)
	}
}
