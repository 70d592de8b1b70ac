package resilience

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all requests and tracks failures.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen allows a probe request to determine recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker implements a failure-ratio circuit breaker.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	minRequests  int
	failureRatio float64
	openedAt     time.Time
	openFor      time.Duration
}

// NewBreaker constructs a breaker that opens when the rolling failure ratio
// exceeds the threshold once the minimum number of requests is observed.
func NewBreaker(minRequests int, failureRatio float64, openFor time.Duration) *Breaker {
	if minRequests <= 0 {
		minRequests = 1
	}
	if failureRatio <= 0 {
		failureRatio = 0.5
	}
	if failureRatio > 1 {
		failureRatio = 1
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &Breaker{
		state:        Closed,
		minRequests:  minRequests,
		failureRatio: failureRatio,
		openFor:      openFor,
	}
}

// Allow reports whether a request is permitted in the current state. An open
// breaker permits a single probe once the cool-off period has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == Open {
		if time.Since(b.openedAt) >= b.openFor {
			b.state = HalfOpen
			return true
		}
		return false
	}
	return true
}

// Report records the outcome of a request and transitions the state machine
// when the configured thresholds are exceeded.
func (b *Breaker) Report(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		if success {
			b.reset(Closed)
		} else {
			b.trip()
		}
		return
	}

	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.successes + b.failures
	if total < b.minRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.failureRatio {
		b.trip()
	}
}

// CurrentState returns the breaker state for metrics and tests.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = time.Now()
	b.successes = 0
	b.failures = 0
}

func (b *Breaker) reset(s State) {
	b.state = s
	b.successes = 0
	b.failures = 0
}

// Backoff computes an exponential backoff duration with optional jitter.
func Backoff(base time.Duration, attempt int, jitter float64) time.Duration {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if attempt < 1 {
		attempt = 1
	}
	d := float64(base) * math.Pow(2, float64(attempt-1))
	if jitter > 0 {
		d += d * jitter * (rand.Float64()*2 - 1)
	}
	if d < float64(base) {
		d = float64(base)
	}
	return time.Duration(d)
}
