// Package breaker implements a small three-state circuit breaker per
// workspace (spec §4.11): three consecutive hard failures open it for an
// exponentially growing cooldown; half-open admits exactly one probe.
package breaker

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is one of the textbook circuit-breaker states.
type State string

const (
	Closed   State = "closed"
	Open     State = "open"
	HalfOpen State = "half_open"
)

const (
	defaultFailureThreshold = 3
	defaultBaseCooldown     = time.Second
	defaultMaxCooldown      = 2 * time.Minute
)

// Breaker guards one workspace's indexing attempts.
type Breaker struct {
	mu                 sync.Mutex
	state              State
	consecutiveFailures int
	cooldown           time.Duration
	openedAt           time.Time
	failureThreshold   int
	baseCooldown       time.Duration
	maxCooldown        time.Duration
	probing            atomic.Bool
	now                func() time.Time
}

// New returns a Closed breaker with the spec's default thresholds.
func New() *Breaker {
	return &Breaker{
		state:            Closed,
		failureThreshold: defaultFailureThreshold,
		baseCooldown:     defaultBaseCooldown,
		maxCooldown:      defaultMaxCooldown,
		now:              time.Now,
	}
}

// Allow reports whether an indexing attempt may proceed. Open breakers
// refuse until the cooldown elapses, at which point exactly one caller
// transitions to HalfOpen and is allowed through as a probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		return b.probing.CompareAndSwap(false, true)
	case Open:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = HalfOpen
		b.probing.Store(true)
		return true
	default:
		return true
	}
}

// RecordSuccess closes the breaker and resets its failure count.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Closed
	b.consecutiveFailures = 0
	b.cooldown = 0
	b.probing.Store(false)
}

// RecordFailure counts a hard failure. Three consecutive failures open
// the breaker (or, from HalfOpen, a single failed probe reopens it
// immediately with a doubled cooldown).
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing.Store(false)

	if b.state == HalfOpen {
		b.open()
		return
	}

	b.consecutiveFailures++
	if b.consecutiveFailures >= b.failureThreshold {
		b.open()
	}
}

// open transitions to Open, doubling the cooldown from its last value
// (capped at maxCooldown). Caller must hold b.mu.
func (b *Breaker) open() {
	b.state = Open
	b.openedAt = b.now()
	if b.cooldown == 0 {
		b.cooldown = b.baseCooldown
	} else {
		b.cooldown *= 2
		if b.cooldown > b.maxCooldown {
			b.cooldown = b.maxCooldown
		}
	}
}

// State returns the current state, for diagnostics (spec §6's
// index_health_check reports this per workspace).
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
