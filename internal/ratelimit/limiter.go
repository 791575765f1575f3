// Package ratelimit gates trigger fires with two independent checks: a
// fixed-window fire counter and a minimum inter-fire cooldown.
package ratelimit

import (
	"sync"
	"time"

	"github.com/quiverhq/quiver/pkg/model"
)

// Cause identifies why an acquire was rejected.
type Cause string

const (
	// CauseRateLimited means the window's fire counter reached the limit.
	CauseRateLimited Cause = "rate_limited"
	// CauseCooldown means the cooldown since the last fire has not elapsed.
	CauseCooldown Cause = "cooldown"
)

// Decision is the outcome of TryAcquire. A rejection is normal control
// flow, not an error; Cause is populated only when Allowed is false.
type Decision struct {
	Allowed bool
	Cause   Cause
}

type triggerState struct {
	count        int
	windowExpiry time.Time
	lastFire     time.Time
	hasFired     bool
}

// Limiter tracks per-trigger fire counters and cooldowns. It is safe for
// concurrent use; the check-and-increment is atomic so concurrent events
// can never push a trigger over its limit.
type Limiter struct {
	mu     sync.Mutex
	states map[string]*triggerState
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a Limiter using the given fixed window size. A
// non-positive window falls back to model.DefaultRateWindow.
func NewLimiter(window time.Duration) *Limiter {
	if window <= 0 {
		window = model.DefaultRateWindow
	}
	return &Limiter{
		states: make(map[string]*triggerState),
		window: window,
		now:    time.Now,
	}
}

// TryAcquire decides whether the named trigger may fire. limit caps fires
// per window (zero means unlimited); cooldown is the minimum interval since
// the last fire (zero means none). Both gates must pass. State mutates only
// on acceptance, so a rejected attempt consumes nothing.
func (l *Limiter) TryAcquire(name string, limit int, cooldown time.Duration) Decision {
	if limit <= 0 && cooldown <= 0 {
		return Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	st, ok := l.states[name]
	if !ok {
		st = &triggerState{}
		l.states[name] = st
	}

	if cooldown > 0 && st.hasFired && now.Sub(st.lastFire) < cooldown {
		return Decision{Cause: CauseCooldown}
	}

	if limit > 0 {
		if !now.Before(st.windowExpiry) {
			st.count = 0
			st.windowExpiry = now.Add(l.window)
		}
		if st.count >= limit {
			return Decision{Cause: CauseRateLimited}
		}
		st.count++
	}

	st.lastFire = now
	st.hasFired = true
	return Decision{Allowed: true}
}

// Reset drops all tracked state for the named trigger.
func (l *Limiter) Reset(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.states, name)
}
