// Package gesture turns a sustained press into a confirmed activation.
package gesture

import (
	"sync"
	"time"
)

// Hold tracks a single press-and-hold cycle. A press with a zero duration
// activates at once. Otherwise activation fires exactly once when a Tick
// observes that the full duration has elapsed, unless Release came first.
type Hold struct {
	mu       sync.Mutex
	now      func() time.Time
	holding  bool
	start    time.Time
	duration time.Duration
	progress float64
}

// Option configures a Hold.
type Option func(*Hold)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Hold) { h.now = now }
}

// NewHold creates an idle gesture.
func NewHold(opts ...Option) *Hold {
	h := &Hold{now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Press starts a hold cycle lasting d. It reports whether the activation
// fired immediately, which happens only when d is zero or negative. A press
// while a cycle is active is ignored.
func (h *Hold) Press(d time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.holding {
		return false
	}
	if d <= 0 {
		h.progress = 0
		return true
	}
	h.holding = true
	h.start = h.now()
	h.duration = d
	h.progress = 0
	return false
}

// Tick updates the progress of the active cycle. It returns the progress
// in [0, 1] and whether this tick fired the activation, which ends the
// cycle.
func (h *Hold) Tick() (float64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.holding {
		return h.progress, false
	}

	elapsed := h.now().Sub(h.start)
	h.progress = min(1, float64(elapsed)/float64(h.duration))
	if h.progress < 1 {
		return h.progress, false
	}

	h.holding = false
	h.progress = 0
	return 1, true
}

// Release cancels the active cycle without activating. It reports whether
// a cycle was cancelled.
func (h *Hold) Release() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	cancelled := h.holding
	h.holding = false
	h.progress = 0
	return cancelled
}

// Holding reports whether a cycle is active.
func (h *Hold) Holding() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.holding
}

// Progress returns the progress seen by the last Tick.
func (h *Hold) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}
