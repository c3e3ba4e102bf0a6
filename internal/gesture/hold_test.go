package gesture

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestHold() (*Hold, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewHold(WithClock(clock.Now)), clock
}

func TestPressZeroDurationFiresImmediately(t *testing.T) {
	h, _ := newTestHold()

	if !h.Press(0) {
		t.Fatal("Expected immediate activation")
	}
	if h.Holding() {
		t.Error("Expected no holding state")
	}
	if _, fired := h.Tick(); fired {
		t.Error("Expected no second activation")
	}
}

func TestHoldFiresOnceAtThreshold(t *testing.T) {
	h, clock := newTestHold()
	d := 800 * time.Millisecond

	if h.Press(d) {
		t.Fatal("Expected no immediate activation")
	}
	if !h.Holding() {
		t.Fatal("Expected holding state")
	}

	clock.Advance(400 * time.Millisecond)
	progress, fired := h.Tick()
	if fired {
		t.Error("Expected no activation at half time")
	}
	if progress != 0.5 {
		t.Errorf("Expected progress 0.5, got %v", progress)
	}

	clock.Advance(500 * time.Millisecond)
	progress, fired = h.Tick()
	if !fired {
		t.Fatal("Expected activation past the threshold")
	}
	if progress != 1 {
		t.Errorf("Expected progress capped at 1, got %v", progress)
	}
	if h.Holding() {
		t.Error("Expected the cycle to end after activation")
	}

	clock.Advance(time.Second)
	if _, fired := h.Tick(); fired {
		t.Error("Expected activation exactly once")
	}
}

func TestReleaseBeforeThresholdCancels(t *testing.T) {
	h, clock := newTestHold()
	h.Press(time.Second)

	clock.Advance(999 * time.Millisecond)
	h.Tick()

	if !h.Release() {
		t.Error("Expected release to cancel the cycle")
	}
	if h.Progress() != 0 {
		t.Errorf("Expected progress reset to 0, got %v", h.Progress())
	}

	clock.Advance(time.Second)
	if _, fired := h.Tick(); fired {
		t.Error("Expected no activation after release")
	}
}

func TestReleaseWhenIdle(t *testing.T) {
	h, _ := newTestHold()
	if h.Release() {
		t.Error("Expected nothing to cancel")
	}
}

func TestPressWhileHoldingIgnored(t *testing.T) {
	h, clock := newTestHold()
	h.Press(time.Second)

	clock.Advance(600 * time.Millisecond)
	if h.Press(0) {
		t.Error("Expected a second press to be ignored")
	}

	// The original cycle keeps its start time.
	clock.Advance(400 * time.Millisecond)
	if _, fired := h.Tick(); !fired {
		t.Error("Expected the original cycle to fire")
	}
}

func TestNewCycleAfterActivation(t *testing.T) {
	h, clock := newTestHold()
	h.Press(100 * time.Millisecond)
	clock.Advance(100 * time.Millisecond)
	h.Tick()

	if h.Press(100 * time.Millisecond) {
		t.Error("Expected a fresh timed cycle")
	}
	if !h.Holding() {
		t.Error("Expected holding again")
	}
}
