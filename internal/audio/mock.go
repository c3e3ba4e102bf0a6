package audio

import (
	"context"
	"sync"
	"time"
)

// MockSink simulates playback without producing sound.
type MockSink struct {
	// Duration of each simulated playback.
	Duration time.Duration

	// OnPlay is called when playback starts, before waiting.
	OnPlay func(url string)

	// Fail returns an error to simulate a playback failure for url.
	Fail func(url string) error

	mu     sync.Mutex
	played []string
	stops  int
	stopCh chan struct{}
}

// NewMockSink creates a mock sink whose playbacks last d.
func NewMockSink(d time.Duration) *MockSink {
	return &MockSink{Duration: d}
}

// Play records url and waits for the simulated duration.
func (m *MockSink) Play(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.played = append(m.played, url)
	stopCh := make(chan struct{})
	m.stopCh = stopCh
	onPlay, fail := m.OnPlay, m.Fail
	m.mu.Unlock()

	if onPlay != nil {
		onPlay(url)
	}
	if fail != nil {
		if err := fail(url); err != nil {
			return err
		}
	}

	timer := time.NewTimer(m.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-stopCh:
		return ErrStopped
	}
}

// Stop ends the current simulated playback.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	return nil
}

// Played returns the URLs played so far, in order.
func (m *MockSink) Played() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.played...)
}

// Stops returns how many times Stop was called.
func (m *MockSink) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
