package audio

import (
	"context"
	"errors"
)

var (
	// ErrStopped is returned by Play when Stop ended the playback.
	ErrStopped = errors.New("playback stopped")
	// ErrNoPlayer indicates no supported player binary was found.
	ErrNoPlayer = errors.New("no audio player found")
)

// Sink plays audio handles.
type Sink interface {
	// Play blocks until url has played to the end, playback fails, or
	// ctx is done. A cancelled ctx yields ctx.Err().
	Play(ctx context.Context, url string) error

	// Stop ends any active playback immediately. It is a no-op when idle.
	Stop() error
}

// NullSink completes every playback immediately.
type NullSink struct{}

// Play returns at once.
func (NullSink) Play(ctx context.Context, _ string) error {
	return ctx.Err()
}

// Stop does nothing.
func (NullSink) Stop() error { return nil }
