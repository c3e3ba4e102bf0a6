package playback

import "time"

// Recorder receives measurements from the controller.
type Recorder interface {
	CacheLookup(hit bool)
	Synthesis(took time.Duration, err error)
	ChunkPlayed(took time.Duration)
	SessionStarted(mode Mode)
	SessionFinished(mode Mode, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(bool) {}

func (nopRecorder) Synthesis(time.Duration, error) {}

func (nopRecorder) ChunkPlayed(time.Duration) {}

func (nopRecorder) SessionStarted(Mode) {}

func (nopRecorder) SessionFinished(Mode, string) {}
