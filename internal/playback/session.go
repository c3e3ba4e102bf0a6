package playback

import (
	"context"
	"sync"
	"time"

	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/google/uuid"
)

// Session is one run of single-step, sequence or pregenerate playback. It
// owns the cancellation for everything it starts.
type Session struct {
	ID      string
	Mode    Mode
	Started time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	epoch  uint64

	mu     sync.Mutex
	chunks []chunk.Chunk
	index  int
}

func newSession(parent context.Context, mode Mode, epoch uint64) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:      uuid.NewString(),
		Mode:    mode,
		Started: time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		epoch:   epoch,
		index:   -1,
	}
}

// Done is closed once the session has fully finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) setChunks(chunks []chunk.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
}

func (s *Session) setIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = i
}

// Progress returns the current chunk index and the number of chunks.
func (s *Session) Progress() (index, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, len(s.chunks)
}
