package playback

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/dgnsrekt/readaloud/internal/synth"
)

var errBackend = errors.New("backend unavailable")

// scriptGateway records requests and answers from a script keyed by text.
type scriptGateway struct {
	mu       sync.Mutex
	requests []synth.Request
	fail     map[string]error
	block    bool
	onCall   func(req synth.Request)
}

func newScriptGateway() *scriptGateway {
	return &scriptGateway{fail: make(map[string]error)}
}

func (g *scriptGateway) Synthesize(ctx context.Context, req synth.Request) (synth.Result, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	err := g.fail[req.Text]
	block := g.block
	onCall := g.onCall
	g.mu.Unlock()

	if onCall != nil {
		onCall(req)
	}
	if block {
		<-ctx.Done()
		return synth.Result{}, ctx.Err()
	}
	if err != nil {
		return synth.Result{}, err
	}
	return synth.Result{URL: url(req.Voice, req.Text)}, nil
}

func (g *scriptGateway) texts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.requests))
	for i, r := range g.requests {
		out[i] = r.Text
	}
	return out
}

func url(voice, text string) string {
	return "mem://" + voice + "/" + text
}

// testSink plays instantly unless block reports true for a URL, in which
// case it waits for cancellation.
type testSink struct {
	mu      sync.Mutex
	played  []string
	stops   int
	onStop  func()
	block   func(url string) bool
	playing chan string
	fail    error
}

func newTestSink() *testSink {
	return &testSink{playing: make(chan string, 64)}
}

func (s *testSink) Play(ctx context.Context, u string) error {
	s.mu.Lock()
	s.played = append(s.played, u)
	block, fail := s.block, s.fail
	s.mu.Unlock()

	s.playing <- u
	if block != nil && block(u) {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail != nil {
		return fail
	}
	return ctx.Err()
}

func (s *testSink) Stop() error {
	s.mu.Lock()
	s.stops++
	onStop := s.onStop
	s.mu.Unlock()

	if onStop != nil {
		onStop()
	}
	return nil
}

func (s *testSink) urls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.played...)
}

// eventLog collects events.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) OnEvent(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofType(t EventType) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func wordsConfig(count int) Config {
	cfg := DefaultConfig()
	cfg.Chunk = chunk.Options{Unit: chunk.Words, Count: count}
	return cfg
}

func sentencesConfig(count int) Config {
	cfg := DefaultConfig()
	cfg.Chunk = chunk.Options{Unit: chunk.Sentences, Count: count}
	return cfg
}

func newTestController(gw synth.Gateway, sink *testSink, opts ...Option) *Controller {
	opts = append([]Option{WithLogger(quietLogger()), WithCache(cache.New(0))}, opts...)
	return New(gw, sink, opts...)
}
