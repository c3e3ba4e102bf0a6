package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/audio"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/dgnsrekt/readaloud/internal/synth"
)

// Session outcomes passed to the Recorder.
const (
	outcomeCompleted = "completed"
	outcomeEndOfText = "end_of_text"
	outcomeCancelled = "cancelled"
	outcomeFailed    = "failed"
)

// Controller orchestrates segmentation, caching, synthesis and playback.
// It exclusively owns the cursor and the audio cache.
type Controller struct {
	gateway  synth.Gateway
	sink     audio.Sink
	cache    *cache.AudioCache
	logger   *log.Logger
	recorder Recorder

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObsID int

	mu      sync.Mutex
	text    string
	cursor  int
	cfg     Config
	hasCfg  bool
	epoch   uint64 // bumped whenever text or settings change
	session *Session
	machine *stateMachine
}

// Option configures a Controller.
type Option func(*Controller)

// WithCache sets the audio cache. The default is unbounded.
func WithCache(ac *cache.AudioCache) Option {
	return func(c *Controller) { c.cache = ac }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithRecorder sets the measurement sink.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithObserver subscribes an observer for the controller's lifetime.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.Subscribe(o) }
}

// New creates a controller.
func New(gateway synth.Gateway, sink audio.Sink, opts ...Option) *Controller {
	c := &Controller{
		gateway:   gateway,
		sink:      sink,
		recorder:  nopRecorder{},
		observers: make(map[int]Observer),
		machine:   newStateMachine(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.New(0)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	c.logger = c.logger.WithPrefix("playback")
	return c
}

// Subscribe registers an observer and returns a function removing it.
func (c *Controller) Subscribe(o Observer) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()

	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = o
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// SetText replaces the text buffer. A different text stops any session,
// resets the cursor and clears the cache.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	if text == c.text {
		c.mu.Unlock()
		return
	}
	c.text = text
	c.resetLocked()
	c.mu.Unlock()

	c.Stop()
	c.emit(nil, Event{Type: EventReset, Level: LevelInfo, Message: "Text changed. Playback reset."})
}

// Text returns the current text buffer.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// SetConfig records settings ahead of the next operation. It reports
// whether they differed, in which case playback was stopped, the cursor
// reset and the cache cleared.
func (c *Controller) SetConfig(cfg Config) bool {
	c.mu.Lock()
	changed := c.applyLocked(cfg)
	c.mu.Unlock()

	if changed {
		c.Stop()
		c.emit(nil, Event{Type: EventReset, Level: LevelInfo, Message: "Chunk settings changed. Playback reset."})
	}
	return changed
}

// Cursor returns the read/unread boundary.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// SetCursor moves the cursor, clamped to the text.
func (c *Controller) SetCursor(n int) {
	c.mu.Lock()
	if n < 0 {
		n = 0
	}
	if n > len(c.text) {
		n = len(c.text)
	}
	c.cursor = n
	c.mu.Unlock()

	c.emit(nil, Event{Type: EventReset, Level: LevelInfo})
}

// State returns the current activity.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Current()
}

// Cache returns the controller's audio cache.
func (c *Controller) Cache() *cache.AudioCache {
	return c.cache
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	State      State       `json:"state"`
	Mode       string      `json:"mode,omitempty"`
	SessionID  string      `json:"session_id,omitempty"`
	Cursor     int         `json:"cursor"`
	TextLength int         `json:"text_length"`
	Index      int         `json:"index"`
	Total      int         `json:"total"`
	Cache      cache.Stats `json:"cache"`
}

// Snapshot returns the controller state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		State:      c.machine.Current(),
		Cursor:     c.cursor,
		TextLength: len(c.text),
		Index:      -1,
	}
	sess := c.session
	c.mu.Unlock()

	if sess != nil {
		s.Mode = sess.Mode.String()
		s.SessionID = sess.ID
		s.Index, s.Total = sess.Progress()
	}
	s.Cache = c.cache.Stats()
	return s
}

// Stop cancels the active session's synthesis call and playback. It does
// not wait for the session to unwind and is a no-op when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	sess := c.session
	if sess != nil {
		c.abortLocked(sess)
	}
	c.mu.Unlock()

	if sess == nil {
		return
	}
	c.emit(sess, Event{Type: EventHighlightCleared})
}

// Wait blocks until no session is active or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		sess := c.session
		c.mu.Unlock()
		if sess == nil {
			return nil
		}
		select {
		case <-sess.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Step is the outcome of ExecuteSingleStep.
type Step struct {
	Chunk     chunk.Chunk
	Cursor    int
	Cached    bool
	Cancelled bool
}

// ExecuteSingleStep speaks the chunk at the cursor. The cursor moves past
// the chunk once its audio is resolved and before playback starts. At the
// end of the text it returns an end-of-text error (see IsEndOfText) and
// leaves the cursor reset. Cancellation is not an error.
func (c *Controller) ExecuteSingleStep(ctx context.Context, cfg Config) (Step, error) {
	sess := c.begin(ctx, ModeSingleStep, cfg)
	outcome := outcomeCompleted
	defer func() { c.end(sess, outcome) }()

	text, cursor := c.snapshot()
	ch, next, err := chunk.Next(text, cursor, cfg.Chunk)
	if err != nil {
		c.commit(sess, next, false)
		if errors.Is(err, chunk.ErrExhausted) {
			outcome = outcomeFailed
			perr := &Error{Kind: KindSegmentationExhausted, Err: err}
			c.status(sess, LevelError, perr.Error(), perr)
			return Step{Cursor: next}, perr
		}
		outcome = outcomeEndOfText
		perr := &Error{Kind: KindEmptyInput, Err: err}
		c.emit(sess, Event{Type: EventEndOfText, Level: LevelInfo, Message: endMessage(err)})
		return Step{Cursor: next}, perr
	}

	sess.setChunks([]chunk.Chunk{ch})
	sess.setIndex(0)
	step := Step{Chunk: ch}

	handle, cached, err := c.resolve(sess, ch, cfg)
	if err != nil {
		perr := c.classify(sess, ch, err, KindSynthesisFailure)
		step.Cursor = c.Cursor()
		return step, c.finish(sess, perr, &outcome, &step.Cancelled)
	}
	step.Cached = cached

	if !c.commit(sess, next, true) {
		outcome = outcomeCancelled
		step.Cursor = c.Cursor()
		step.Cancelled = true
		return step, nil
	}
	step.Cursor = next

	if err := c.play(sess, ch, handle, 0, 1); err != nil {
		perr := c.classify(sess, ch, err, KindPlaybackFailure)
		return step, c.finish(sess, perr, &outcome, &step.Cancelled)
	}
	return step, nil
}

// Summary is the outcome of PlaySequence.
type Summary struct {
	Played    int
	Cached    int
	Total     int
	Cursor    int
	Cancelled bool
}

// PlaySequence plays every chunk from the cursor to the end of the text,
// strictly one after another: chunk N+1 is not fetched until chunk N has
// finished playing. A synthesis failure halts the run. On completion the
// cursor is at the end of the text; on abort it is at the end of the last
// chunk that started.
func (c *Controller) PlaySequence(ctx context.Context, cfg Config) (Summary, error) {
	sess := c.begin(ctx, ModeSequence, cfg)
	outcome := outcomeCompleted
	defer func() { c.end(sess, outcome) }()

	text, cursor := c.snapshot()
	if strings.TrimSpace(text) == "" {
		outcome = outcomeEndOfText
		c.commit(sess, 0, false)
		c.emit(sess, Event{Type: EventEndOfText, Level: LevelInfo, Message: endMessage(chunk.ErrEmptyText)})
		return Summary{}, &Error{Kind: KindEmptyInput, Err: chunk.ErrEmptyText}
	}
	if cursor >= len(text) {
		cursor = 0
	}

	chunks := chunk.Plan(text, cursor, cfg.Chunk)
	sess.setChunks(chunks)
	sum := Summary{Total: len(chunks)}
	started := cursor
	aborted := false

	for i, ch := range chunks {
		if sess.ctx.Err() != nil {
			break
		}
		sess.setIndex(i)
		started = ch.End
		if ch.Blank() {
			continue
		}

		var perr *Error
		handle, cached, err := c.resolve(sess, ch, cfg)
		if err != nil {
			perr = c.classify(sess, ch, err, KindSynthesisFailure)
		} else {
			if cached {
				sum.Cached++
			}
			if err := c.play(sess, ch, handle, i, len(chunks)); err != nil {
				perr = c.classify(sess, ch, err, KindPlaybackFailure)
			}
		}
		if perr != nil {
			if perr.Kind == KindCancelled {
				aborted = true
				break
			}
			c.commit(sess, ch.Start, false)
			sum.Cursor = c.Cursor()
			return sum, c.finish(sess, perr, &outcome, &sum.Cancelled)
		}
		sum.Played++
	}

	if aborted || sess.ctx.Err() != nil {
		c.commit(sess, started, false)
		outcome = outcomeCancelled
		sum.Cancelled = true
		sum.Cursor = c.Cursor()
		c.logger.Debug("sequence aborted", "session", sess.ID, "played", sum.Played)
		return sum, nil
	}

	c.commit(sess, len(text), false)
	sum.Cursor = len(text)
	c.status(sess, LevelInfo, "Finished playing all chunks.", nil)
	c.emit(sess, Event{Type: EventEndOfText, Level: LevelInfo, Message: "End of text reached."})
	return sum, nil
}

// PregenerateResult is the outcome of PregenerateAll.
type PregenerateResult struct {
	SuccessCount int
	FailCount    int
	Total        int
	Cancelled    bool
}

// PregenerateAll resolves audio for every chunk of the text without
// playing anything. Failures are counted and skipped; a cache hit counts
// as a success. Reverification halts the run.
func (c *Controller) PregenerateAll(ctx context.Context, cfg Config) (PregenerateResult, error) {
	sess := c.begin(ctx, ModePregenerate, cfg)
	outcome := outcomeCompleted
	defer func() { c.end(sess, outcome) }()

	text, _ := c.snapshot()
	if strings.TrimSpace(text) == "" {
		outcome = outcomeEndOfText
		c.emit(sess, Event{Type: EventEndOfText, Level: LevelInfo, Message: endMessage(chunk.ErrEmptyText)})
		return PregenerateResult{}, &Error{Kind: KindEmptyInput, Err: chunk.ErrEmptyText}
	}

	var work []chunk.Chunk
	for _, ch := range chunk.Plan(text, 0, cfg.Chunk) {
		if !ch.Blank() {
			work = append(work, ch)
		}
	}
	sess.setChunks(work)
	res := PregenerateResult{Total: len(work)}
	aborted := false

	for i, ch := range work {
		if sess.ctx.Err() != nil {
			break
		}
		sess.setIndex(i)

		if _, _, err := c.resolve(sess, ch, cfg); err != nil {
			perr := c.classify(sess, ch, err, KindSynthesisFailure)
			if perr.Kind == KindCancelled {
				aborted = true
				break
			}
			if perr.Kind == KindVerificationRequired {
				return res, c.finish(sess, perr, &outcome, &res.Cancelled)
			}
			res.FailCount++
			c.status(sess, LevelWarning, "Failed to pregenerate: "+perr.Error(), perr)
		} else {
			res.SuccessCount++
		}

		c.emit(sess, Event{
			Type:  EventPregenerateProgress,
			Index: i + 1,
			Total: len(work),
			Start: ch.Start,
			End:   ch.End,
		})
	}

	if aborted || sess.ctx.Err() != nil {
		outcome = outcomeCancelled
		res.Cancelled = true
		c.status(sess, LevelInfo, "Pregeneration stopped.", nil)
		return res, nil
	}

	c.status(sess, LevelInfo, fmt.Sprintf("Pregeneration complete: %d succeeded, %d failed.", res.SuccessCount, res.FailCount), nil)
	return res, nil
}

// begin aborts any active session, waits for it to unwind, applies cfg
// and installs a new session.
func (c *Controller) begin(parent context.Context, mode Mode, cfg Config) *Session {
	for {
		c.mu.Lock()
		old := c.session
		if old == nil {
			changed := c.applyLocked(cfg)
			sess := newSession(parent, mode, c.epoch)
			c.session = sess
			c.mu.Unlock()

			if changed {
				c.emit(sess, Event{Type: EventReset, Level: LevelInfo, Message: "Chunk settings changed. Playback reset."})
			}
			c.recorder.SessionStarted(mode)
			c.logger.Debug("session started", "id", sess.ID, "mode", mode)
			c.emit(sess, Event{Type: EventSessionStarted})
			return sess
		}
		c.abortLocked(old)
		c.mu.Unlock()

		<-old.done
	}
}

// abortLocked cancels sess and interrupts the sink. It is called with
// c.mu held and sess installed, so the sink can only be playing for sess.
func (c *Controller) abortLocked(sess *Session) {
	sess.cancel()
	if err := c.sink.Stop(); err != nil {
		c.logger.Debug("sink stop", "err", err)
	}
}

// end releases the session.
func (c *Controller) end(sess *Session, outcome string) {
	sess.cancel()

	c.mu.Lock()
	owned := c.session == sess
	if owned {
		c.session = nil
		c.machine.Reset()
	}
	c.mu.Unlock()

	c.recorder.SessionFinished(sess.Mode, outcome)
	c.logger.Debug("session finished", "id", sess.ID, "mode", sess.Mode, "outcome", outcome)
	if owned {
		c.emit(sess, Event{Type: EventStateChanged, State: StateIdle})
	}
	c.emit(sess, Event{Type: EventSessionFinished, Message: outcome})
	close(sess.done)
}

// applyLocked records cfg and resets when it differs from the previous
// settings (must be called with lock held).
func (c *Controller) applyLocked(cfg Config) bool {
	if !c.hasCfg {
		c.cfg = cfg
		c.hasCfg = true
		return false
	}
	if cfg == c.cfg {
		return false
	}
	c.cfg = cfg
	c.resetLocked()
	return true
}

// resetLocked must be called with lock held.
func (c *Controller) resetLocked() {
	c.cursor = 0
	c.epoch++
	c.cache.Clear()
}

func (c *Controller) snapshot() (string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.cursor
}

// commit moves the cursor on behalf of sess. It refuses once sess has lost
// ownership or the text or settings changed since it began; with live set
// it also refuses after sess was cancelled.
func (c *Controller) commit(sess *Session, cursor int, live bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != sess || sess.epoch != c.epoch {
		return false
	}
	if live && sess.ctx.Err() != nil {
		return false
	}
	c.cursor = cursor
	return true
}

func (c *Controller) setState(sess *Session, s State) {
	c.mu.Lock()
	if c.session != sess || c.machine.Current() == s || !c.machine.Transition(s) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.emit(sess, Event{Type: EventStateChanged, State: s})
}

// resolve returns the audio handle for ch from the cache, or synthesizes
// and caches it. Failures and results that arrive after cancellation are
// never cached.
func (c *Controller) resolve(sess *Session, ch chunk.Chunk, cfg Config) (string, bool, error) {
	c.setState(sess, StateRequesting)

	key := cache.MakeKey(ch.Trimmed, cfg.Params)
	if handle, ok := c.cache.Get(key); ok {
		c.recorder.CacheLookup(true)
		return handle, true, nil
	}
	c.recorder.CacheLookup(false)

	if err := sess.ctx.Err(); err != nil {
		return "", false, err
	}

	c.status(sess, LevelInfo, fmt.Sprintf("Requesting audio for %q", chunk.Preview(ch.Trimmed, chunk.PreviewWidth)), nil)
	start := time.Now()
	res, err := c.gateway.Synthesize(sess.ctx, cfg.request(ch.Trimmed))
	c.recorder.Synthesis(time.Since(start), err)
	if err != nil {
		return "", false, err
	}
	if err := sess.ctx.Err(); err != nil {
		return "", false, err
	}

	c.cache.Put(key, res.URL)
	return res.URL, false, nil
}

// play hands the handle to the sink and blocks until it finishes.
func (c *Controller) play(sess *Session, ch chunk.Chunk, handle string, index, total int) error {
	if err := sess.ctx.Err(); err != nil {
		return err
	}
	c.setState(sess, StatePlaying)
	c.emit(sess, Event{
		Type:    EventChunkStarted,
		Chunk:   ch,
		Start:   ch.Start,
		End:     ch.End,
		Index:   index,
		Total:   total,
		Message: "Playing: " + chunk.Preview(ch.Trimmed, chunk.PreviewWidth),
		Level:   LevelInfo,
	})

	start := time.Now()
	err := c.sink.Play(sess.ctx, handle)
	c.emit(sess, Event{Type: EventChunkFinished, Chunk: ch, Start: ch.Start, End: ch.End, Index: index, Total: total})
	if err == nil {
		c.recorder.ChunkPlayed(time.Since(start))
	}
	return err
}

// classify wraps err in a playback Error. Anything that happens after the
// session was cancelled counts as a cancellation.
func (c *Controller) classify(sess *Session, ch chunk.Chunk, err error, fallback Kind) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}

	preview := chunk.Preview(ch.Trimmed, chunk.PreviewWidth)
	switch {
	case sess.ctx.Err() != nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, audio.ErrStopped):
		return &Error{Kind: KindCancelled, Chunk: preview, Err: err}
	case errors.Is(err, synth.ErrVerificationRequired):
		return &Error{Kind: KindVerificationRequired, Chunk: preview, Err: err}
	default:
		return &Error{Kind: fallback, Chunk: preview, Err: err}
	}
}

// finish reports a classified error at the operation boundary.
// Cancellation is swallowed.
func (c *Controller) finish(sess *Session, perr *Error, outcome *string, cancelled *bool) error {
	if perr.Kind == KindCancelled {
		*outcome = outcomeCancelled
		*cancelled = true
		c.logger.Debug("operation cancelled", "session", sess.ID, "chunk", perr.Chunk)
		return nil
	}

	*outcome = outcomeFailed
	if perr.Kind == KindVerificationRequired {
		c.status(sess, LevelError, "Verification required. Please verify and try again.", perr)
	} else {
		c.status(sess, LevelError, perr.Error(), perr)
	}
	return perr
}

func (c *Controller) status(sess *Session, level Level, msg string, err error) {
	switch level {
	case LevelError:
		c.logger.Error(msg)
	case LevelWarning:
		c.logger.Warn(msg)
	default:
		c.logger.Debug(msg)
	}
	c.emit(sess, Event{Type: EventStatus, Level: level, Message: msg, Err: err})
}

func (c *Controller) emit(sess *Session, e Event) {
	e.Time = time.Now()
	if sess != nil {
		e.SessionID = sess.ID
		e.Mode = sess.Mode.String()
	}
	if e.Err != nil {
		e.Error = e.Err.Error()
	}
	e.Cursor = c.Cursor()

	c.obsMu.RLock()
	observers := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.obsMu.RUnlock()

	for _, o := range observers {
		o.OnEvent(e)
	}
}

func endMessage(err error) string {
	if errors.Is(err, chunk.ErrEmptyText) {
		return "Please enter some text first."
	}
	return "End of text reached. Starting from the beginning next time."
}
