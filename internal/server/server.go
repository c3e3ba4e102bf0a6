// Package server exposes the playback controller over HTTP with a
// websocket event stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/textsrc"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Server is the HTTP remote control.
type Server struct {
	ctrl           *playback.Controller
	logger         *log.Logger
	metrics        http.Handler
	allowAnyOrigin bool
	upgrader       websocket.Upgrader
	hub            *hub

	mu  sync.Mutex
	cfg playback.Config

	ops sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics serves h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithAllowAnyOrigin accepts websocket connections from any origin.
func WithAllowAnyOrigin() Option {
	return func(s *Server) { s.allowAnyOrigin = true }
}

// New creates a server driving ctrl. cfg is the baseline for operations;
// requests may override parts of it.
func New(ctrl *playback.Controller, cfg playback.Config, opts ...Option) *Server {
	s := &Server{
		ctrl: ctrl,
		cfg:  cfg,
		hub:  newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("server")
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	ctrl.Subscribe(s.hub)
	return s
}

// checkOrigin only allows browser connections from the same origin.
// Non-browser clients usually omit Origin and are allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	if s.allowAnyOrigin {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Post("/text", s.handleText)
		r.Post("/cursor", s.handleCursor)
		r.Post("/step", s.handleStep)
		r.Post("/play", s.handlePlay)
		r.Post("/pregenerate", s.handlePregenerate)
		r.Post("/stop", s.handleStop)
	})
	return r
}

// Wait blocks until background operations started by the server return.
func (s *Server) Wait() {
	s.ops.Wait()
}

// Config returns the current baseline settings.
func (s *Server) Config() playback.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.count(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type textRequest struct {
	Text     string `json:"text"`
	Markdown bool   `json:"markdown"`
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	text, err := textsrc.Prepare(req.Text, req.Markdown)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_text", err.Error())
		return
	}
	s.ctrl.SetText(text)
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type cursorRequest struct {
	Cursor int `json:"cursor"`
}

func (s *Server) handleCursor(w http.ResponseWriter, r *http.Request) {
	var req cursorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	s.ctrl.SetCursor(req.Cursor)
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Stop()
	respondJSON(w, http.StatusOK, s.ctrl.Snapshot())
}

type stepResponse struct {
	Chunk     string `json:"chunk,omitempty"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Cursor    int    `json:"cursor"`
	Cached    bool   `json:"cached"`
	Cancelled bool   `json:"cancelled"`
	EndOfText bool   `json:"end_of_text,omitempty"`
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.settings(w, r)
	if !ok {
		return
	}
	s.run(w, r, func(ctx context.Context) (any, error) {
		step, err := s.ctrl.ExecuteSingleStep(ctx, cfg)
		resp := stepResponse{
			Chunk:     step.Chunk.Trimmed,
			Start:     step.Chunk.Start,
			End:       step.Chunk.End,
			Cursor:    step.Cursor,
			Cached:    step.Cached,
			Cancelled: step.Cancelled,
		}
		if playback.IsEndOfText(err) && !errors.Is(err, chunk.ErrEmptyText) {
			resp.EndOfText = true
			return resp, nil
		}
		return resp, err
	})
}

type playResponse struct {
	Played    int  `json:"played"`
	Cached    int  `json:"cached"`
	Total     int  `json:"total"`
	Cursor    int  `json:"cursor"`
	Cancelled bool `json:"cancelled"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.settings(w, r)
	if !ok {
		return
	}
	s.run(w, r, func(ctx context.Context) (any, error) {
		sum, err := s.ctrl.PlaySequence(ctx, cfg)
		return playResponse(sum), err
	})
}

type pregenerateResponse struct {
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Total     int  `json:"total"`
	Cancelled bool `json:"cancelled"`
}

func (s *Server) handlePregenerate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.settings(w, r)
	if !ok {
		return
	}
	s.run(w, r, func(ctx context.Context) (any, error) {
		res, err := s.ctrl.PregenerateAll(ctx, cfg)
		return pregenerateResponse{
			Succeeded: res.SuccessCount,
			Failed:    res.FailCount,
			Total:     res.Total,
			Cancelled: res.Cancelled,
		}, err
	})
}

// run executes op. With ?wait=true it answers with the result once op
// returns; otherwise op runs in the background and the request is
// accepted immediately.
func (s *Server) run(w http.ResponseWriter, r *http.Request, op func(context.Context) (any, error)) {
	if wait, _ := parseBool(r.URL.Query().Get("wait")); wait {
		res, err := op(r.Context())
		if err != nil {
			respondOpError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
		return
	}

	s.ops.Add(1)
	go func() {
		defer s.ops.Done()
		if _, err := op(context.Background()); err != nil {
			s.logger.Debug("background operation", "err", err)
		}
	}()
	respondJSON(w, http.StatusAccepted, map[string]any{"accepted": true})
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true, nil
	case "", "0", "false", "no":
		return false, nil
	}
	return false, errors.New("invalid boolean")
}

func respondOpError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch playback.KindOf(err) {
	case playback.KindEmptyInput:
		status, code = http.StatusConflict, "empty_text"
	case playback.KindVerificationRequired:
		status, code = http.StatusForbidden, "verification_required"
	case playback.KindSynthesisFailure:
		status, code = http.StatusBadGateway, "synthesis_failed"
	case playback.KindPlaybackFailure:
		code = "playback_failed"
	case playback.KindSegmentationExhausted:
		code = "segmentation_exhausted"
	}
	respondError(w, status, code, err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close() //nolint:errcheck
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
