// Package metrics exposes Prometheus instruments for playback sessions,
// synthesis calls and the audio cache.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/synth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the reader. It
// implements playback.Recorder.
type Metrics struct {
	ActiveSessions   prometheus.Gauge
	Sessions         *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	SynthesisCalls   *prometheus.CounterVec
	SynthesisLatency prometheus.Histogram
	ChunksPlayed     prometheus.Counter
	ChunkDuration    prometheus.Histogram

	gatherer prometheus.Gatherer
}

var _ playback.Recorder = (*Metrics)(nil)

// New registers the instruments with reg. A nil reg uses a fresh registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of playback sessions in progress.",
		}),
		Sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished playback sessions by mode and outcome.",
		}, []string{"mode", "outcome"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Audio cache lookups by result.",
		}, []string{"result"}),
		SynthesisCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_requests_total",
			Help:      "Synthesis requests by outcome.",
		}, []string{"outcome"}),
		SynthesisLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_latency_ms",
			Help:      "Latency of synthesis requests in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000},
		}),
		ChunksPlayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_played_total",
			Help:      "Chunks played to completion.",
		}),
		ChunkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_playback_seconds",
			Help:      "Wall time spent playing a chunk.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16},
		}),
		gatherer: reg,
	}
}

// CacheLookup counts a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Synthesis records one gateway call.
func (m *Metrics) Synthesis(took time.Duration, err error) {
	m.SynthesisCalls.WithLabelValues(synthesisOutcome(err)).Inc()
	if err == nil {
		m.SynthesisLatency.Observe(float64(took.Milliseconds()))
	}
}

// ChunkPlayed records a completed playback.
func (m *Metrics) ChunkPlayed(took time.Duration) {
	m.ChunksPlayed.Inc()
	m.ChunkDuration.Observe(took.Seconds())
}

// SessionStarted tracks a new session.
func (m *Metrics) SessionStarted(playback.Mode) {
	m.ActiveSessions.Inc()
}

// SessionFinished tracks a finished session.
func (m *Metrics) SessionFinished(mode playback.Mode, outcome string) {
	m.ActiveSessions.Dec()
	m.Sessions.WithLabelValues(mode.String(), outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func synthesisOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, synth.ErrVerificationRequired):
		return "verification_required"
	default:
		return "error"
	}
}
