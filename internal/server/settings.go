package server

import (
	"errors"
	"net/http"

	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/dgnsrekt/readaloud/internal/playback"
)

// settingsRequest overrides parts of the baseline settings. Absent fields
// keep their current value.
type settingsRequest struct {
	Unit     *chunk.Unit `json:"unit"`
	Count    *int        `json:"count"`
	Voice    *string     `json:"voice"`
	Engine   *string     `json:"engine"`
	Language *string     `json:"language"`
	Volume   *float64    `json:"volume"`
}

func (r settingsRequest) apply(cfg playback.Config) playback.Config {
	if r.Unit != nil && *r.Unit != cfg.Chunk.Unit {
		cfg.Chunk = cfg.Chunk.WithUnit(*r.Unit)
	}
	if r.Count != nil {
		cfg.Chunk.Count = chunk.NormalizeCount(cfg.Chunk.Unit, *r.Count)
	}
	if r.Voice != nil {
		cfg.Params.Voice = *r.Voice
	}
	if r.Engine != nil {
		cfg.Params.Engine = *r.Engine
	}
	if r.Language != nil {
		cfg.Params.Language = *r.Language
	}
	if r.Volume != nil {
		cfg.Params.Volume = *r.Volume
	}
	return cfg
}

// settings merges the request body into the baseline and stores the result
// as the new baseline. It writes an error response and returns false when
// the body is malformed or the merged settings are invalid.
func (s *Server) settings(w http.ResponseWriter, r *http.Request) (playback.Config, bool) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return playback.Config{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := req.apply(s.cfg)
	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_settings", err.Error())
		return playback.Config{}, false
	}
	s.cfg = cfg
	return cfg, true
}
