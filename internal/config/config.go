// Package config holds the reader settings and loads them from viper and
// the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgnsrekt/readaloud/internal/audio"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/synth"
)

// Config is the settings snapshot every operation starts from.
type Config struct {
	Unit     chunk.Unit    `mapstructure:"unit"`
	Count    int           `mapstructure:"count"`
	Voice    string        `mapstructure:"voice"`
	Engine   string        `mapstructure:"engine"`
	Language string        `mapstructure:"language"`
	Volume   float64       `mapstructure:"volume"`
	Hold     time.Duration `mapstructure:"hold"`

	Endpoint          string        `mapstructure:"endpoint"`
	Token             string        `mapstructure:"token"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`

	Cache    CacheConfig  `mapstructure:"cache"`
	Player   audio.Player `mapstructure:"player"`
	Status   string       `mapstructure:"status"`
	Markdown bool         `mapstructure:"markdown"`
	Listen   string       `mapstructure:"listen"`
}

// CacheConfig bounds the audio cache.
type CacheConfig struct {
	// MaxEntries is the LRU bound. Zero keeps every entry.
	MaxEntries int `mapstructure:"max_entries"`
}

const (
	// MaxVolume is the loudest level the backend accepts.
	MaxVolume = 10.0
	// MaxHold caps the press-and-hold delay.
	MaxHold = 10 * time.Second
)

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Unit:              chunk.Words,
		Count:             chunk.DefaultWordCount,
		Voice:             synth.DefaultVoice,
		Engine:            string(synth.EngineOpenAI),
		Volume:            synth.DefaultVolume,
		Hold:              0,
		RequestsPerMinute: 60,
		Timeout:           30 * time.Second,
		Status:            playback.VerbosityErrors.String(),
		Markdown:          true,
		Listen:            "127.0.0.1:8377",
	}
}

// Normalize fixes values that have an obvious replacement: the count is
// brought into range for its unit and the language is derived from a
// Google voice name when unset.
func (c *Config) Normalize() {
	c.Count = chunk.NormalizeCount(c.Unit, c.Count)
	if engine, err := synth.ParseEngine(c.Engine); err == nil {
		c.Engine = string(engine)
		if engine == synth.EngineGoogle && c.Language == "" {
			c.Language = synth.LanguageFromVoice(c.Voice)
		}
	}
}

// Validate rejects values that are out of range.
func (c Config) Validate() error {
	var errs []error
	if err := c.chunkOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := synth.ParseEngine(c.Engine); err != nil {
		errs = append(errs, err)
	}
	if c.Voice == "" {
		errs = append(errs, errors.New("voice must be set"))
	}
	if c.Volume < 0 || c.Volume > MaxVolume {
		errs = append(errs, fmt.Errorf("volume must be between 0 and %g, got %g", MaxVolume, c.Volume))
	}
	if c.Hold < 0 || c.Hold > MaxHold {
		errs = append(errs, fmt.Errorf("hold must be between 0 and %s, got %s", MaxHold, c.Hold))
	}
	if c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries))
	}
	switch c.Status {
	case "all", "errors", "none":
	default:
		errs = append(errs, fmt.Errorf("status must be all, errors or none, got %q", c.Status))
	}
	return errors.Join(errs...)
}

func (c Config) chunkOptions() chunk.Options {
	return chunk.Options{Unit: c.Unit, Count: c.Count}
}

// Playback returns the settings a controller operation runs with.
func (c Config) Playback() playback.Config {
	return playback.Config{
		Chunk: c.chunkOptions(),
		Params: cache.Params{
			Engine:   c.Engine,
			Voice:    c.Voice,
			Language: c.Language,
			Volume:   c.Volume,
		},
	}
}

// Verbosity returns the status filter.
func (c Config) Verbosity() playback.Verbosity {
	return playback.ParseVerbosity(c.Status)
}

// HTTP returns the gateway settings.
func (c Config) HTTP() synth.HTTPConfig {
	return synth.HTTPConfig{
		Endpoint:          c.Endpoint,
		Token:             c.Token,
		RequestsPerMinute: c.RequestsPerMinute,
		Timeout:           c.Timeout,
	}
}

// NewCache returns an audio cache with the configured bound.
func (c Config) NewCache() *cache.AudioCache {
	return cache.New(c.Cache.MaxEntries)
}
