package playback

import (
	"fmt"

	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/chunk"
	"github.com/dgnsrekt/readaloud/internal/synth"
)

// Config is the settings snapshot an operation runs with.
type Config struct {
	Chunk  chunk.Options
	Params cache.Params
}

// DefaultConfig returns ten-word chunks with the default voice.
func DefaultConfig() Config {
	return Config{
		Chunk: chunk.DefaultOptions(),
		Params: cache.Params{
			Engine: string(synth.EngineOpenAI),
			Voice:  synth.DefaultVoice,
			Volume: synth.DefaultVolume,
		},
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if err := c.Chunk.Validate(); err != nil {
		return err
	}
	if _, err := synth.ParseEngine(c.Params.Engine); err != nil {
		return err
	}
	if c.Params.Voice == "" {
		return fmt.Errorf("voice must be set")
	}
	if c.Params.Volume < 0 {
		return fmt.Errorf("volume must not be negative, got %g", c.Params.Volume)
	}
	return nil
}

// request builds a synthesis request for trimmed chunk text.
func (c Config) request(text string) synth.Request {
	engine, _ := synth.ParseEngine(c.Params.Engine)
	return synth.Request{
		Text:     text,
		Voice:    c.Params.Voice,
		Engine:   engine,
		Language: c.Params.Language,
		Volume:   c.Params.Volume,
	}
}
