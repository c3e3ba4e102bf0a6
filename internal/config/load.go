package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/dgnsrekt/readaloud/internal/audio"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Env holds process-level settings read straight from the environment.
// They override the config file.
type Env struct {
	Token    string `env:"READALOUD_TOKEN"`
	Endpoint string `env:"READALOUD_ENDPOINT"`
	Player   string `env:"READALOUD_PLAYER"`
	Debug    bool   `env:"READALOUD_DEBUG"`
}

// SetDefaults registers every key with v so that environment variables
// and Unmarshal see them.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("unit", d.Unit.String())
	v.SetDefault("count", d.Count)
	v.SetDefault("voice", d.Voice)
	v.SetDefault("engine", d.Engine)
	v.SetDefault("language", d.Language)
	v.SetDefault("volume", d.Volume)
	v.SetDefault("hold", d.Hold.String())
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("token", d.Token)
	v.SetDefault("requests_per_minute", d.RequestsPerMinute)
	v.SetDefault("timeout", d.Timeout.String())
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("player", "")
	v.SetDefault("status", d.Status)
	v.SetDefault("markdown", d.Markdown)
	v.SetDefault("listen", d.Listen)
}

// Load decodes v into a Config, applies the environment overlay,
// normalizes and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg, viper.DecodeHook(DecodeHook())); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	e, err := env.ParseAs[Env]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}
	cfg.applyEnv(e)

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(e Env) {
	if e.Token != "" {
		c.Token = e.Token
	}
	if e.Endpoint != "" {
		c.Endpoint = e.Endpoint
	}
	if e.Player != "" {
		c.Player = ParsePlayer(e.Player)
	}
}

// DecodeHook parses durations, text-encoded values such as the chunk
// unit, and player command lines.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
		stringToPlayerHookFunc(),
	)
}

var playerType = reflect.TypeOf(audio.Player{})

func stringToPlayerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String || t != playerType {
			return data, nil
		}
		return ParsePlayer(data.(string)), nil
	}
}

// ParsePlayer splits a command line such as "mpv --no-video" into a Player.
func ParsePlayer(s string) audio.Player {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return audio.Player{}
	}
	return audio.Player{Command: fields[0], Args: fields[1:]}
}
