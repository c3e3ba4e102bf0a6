package ui

import (
	"time"

	"github.com/dgnsrekt/readaloud/internal/playback"
)

// Config contains TUI-specific configuration.
type Config struct {
	// File being read, empty for stdin, URLs and the clipboard. Local files
	// are watched and reloaded on change.
	Path     string
	Markdown bool

	Playback  playback.Config
	Hold      time.Duration
	Verbosity playback.Verbosity

	EnableMouse bool
	MaxWidth    uint `env:"READALOUD_WIDTH" envDefault:"100"`
}
