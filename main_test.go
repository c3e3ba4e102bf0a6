package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/audio"
	"github.com/dgnsrekt/readaloud/internal/config"
	"github.com/dgnsrekt/readaloud/internal/synth"
	"github.com/dgnsrekt/readaloud/internal/textsrc"
)

func TestResolveVoice(t *testing.T) {
	tests := []struct {
		engine   string
		voice    string
		expected string
	}{
		{"openai", "nova", "nova"},
		{"openai", "NOVA", "nova"},
		{"openai", "shim", "shimmer"},
		{"google", "studio-q", "en-US-Studio-Q"},
		{"openai", "brand-new-voice", "brand-new-voice"},
		{"openai", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.voice, func(t *testing.T) {
			if got := resolveVoice(tt.engine, tt.voice); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFilterVoices(t *testing.T) {
	voices := filterVoices(synth.Voices(""), "news")
	if len(voices) != 2 {
		t.Fatalf("Expected 2 voices, got %d", len(voices))
	}
	for _, v := range voices {
		if v.Engine != synth.EngineGoogle {
			t.Errorf("Expected google voice, got %s", v.Engine)
		}
	}
}

func TestSourceArg(t *testing.T) {
	defer func() { fromClipboard = false }()

	arg, err := sourceArg([]string{"notes.md"})
	if err != nil || arg != "notes.md" {
		t.Errorf("Expected notes.md, got %q (%v)", arg, err)
	}

	fromClipboard = true
	arg, err = sourceArg(nil)
	if err != nil || arg != textsrc.Clipboard {
		t.Errorf("Expected clipboard source, got %q (%v)", arg, err)
	}

	if _, err := sourceArg([]string{"notes.md"}); err == nil {
		t.Error("Expected error when combining a source with --clipboard")
	}
}

func TestNewControllerLogsToInjectedLogger(t *testing.T) {
	savedCfg, savedDry := cfg, dryRun
	defer func() { cfg, dryRun = savedCfg, savedDry }()

	cfg = config.Default()
	cfg.Endpoint = "https://tts.example.com/index.php"
	cfg.Player = audio.Player{Command: "sh", Args: []string{"-c", "true"}}
	dryRun = false

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	ctrl, err := newController(logger, nil)
	if err != nil {
		t.Fatalf("newController failed: %v", err)
	}
	defer ctrl.Stop()

	if !strings.Contains(buf.String(), "Using audio player") {
		t.Errorf("Expected player selection in the injected logger, got %q", buf.String())
	}
}
