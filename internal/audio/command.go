package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Player describes an external command that can play a URL.
type Player struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// String returns the command line without the URL.
func (p Player) String() string {
	return strings.TrimSpace(p.Command + " " + strings.Join(p.Args, " "))
}

// knownPlayers are tried in order by DetectPlayer.
var knownPlayers = []Player{
	{Command: "mpv", Args: []string{"--no-video", "--really-quiet"}},
	{Command: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
	{Command: "cvlc", Args: []string{"--play-and-exit", "--quiet"}},
}

// DetectPlayer returns the first known player found in PATH.
func DetectPlayer() (Player, error) {
	for _, p := range knownPlayers {
		if _, err := exec.LookPath(p.Command); err == nil {
			return p, nil
		}
	}
	names := make([]string, len(knownPlayers))
	for i, p := range knownPlayers {
		names[i] = p.Command
	}
	return Player{}, fmt.Errorf("%w: install one of %s", ErrNoPlayer, strings.Join(names, ", "))
}

// stopGrace is how long a player gets to exit after an interrupt before
// it is killed.
const stopGrace = 500 * time.Millisecond

// CommandSink plays each URL by running an external player to completion.
type CommandSink struct {
	player Player
	logger *log.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

// NewCommandSink creates a sink that runs player for every URL.
func NewCommandSink(player Player, logger *log.Logger) (*CommandSink, error) {
	if player.Command == "" {
		return nil, ErrNoPlayer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CommandSink{player: player, logger: logger.WithPrefix("audio")}, nil
}

// Play runs the player on url and waits for it to exit.
func (s *CommandSink) Play(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
	}()

	args := append(append([]string{}, s.player.Args...), url)
	cmd := exec.CommandContext(playCtx, s.player.Command, args...) //nolint:gosec
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGrace

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	s.logger.Debug("starting player", "cmd", s.player.Command, "url", url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}
	err := cmd.Wait()

	// Check for cancellation before process errors: a killed player
	// always exits with an error.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if playCtx.Err() != nil {
		return ErrStopped
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return fmt.Errorf("player failed: %w\nstderr: %s", err, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("player failed: %w", err)
	}
	return nil
}

// Stop interrupts the running player, if any.
func (s *CommandSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return nil
}
