package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/audio"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/synth"
	"github.com/dgnsrekt/readaloud/internal/textsrc"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	stepFrom int

	playCmd = &cobra.Command{
		Use:     "play [SOURCE]",
		Short:   "Read the whole text aloud",
		Long:    paragraph(fmt.Sprintf("\n%s the text from start to end, one chunk after another. Ctrl-C stops after the current chunk is cut off.", keyword("Read"))),
		Example: paragraph("readaloud play notes.md\ncat notes.txt | readaloud play -\nreadaloud play --clipboard --unit sentences --count 2"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runPlay,
	}

	pregenerateCmd = &cobra.Command{
		Use:   "pregenerate [SOURCE]",
		Short: "Synthesize every chunk without playing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPregenerate,
	}

	stepCmd = &cobra.Command{
		Use:   "step [SOURCE]",
		Short: "Speak the next chunk and print the new cursor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStep,
	}
)

func init() {
	stepCmd.Flags().IntVar(&stepFrom, "from", 0, "byte offset to start from")
}

// newController wires the configured gateway and sink into a controller.
func newController(logger *log.Logger, rec playback.Recorder) (*playback.Controller, error) {
	httpCfg := cfg.HTTP()
	httpCfg.Logger = logger
	gw, err := synth.NewHTTPGateway(httpCfg)
	if err != nil {
		if errors.Is(err, synth.ErrNoEndpoint) {
			return nil, fmt.Errorf("%w: set endpoint in the config file or READALOUD_ENDPOINT", err)
		}
		return nil, err
	}

	var sink audio.Sink = audio.NullSink{}
	if !dryRun {
		player := cfg.Player
		if player.Command == "" {
			if player, err = audio.DetectPlayer(); err != nil {
				return nil, fmt.Errorf("%w: set player in the config file or use --dry-run", err)
			}
		}
		if sink, err = audio.NewCommandSink(player, logger); err != nil {
			return nil, err
		}
		logger.Debug("Using audio player", "player", player)
	}

	opts := []playback.Option{
		playback.WithLogger(logger),
		playback.WithCache(cfg.NewCache()),
	}
	if rec != nil {
		opts = append(opts, playback.WithRecorder(rec))
	}
	ctrl := playback.New(gw, sink, opts...)
	ctrl.SetConfig(cfg.Playback())
	return ctrl, nil
}

// headless loads the text, builds a controller and returns a context that
// is cancelled on interrupt. The returned stop releases both.
func headless(cmd *cobra.Command, args []string) (*playback.Controller, context.Context, func(), error) {
	arg, err := sourceArg(args)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	_, text, err := loadText(ctx, arg)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	if strings.TrimSpace(text) == "" {
		cancel()
		return nil, nil, nil, textsrc.ErrEmptySource
	}

	ctrl, err := newController(log.Default(), nil)
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	ctrl.SetText(text)
	unsubscribe := ctrl.Subscribe(statusLogger(log.Default(), cfg.Verbosity()))
	stopOnCancel := context.AfterFunc(ctx, ctrl.Stop)

	return ctrl, ctx, func() {
		stopOnCancel()
		unsubscribe()
		cancel()
	}, nil
}

// statusLogger logs the status messages the verbosity lets through.
func statusLogger(logger *log.Logger, v playback.Verbosity) playback.Observer {
	return playback.ObserverFunc(func(e playback.Event) {
		switch e.Type {
		case playback.EventStatus, playback.EventEndOfText:
		default:
			return
		}
		if e.Message == "" || !v.Shows(e.Level) {
			return
		}
		switch e.Level {
		case playback.LevelError:
			logger.Error(e.Message)
		case playback.LevelWarning:
			logger.Warn(e.Message)
		default:
			logger.Info(e.Message)
		}
	})
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctrl, ctx, stop, err := headless(cmd, args)
	if err != nil {
		return err
	}
	defer stop()

	out := cmd.OutOrStdout()
	unsubscribe := ctrl.Subscribe(playback.ObserverFunc(func(e playback.Event) {
		if e.Type == playback.EventChunkStarted {
			fmt.Fprintln(out, e.Chunk.Trimmed)
		}
	}))
	defer unsubscribe()

	s, err := ctrl.PlaySequence(ctx, cfg.Playback())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Played %s of %s chunks (%s cached).\n",
		humanize.Comma(int64(s.Played)), humanize.Comma(int64(s.Total)), humanize.Comma(int64(s.Cached)))
	if s.Cancelled {
		fmt.Fprintf(cmd.ErrOrStderr(), "Stopped at byte %s.\n", humanize.Comma(int64(s.Cursor)))
	}
	return nil
}

func runPregenerate(cmd *cobra.Command, args []string) error {
	ctrl, ctx, stop, err := headless(cmd, args)
	if err != nil {
		return err
	}
	defer stop()

	res, err := ctrl.PregenerateAll(ctx, cfg.Playback())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pregenerated %s of %s chunks, %s failed.\n",
		humanize.Comma(int64(res.SuccessCount)), humanize.Comma(int64(res.Total)), humanize.Comma(int64(res.FailCount)))
	if res.Cancelled {
		fmt.Fprintln(cmd.ErrOrStderr(), "Stopped early.")
	}
	return nil
}

func runStep(cmd *cobra.Command, args []string) error {
	ctrl, ctx, stop, err := headless(cmd, args)
	if err != nil {
		return err
	}
	defer stop()

	ctrl.SetCursor(stepFrom)
	step, err := ctrl.ExecuteSingleStep(ctx, cfg.Playback())
	switch {
	case playback.IsEndOfText(err):
		fmt.Fprintln(cmd.OutOrStdout(), ctrl.Cursor())
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), step.Chunk.Trimmed)
	fmt.Fprintln(cmd.OutOrStdout(), step.Cursor)
	return nil
}
