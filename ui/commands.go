package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/textsrc"
)

const (
	holdTickInterval     = 50 * time.Millisecond
	statusMessageTimeout = 4 * time.Second
	eventBufferSize      = 256
)

type (
	eventMsg    playback.Event
	holdTickMsg time.Time

	opDoneMsg struct {
		mode playback.Mode
		err  error
	}

	fileChangedMsg struct {
		text string
	}

	watchErrMsg struct {
		err error
	}

	clipboardMsg struct {
		err error
	}

	statusMessageTimeoutMsg struct{}
)

// eventBridge forwards controller events into the bubbletea loop. Events
// are dropped when the buffer is full; the model resynchronizes from a
// controller snapshot when each operation completes.
type eventBridge chan playback.Event

func newEventBridge() eventBridge {
	return make(eventBridge, eventBufferSize)
}

func (b eventBridge) OnEvent(e playback.Event) {
	select {
	case b <- e:
	default:
	}
}

func waitForEvent(ch <-chan playback.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func stepCmd(ctrl *playback.Controller, cfg playback.Config) tea.Cmd {
	return func() tea.Msg {
		_, err := ctrl.ExecuteSingleStep(context.Background(), cfg)
		return opDoneMsg{mode: playback.ModeSingleStep, err: err}
	}
}

func playCmd(ctrl *playback.Controller, cfg playback.Config) tea.Cmd {
	return func() tea.Msg {
		_, err := ctrl.PlaySequence(context.Background(), cfg)
		return opDoneMsg{mode: playback.ModeSequence, err: err}
	}
}

func pregenerateCmd(ctrl *playback.Controller, cfg playback.Config) tea.Cmd {
	return func() tea.Msg {
		_, err := ctrl.PregenerateAll(context.Background(), cfg)
		return opDoneMsg{mode: playback.ModePregenerate, err: err}
	}
}

func holdTick() tea.Cmd {
	return tea.Tick(holdTickInterval, func(t time.Time) tea.Msg {
		return holdTickMsg(t)
	})
}

// watchFile waits for the next change to the watched file and reloads it.
func watchFile(w *textsrc.Watcher, markdown bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := w.Next(ctx); err != nil {
			return watchErrMsg{err}
		}
		src, err := textsrc.Load(ctx, w.Path())
		if err != nil {
			return watchErrMsg{err}
		}
		text, err := textsrc.Prepare(src.Text, markdown)
		if err != nil {
			return watchErrMsg{err}
		}
		return fileChangedMsg{text}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}
