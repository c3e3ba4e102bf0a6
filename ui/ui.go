// Package ui provides the terminal reader for readaloud.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/gesture"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/textsrc"
	"github.com/muesli/reflow/wordwrap"
)

// NewProgram returns a new Tea program that reads text aloud through ctrl.
func NewProgram(cfg Config, ctrl *playback.Controller, text string, logger *log.Logger) *tea.Program {
	logger.Debug(
		"Starting reader",
		"path",
		cfg.Path,
		"mouse",
		cfg.EnableMouse,
		"hold",
		cfg.Hold,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, ctrl, text, logger), opts...)
}

type model struct {
	cfg    Config
	ctrl   *playback.Controller
	logger *log.Logger

	events      eventBridge
	unsubscribe func()
	watcher     *textsrc.Watcher
	hold        *gesture.Hold

	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	showHelp bool

	text    string
	cursor  int
	hlStart int
	hlEnd   int
	state   playback.State

	pregenIndex  int
	pregenTotal  int
	holdProgress float64

	statusMessage      string
	statusLevel        playback.Level
	statusMessageTimer *time.Timer
}

func newModel(cfg Config, ctrl *playback.Controller, text string, logger *log.Logger) model {
	if logger == nil {
		logger = log.Default()
	}

	events := newEventBridge()
	ctrl.SetText(text)
	ctrl.SetConfig(cfg.Playback)

	m := model{
		cfg:         cfg,
		ctrl:        ctrl,
		logger:      logger,
		events:      events,
		unsubscribe: ctrl.Subscribe(events),
		hold:        gesture.NewHold(),
		viewport:    viewport.New(0, 0),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		text:        ctrl.Text(),
		cursor:      ctrl.Cursor(),
		hlStart:     -1,
		hlEnd:       -1,
	}
	m.spinner.Style = m.spinner.Style.Foreground(mintGreen)

	if cfg.Path != "" {
		w, err := textsrc.Watch(cfg.Path)
		if err != nil {
			logger.Warn("Not watching file", "path", cfg.Path, "err", err)
		} else {
			m.watcher = w
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events)}
	if m.watcher != nil {
		cmds = append(cmds, watchFile(m.watcher, m.cfg.Markdown))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.setSize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case eventMsg:
		cmds = append(cmds, m.handleEvent(playback.Event(msg)), waitForEvent(m.events))

	case opDoneMsg:
		if msg.err != nil && !playback.IsEndOfText(msg.err) {
			m.logger.Debug("Operation failed", "mode", msg.mode, "err", msg.err)
		}
		m.sync()

	case holdTickMsg:
		if !m.hold.Holding() {
			m.holdProgress = 0
			break
		}
		p, fired := m.hold.Tick()
		m.holdProgress = p
		if fired {
			m.holdProgress = 0
			cmds = append(cmds, stepCmd(m.ctrl, m.cfg.Playback))
		} else {
			cmds = append(cmds, holdTick())
		}

	case fileChangedMsg:
		m.ctrl.SetText(msg.text)
		m.text = m.ctrl.Text()
		m.sync()
		m.clearHighlight()
		cmds = append(cmds, m.showStatusMessage(playback.LevelInfo, "File reloaded."))
		if m.watcher != nil {
			cmds = append(cmds, watchFile(m.watcher, m.cfg.Markdown))
		}

	case watchErrMsg:
		m.logger.Warn("Stopped watching file", "err", msg.err)

	case clipboardMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showStatusMessage(playback.LevelError, "Could not copy: "+msg.err.Error()))
		} else {
			cmds = append(cmds, m.showStatusMessage(playback.LevelInfo, "Copied to clipboard."))
		}

	case statusMessageTimeoutMsg:
		m.statusMessage = ""

	case spinner.TickMsg:
		if m.state == playback.StateRequesting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.close()
		return m, tea.Quit

	case "n", " ", "enter":
		return m, stepCmd(m.ctrl, m.cfg.Playback)

	case "a":
		return m, playCmd(m.ctrl, m.cfg.Playback)

	case "g", "p":
		return m, pregenerateCmd(m.ctrl, m.cfg.Playback)

	case "s", "esc":
		m.ctrl.Stop()
		m.clearHighlight()
		m.refresh()
		return m, nil

	case "r":
		m.ctrl.Stop()
		m.ctrl.SetCursor(0)
		m.sync()
		m.clearHighlight()
		m.viewport.GotoTop()
		m.refresh()
		return m, m.showStatusMessage(playback.LevelInfo, "Back to the beginning.")

	case "c":
		return m, copyCmd(m.unread())

	case "home":
		m.viewport.GotoTop()
		return m, nil

	case "end", "G":
		m.viewport.GotoBottom()
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		m.setSize()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			if !m.onButton(msg.X, msg.Y) {
				return m, nil
			}
			if m.hold.Press(m.cfg.Hold) {
				return m, stepCmd(m.ctrl, m.cfg.Playback)
			}
			return m, holdTick()
		}
	case tea.MouseActionRelease:
		if m.hold.Release() {
			m.holdProgress = 0
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleEvent(e playback.Event) tea.Cmd {
	var cmd tea.Cmd

	switch e.Type {
	case playback.EventStateChanged:
		requesting := m.state == playback.StateRequesting
		m.state = e.State
		if e.State == playback.StateRequesting && !requesting {
			cmd = m.spinner.Tick
		}

	case playback.EventChunkStarted:
		m.hlStart, m.hlEnd = e.Start, e.End
		m.scrollTo(e.Start)

	case playback.EventChunkFinished, playback.EventHighlightCleared:
		m.clearHighlight()

	case playback.EventPregenerateProgress:
		m.pregenIndex, m.pregenTotal = e.Index, e.Total

	case playback.EventSessionFinished:
		m.pregenIndex, m.pregenTotal = 0, 0

	case playback.EventReset:
		m.clearHighlight()
		m.text = m.ctrl.Text()
	}

	switch e.Type {
	case playback.EventStatus, playback.EventEndOfText, playback.EventReset:
		if e.Message != "" && m.cfg.Verbosity.Shows(e.Level) {
			cmd = tea.Batch(cmd, m.showStatusMessage(e.Level, e.Message))
		}
	}

	m.cursor = e.Cursor
	return cmd
}

func (m *model) showStatusMessage(level playback.Level, msg string) tea.Cmd {
	m.statusMessage = msg
	m.statusLevel = level
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// sync pulls state the event stream may have missed.
func (m *model) sync() {
	snap := m.ctrl.Snapshot()
	m.cursor = snap.Cursor
	m.state = snap.State
	if m.state == playback.StateIdle {
		m.clearHighlight()
	}
}

func (m *model) clearHighlight() {
	m.hlStart, m.hlEnd = -1, -1
}

func (m *model) close() {
	m.ctrl.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			m.logger.Debug("Closing watcher", "err", err)
		}
	}
}

func (m *model) setSize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(0, m.height-statusBarHeight)
	if m.showHelp {
		m.viewport.Height = max(0, m.viewport.Height-helpViewHeight)
	}
	m.refresh()
}

func (m *model) refresh() {
	m.viewport.SetContent(renderText(m.text, m.cursor, m.hlStart, m.hlEnd, m.contentWidth()))
}

// scrollTo keeps the byte offset within the visible region.
func (m *model) scrollTo(offset int) {
	if offset < 0 || offset > len(m.text) || m.viewport.Height == 0 {
		return
	}
	line := lineOf(m.text, offset, m.contentWidth())
	top := m.viewport.YOffset
	if line < top || line >= top+m.viewport.Height {
		m.viewport.SetYOffset(max(0, line-m.viewport.Height/3))
	}
}

func (m model) contentWidth() int {
	w := m.width
	if m.cfg.MaxWidth > 0 && (w == 0 || uint(w) > m.cfg.MaxWidth) {
		w = int(m.cfg.MaxWidth)
	}
	return w
}

func (m model) unread() string {
	if m.hlStart >= 0 && m.hlEnd <= len(m.text) && m.hlStart < m.hlEnd {
		return strings.TrimSpace(m.text[m.hlStart:m.hlEnd])
	}
	return strings.TrimSpace(m.text[min(m.cursor, len(m.text)):])
}

func (m model) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	m.statusBarView(&b)
	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func copyCmd(s string) tea.Cmd {
	return func() tea.Msg {
		if s == "" {
			return clipboardMsg{errors.New("nothing left to read")}
		}
		return clipboardMsg{clipboard.WriteAll(s)}
	}
}

func lineOf(text string, offset, width int) int {
	prefix := text[:offset]
	if width > 0 {
		prefix = wordwrap.String(prefix, width)
	}
	return strings.Count(prefix, "\n")
}
