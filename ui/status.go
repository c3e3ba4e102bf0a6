package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	statusBarHeight = 1
	helpViewHeight  = 6
	stateSeparator  = " │ "
)

var stateColors = map[playback.State]lipgloss.Color{
	playback.StateIdle:       lipgloss.Color("247"),
	playback.StateRequesting: lipgloss.Color("214"),
	playback.StatePlaying:    lipgloss.Color("39"),
}

func (m model) buttonView() string {
	if m.hold.Holding() {
		return buttonHoldStyle(fmt.Sprintf(" Hold %3.f%% ", m.holdProgress*100))
	}
	return buttonStyle(" ▶ Speak next ")
}

// onButton reports whether a mouse position falls on the speak button.
func (m model) onButton(x, y int) bool {
	return y == m.viewport.Height && x >= 0 && x < ansi.PrintableRuneWidth(m.buttonView())
}

func (m model) stateView() string {
	label := m.state.String()
	if m.state == playback.StateRequesting {
		label = m.spinner.View() + label
	}
	parts := []string{
		lipgloss.NewStyle().Foreground(stateColors[m.state]).Background(statusBarBg).Render(label),
	}
	if m.pregenTotal > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("141")).
			Background(statusBarBg).
			Render(fmt.Sprintf("cached %d/%d", m.pregenIndex, m.pregenTotal)))
	}
	return strings.Join(parts, statusBarNoteStyle(stateSeparator))
}

func (m model) statusBarView(b *strings.Builder) {
	button := m.buttonView()

	// Read percent
	percent := 1.0
	if len(m.text) > 0 {
		percent = float64(m.cursor) / float64(len(m.text))
	}
	readPercent := statusBarNoteStyle(fmt.Sprintf(" %3.f%% ", percent*100))

	helpNote := statusBarHelpStyle(" ? Help ")

	state := statusBarNoteStyle(" ") + m.stateView() + statusBarNoteStyle(stateSeparator)

	// Note
	var note string
	if m.statusMessage != "" {
		note = m.statusMessage
	} else if m.cfg.Path != "" {
		note = m.cfg.Path
	}
	avail := max(0, m.width-
		ansi.PrintableRuneWidth(button)-
		ansi.PrintableRuneWidth(state)-
		ansi.PrintableRuneWidth(readPercent)-
		ansi.PrintableRuneWidth(helpNote),
	)
	note = truncate.StringWithTail(note+" ", uint(avail), ellipsis) //nolint:gosec
	switch {
	case m.statusMessage == "":
		note = statusBarNoteStyle(note)
	case m.statusLevel == playback.LevelError:
		note = statusBarErrorStyle(note)
	case m.statusLevel == playback.LevelWarning:
		note = statusBarWarningStyle(note)
	default:
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(button)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(readPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := statusBarNoteStyle(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		button,
		state,
		note,
		emptySpace,
		readPercent,
		helpNote,
	)
}

func (m model) helpView() string {
	col1 := []string{
		"n/space  speak next",
		"a        play all",
		"g        pregenerate",
		"s/esc    stop",
		"r        start over",
		"c        copy unread",
	}
	col2 := []string{
		"k/↑      up",
		"j/↓      down",
		"home     go to top",
		"G/end    go to bottom",
		"?        close help",
		"q        quit",
	}
	const colWidth = 24
	var s strings.Builder
	for i := range helpViewHeight {
		line := "  " + col1[i]
		line += strings.Repeat(" ", max(0, colWidth-runewidth.StringWidth(col1[i])))
		line += col2[i]
		line += strings.Repeat(" ", max(0, m.width-runewidth.StringWidth(line)))
		s.WriteString(helpViewStyle(line))
		if i < helpViewHeight-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}
