package ui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

// renderText styles text read before cursor, the highlighted span
// [hlStart, hlEnd) and the unread remainder, then wraps it to width. A
// negative hlStart means nothing is highlighted.
func renderText(text string, cursor, hlStart, hlEnd, width int) string {
	cursor = max(0, min(cursor, len(text)))

	var b strings.Builder
	if hlStart >= 0 && hlStart < hlEnd && hlEnd <= len(text) {
		writeSpan(&b, text[:hlStart], cursor)
		b.WriteString(styleLines(highlightStyle, text[hlStart:hlEnd]))
		writeSpan(&b, text[hlEnd:], cursor-hlEnd)
	} else {
		writeSpan(&b, text, cursor)
	}

	out := b.String()
	if width > 0 {
		out = wordwrap.String(out, width)
	}
	return out
}

// writeSpan writes s with its first read bytes dimmed.
func writeSpan(b *strings.Builder, s string, read int) {
	read = max(0, min(read, len(s)))
	b.WriteString(styleLines(readStyle, s[:read]))
	b.WriteString(s[read:])
}
