package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Chunk is one piece of text designated as a unit of speech. Offsets are
// byte offsets into the full text.
type Chunk struct {
	Text    string // original spacing
	Trimmed string
	Start   int
	End     int
}

// Blank reports whether the chunk is whitespace only.
func (c Chunk) Blank() bool {
	return c.Trimmed == ""
}

// Len returns the chunk length in bytes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

func newChunk(text string, start, end int) Chunk {
	seg := text[start:end]
	return Chunk{
		Text:    seg,
		Trimmed: strings.TrimSpace(seg),
		Start:   start,
		End:     end,
	}
}

// Next returns the chunk that starts at cursor together with the cursor
// that follows it.
//
// When the cursor is at or past the end of a non-empty text, Next returns
// ErrEndOfText and a cursor of 0. When only whitespace remains it returns
// ErrEndOfText and a cursor at the end of text. Whitespace-only pieces are
// skipped; every skip strictly advances the cursor, so Next always
// terminates.
func Next(text string, cursor int, opts Options) (Chunk, int, error) {
	if text == "" {
		return Chunk{}, 0, ErrEmptyText
	}
	if cursor >= len(text) {
		return Chunk{}, 0, ErrEndOfText
	}
	cursor = align(text, cursor)

	for {
		rest := text[cursor:]
		if strings.TrimSpace(rest) == "" {
			return Chunk{}, len(text), ErrEndOfText
		}

		n := Segment(rest, opts.Count, opts.Unit)
		if n <= 0 {
			return Chunk{}, len(text), ErrExhausted
		}

		c := newChunk(text, cursor, cursor+n)
		if c.Blank() {
			cursor = c.End
			continue
		}
		return c, c.End, nil
	}
}

// Plan returns every chunk from start to the end of text in reading order.
// Whitespace-only chunks are kept so offsets stay contiguous; callers skip
// them when synthesizing.
func Plan(text string, start int, opts Options) []Chunk {
	if start >= len(text) {
		return nil
	}
	pos := align(text, start)

	var chunks []Chunk
	for pos < len(text) {
		n := Segment(text[pos:], opts.Count, opts.Unit)
		if n <= 0 {
			n = len(text) - pos
		}
		chunks = append(chunks, newChunk(text, pos, pos+n))
		pos += n
	}
	return chunks
}

// align moves an offset back onto a rune boundary and clamps it to the text.
func align(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i > len(text) {
		return len(text)
	}
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// PreviewWidth is the display width used for chunk excerpts in messages.
const PreviewWidth = 30

// Preview returns a single-line excerpt of s no wider than width cells.
func Preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "...")
}
