package chunk

import (
	"unicode"
	"unicode/utf8"
)

// Segment returns the byte length of the leading piece of s that holds
// roughly count units of the given kind, extended to a natural boundary.
// The result is always on a rune boundary and is zero only for empty input.
// Segment has no state: equal arguments give equal results.
func Segment(s string, count int, unit Unit) int {
	if s == "" {
		return 0
	}
	if count < 1 {
		count = 1
	}

	var n int
	switch unit {
	case Sentences:
		n = segmentSentences(s, count)
	default:
		n = segmentWords(s, count)
	}

	// Nothing matched: take the whole remainder.
	if n <= 0 || n > len(s) {
		return len(s)
	}
	return n
}

// segmentWords counts runs of non-whitespace. Periods, commas and newlines
// end the piece as soon as one word has been counted. Once the target is
// reached the piece ends right after the last complete word.
func segmentWords(s string, target int) int {
	var (
		items       int
		inWord      bool
		lastWordEnd = -1
	)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		next := i + size

		if unicode.IsSpace(r) {
			if inWord {
				items++
				inWord = false
			}
		} else {
			inWord = true
			lastWordEnd = next
		}

		if r == '.' || r == ',' || r == '\n' {
			if inWord {
				items++
				inWord = false
			}
			if items > 0 {
				return next
			}
		}

		if items >= target && lastWordEnd != -1 {
			return lastWordEnd
		}
		i = next
	}

	return len(s)
}

// segmentSentences counts '.', '!' and '?' followed by whitespace, a quote
// or the end of input. A period after a known abbreviation is not a
// terminator. A blank line ends the piece once a sentence has been counted.
func segmentSentences(s string, target int) int {
	var (
		items   int
		lastEnd = -1
		// three most recent runes, lowercased, oldest first
		prev [3]rune
	)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		next := i + size

		switch r {
		case '.', '!', '?':
			if !(r == '.' && abbreviated(prev)) && sentenceBoundary(s, next) {
				items++
				lastEnd = next
			}
		case '\n':
			if prev[2] == '\n' && items > 0 {
				return next
			}
		}

		if items >= target && lastEnd != -1 {
			return lastEnd
		}

		prev = [3]rune{prev[1], prev[2], unicode.ToLower(r)}
		i = next
	}

	if items > 0 {
		return lastEnd
	}
	// No terminator at all: the whole input is one sentence.
	return len(s)
}

var abbreviations2 = [][2]rune{
	{'m', 'r'},
	{'m', 's'},
	{'d', 'r'},
	{'s', 't'},
	{'c', 'o'},
}

// abbreviated reports whether the runes before a period spell one of the
// abbreviations that do not end a sentence.
func abbreviated(prev [3]rune) bool {
	if prev == [3]rune{'m', 'r', 's'} {
		return true
	}
	last2 := [2]rune{prev[1], prev[2]}
	for _, a := range abbreviations2 {
		if last2 == a {
			return true
		}
	}
	return false
}

// sentenceBoundary reports whether the rune at offset i may follow a
// sentence terminator.
func sentenceBoundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	switch r {
	case '"', '\'', '“', '”':
		return true
	}
	return unicode.IsSpace(r)
}
