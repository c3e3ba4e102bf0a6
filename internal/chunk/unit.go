package chunk

import (
	"fmt"
	"strings"
)

// Unit is the granularity used to size a chunk.
type Unit int

const (
	// Words counts maximal runs of non-whitespace characters.
	Words Unit = iota
	// Sentences counts terminators followed by a boundary.
	Sentences
)

// Default counts per unit.
const (
	DefaultWordCount     = 10
	DefaultSentenceCount = 1
)

// String returns the string representation of the unit.
func (u Unit) String() string {
	switch u {
	case Words:
		return "words"
	case Sentences:
		return "sentences"
	default:
		return "unknown"
	}
}

// ParseUnit parses a unit name. Singular forms are accepted.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "words", "word", "w":
		return Words, nil
	case "sentences", "sentence", "s":
		return Sentences, nil
	default:
		return Words, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	v, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// DefaultCount returns the default count for a unit.
func DefaultCount(u Unit) int {
	if u == Sentences {
		return DefaultSentenceCount
	}
	return DefaultWordCount
}

// NormalizeCount clamps a count carried over from another unit into the
// range that makes sense for u. Sentence counts above 5 and word counts
// outside 3..100 fall back to the unit default.
func NormalizeCount(u Unit, n int) int {
	switch u {
	case Sentences:
		if n < 1 || n > 5 {
			return DefaultSentenceCount
		}
	default:
		if n < 3 || n > 100 {
			return DefaultWordCount
		}
	}
	return n
}

// Options controls how text is cut into chunks.
type Options struct {
	Unit  Unit
	Count int
}

// DefaultOptions returns ten-word chunks.
func DefaultOptions() Options {
	return Options{Unit: Words, Count: DefaultWordCount}
}

// WithUnit switches the unit and normalizes the count for it.
func (o Options) WithUnit(u Unit) Options {
	if u == o.Unit {
		return o
	}
	return Options{Unit: u, Count: NormalizeCount(u, o.Count)}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Unit != Words && o.Unit != Sentences {
		return fmt.Errorf("%w: %d", ErrInvalidUnit, int(o.Unit))
	}
	if o.Count < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, o.Count)
	}
	return nil
}
