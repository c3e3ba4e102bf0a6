package chunk

import "errors"

var (
	// ErrEmptyText is returned when there is no text to read at all.
	ErrEmptyText = errors.New("no text to read")
	// ErrEndOfText is returned when the cursor has reached the end of the
	// text or only whitespace remains.
	ErrEndOfText = errors.New("end of text")
	// ErrExhausted is returned if segmentation yields no progress. It should
	// not happen for non-empty input.
	ErrExhausted = errors.New("segmentation exhausted")

	ErrInvalidUnit  = errors.New("invalid chunk unit")
	ErrInvalidCount = errors.New("invalid chunk count")
)
