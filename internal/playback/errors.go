package playback

import (
	"errors"
	"fmt"

	"github.com/dgnsrekt/readaloud/internal/chunk"
)

// Kind classifies playback errors.
type Kind int

const (
	// KindEmptyInput is the normal end-of-text signal, not a failure.
	KindEmptyInput Kind = iota + 1
	// KindSegmentationExhausted means segmentation made no progress.
	KindSegmentationExhausted
	// KindSynthesisFailure is a network or backend error.
	KindSynthesisFailure
	// KindVerificationRequired means the verification session lapsed.
	KindVerificationRequired
	// KindCancelled is a user or system abort. It is never logged as an error.
	KindCancelled
	// KindPlaybackFailure is an audio sink error.
	KindPlaybackFailure
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEmptyInput:
		return "empty input"
	case KindSegmentationExhausted:
		return "segmentation exhausted"
	case KindSynthesisFailure:
		return "synthesis failure"
	case KindVerificationRequired:
		return "verification required"
	case KindCancelled:
		return "cancelled"
	case KindPlaybackFailure:
		return "playback failure"
	default:
		return "unknown"
	}
}

// Error is a classified playback error.
type Error struct {
	Kind  Kind
	Chunk string // short excerpt of the offending chunk
	Err   error
}

// Sentinels for errors.Is.
var (
	ErrEmptyInput            = &Error{Kind: KindEmptyInput}
	ErrSegmentationExhausted = &Error{Kind: KindSegmentationExhausted}
	ErrSynthesisFailure      = &Error{Kind: KindSynthesisFailure}
	ErrVerificationRequired  = &Error{Kind: KindVerificationRequired}
	ErrCancelled             = &Error{Kind: KindCancelled}
	ErrPlaybackFailure       = &Error{Kind: KindPlaybackFailure}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyInput:
		if errors.Is(e.Err, chunk.ErrEmptyText) {
			return "no text to read"
		}
		return "end of text"
	case KindVerificationRequired:
		return "verification required before synthesis can continue"
	case KindCancelled:
		return "cancelled"
	}

	msg := e.Kind.String()
	if e.Chunk != "" {
		msg = fmt.Sprintf("%s for %q", msg, e.Chunk)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Chunk == "" && t.Kind == e.Kind
}

// KindOf returns the kind of a playback error, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsEndOfText reports whether err is the end-of-text signal.
func IsEndOfText(err error) bool {
	return KindOf(err) == KindEmptyInput
}

// IsVerificationRequired reports whether err asks for re-verification.
func IsVerificationRequired(err error) bool {
	return KindOf(err) == KindVerificationRequired
}
