package playback

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgnsrekt/readaloud/internal/chunk"
)

func TestErrorIsMatchesKind(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("step: %w", &Error{Kind: KindSynthesisFailure, Chunk: "hello", Err: cause})

	if !errors.Is(err, ErrSynthesisFailure) {
		t.Error("Expected match on kind")
	}
	if errors.Is(err, ErrPlaybackFailure) {
		t.Error("Expected no match on a different kind")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected cause to be reachable")
	}
	if KindOf(err) != KindSynthesisFailure {
		t.Errorf("Expected %s, got %s", KindSynthesisFailure, KindOf(err))
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains string
	}{
		{
			name:     "empty text",
			err:      &Error{Kind: KindEmptyInput, Err: chunk.ErrEmptyText},
			contains: "no text to read",
		},
		{
			name:     "end of text",
			err:      &Error{Kind: KindEmptyInput, Err: chunk.ErrEndOfText},
			contains: "end of text",
		},
		{
			name:     "synthesis failure names chunk",
			err:      &Error{Kind: KindSynthesisFailure, Chunk: "Hello there", Err: errors.New("503")},
			contains: `synthesis failure for "Hello there": 503`,
		},
		{
			name:     "verification",
			err:      &Error{Kind: KindVerificationRequired},
			contains: "verification required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); !strings.Contains(got, tt.contains) {
				t.Errorf("Expected %q to contain %q", got, tt.contains)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	if !IsEndOfText(&Error{Kind: KindEmptyInput}) {
		t.Error("Expected end of text")
	}
	if IsEndOfText(errors.New("other")) {
		t.Error("Expected plain error not to be end of text")
	}
	if !IsVerificationRequired(fmt.Errorf("wrapped: %w", ErrVerificationRequired)) {
		t.Error("Expected wrapped verification error to be detected")
	}
	if KindOf(nil) != 0 {
		t.Error("Expected zero kind for nil")
	}
}
