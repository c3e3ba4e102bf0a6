package playback

import (
	"time"

	"github.com/dgnsrekt/readaloud/internal/chunk"
)

// EventType identifies an event.
type EventType int

const (
	EventStateChanged EventType = iota
	EventChunkStarted
	EventChunkFinished
	EventHighlightCleared
	EventStatus
	EventEndOfText
	EventPregenerateProgress
	EventSessionStarted
	EventSessionFinished
	EventReset
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "state"
	case EventChunkStarted:
		return "chunk_started"
	case EventChunkFinished:
		return "chunk_finished"
	case EventHighlightCleared:
		return "highlight_cleared"
	case EventStatus:
		return "status"
	case EventEndOfText:
		return "end_of_text"
	case EventPregenerateProgress:
		return "pregenerate_progress"
	case EventSessionStarted:
		return "session_started"
	case EventSessionFinished:
		return "session_finished"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Level is the severity of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Event reports controller progress to observers.
type Event struct {
	Type      EventType   `json:"type"`
	Time      time.Time   `json:"time"`
	SessionID string      `json:"session_id,omitempty"`
	Mode      string      `json:"mode,omitempty"`
	State     State       `json:"state"`
	Chunk     chunk.Chunk `json:"-"`
	Start     int         `json:"start,omitempty"`
	End       int         `json:"end,omitempty"`
	Index     int         `json:"index,omitempty"`
	Total     int         `json:"total,omitempty"`
	Cursor    int         `json:"cursor"`
	Message   string      `json:"message,omitempty"`
	Level     Level       `json:"level"`
	Err       error       `json:"-"`
	Error     string      `json:"error,omitempty"`
}

// Observer receives controller events. Observers are called synchronously
// from the goroutine running the operation and must not call Controller
// operations other than Stop from inside OnEvent.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent calls f.
func (f ObserverFunc) OnEvent(e Event) {
	f(e)
}

// Verbosity filters status messages for display.
type Verbosity int

const (
	// VerbosityErrors shows warnings and errors only.
	VerbosityErrors Verbosity = iota
	// VerbosityAll shows every status message.
	VerbosityAll
	// VerbosityNone hides status messages.
	VerbosityNone
)

// ParseVerbosity parses "all", "errors" or "none".
func ParseVerbosity(s string) Verbosity {
	switch s {
	case "all":
		return VerbosityAll
	case "none":
		return VerbosityNone
	default:
		return VerbosityErrors
	}
}

// String returns the string representation of the verbosity.
func (v Verbosity) String() string {
	switch v {
	case VerbosityAll:
		return "all"
	case VerbosityNone:
		return "none"
	default:
		return "errors"
	}
}

// Shows reports whether a status message at level l should be displayed.
func (v Verbosity) Shows(l Level) bool {
	switch v {
	case VerbosityAll:
		return true
	case VerbosityNone:
		return false
	default:
		return l >= LevelWarning
	}
}
