package synth

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrVerificationRequired means the backend's human-verification
	// session has lapsed. Callers must re-verify before retrying.
	ErrVerificationRequired = errors.New("verification required")

	// ErrEmptyText is returned for blank requests; no call is made.
	ErrEmptyText = errors.New("text chunk cannot be empty")

	// ErrInvalidEngine indicates an unknown engine name.
	ErrInvalidEngine = errors.New("invalid synthesis engine")

	// ErrNoEndpoint indicates the HTTP gateway has no endpoint configured.
	ErrNoEndpoint = errors.New("no synthesis endpoint configured")
)

// Request is one synthesis call.
type Request struct {
	Text     string
	Voice    string
	Engine   Engine
	Language string
	Volume   float64
}

// Result is a successful synthesis.
type Result struct {
	URL     string
	Message string
}

// Gateway synthesizes speech for a chunk of text. Implementations must
// return promptly once ctx is done.
type Gateway interface {
	Synthesize(ctx context.Context, req Request) (Result, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, req Request) (Result, error)

// Synthesize calls f.
func (f GatewayFunc) Synthesize(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Gate reports whether synthesis may be called right now.
type Gate interface {
	Allowed(ctx context.Context) (bool, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context) (bool, error)

// Allowed calls f.
func (f GateFunc) Allowed(ctx context.Context) (bool, error) {
	return f(ctx)
}

// FailureError is a backend or transport failure.
type FailureError struct {
	Message string
	Status  int // HTTP status, 0 when not applicable
	Err     error
}

func (e *FailureError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Status != 0 {
		return fmt.Sprintf("synthesis failed (HTTP %d): %s", e.Status, msg)
	}
	return "synthesis failed: " + msg
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

// Response is the backend's JSON answer. Both spellings of the
// reverification flag and of the audio URL are accepted.
type Response struct {
	Success                bool   `json:"success"`
	AudioURL               string `json:"audioUrl,omitempty"`
	FileURL                string `json:"fileUrl,omitempty"`
	Message                string `json:"message,omitempty"`
	RequiresReverification bool   `json:"requiresReverification,omitempty"`
	RequireVerification    bool   `json:"require_verification,omitempty"`
}

// Result interprets the response. Reverification wins over everything
// else, so a lapsed session is never reported as a plain failure.
func (r Response) Result() (Result, error) {
	if r.RequiresReverification || r.RequireVerification {
		return Result{}, ErrVerificationRequired
	}
	if !r.Success {
		return Result{}, &FailureError{Message: r.Message}
	}

	u := r.AudioURL
	if u == "" {
		u = r.FileURL
	}
	if u == "" {
		return Result{}, &FailureError{Message: "response has no audio URL"}
	}
	return Result{URL: u, Message: r.Message}, nil
}
