package synth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGateway(t *testing.T, h http.HandlerFunc, mutate ...func(*HTTPConfig)) (*HTTPGateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := HTTPConfig{Endpoint: srv.URL + "/index.php", RequestsPerMinute: -1}
	for _, m := range mutate {
		m(&cfg)
	}
	g, err := NewHTTPGateway(cfg)
	if err != nil {
		t.Fatalf("NewHTTPGateway failed: %v", err)
	}
	return g, srv
}

func TestHTTPGateway_Success(t *testing.T) {
	g, srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
			return
		}
		want := map[string]string{
			"action":        "text_to_speech_chunk",
			"text_chunk":    "Hello world.",
			"voice":         "en-GB-News-K",
			"engine":        "google",
			"language_code": "en-GB",
			"volume":        "4.5",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("Form %s: expected %q, got %q", k, v, got)
			}
		}
		_, _ = w.Write([]byte(`{"success":true,"fileUrl":"tts/google/a.mp3","message":"ok"}`))
	})

	res, err := g.Synthesize(context.Background(), Request{
		Text:     "Hello world.",
		Voice:    "en-GB-News-K",
		Engine:   EngineGoogle,
		Language: "en-GB",
		Volume:   4.5,
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.URL != srv.URL+"/tts/google/a.mp3" {
		t.Errorf("Expected resolved URL, got %q", res.URL)
	}
	if res.Message != "ok" {
		t.Errorf("Expected message ok, got %q", res.Message)
	}
	if g.Requests() != 1 {
		t.Errorf("Expected 1 request, got %d", g.Requests())
	}
}

func TestHTTPGateway_Responses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantVerify bool
		wantStatus int
	}{
		{
			name:       "camel case reverification",
			status:     http.StatusOK,
			body:       `{"requiresReverification":true}`,
			wantVerify: true,
		},
		{
			name:       "snake case reverification",
			status:     http.StatusForbidden,
			body:       `{"success":false,"require_verification":true,"message":"verify"}`,
			wantVerify: true,
		},
		{
			name:   "backend failure",
			status: http.StatusOK,
			body:   `{"success":false,"message":"TTS generation failed"}`,
		},
		{
			name:       "server error without json",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "success without url",
			status: http.StatusOK,
			body:   `{"success":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := g.Synthesize(context.Background(), Request{Text: "hi", Voice: "nova", Engine: EngineOpenAI})
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := errors.Is(err, ErrVerificationRequired); got != tt.wantVerify {
				t.Fatalf("Expected verification=%v, got err %v", tt.wantVerify, err)
			}
			if tt.wantVerify {
				return
			}
			var fe *FailureError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected FailureError, got %T", err)
			}
			if tt.wantStatus != 0 && fe.Status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, fe.Status)
			}
		})
	}
}

func TestHTTPGateway_EmptyTextSkipsCall(t *testing.T) {
	called := false
	g, _ := newTestGateway(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := g.Synthesize(context.Background(), Request{Text: "   \n"})
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("Expected ErrEmptyText, got %v", err)
	}
	if called {
		t.Error("Expected no HTTP call for blank text")
	}
}

func TestHTTPGateway_GateBlocks(t *testing.T) {
	called := false
	g, _ := newTestGateway(t, func(http.ResponseWriter, *http.Request) { called = true }, func(c *HTTPConfig) {
		c.Gate = GateFunc(func(context.Context) (bool, error) { return false, nil })
	})

	_, err := g.Synthesize(context.Background(), Request{Text: "hi"})
	if !errors.Is(err, ErrVerificationRequired) {
		t.Fatalf("Expected ErrVerificationRequired, got %v", err)
	}
	if called {
		t.Error("Expected no HTTP call when gate refuses")
	}
}

func TestHTTPGateway_Cancel(t *testing.T) {
	release := make(chan struct{})
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := g.Synthesize(ctx, Request{Text: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestHTTPGateway_BearerToken(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		_, _ = w.Write([]byte(`{"success":true,"audioUrl":"https://cdn.test/x.mp3"}`))
	}, func(c *HTTPConfig) { c.Token = "secret" })

	res, err := g.Synthesize(context.Background(), Request{Text: "hi"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.URL != "https://cdn.test/x.mp3" {
		t.Errorf("Expected absolute URL kept, got %q", res.URL)
	}
}

func TestNewHTTPGateway_Validation(t *testing.T) {
	if _, err := NewHTTPGateway(HTTPConfig{}); !errors.Is(err, ErrNoEndpoint) {
		t.Errorf("Expected ErrNoEndpoint, got %v", err)
	}
	if _, err := NewHTTPGateway(HTTPConfig{Endpoint: "ftp://host/x"}); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}
