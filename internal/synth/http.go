package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// maxResponseSize bounds how much of a backend reply is read.
const maxResponseSize = 1 << 20

// HTTPConfig holds configuration for the HTTP gateway.
type HTTPConfig struct {
	// Endpoint receives the form POST, e.g. https://host/index.php.
	Endpoint string

	// Token is sent as a bearer token when set.
	Token string

	// Rate limit requests per minute (defaults to 60, negative disables).
	RequestsPerMinute int

	// Timeout per request. Zero leaves the call bounded only by ctx.
	Timeout time.Duration

	// Client to use; defaults to a new http.Client.
	Client *http.Client

	// Gate is consulted before each call (optional).
	Gate Gate

	Logger *log.Logger
}

// HTTPGateway implements Gateway against the backend's form endpoint.
type HTTPGateway struct {
	endpoint *url.URL
	token    string
	timeout  time.Duration
	client   *http.Client
	gate     Gate
	logger   *log.Logger

	// Rate limiting to avoid being blocked by the backend
	rateLimiter *rate.Limiter

	mu       sync.Mutex
	requests int64
}

// NewHTTPGateway creates a gateway for the configured endpoint.
func NewHTTPGateway(cfg HTTPConfig) (*HTTPGateway, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid synthesis endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
	}

	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 60
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &HTTPGateway{
		endpoint:    u,
		token:       cfg.Token,
		timeout:     cfg.Timeout,
		client:      cfg.Client,
		gate:        cfg.Gate,
		logger:      cfg.Logger.WithPrefix("synth"),
		rateLimiter: limiter,
	}, nil
}

// Synthesize posts the chunk to the backend and returns the audio URL.
func (g *HTTPGateway) Synthesize(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return Result{}, ErrEmptyText
	}

	if g.gate != nil {
		ok, err := g.gate.Allowed(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("verification check: %w", err)
		}
		if !ok {
			return Result{}, ErrVerificationRequired
		}
	}

	// Rate limit to avoid being blocked
	if err := g.rateLimiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("rate limit wait: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint.String(), strings.NewReader(encodeForm(req).Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")
	if g.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.token)
	}

	g.mu.Lock()
	g.requests++
	g.mu.Unlock()

	start := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, context.Canceled
		}
		return Result{}, &FailureError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{}, context.Canceled
		}
		return Result{}, &FailureError{Status: resp.StatusCode, Err: err}
	}

	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return Result{}, &FailureError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return Result{}, &FailureError{Status: resp.StatusCode, Message: "malformed response", Err: err}
	}

	res, err := r.Result()
	if err != nil {
		var fe *FailureError
		if errors.As(err, &fe) && resp.StatusCode >= http.StatusBadRequest {
			fe.Status = resp.StatusCode
		}
		g.logger.Debug("synthesis rejected", "status", resp.StatusCode, "err", err)
		return Result{}, err
	}

	res.URL, err = g.resolve(res.URL)
	if err != nil {
		return Result{}, &FailureError{Message: "invalid audio URL", Err: err}
	}

	g.logger.Debug("synthesized chunk", "chars", len(req.Text), "voice", req.Voice, "took", time.Since(start))
	return res, nil
}

// Requests returns how many HTTP calls have been made.
func (g *HTTPGateway) Requests() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests
}

// resolve makes relative audio URLs absolute against the endpoint.
func (g *HTTPGateway) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return g.endpoint.ResolveReference(u).String(), nil
}

func encodeForm(req Request) url.Values {
	v := url.Values{}
	v.Set("action", "text_to_speech_chunk")
	v.Set("text_chunk", req.Text)
	v.Set("voice", req.Voice)
	v.Set("engine", string(req.Engine))
	if req.Language != "" {
		v.Set("language_code", req.Language)
	}
	v.Set("volume", strconv.FormatFloat(req.Volume, 'f', -1, 64))
	return v
}
