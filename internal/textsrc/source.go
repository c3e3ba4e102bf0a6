// Package textsrc loads the text to be read aloud and prepares it for
// segmentation.
package textsrc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mitchellh/go-homedir"
)

// maxRemoteSize bounds documents fetched over HTTP.
const maxRemoteSize = 8 << 20

// Clipboard is the argument that reads from the system clipboard.
const Clipboard = "@clipboard"

var (
	// ErrEmptySource indicates the source held no text.
	ErrEmptySource = errors.New("source is empty")
	// ErrUnsupportedScheme indicates a URL that is neither http nor https.
	ErrUnsupportedScheme = errors.New("unsupported protocol")
)

// Source is loaded text and where it came from.
type Source struct {
	// Path is the absolute file path, the URL, or empty for stdin and
	// the clipboard.
	Path string
	Text string
}

// Watchable reports whether the source is a local file.
func (s *Source) Watchable() bool {
	return s.Path != "" && !isURL(s.Path)
}

// Loader reads sources.
type Loader struct {
	Stdin         io.Reader
	Client        *http.Client
	ReadClipboard func() (string, error)
}

// DefaultLoader reads stdin, uses http.DefaultClient and the system
// clipboard.
func DefaultLoader() *Loader {
	return &Loader{
		Stdin:         os.Stdin,
		Client:        http.DefaultClient,
		ReadClipboard: clipboard.ReadAll,
	}
}

// Load reads the source named by arg: "-" for stdin, Clipboard for the
// clipboard, an http(s) URL, or a file path ("~" is expanded).
func Load(ctx context.Context, arg string) (*Source, error) {
	return DefaultLoader().Load(ctx, arg)
}

// Load reads the source named by arg.
func (l *Loader) Load(ctx context.Context, arg string) (*Source, error) {
	switch {
	case arg == "-":
		b, err := io.ReadAll(l.Stdin)
		if err != nil {
			return nil, fmt.Errorf("unable to read from stdin: %w", err)
		}
		return &Source{Text: string(b)}, nil

	case arg == Clipboard:
		s, err := l.ReadClipboard()
		if err != nil {
			return nil, fmt.Errorf("unable to read clipboard: %w", err)
		}
		return &Source{Text: s}, nil

	case isURL(arg):
		return l.fetch(ctx, arg)
	}

	p, err := homedir.Expand(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to expand path: %w", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &Source{Path: abs, Text: string(b)}, nil
}

func (l *Loader) fetch(ctx context.Context, raw string) (*Source, error) {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get url: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	return &Source{Path: u.String(), Text: string(b)}, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.Contains(s, "://")
}

// IsMarkdownFile reports whether the path has a markdown extension.
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdown", ".mkdn", ".mkd", ".markdown":
		return true
	}
	return false
}
