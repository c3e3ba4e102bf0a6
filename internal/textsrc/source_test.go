package textsrc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadStdin(t *testing.T) {
	l := &Loader{Stdin: strings.NewReader("from stdin")}
	src, err := l.Load(context.Background(), "-")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if src.Text != "from stdin" || src.Watchable() {
		t.Errorf("Unexpected source %+v", src)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	if err := os.WriteFile(path, []byte("# Notes"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	src, err := DefaultLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if src.Text != "# Notes" {
		t.Errorf("Expected file contents, got %q", src.Text)
	}
	if !src.Watchable() {
		t.Error("Expected a file source to be watchable")
	}
	if !IsMarkdownFile(src.Path) {
		t.Error("Expected .md to be detected as markdown")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := DefaultLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestLoadURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote text"))
	}))
	defer ts.Close()

	l := &Loader{Client: ts.Client()}
	src, err := l.Load(context.Background(), ts.URL+"/doc.txt")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if src.Text != "remote text" || src.Watchable() {
		t.Errorf("Unexpected source %+v", src)
	}

	if _, err := l.Load(context.Background(), ts.URL+"/missing"); err == nil {
		t.Error("Expected an error for 404")
	}
}

func TestLoadUnsupportedScheme(t *testing.T) {
	_, err := DefaultLoader().Load(context.Background(), "ftp://example.com/file.txt")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("Expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestLoadClipboard(t *testing.T) {
	l := &Loader{ReadClipboard: func() (string, error) { return "copied", nil }}
	src, err := l.Load(context.Background(), Clipboard)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if src.Text != "copied" {
		t.Errorf("Expected clipboard text, got %q", src.Text)
	}
}
