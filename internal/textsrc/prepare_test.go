package textsrc

import "testing"

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "heading and emphasis",
			input:    "# Title\n\nSome **bold** and _italic_ text.",
			expected: "Title\n\nSome bold and italic text.",
		},
		{
			name:     "soft breaks join lines",
			input:    "First line\nsecond line.",
			expected: "First line second line.",
		},
		{
			name:     "links keep their text",
			input:    "See [the docs](https://example.com) or <https://example.org>.",
			expected: "See the docs or https://example.org.",
		},
		{
			name:     "code blocks are dropped",
			input:    "Before.\n\n```go\nfmt.Println(1)\n```\n\nAfter.",
			expected: "Before.\n\nAfter.",
		},
		{
			name:     "list items become blocks",
			input:    "- one\n- two",
			expected: "one\n\ntwo",
		},
		{
			name:     "front matter is removed",
			input:    "---\ntitle: x\n---\nBody.",
			expected: "Body.",
		},
		{
			name:     "inline code keeps its text",
			input:    "Run `make` now.",
			expected: "Run make now.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripMarkdown([]byte(tt.input))
			if err != nil {
				t.Fatalf("StripMarkdown failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		markdown bool
		expected string
	}{
		{
			name:     "crlf normalized",
			input:    "a\r\nb",
			expected: "a\nb",
		},
		{
			name:     "nfc composes accents",
			input:    "cafe\u0301",
			expected: "caf\u00e9",
		},
		{
			name:     "invalid utf8 replaced",
			input:    "ok\xffok",
			expected: "ok\ufffdok",
		},
		{
			name:     "markdown stripped when asked",
			input:    "**Hi**",
			markdown: true,
			expected: "Hi",
		},
		{
			name:     "markdown kept otherwise",
			input:    "**Hi**",
			expected: "**Hi**",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Prepare(tt.input, tt.markdown)
			if err != nil {
				t.Fatalf("Prepare failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
