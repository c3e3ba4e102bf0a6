package textsrc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

// Prepare turns raw input into the text buffer the reader works on. Line
// endings become "\n", invalid UTF-8 is replaced, the result is NFC
// normalized and, with markdown set, formatting is stripped.
func Prepare(raw string, markdown bool) (string, error) {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = norm.NFC.String(s)

	if !markdown {
		return s, nil
	}
	out, err := StripMarkdown([]byte(s))
	if err != nil {
		return "", fmt.Errorf("unable to strip markdown: %w", err)
	}
	return out, nil
}

// StripMarkdown returns the readable text of a markdown document. Each
// heading, paragraph and list item becomes one block; blocks are separated
// by a blank line. Code blocks, HTML and front matter are dropped, and
// soft line breaks inside a paragraph become spaces.
func StripMarkdown(src []byte) (string, error) {
	src = removeFrontmatter(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var (
		blocks []string
		b      strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			blocks = append(blocks, s)
		}
		b.Reset()
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if !entering {
				flush()
			}
		case *ast.Text:
			if !entering {
				break
			}
			b.Write(n.Segment.Value(src))
			switch {
			case n.HardLineBreak():
				b.WriteByte('\n')
			case n.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			if entering {
				b.Write(n.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(n.Label(src))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	flush()

	return strings.Join(blocks, "\n\n"), nil
}

var frontmatterDelim = []byte("---\n")

// removeFrontmatter drops a leading YAML front matter block.
func removeFrontmatter(src []byte) []byte {
	if !bytes.HasPrefix(src, frontmatterDelim) {
		return src
	}
	rest := src[len(frontmatterDelim):]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return src
	}
	return rest[end+len("\n---\n"):]
}
