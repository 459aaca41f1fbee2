package content

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// frontMatter holds the optional YAML block at the top of a content file.
type frontMatter struct {
	Title    string  `yaml:"title"`
	Section  string  `yaml:"section"`
	Priority float64 `yaml:"priority"`
}

var markdown = goldmark.New()

// parseMarkdown extracts the title and plain text body from markdown source.
// The first level-1 heading becomes the title unless front matter overrides
// it. Block boundaries become paragraph breaks so the chunker can split on
// them later.
func parseMarkdown(source []byte) (fm frontMatter, title, plain string, err error) {
	source, fm, err = stripFrontMatter(source)
	if err != nil {
		return fm, "", "", err
	}

	doc := markdown.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				sb.Write(node.Value)
			}
		case *ast.Heading:
			if !entering {
				if node.Level == 1 && title == "" {
					title = headingText(node, source)
				}
				sb.WriteString("\n\n")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(source))
				}
				sb.WriteString("\n\n")
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				sb.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return fm, "", "", err
	}

	plain = collapseBlankLines(sb.String())
	if fm.Title != "" {
		title = fm.Title
	}
	return fm, title, plain, nil
}

func headingText(h *ast.Heading, source []byte) string {
	var sb strings.Builder
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(sb.String())
}

// stripFrontMatter removes and parses a leading "---" delimited YAML block.
func stripFrontMatter(source []byte) ([]byte, frontMatter, error) {
	var fm frontMatter
	if !bytes.HasPrefix(source, []byte("---\n")) && !bytes.HasPrefix(source, []byte("---\r\n")) {
		return source, fm, nil
	}
	rest := source[bytes.IndexByte(source, '\n')+1:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return source, fm, nil
	}
	block := rest[:end]
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return source, fm, err
	}
	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	return body, fm, nil
}

// collapseBlankLines normalizes runs of blank lines into a single paragraph
// break and trims surrounding whitespace.
func collapseBlankLines(s string) string {
	var out []string
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			out = append(out, para)
		}
	}
	return strings.Join(out, "\n\n")
}
