package mcp

import (
	"strings"
	"testing"

	"github.com/aidev-education/contentindex/internal/index"
	"github.com/aidev-education/contentindex/internal/search"
)

func TestFormatResults(t *testing.T) {
	out := formatResults([]search.Result{
		{
			Chunk: index.ContentChunk{
				ID:      "c1",
				Path:    "/guides/setup",
				Title:   "Setup Guide",
				Section: "guides",
				Text:    "Install the CLI first.",
			},
			Score: 0.8765,
		},
		{
			Chunk: index.ContentChunk{
				ID:   "c2",
				Path: "/about",
				Text: "Untitled chunk body.",
			},
			Score: 0.25,
		},
	})

	for _, want := range []string{
		"Found 2 result(s)",
		"score: 0.8765",
		"Path: /guides/setup",
		"Title: Setup Guide",
		"Section: guides",
		"Install the CLI first.",
		"Path: /about",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Title: \n") {
		t.Error("empty title rendered")
	}
}
