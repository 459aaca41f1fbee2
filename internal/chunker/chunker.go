// Package chunker splits content documents into bounded, overlapping chunks
// and extracts their keyword sets. Chunking is deterministic: the same
// document always yields the same chunk ids, boundaries, and keywords.
package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aidev-education/contentindex/internal/content"
	"github.com/aidev-education/contentindex/internal/index"
)

const (
	// DefaultMaxChunkSize balances embedding input limits against retrieval
	// granularity.
	DefaultMaxChunkSize = 1000
	// DefaultOverlap keeps concepts spanning a boundary retrievable from at
	// least one chunk.
	DefaultOverlap = 200
)

// Chunker produces ContentChunks from documents.
type Chunker struct {
	MaxChunkSize int
	Overlap      int
}

// New returns a Chunker with the given limits, falling back to defaults for
// non-positive values. The overlap is clamped below half the chunk size so
// every window makes forward progress.
func New(maxChunkSize, overlap int) *Chunker {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= maxChunkSize/2 {
		overlap = maxChunkSize / 2
	}
	return &Chunker{MaxChunkSize: maxChunkSize, Overlap: overlap}
}

// Chunk splits the document into chunks. Documents shorter than the maximum
// chunk size become exactly one chunk; no chunk is ever empty.
func (c *Chunker) Chunk(doc content.Document) []index.ContentChunk {
	windows := c.split(doc.Text)

	chunks := make([]index.ContentChunk, 0, len(windows))
	for i, text := range windows {
		chunks = append(chunks, index.ContentChunk{
			ID:       chunkID(doc.Path, i),
			Path:     doc.Path,
			Title:    doc.Title,
			Section:  doc.Section,
			Text:     text,
			Keywords: ExtractKeywords(doc.Title, text),
			Priority: doc.Priority,
		})
	}
	return chunks
}

// chunkID derives a stable identifier from the document path and chunk index
// so re-chunking the same input is idempotent.
func chunkID(path string, i int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", path, i)))
	return hex.EncodeToString(sum[:8])
}

// split cuts text into windows of at most MaxChunkSize characters, preferring
// paragraph then sentence then word boundaries, with Overlap characters
// shared between adjacent windows.
func (c *Chunker) split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.MaxChunkSize {
		return []string{text}
	}

	var windows []string
	start := 0
	for start < len(text) {
		end := start + c.MaxChunkSize
		if end >= len(text) {
			windows = appendWindow(windows, text[start:])
			break
		}

		cut := c.boundary(text, start, end)
		if cut <= start {
			_, size := utf8.DecodeRuneInString(text[start:])
			cut = start + size
		}
		windows = appendWindow(windows, text[start:cut])

		next := runeFloor(text, cut-c.Overlap)
		if next <= start {
			next = cut
		}
		start = next
	}
	return windows
}

func appendWindow(windows []string, w string) []string {
	w = strings.TrimSpace(w)
	if w == "" {
		return windows
	}
	return append(windows, w)
}

// boundary returns the best cut position in (start, end], scanning backwards
// for a paragraph break, then a sentence end, then any whitespace. A boundary
// in the first half of the window is ignored to keep chunks reasonably full.
func (c *Chunker) boundary(text string, start, end int) int {
	window := text[start:end]
	half := len(window) / 2

	if i := strings.LastIndex(window, "\n\n"); i > half {
		return start + i
	}
	for _, sep := range []string{". ", "! ", "? ", ".\n", "\n"} {
		if i := strings.LastIndex(window, sep); i > half {
			return start + i + len(sep)
		}
	}
	if i := strings.LastIndexFunc(window, func(r rune) bool { return r == ' ' || r == '\t' }); i > half {
		return start + i
	}
	return runeFloor(text, end)
}

// runeFloor backs i up to the start of the rune containing it, so slicing at
// the returned position never splits a multi-byte character.
func runeFloor(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
