package index

import "time"

// ContentChunk is the unit of indexing and retrieval: a bounded fragment of a
// content document together with its lexical and vector annotations.
type ContentChunk struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Section   string    `json:"section"`
	Text      string    `json:"text"`
	Keywords  []string  `json:"keywords,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	Priority  float64   `json:"priority,omitempty"`
}

// HasEmbedding reports whether a vector has been computed for this chunk.
func (c *ContentChunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// Stats summarizes the current index generation.
type Stats struct {
	PagesIndexed  int        `json:"pages_indexed"`
	ChunksCreated int        `json:"chunks_created"`
	VectorsStored int        `json:"vectors_stored"`
	LastIndexed   *time.Time `json:"last_indexed"`
	Generation    string     `json:"generation,omitempty"`
}
