package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aidev-education/contentindex/internal/embeddings"
	"github.com/aidev-education/contentindex/internal/index"
)

// stubEmbedder returns a fixed vector for every input, so tests control the
// semantic signal exactly.
type stubEmbedder struct {
	vec  []float32
	dims int
	err  error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return s.dims }
func (s *stubEmbedder) Name() string    { return "stub" }

func newTestStore(chunks ...index.ContentChunk) *index.Store {
	s := index.NewStore()
	s.Rebuild(chunks)
	return s
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := NewEngine(newTestStore())
	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := e.Search(context.Background(), Options{Query: q}); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("query %q: err = %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestSearch_KeywordOverlap(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "a1", Path: "/a", Title: "Context Sharing",
			Text: "The Model Context Protocol enables context sharing between AI agents.",
			Keywords: []string{"model", "context", "protocol", "enables", "sharing", "between", "ai", "agents"}},
		index.ContentChunk{ID: "b1", Path: "/b", Title: "Deploy",
			Text:     "Deploy your site with a single command.",
			Keywords: []string{"deploy", "your", "site", "single", "command"}},
	)
	e := NewEngine(store)

	results, err := e.Search(context.Background(), Options{Query: "context protocol", Mode: ModeKeyword})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Chunk.ID != "a1" {
		t.Errorf("top result = %s, want a1", results[0].Chunk.ID)
	}
	if results[0].Score != 1.0 {
		t.Errorf("full overlap score = %v, want 1.0", results[0].Score)
	}
}

func TestSearch_KeywordPartialOverlap(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "a1", Path: "/a", Text: "x",
			Keywords: []string{"context", "sharing"}},
	)
	e := NewEngine(store)

	results, err := e.Search(context.Background(), Options{Query: "context protocol", Mode: ModeKeyword})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 0.5 {
		t.Errorf("half overlap score = %v, want 0.5", results[0].Score)
	}
}

func TestSearch_SemanticRanksByCosine(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "near", Path: "/near", Text: "x", Embedding: []float32{0.9, 0.1, 0}},
		index.ContentChunk{ID: "far", Path: "/far", Text: "y", Embedding: []float32{0, 1, 0}},
		index.ContentChunk{ID: "noemb", Path: "/n", Text: "z"},
	)
	e := NewEngine(store, &stubEmbedder{vec: []float32{1, 0, 0}, dims: 3})

	results, err := e.Search(context.Background(), Options{Query: "anything", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (orthogonal and unembedded dropped)", len(results))
	}
	if results[0].Chunk.ID != "near" {
		t.Errorf("top result = %s, want near", results[0].Chunk.ID)
	}
	if results[0].Score <= 0 || results[0].Score > 1 {
		t.Errorf("cosine score out of range: %v", results[0].Score)
	}
}

func TestSearch_SemanticFailsWithoutMatchingEmbedder(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "c", Path: "/c", Text: "x", Embedding: []float32{1, 0, 0}},
	)
	e := NewEngine(store, &stubEmbedder{vec: []float32{1, 0}, dims: 2})

	if _, err := e.Search(context.Background(), Options{Query: "q", Mode: ModeSemantic}); err == nil {
		t.Error("semantic search succeeded despite dimensionality mismatch")
	}
}

func TestSearch_HybridDegradesToKeyword(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "a1", Path: "/a", Text: "x",
			Keywords: []string{"kubernetes"}, Embedding: []float32{1, 0, 0}},
	)
	e := NewEngine(store, &stubEmbedder{dims: 3, err: errors.New("provider down")})

	results, err := e.Search(context.Background(), Options{Query: "kubernetes", Mode: ModeHybrid})
	if err != nil {
		t.Fatalf("hybrid search did not degrade: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	// keyword share plus keyword boost, no semantic contribution
	want := 0.3*1.0 + 0.1
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("degraded score = %v, want %v", results[0].Score, want)
	}
}

func TestSearch_HybridCombinesSignalsAndBoosts(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "a1", Path: "/a", Title: "Kubernetes Guide",
			Text:     "x",
			Keywords: []string{"kubernetes"}, Embedding: []float32{1, 0, 0}, Priority: 1},
	)
	e := NewEngine(store, &stubEmbedder{vec: []float32{1, 0, 0}, dims: 3})

	results, err := e.Search(context.Background(), Options{Query: "kubernetes", Mode: ModeHybrid})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	// 0.7*cosine(1.0) + 0.3*keyword(1.0) + title 0.2 + keyword 0.1 + priority 0.05
	want := 0.7 + 0.3 + 0.2 + 0.1 + 0.05
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("hybrid score = %v, want %v", results[0].Score, want)
	}
}

func TestSearch_CustomWeights(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "a1", Path: "/a", Text: "x",
			Keywords: []string{"redis"}, Embedding: []float32{1, 0, 0}},
	)
	e := NewEngine(store, &stubEmbedder{vec: []float32{1, 0, 0}, dims: 3})

	results, err := e.Search(context.Background(), Options{
		Query:   "redis",
		Mode:    ModeHybrid,
		Weights: &Weights{Vector: 0, Keyword: 1},
		Boosts:  &Boosts{},
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("keyword-only weighted score = %v, want 1.0", results[0].Score)
	}
}

func TestSearch_SectionFilter(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "g1", Path: "/guides/intro", Section: "guides", Text: "x",
			Keywords: []string{"install"}},
		index.ContentChunk{ID: "b1", Path: "/blog/news", Section: "blog", Text: "y",
			Keywords: []string{"install"}},
	)
	e := NewEngine(store)

	results, err := e.Search(context.Background(), Options{
		Query: "install", Mode: ModeKeyword, Section: "guides",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "g1" {
		t.Errorf("section filter results = %+v", results)
	}

	// A path prefix works as a filter too.
	results, err = e.Search(context.Background(), Options{
		Query: "install", Mode: ModeKeyword, Section: "/blog",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != "b1" {
		t.Errorf("path prefix filter results = %+v", results)
	}
}

func TestSearch_Threshold(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "weak", Path: "/w", Text: "x",
			Keywords: []string{"context"}},
	)
	e := NewEngine(store)

	results, err := e.Search(context.Background(), Options{
		Query: "context protocol handshake negotiation", Mode: ModeKeyword, Threshold: 0.5,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("below-threshold result returned: %+v", results)
	}
}

func TestSearch_NegativeThresholdKeepsNegativeCosines(t *testing.T) {
	store := newTestStore(
		index.ContentChunk{ID: "anti", Path: "/a", Text: "x", Embedding: []float32{-1, 0, 0}},
	)
	e := NewEngine(store, &stubEmbedder{vec: []float32{1, 0, 0}, dims: 3})

	// Default threshold drops the anti-correlated chunk.
	results, err := e.Search(context.Background(), Options{Query: "q", Mode: ModeSemantic})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("negative cosine returned at default threshold: %+v", results)
	}

	// An explicit negative threshold opts in to it.
	results, err = e.Search(context.Background(), Options{Query: "q", Mode: ModeSemantic, Threshold: -1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results with threshold -1, want 1", len(results))
	}
	if math.Abs(results[0].Score+1) > 1e-9 {
		t.Errorf("score = %v, want -1", results[0].Score)
	}
}

func TestSearch_LimitAndStableOrder(t *testing.T) {
	chunks := make([]index.ContentChunk, 5)
	for i := range chunks {
		chunks[i] = index.ContentChunk{
			ID: string(rune('a' + i)), Path: "/p", Text: "x",
			Keywords: []string{"same"},
		}
	}
	e := NewEngine(newTestStore(chunks...))

	results, err := e.Search(context.Background(), Options{Query: "same", Mode: ModeKeyword, Limit: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	// All scores tie; index order must be preserved.
	for i, want := range []string{"a", "b", "c"} {
		if results[i].Chunk.ID != want {
			t.Errorf("result %d = %s, want %s", i, results[i].Chunk.ID, want)
		}
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	e := NewEngine(index.NewStore())
	results, err := e.Search(context.Background(), Options{Query: "anything", Mode: ModeKeyword})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results from empty index: %+v", results)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"keyword", ModeKeyword},
		{"semantic", ModeSemantic},
		{"hybrid", ModeHybrid},
		{"", ModeHybrid},
		{"fuzzy", ModeHybrid},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	if got := cosineSimilarity(a, a); math.Abs(got-1) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", got)
	}
	if got := cosineSimilarity(a, []float32{0, 1, 0}); got != 0 {
		t.Errorf("orthogonal similarity = %v, want 0", got)
	}
	if got := cosineSimilarity(a, []float32{-1, 0, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite similarity = %v, want -1", got)
	}
	if got := cosineSimilarity(a, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched lengths similarity = %v, want 0", got)
	}
	if got := cosineSimilarity(a, []float32{0, 0, 0}); got != 0 {
		t.Errorf("zero vector similarity = %v, want 0", got)
	}
}

var _ embeddings.Embedder = (*stubEmbedder)(nil)
