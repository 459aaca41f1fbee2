package embeddings

import (
	"context"
	"path/filepath"
	"testing"
)

// countingEmbedder records how many texts actually reached the provider.
type countingEmbedder struct {
	embedded int
}

func (c *countingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	c.embedded += len(texts)
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 0.5}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 2 }
func (c *countingEmbedder) Name() string    { return "counting" }

func newTestCache(t *testing.T, inner Embedder) *CachedEmbedder {
	t.Helper()
	cached, err := WithCache(inner, filepath.Join(t.TempDir(), "cache", "embeddings.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cached.Close() })
	return cached
}

func TestCachedEmbedder_SecondCallHitsCache(t *testing.T) {
	inner := &countingEmbedder{}
	cached := newTestCache(t, inner)
	ctx := context.Background()

	first, err := cached.Embed(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if inner.embedded != 2 {
		t.Fatalf("provider saw %d texts, want 2", inner.embedded)
	}

	second, err := cached.Embed(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if inner.embedded != 2 {
		t.Errorf("provider saw %d texts after cached call, want 2", inner.embedded)
	}
	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("cached vector differs at [%d][%d]", i, j)
			}
		}
	}
}

func TestCachedEmbedder_PartialHit(t *testing.T) {
	inner := &countingEmbedder{}
	cached := newTestCache(t, inner)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, []string{"alpha"}); err != nil {
		t.Fatalf("embed: %v", err)
	}

	vecs, err := cached.Embed(ctx, []string{"alpha", "gamma"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if inner.embedded != 2 { // alpha once, gamma once
		t.Errorf("provider saw %d texts, want 2", inner.embedded)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors", len(vecs))
	}
	// Position must follow the input order, not cache-hit order.
	if vecs[0][0] != 5 || vecs[1][0] != 5 {
		t.Errorf("vectors out of order: %v", vecs)
	}
}

func TestCachedEmbedder_EmptyInput(t *testing.T) {
	cached := newTestCache(t, &countingEmbedder{})
	vecs, err := cached.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if vecs != nil {
		t.Errorf("vectors for empty input: %v", vecs)
	}
}

func TestEncodeDecodeVector(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, 3.14159}
	out := decodeVector(encodeVector(in), len(in))
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("roundtrip mismatch at %d: %v vs %v", i, in[i], out[i])
		}
	}
}
