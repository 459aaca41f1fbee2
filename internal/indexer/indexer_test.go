package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aidev-education/contentindex/internal/chunker"
	"github.com/aidev-education/contentindex/internal/content"
	"github.com/aidev-education/contentindex/internal/embeddings"
	"github.com/aidev-education/contentindex/internal/index"
)

// brokenEmbedder simulates a remote provider that is down.
type brokenEmbedder struct{}

func (brokenEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, fmt.Errorf("%w: connection refused", embeddings.ErrProviderUnavailable)
}
func (brokenEmbedder) Dimensions() int { return 1536 }
func (brokenEmbedder) Name() string    { return "broken-remote" }

func writeContent(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestIndexer(t *testing.T, remote embeddings.Embedder, files map[string]string) (*Indexer, *index.Store) {
	t.Helper()
	root := t.TempDir()
	writeContent(t, root, files)
	store := index.NewStore()
	ix := New(
		&content.Source{Root: root},
		chunker.New(chunker.DefaultMaxChunkSize, chunker.DefaultOverlap),
		remote,
		embeddings.NewLocalEmbedder(),
		store,
		2,
	)
	return ix, store
}

func TestIndexAll_LocalEmbedsEverything(t *testing.T) {
	ix, store := newTestIndexer(t, nil, map[string]string{
		"guides/setup.md": "# Setup\n\nInstall and configure the tool.",
		"guides/usage.md": "# Usage\n\nRun the tool from your terminal.",
		"about.md":        "# About\n\nProject background and goals.",
	})

	result, err := ix.IndexAll(context.Background(), Options{})
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	if result.PagesIndexed != 3 {
		t.Errorf("PagesIndexed = %d, want 3", result.PagesIndexed)
	}
	if result.ChunksCreated == 0 {
		t.Fatal("no chunks created")
	}
	if result.VectorsStored != result.ChunksCreated {
		t.Errorf("VectorsStored = %d, ChunksCreated = %d; local embedder must cover every chunk",
			result.VectorsStored, result.ChunksCreated)
	}
	if result.ChunksFailed != 0 {
		t.Errorf("ChunksFailed = %d, want 0", result.ChunksFailed)
	}
	if result.Embedder != "local-hash" {
		t.Errorf("Embedder = %q", result.Embedder)
	}
	if !store.Ready() {
		t.Error("store not ready after rebuild")
	}
	if store.Snapshot().Dimensions != embeddings.LocalDimensions {
		t.Errorf("Dimensions = %d, want %d", store.Snapshot().Dimensions, embeddings.LocalDimensions)
	}
}

func TestIndexAll_RemoteFailureKeepsChunksWithoutVectors(t *testing.T) {
	ix, store := newTestIndexer(t, brokenEmbedder{}, map[string]string{
		"a.md": "# A\n\nSome indexable content here.",
	})

	result, err := ix.IndexAll(context.Background(), Options{UseAPI: true})
	if err != nil {
		t.Fatalf("rebuild aborted on provider failure: %v", err)
	}
	if result.VectorsStored != 0 {
		t.Errorf("VectorsStored = %d, want 0", result.VectorsStored)
	}
	if result.ChunksFailed != result.ChunksCreated {
		t.Errorf("ChunksFailed = %d, want %d", result.ChunksFailed, result.ChunksCreated)
	}
	// The chunks are still searchable by keyword.
	snap := store.Snapshot()
	if len(snap.Chunks) != result.ChunksCreated {
		t.Errorf("store holds %d chunks, want %d", len(snap.Chunks), result.ChunksCreated)
	}
	for _, c := range snap.Chunks {
		if c.HasEmbedding() {
			t.Error("failed chunk carries an embedding")
		}
		if len(c.Keywords) == 0 {
			t.Error("failed chunk lost its keywords")
		}
	}
}

func TestIndexAll_UseAPIFallsBackWithoutRemote(t *testing.T) {
	ix, _ := newTestIndexer(t, nil, map[string]string{
		"a.md": "# A\n\nContent.",
	})

	result, err := ix.IndexAll(context.Background(), Options{UseAPI: true})
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if result.Embedder != "local-hash" {
		t.Errorf("Embedder = %q, want local fallback when no remote is configured", result.Embedder)
	}
}

func TestIndexAll_DeterministicChunkOrder(t *testing.T) {
	files := map[string]string{
		"a.md": "# A\n\nFirst document body.",
		"b.md": "# B\n\nSecond document body.",
		"c.md": "# C\n\nThird document body.",
	}
	ix, store := newTestIndexer(t, nil, files)

	if _, err := ix.IndexAll(context.Background(), Options{}); err != nil {
		t.Fatalf("index: %v", err)
	}
	first := store.Snapshot().Chunks

	if _, err := ix.IndexAll(context.Background(), Options{}); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	second := store.Snapshot().Chunks

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d order differs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestIndexAll_MissingRootAborts(t *testing.T) {
	store := index.NewStore()
	ix := New(
		&content.Source{Root: filepath.Join(t.TempDir(), "missing")},
		chunker.New(chunker.DefaultMaxChunkSize, chunker.DefaultOverlap),
		nil,
		embeddings.NewLocalEmbedder(),
		store,
		2,
	)
	if _, err := ix.IndexAll(context.Background(), Options{}); err == nil {
		t.Error("missing content root did not abort the rebuild")
	}
	if store.Ready() {
		t.Error("store mutated by aborted rebuild")
	}
}

func TestIndexAll_ReportsProgress(t *testing.T) {
	ix, _ := newTestIndexer(t, nil, map[string]string{
		"a.md": "# A\n\nBody.",
		"b.md": "# B\n\nBody.",
	})

	var mu sync.Mutex
	var events int
	lastTotal := 0
	ix.SetProgressFunc(func(done, total int, path string) {
		mu.Lock()
		events++
		lastTotal = total
		mu.Unlock()
	})

	if _, err := ix.IndexAll(context.Background(), Options{}); err != nil {
		t.Fatalf("index: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if events != 2 {
		t.Errorf("progress events = %d, want 2", events)
	}
	if lastTotal != 2 {
		t.Errorf("total = %d, want 2", lastTotal)
	}
}

func TestIndexAll_ContextCancellation(t *testing.T) {
	ix, store := newTestIndexer(t, nil, map[string]string{
		"a.md": "# A\n\nBody.",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ix.IndexAll(ctx, Options{}); err == nil {
		t.Error("cancelled rebuild did not error")
	}
	if store.Ready() {
		t.Error("cancelled rebuild swapped in a generation")
	}
}
