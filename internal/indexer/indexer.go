// Package indexer orchestrates full index rebuilds: enumerate content, chunk
// each document, embed the chunks, and swap the new generation into the
// store.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aidev-education/contentindex/internal/chunker"
	"github.com/aidev-education/contentindex/internal/content"
	"github.com/aidev-education/contentindex/internal/embeddings"
	"github.com/aidev-education/contentindex/internal/index"
)

// DefaultConcurrency bounds how many embedding batches are in flight at
// once, to stay under provider rate limits.
const DefaultConcurrency = 5

// Options controls a single rebuild.
type Options struct {
	// UseAPI selects the remote embedding provider when one is configured.
	// When false, or when no remote provider exists, the local fallback
	// embeds everything.
	UseAPI bool
}

// Result summarizes a completed rebuild. VectorsStored < ChunksCreated means
// some chunks failed to embed and are retrievable by keyword only until the
// next rebuild.
type Result struct {
	PagesIndexed  int           `json:"pages_indexed"`
	ChunksCreated int           `json:"chunks_created"`
	VectorsStored int           `json:"vectors_stored"`
	ChunksFailed  int           `json:"chunks_failed"`
	Embedder      string        `json:"embedder"`
	Duration      time.Duration `json:"-"`
}

// ProgressFunc is called as documents finish embedding.
type ProgressFunc func(done, total int, path string)

// Indexer rebuilds the index from the content source. Rebuilds are
// serialized; concurrent searches keep reading the previous generation until
// the atomic swap.
type Indexer struct {
	source      *content.Source
	chunker     *chunker.Chunker
	remote      embeddings.Embedder // nil when no API credentials configured
	local       embeddings.Embedder
	store       *index.Store
	concurrency int

	mu         sync.Mutex
	onProgress ProgressFunc
}

// New creates an Indexer. remote may be nil; local must not be.
func New(source *content.Source, ch *chunker.Chunker, remote, local embeddings.Embedder, store *index.Store, concurrency int) *Indexer {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Indexer{
		source:      source,
		chunker:     ch,
		remote:      remote,
		local:       local,
		store:       store,
		concurrency: concurrency,
	}
}

// SetProgressFunc sets the progress callback for subsequent rebuilds.
func (ix *Indexer) SetProgressFunc(fn ProgressFunc) {
	ix.mu.Lock()
	ix.onProgress = fn
	ix.mu.Unlock()
}

// IndexAll performs a full rebuild. Failure to enumerate content aborts the
// rebuild with an error; a document whose chunks cannot be embedded is kept
// without vectors and counted in ChunksFailed. One IndexAll runs at a time.
func (ix *Indexer) IndexAll(ctx context.Context, opts Options) (*Result, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	start := time.Now()

	docs, err := ix.source.Documents()
	if err != nil {
		return nil, fmt.Errorf("indexer: enumerate content: %w", err)
	}

	embedder := ix.local
	if opts.UseAPI && ix.remote != nil {
		embedder = ix.remote
	}

	// Chunk every document up front; chunking is cheap and deterministic.
	perDoc := make([][]index.ContentChunk, len(docs))
	for i, doc := range docs {
		perDoc[i] = ix.chunker.Chunk(doc)
	}

	// Embed with a bounded fan-out. Results land in perDoc by document
	// position, so the final order is traversal order regardless of which
	// embedding call finishes first.
	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, ix.concurrency)
		done   atomic.Int64
		failed atomic.Int64
	)
	total := len(docs)

	for i := range docs {
		if len(perDoc[i]) == 0 {
			ix.reportProgress(int(done.Add(1)), total, docs[i].Path)
			continue
		}

		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			chunks := perDoc[i]
			texts := make([]string, len(chunks))
			for j, c := range chunks {
				texts[j] = c.Text
			}

			vectors, err := embedder.Embed(ctx, texts)
			if err != nil {
				// Provider failure for one document must not abort the
				// rebuild. The chunks stay unembedded: swapping in local
				// vectors here would mix dimensionalities within the
				// generation.
				if errors.Is(err, embeddings.ErrProviderUnavailable) {
					log.Printf("indexer: %s: %v (chunks kept without vectors)", docs[i].Path, err)
				} else {
					log.Printf("indexer: embed %s: %v", docs[i].Path, err)
				}
				failed.Add(int64(len(chunks)))
			} else if len(vectors) == len(chunks) {
				for j := range chunks {
					chunks[j].Embedding = vectors[j]
				}
			} else {
				log.Printf("indexer: embed %s: got %d vectors for %d chunks", docs[i].Path, len(vectors), len(chunks))
				failed.Add(int64(len(chunks)))
			}

			ix.reportProgress(int(done.Add(1)), total, docs[i].Path)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []index.ContentChunk
	for _, chunks := range perDoc {
		all = append(all, chunks...)
	}

	snap := ix.store.Rebuild(all)

	result := &Result{
		PagesIndexed:  len(docs),
		ChunksCreated: len(all),
		VectorsStored: countVectors(all),
		ChunksFailed:  int(failed.Load()),
		Embedder:      embedder.Name(),
		Duration:      time.Since(start),
	}
	log.Printf("indexer: rebuilt generation %s: %d pages, %d chunks, %d vectors in %s",
		snap.Generation, result.PagesIndexed, result.ChunksCreated, result.VectorsStored, result.Duration.Round(time.Millisecond))
	return result, nil
}

func (ix *Indexer) reportProgress(done, total int, path string) {
	if ix.onProgress != nil {
		ix.onProgress(done, total, path)
	}
}

func countVectors(chunks []index.ContentChunk) int {
	n := 0
	for _, c := range chunks {
		if c.HasEmbedding() {
			n++
		}
	}
	return n
}
