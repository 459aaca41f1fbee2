// Package search implements keyword, semantic, and hybrid retrieval over an
// index snapshot. All modes score the same candidate set, so hybrid scores
// can combine both signals per chunk.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aidev-education/contentindex/internal/chunker"
	"github.com/aidev-education/contentindex/internal/embeddings"
	"github.com/aidev-education/contentindex/internal/index"
)

// ErrInvalidQuery is returned for empty or whitespace-only queries.
var ErrInvalidQuery = errors.New("search: query must not be empty")

// Engine answers queries against the current index generation. Query vectors
// must come from the same embedder variant the generation was built with, so
// the engine holds every configured variant and picks the one whose
// dimensionality matches the snapshot.
type Engine struct {
	store     *index.Store
	embedders []embeddings.Embedder
}

// NewEngine creates a retrieval engine over the given store. Embedders are
// tried in order when embedding a query.
func NewEngine(store *index.Store, embedders ...embeddings.Embedder) *Engine {
	return &Engine{store: store, embedders: embedders}
}

// Search runs a query in the requested mode and returns results sorted by
// descending score. Ties keep the original chunk order (stable sort). Chunks
// scoring below the threshold are dropped; with the zero-value threshold,
// zero scores are dropped too, so a negative threshold is the way to receive
// anti-correlated semantic results.
func (e *Engine) Search(ctx context.Context, opts Options) ([]Result, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeHybrid
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	snap := e.store.Snapshot()
	candidates := filterSection(snap.Chunks, opts.Section)
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	queryTokens := chunker.Tokenize(query)

	var queryVec []float32
	if mode == ModeSemantic || mode == ModeHybrid {
		vec, err := e.embedQuery(ctx, query, snap)
		if err != nil {
			if mode == ModeSemantic {
				return nil, err
			}
			// Hybrid degrades to keyword-only when the query cannot be
			// embedded; the index itself is still intact.
			queryVec = nil
		} else {
			queryVec = vec
		}
	}

	weights := DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	boosts := DefaultBoosts()
	if opts.Boosts != nil {
		boosts = *opts.Boosts
	}

	results := make([]Result, 0, len(candidates))
	for _, chunk := range candidates {
		var score float64
		switch mode {
		case ModeKeyword:
			score = keywordScore(queryTokens, chunk.Keywords)
		case ModeSemantic:
			if !chunk.HasEmbedding() {
				continue
			}
			score = cosineSimilarity(queryVec, chunk.Embedding)
		case ModeHybrid:
			kw := keywordScore(queryTokens, chunk.Keywords)
			var sem float64
			if queryVec != nil && chunk.HasEmbedding() {
				sem = cosineSimilarity(queryVec, chunk.Embedding)
			}
			score = weights.Vector*sem + weights.Keyword*kw
			if kw > 0 {
				score += boosts.Keyword
			}
			if titleMatches(queryTokens, chunk.Title) {
				score += boosts.Title
			}
			if chunk.Priority > 0 {
				score += boosts.Priority
			}
		default:
			return nil, fmt.Errorf("search: unknown mode %q", mode)
		}

		if score < opts.Threshold {
			continue
		}
		// With no explicit threshold, zero-score chunks (no signal at all)
		// are still noise; a negative threshold opts in to negative cosines.
		if opts.Threshold == 0 && score <= 0 {
			continue
		}
		results = append(results, Result{Chunk: chunk, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// embedQuery embeds the query text with the embedder matching the
// generation's dimensionality, keeping the vector comparable to the index.
func (e *Engine) embedQuery(ctx context.Context, query string, snap *index.Snapshot) ([]float32, error) {
	if snap.Dimensions == 0 {
		return nil, fmt.Errorf("search: index has no embeddings")
	}

	var embedder embeddings.Embedder
	for _, cand := range e.embedders {
		if cand.Dimensions() == snap.Dimensions {
			embedder = cand
			break
		}
	}
	if embedder == nil {
		return nil, fmt.Errorf("search: no embedder matches index dimensionality %d (provider mismatch)", snap.Dimensions)
	}

	vecs, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("search: embedder returned no vector")
	}
	if len(vecs[0]) != snap.Dimensions {
		return nil, fmt.Errorf("search: query embedding has %d dims, index has %d", len(vecs[0]), snap.Dimensions)
	}
	return vecs[0], nil
}

// filterSection keeps chunks whose section matches exactly or whose path has
// the given prefix. An empty filter keeps everything.
func filterSection(chunks []index.ContentChunk, section string) []index.ContentChunk {
	if section == "" {
		return chunks
	}
	var out []index.ContentChunk
	for _, c := range chunks {
		if c.Section == section || strings.HasPrefix(c.Path, section) {
			out = append(out, c)
		}
	}
	return out
}

// keywordScore is the normalized overlap between query tokens and the chunk
// keyword set: intersection size over query token count. A chunk containing
// every query token scores 1.0, the maximum attainable.
func keywordScore(queryTokens []string, keywords []string) float64 {
	if len(queryTokens) == 0 || len(keywords) == 0 {
		return 0
	}
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}
	matched := 0
	for _, tok := range queryTokens {
		if set[tok] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

func titleMatches(queryTokens []string, title string) bool {
	if title == "" {
		return false
	}
	titleTokens := chunker.Tokenize(title)
	set := make(map[string]bool, len(titleTokens))
	for _, t := range titleTokens {
		set[t] = true
	}
	for _, tok := range queryTokens {
		if set[tok] {
			return true
		}
	}
	return false
}

// cosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
