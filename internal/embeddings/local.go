package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// LocalDimensions is the fixed dimensionality of the local embedder.
const LocalDimensions = 256

const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var localTokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// LocalEmbedder derives deterministic pseudo-embeddings from text using
// feature hashing of tokens and character trigrams. It needs no network or
// credentials, so indexing always produces some vector for every chunk;
// semantic search degrades to a weaker but functioning signal instead of
// hard-failing when no remote provider is configured.
type LocalEmbedder struct{}

// NewLocalEmbedder creates the local fallback embedder.
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{}
}

func (e *LocalEmbedder) Name() string {
	return "local-hash"
}

func (e *LocalEmbedder) Dimensions() int {
	return LocalDimensions
}

func (e *LocalEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

// vector builds an L2-normalized feature-hash vector. Tokens carry most of
// the weight; trigrams keep partial-word matches from scoring zero.
func (e *LocalEmbedder) vector(text string) []float32 {
	vec := make([]float32, LocalDimensions)

	lower := strings.ToLower(text)
	for _, tok := range localTokenPattern.FindAllString(lower, -1) {
		vec[hashIndex(tok)] += tokenWeight
	}

	compact := strings.Join(localTokenPattern.FindAllString(lower, -1), " ")
	for i := 0; i+ngramSize <= len(compact); i++ {
		vec[hashIndex(compact[i:i+ngramSize])] += ngramWeight
	}

	return normalize(vec)
}

func hashIndex(s string) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % LocalDimensions)
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
