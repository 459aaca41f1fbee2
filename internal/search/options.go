package search

import "github.com/aidev-education/contentindex/internal/index"

// Mode selects the scoring strategy for a search.
type Mode string

const (
	ModeKeyword  Mode = "keyword"
	ModeSemantic Mode = "semantic"
	ModeHybrid   Mode = "hybrid"
)

// ParseMode maps a request string to a Mode, defaulting to hybrid.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeKeyword, ModeSemantic, ModeHybrid:
		return Mode(s)
	default:
		return ModeHybrid
	}
}

// Weights configures the relative importance of the semantic and keyword
// signals in hybrid scoring.
type Weights struct {
	Vector  float64 `json:"vector"`
	Keyword float64 `json:"keyword"`
}

// DefaultWeights favors the semantic signal: it compensates for keyword
// search's weakness on paraphrase, while the keyword share keeps exact
// terminology from being drowned out.
func DefaultWeights() Weights {
	return Weights{Vector: 0.7, Keyword: 0.3}
}

// Boosts are additive score bonuses applied in hybrid mode.
type Boosts struct {
	Title    float64 `json:"title"`    // query token appears in the chunk title
	Keyword  float64 `json:"keyword"`  // any keyword overlap at all
	Priority float64 `json:"priority"` // author marked the page as important
}

// DefaultBoosts returns the standard boost values.
func DefaultBoosts() Boosts {
	return Boosts{Title: 0.2, Keyword: 0.1, Priority: 0.05}
}

// Options configures a single search call.
type Options struct {
	Query     string
	Mode      Mode
	Limit     int     // maximum results; 0 means DefaultLimit
	Threshold float64 // minimum score; results below it are dropped
	Section   string  // optional section / path-prefix filter
	Weights   *Weights
	Boosts    *Boosts
}

// Result pairs a chunk with its relevance score. Score semantics depend on
// the mode: token overlap in [0,1] for keyword, cosine similarity in [-1,1]
// for semantic, and the boosted weighted combination for hybrid.
type Result struct {
	Chunk index.ContentChunk
	Score float64
}

// DefaultLimit bounds result counts when the caller does not specify one.
const DefaultLimit = 10

// MaxLimit is the hard cap on requested result counts.
const MaxLimit = 100
