package config

// DefaultExcludes are glob patterns excluded from content enumeration by
// default.
var DefaultExcludes = []string{
	"node_modules/**",
	".git/**",
	"drafts/**",
	"**/*.draft.md",
	"README.md",
}

// DefaultConfig returns a Config with sensible defaults: index ./content,
// embed locally (no credentials needed), serve on :8080.
func DefaultConfig() *Config {
	return &Config{
		ContentDir:        "content",
		Include:           []string{"**/*.md", "**/*.mdx"},
		Exclude:           DefaultExcludes,
		MaxChunkSize:      1000,
		ChunkOverlap:      200,
		EmbeddingProvider: ProviderLocal,
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingRPM:      60,
		CachePath:         ".contentindex/embeddings.db",
		MaxConcurrency:    5,
		Search: SearchConfig{
			WeightVector:   0.7,
			WeightKeyword:  0.3,
			BoostTitle:     0.2,
			BoostKeyword:   0.1,
			BoostPriority:  0.05,
			DefaultLimit:   10,
			ScoreThreshold: 0,
		},
		Port:        8080,
		Environment: EnvDevelopment,
	}
}
