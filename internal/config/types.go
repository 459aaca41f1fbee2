package config

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderLocal      ProviderType = "local"
)

// Environment selects deployment behavior; admin routes are open in
// development and token-gated otherwise.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config is the top-level contentindex configuration, corresponding to
// .contentindex.yml.
type Config struct {
	ContentDir string   `yaml:"content_dir" koanf:"content_dir"`
	Include    []string `yaml:"include" koanf:"include"`
	Exclude    []string `yaml:"exclude" koanf:"exclude"`

	MaxChunkSize int `yaml:"max_chunk_size" koanf:"max_chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" koanf:"chunk_overlap"`

	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingRPM      int          `yaml:"embedding_rpm" koanf:"embedding_rpm"`
	CachePath         string       `yaml:"cache_path" koanf:"cache_path"`

	MaxConcurrency int `yaml:"max_concurrency" koanf:"max_concurrency"`

	Search SearchConfig `yaml:"search" koanf:"search"`

	Port        int         `yaml:"port" koanf:"port"`
	Environment Environment `yaml:"environment" koanf:"environment"`
	AdminToken  string      `yaml:"admin_token" koanf:"admin_token"`
}

// SearchConfig holds the hybrid search tuning knobs.
type SearchConfig struct {
	WeightVector   float64 `yaml:"weight_vector" koanf:"weight_vector"`
	WeightKeyword  float64 `yaml:"weight_keyword" koanf:"weight_keyword"`
	BoostTitle     float64 `yaml:"boost_title" koanf:"boost_title"`
	BoostKeyword   float64 `yaml:"boost_keyword" koanf:"boost_keyword"`
	BoostPriority  float64 `yaml:"boost_priority" koanf:"boost_priority"`
	DefaultLimit   int     `yaml:"default_limit" koanf:"default_limit"`
	ScoreThreshold float64 `yaml:"score_threshold" koanf:"score_threshold"`
}
