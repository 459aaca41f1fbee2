package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CONTENTINDEX_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CONTENTINDEX_PORT -> port,
	// CONTENTINDEX_SEARCH_WEIGHT_VECTOR -> search.weight_vector, etc.
	if err := k.Load(env.Provider("CONTENTINDEX_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "CONTENTINDEX_"))
		if after, ok := strings.CutPrefix(key, "search_"); ok {
			return "search." + after
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderLocal:      true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir is required")
	}
	if !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, openrouter, local", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider != ProviderLocal && c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required for provider %q", c.EmbeddingProvider)
	}
	if c.MaxChunkSize < 0 || c.ChunkOverlap < 0 {
		return fmt.Errorf("max_chunk_size and chunk_overlap must be non-negative")
	}
	if c.ChunkOverlap > 0 && c.MaxChunkSize > 0 && c.ChunkOverlap >= c.MaxChunkSize {
		return fmt.Errorf("chunk_overlap must be smaller than max_chunk_size")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}
	if c.Search.WeightVector < 0 || c.Search.WeightKeyword < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be in 1-65535")
	}
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("invalid environment %q: must be development or production", c.Environment)
	}
	if c.Environment == EnvProduction && c.AdminToken == "" {
		return fmt.Errorf("admin_token is required in production")
	}
	return nil
}

// APIKey returns the API key for the configured embedding provider from the
// conventional environment variable, or empty for the local provider.
func (c *Config) APIKey() string {
	switch c.EmbeddingProvider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderOpenRouter:
		return os.Getenv("OPENROUTER_API_KEY")
	default:
		return ""
	}
}
