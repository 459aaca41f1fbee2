package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/aidev-education/contentindex/internal/chunker"
	"github.com/aidev-education/contentindex/internal/config"
	"github.com/aidev-education/contentindex/internal/content"
	"github.com/aidev-education/contentindex/internal/embeddings"
	"github.com/aidev-education/contentindex/internal/index"
	"github.com/aidev-education/contentindex/internal/indexer"
	"github.com/aidev-education/contentindex/internal/search"
)

// components holds the wired service dependencies shared by the serve,
// index, search, and mcp commands.
type components struct {
	store   *index.Store
	engine  *search.Engine
	indexer *indexer.Indexer
	useAPI  bool
	closers []io.Closer
}

// Close releases held resources (the embedding cache handle).
func (c *components) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

// buildComponents constructs the store, engine, and indexer from config.
// When a remote provider is configured but its API key is missing, the
// service degrades to the local embedder with a warning instead of failing.
func buildComponents(cfg *config.Config) (*components, error) {
	source := &content.Source{
		Root:    cfg.ContentDir,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	}
	ch := chunker.New(cfg.MaxChunkSize, cfg.ChunkOverlap)
	store := index.NewStore()

	local := embeddings.NewLocalEmbedder()
	c := &components{store: store}

	remote, closer, err := buildRemoteEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		c.closers = append(c.closers, closer)
	}

	c.useAPI = remote != nil
	c.indexer = indexer.New(source, ch, remote, local, store, cfg.MaxConcurrency)
	if remote != nil {
		c.engine = search.NewEngine(store, remote, local)
	} else {
		c.engine = search.NewEngine(store, local)
	}
	return c, nil
}

// buildRemoteEmbedder returns nil when the config selects the local provider
// or no API key is set.
func buildRemoteEmbedder(cfg *config.Config) (embeddings.Embedder, io.Closer, error) {
	if cfg.EmbeddingProvider == config.ProviderLocal {
		return nil, nil, nil
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		log.Printf("no API key for provider %q, falling back to local embeddings", cfg.EmbeddingProvider)
		return nil, nil, nil
	}

	model := embeddings.OpenAIModel(cfg.EmbeddingModel)
	var base embeddings.Embedder
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		base = embeddings.NewOpenAIEmbedder(apiKey, model)
	case config.ProviderOpenRouter:
		base = embeddings.NewOpenRouterEmbedder(apiKey, model)
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}

	wrapped := embeddings.WithRateLimit(
		embeddings.WithRetry(base, embeddings.DefaultRetryConfig()),
		cfg.EmbeddingRPM,
	)

	if cfg.CachePath == "" {
		return wrapped, nil, nil
	}
	cached, err := embeddings.WithCache(wrapped, cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	return cached, cached, nil
}

// loadConfig loads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
