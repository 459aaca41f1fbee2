package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// contentDirCandidates are directories commonly holding site content,
// checked in order during detection.
var contentDirCandidates = []string{"content", "docs", "pages", "src/content"}

func detectContentDir() string {
	for _, dir := range contentDirCandidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return "content"
}

// RunWizard runs an interactive configuration wizard and saves the resulting
// Config to .contentindex.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to contentindex! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Content directory.
	dirPrompt := promptui.Prompt{
		Label:   "Content directory",
		Default: detectContentDir(),
	}
	contentDir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	cfg.ContentDir = contentDir

	// 2. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Select embedding provider",
		Items: []string{
			"local      — deterministic hash vectors, no API key needed",
			"openai     — text-embedding-3-small via OPENAI_API_KEY",
			"openrouter — OpenAI-compatible via OPENROUTER_API_KEY",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderLocal, ProviderOpenAI, ProviderOpenRouter}
	cfg.EmbeddingProvider = providers[providerIdx]

	if cfg.EmbeddingProvider != ProviderLocal {
		modelPrompt := promptui.Prompt{
			Label:   "Embedding model",
			Default: cfg.EmbeddingModel,
		}
		model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding model: %w", err)
		}
		cfg.EmbeddingModel = strings.TrimSpace(model)
	}

	// 3. HTTP port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: fmt.Sprintf("%d", cfg.Port),
		Validate: func(s string) error {
			var p int
			if _, err := fmt.Sscanf(s, "%d", &p); err != nil || p <= 0 || p > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	fmt.Sscanf(portStr, "%d", &cfg.Port)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(".contentindex.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration saved to .contentindex.yml")
	if cfg.EmbeddingProvider != ProviderLocal {
		fmt.Printf("Remember to set %s before indexing with the API.\n",
			strings.ToUpper(string(cfg.EmbeddingProvider))+"_API_KEY")
	}
	return cfg, nil
}
