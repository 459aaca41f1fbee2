package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/aidev-education/contentindex/internal/indexer"
	"github.com/aidev-education/contentindex/internal/progress"
)

var (
	indexNoAPI  bool
	indexExport string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the content index once and print statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		reporter := progress.NewReporter()
		var startOnce sync.Once
		c.indexer.SetProgressFunc(func(done, total int, path string) {
			startOnce.Do(func() { reporter.Start(total) })
			reporter.Update(done, path)
		})

		useAPI := c.useAPI && !indexNoAPI
		result, err := c.indexer.IndexAll(context.Background(), indexer.Options{UseAPI: useAPI})
		reporter.Finish()
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d pages into %d chunks (%d vectors, embedder %s) in %s\n",
			result.PagesIndexed, result.ChunksCreated, result.VectorsStored,
			result.Embedder, result.Duration.Round(time.Millisecond))
		if result.ChunksFailed > 0 {
			fmt.Printf("Warning: %d chunks failed to embed and are keyword-only\n", result.ChunksFailed)
		}

		if indexExport != "" {
			f, err := os.Create(indexExport)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			if err := c.store.Export(f); err != nil {
				return fmt.Errorf("exporting index: %w", err)
			}
			fmt.Printf("Snapshot exported to %s\n", indexExport)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexNoAPI, "no-api", false, "force the local embedder even if an API key is configured")
	indexCmd.Flags().StringVar(&indexExport, "export", "", "write a JSON snapshot of the index to this file")
	rootCmd.AddCommand(indexCmd)
}
