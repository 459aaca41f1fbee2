package cmd

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/aidev-education/contentindex/internal/indexer"
	"github.com/aidev-education/contentindex/internal/search"
)

var (
	searchMode      string
	searchLimit     int
	searchSection   string
	searchThreshold float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Index the content and run a query from the terminal",
	Args:  cobra.MinimumNArgs(1),
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

		ctx := context.Background()
		if _, err := c.indexer.IndexAll(ctx, indexer.Options{UseAPI: c.useAPI}); err != nil {
			return err
		}

		results, err := c.engine.Search(ctx, search.Options{
			Query:     strings.Join(args, " "),
			Mode:      search.ParseMode(searchMode),
			Limit:     searchLimit,
			Section:   searchSection,
			Threshold: searchThreshold,
		})
		if err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for i, r := range results {
			fmt.Printf("%2d. %-40s %.4f\n", i+1, r.Chunk.Path, r.Score)
			if r.Chunk.Title != "" {
				fmt.Printf("    %s\n", r.Chunk.Title)
			}
			fmt.Printf("    %s\n\n", excerpt(r.Chunk.Text, 160))
		}
		return nil
	},
}

// excerpt truncates s to at most n bytes, preferring a word boundary and
// never splitting a multi-byte character.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndex(s[:n], " ")
	if cut <= 0 {
		cut = n
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return s[:cut] + "…"
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "search mode: hybrid, semantic, or keyword")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "restrict to a section or path prefix")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", 0, "minimum score")
	rootCmd.AddCommand(searchCmd)
}
