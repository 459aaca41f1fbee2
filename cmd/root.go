package cmd

import (
	"io"
	"log"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "contentindex",
	Short: "Content indexing and hybrid search for documentation sites",
	Long: `contentindex turns a directory of markdown site content into searchable
chunks with keyword sets and vector embeddings, then answers queries by
combining semantic similarity and lexical overlap into a single ranked
list. It serves search over HTTP, MCP, and the command line.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Internal log lines (indexer progress, cache misses) are noise for
		// one-shot CLI use; -v brings them back.
		if !verbose && cmd.Name() != "serve" {
			log.SetOutput(io.Discard)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".contentindex.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
