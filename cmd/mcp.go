package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/aidev-education/contentindex/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing content
search tools for AI agents. The index is built lazily on the first tool call.`,
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

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "contentindex MCP server started on stdio (content=%s)\n", cfg.ContentDir)

		srv := mcpserver.NewServer(c.store, c.engine, c.indexer, c.useAPI)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
