// Package mcp exposes content search to AI agents over the Model Context
// Protocol.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aidev-education/contentindex/internal/index"
	"github.com/aidev-education/contentindex/internal/indexer"
	"github.com/aidev-education/contentindex/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes content search tools.
type Server struct {
	store   *index.Store
	engine  *search.Engine
	indexer *indexer.Indexer
	useAPI  bool
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(store *index.Store, engine *search.Engine, ix *indexer.Indexer, useAPI bool) *Server {
	s := &Server{
		store:   store,
		engine:  engine,
		indexer: ix,
		useAPI:  useAPI,
	}

	s.mcp = server.NewMCPServer(
		"contentindex",
		Version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(searchContentTool, s.handleSearchContent)
	s.mcp.AddTool(indexingStatsTool, s.handleIndexingStats)

	return s
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleSearchContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	if !s.store.Ready() {
		if _, err := s.indexer.IndexAll(ctx, indexer.Options{UseAPI: s.useAPI}); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
		}
	}

	opts := search.Options{
		Query:   query,
		Limit:   request.GetInt("limit", search.DefaultLimit),
		Mode:    search.ParseMode(request.GetString("mode", "")),
		Section: request.GetString("section", ""),
	}

	results, err := s.engine.Search(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}

	return mcp.NewToolResultText(formatResults(results)), nil
}

func (s *Server) handleIndexingStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.store.Stats()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Pages indexed: %d\n", stats.PagesIndexed)
	fmt.Fprintf(&sb, "Chunks created: %d\n", stats.ChunksCreated)
	fmt.Fprintf(&sb, "Vectors stored: %d\n", stats.VectorsStored)
	if stats.LastIndexed != nil {
		fmt.Fprintf(&sb, "Last indexed: %s\n", stats.LastIndexed.Format("2006-01-02 15:04:05 MST"))
	} else {
		sb.WriteString("Last indexed: never\n")
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatResults renders search results as human-readable text.
func formatResults(results []search.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "--- Result %d (score: %.4f) ---\n", i+1, r.Score)
		fmt.Fprintf(&sb, "Path: %s\n", r.Chunk.Path)
		if r.Chunk.Title != "" {
			fmt.Fprintf(&sb, "Title: %s\n", r.Chunk.Title)
		}
		if r.Chunk.Section != "" {
			fmt.Fprintf(&sb, "Section: %s\n", r.Chunk.Section)
		}
		sb.WriteString("\n")
		sb.WriteString(r.Chunk.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
