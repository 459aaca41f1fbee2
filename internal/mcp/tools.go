package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchContentTool defines the search_content MCP tool.
var searchContentTool = mcp.NewTool("search_content",
	mcp.WithDescription("Search the indexed site content. Hybrid mode combines semantic similarity and keyword overlap; keyword and semantic modes use a single signal."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithString("mode",
		mcp.Description("Search mode (default hybrid)"),
		mcp.Enum("hybrid", "semantic", "keyword"),
	),
	mcp.WithString("section",
		mcp.Description("Restrict results to a section or path prefix"),
	),
)

// indexingStatsTool defines the indexing_stats MCP tool.
var indexingStatsTool = mcp.NewTool("indexing_stats",
	mcp.WithDescription("Get statistics for the current index generation: pages indexed, chunks created, vectors stored, and the last rebuild time."),
)
