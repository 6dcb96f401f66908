// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mfeldman/modelfeed/internal/contract"
)

// NewMCPServer initializes and configures the modelfeed MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager, reader contract.SourceReader) *server.MCPServer {
	s := server.NewMCPServer(
		"Modelfeed Streaming Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		reader:  reader,
	}

	// --- 1. Tool: list_models ---
	s.AddTool(mcp.NewTool("list_models",
		mcp.WithDescription("List the models declared in the configuration, with their source files and metric fields."),
	), h.handleListModels)

	// --- 2. Tool: resolve_stats ---
	s.AddTool(mcp.NewTool("resolve_stats",
		mcp.WithDescription("Resolve min/max bounds for a model's metric, from the store when cached or from the source file otherwise."),
		mcp.WithString("model_id", mcp.Description("Identifier of a declared model."), mcp.Required()),
	), h.handleResolveStats)

	// --- 3. Tool: stream_model ---
	s.AddTool(mcp.NewTool("stream_model",
		mcp.WithDescription("Stream a model's timeseries records and return them as JSON lines."),
		mcp.WithString("model_id", mcp.Description("Identifier of a declared model."), mcp.Required()),
	), h.handleStreamModel)

	// --- 4. Tool: store_status ---
	s.AddTool(mcp.NewTool("store_status",
		mcp.WithDescription("Report metric store backend, connectivity, and row counts."),
	), h.handleStoreStatus)

	return s
}

// StartMCPServer starts the modelfeed MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager, reader contract.SourceReader) error {
	s := NewMCPServer(baseCfg, mgr, reader)
	return server.ServeStdio(s)
}
