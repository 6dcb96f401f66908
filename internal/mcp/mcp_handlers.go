package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mfeldman/modelfeed/core"
	"github.com/mfeldman/modelfeed/internal/contract"
	"github.com/mfeldman/modelfeed/internal/sink"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
	reader  contract.SourceReader
}

func (h *toolHandler) handleListModels(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(h.baseCfg.Models, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleResolveStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := h.baseCfg.ModelByID(request.GetString("model_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid stats parameters: %v", err)), nil
	}

	orch := core.NewOrchestrator(h.mgr, h.reader, nil, nil)
	stats, err := orch.ResolveStats(ctx, model)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats resolution failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleStreamModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	model, err := h.baseCfg.ModelByID(request.GetString("model_id", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid stream parameters: %v", err)), nil
	}

	// Events are buffered and returned in the tool result; lifecycle
	// signals go to stderr, keeping stdout free for the MCP transport.
	var buf bytes.Buffer
	orch := core.NewOrchestrator(h.mgr, h.reader, sink.NewWriterSink(&buf), sink.NewConsoleNotifier(os.Stderr))
	if _, err := orch.RunModel(ctx, model); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stream failed: %v", err)), nil
	}

	return mcp.NewToolResultText(buf.String()), nil
}

func (h *toolHandler) handleStoreStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetMetricStore()
	if store == nil {
		return mcp.NewToolResultError("metric store is not initialized"), nil
	}

	status, err := store.GetStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
