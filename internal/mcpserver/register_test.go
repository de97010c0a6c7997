package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anortham/codesearch-mcp/internal/config"
	"github.com/anortham/codesearch-mcp/internal/service"
)

func newTestConfig(t *testing.T) Config {
	t.Helper()
	cfg := config.Default()
	cfg.BasePath = t.TempDir()

	svc, err := service.New(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	return Config{Service: svc, DefaultWorkspacePath: workspace}
}

func TestRegisterAllDoesNotError(t *testing.T) {
	s := server.NewMCPServer("test-codesearch-mcp", "v0.1.0", server.WithToolCapabilities(false))
	config := newTestConfig(t)

	err := RegisterAll(s, config)
	assert.NoError(t, err)
}

func TestIndexWorkspaceToolIndexesAndReportsCount(t *testing.T) {
	config := newTestConfig(t)
	handler := IndexWorkspaceTool(config)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "index_workspace",
			Arguments: map[string]interface{}{"workspacePath": config.DefaultWorkspacePath},
		},
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	var parsed struct {
		Indexed int `json:"indexed"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &parsed))
	assert.Equal(t, 1, parsed.Indexed)
}

func TestTextSearchToolRequiresQuery(t *testing.T) {
	config := newTestConfig(t)
	handler := TextSearchTool(config)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "text_search",
			Arguments: map[string]interface{}{"workspacePath": config.DefaultWorkspacePath},
		},
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestBatchOperationsToolRejectsMissingOperations(t *testing.T) {
	config := newTestConfig(t)
	handler := BatchOperationsTool(config)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "batch_operations",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return textContent.Text
}
