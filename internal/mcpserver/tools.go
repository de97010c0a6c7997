package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anortham/codesearch-mcp/internal/queryplanner"
	"github.com/anortham/codesearch-mcp/internal/service"
)

func workspacePathArg(config Config, args map[string]any) string {
	if v, ok := args["workspacePath"].(string); ok && v != "" {
		return v
	}
	return config.DefaultWorkspacePath
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error marshaling response: %s", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// IndexWorkspaceTool implements the index_workspace tool.
func IndexWorkspaceTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		workspacePath := workspacePathArg(config, args)
		if workspacePath == "" {
			return mcp.NewToolResultError("workspacePath is required"), nil
		}
		forceRebuild, _ := args["forceRebuild"].(bool)

		if config.Debug {
			log.Printf("MCP index_workspace args: workspacePath=%s forceRebuild=%v", workspacePath, forceRebuild)
		}

		result, err := config.Service.IndexWorkspace(ctx, workspacePath, forceRebuild)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalResult(result)
	}
}

// TextSearchTool implements the text_search tool.
func TextSearchTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		query, _ := args["query"].(string)
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		workspacePath := workspacePathArg(config, args)
		if workspacePath == "" {
			return mcp.NewToolResultError("workspacePath is required"), nil
		}

		mode, _ := args["mode"].(string)
		if mode == "" {
			mode = string(queryplanner.ModeAuto)
		}

		filters := queryplanner.Filters{
			Extensions:   stringArray(args["extensionFilter"]),
			IncludeGlobs: stringArray(args["includePaths"]),
			ExcludeGlobs: stringArray(args["excludePaths"]),
		}

		responseMode, _ := args["responseMode"].(string)
		maxTokens := 0
		if v, ok := args["maxTokens"].(float64); ok {
			maxTokens = int(v)
		}
		noCache, _ := args["noCache"].(bool)

		resp, err := config.Service.TextSearch(service.TextSearchRequest{
			Query:         query,
			WorkspacePath: workspacePath,
			Mode:          queryplanner.Mode(mode),
			Filters:       filters,
			ResponseMode:  responseMode,
			MaxTokens:     maxTokens,
			NoCache:       noCache,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalResult(resp)
	}
}

// FileSearchTool implements the file_search tool.
func FileSearchTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		pattern, _ := args["pattern"].(string)
		if pattern == "" {
			return mcp.NewToolResultError("pattern is required"), nil
		}
		workspacePath := workspacePathArg(config, args)
		if workspacePath == "" {
			return mcp.NewToolResultError("workspacePath is required"), nil
		}
		maxResults := intArg(args, "maxResults", 100)

		matches, err := config.Service.FileSearch(workspacePath, pattern, maxResults)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalResult(matches)
	}
}

// DirectorySearchTool implements the directory_search tool.
func DirectorySearchTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		pattern, _ := args["pattern"].(string)
		if pattern == "" {
			return mcp.NewToolResultError("pattern is required"), nil
		}
		workspacePath := workspacePathArg(config, args)
		if workspacePath == "" {
			return mcp.NewToolResultError("workspacePath is required"), nil
		}
		includeSubdirectories, _ := args["includeSubdirectories"].(bool)
		maxResults := intArg(args, "maxResults", 100)

		matches, err := config.Service.DirectorySearch(workspacePath, pattern, includeSubdirectories, maxResults)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalResult(matches)
	}
}

// RecentFilesTool implements the recent_files tool.
func RecentFilesTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		workspacePath := workspacePathArg(config, args)
		if workspacePath == "" {
			return mcp.NewToolResultError("workspacePath is required"), nil
		}
		timeFrame, _ := args["timeFrame"].(string)
		if timeFrame == "" {
			return mcp.NewToolResultError("timeFrame is required"), nil
		}
		maxResults := intArg(args, "maxResults", 100)

		files, err := config.Service.RecentFiles(workspacePath, timeFrame, maxResults)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalResult(files)
	}
}

// SimilarFilesTool implements the similar_files tool.
func SimilarFilesTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		filePath, _ := args["filePath"].(string)
		if filePath == "" {
			return mcp.NewToolResultError("filePath is required"), nil
		}
		workspacePath := workspacePathArg(config, args)
		if workspacePath == "" {
			return mcp.NewToolResultError("workspacePath is required"), nil
		}
		maxResults := intArg(args, "maxResults", 100)
		minScore, _ := args["minScore"].(float64)

		matches, err := config.Service.SimilarFiles(workspacePath, filePath, maxResults, minScore)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalResult(matches)
	}
}

// BatchOperationsTool implements the batch_operations tool.
func BatchOperationsTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		rawOps, ok := args["operations"].([]interface{})
		if !ok || len(rawOps) == 0 {
			return mcp.NewToolResultError("operations is required and must be a non-empty array"), nil
		}

		defaultWorkspacePath, _ := args["defaultWorkspacePath"].(string)
		if defaultWorkspacePath == "" {
			defaultWorkspacePath = config.DefaultWorkspacePath
		}

		ops := make([]service.BatchOperation, 0, len(rawOps))
		for _, raw := range rawOps {
			entry, ok := raw.(map[string]interface{})
			if !ok {
				return mcp.NewToolResultError("each operations entry must be an object"), nil
			}
			op := service.BatchOperation{}
			op.Op, _ = entry["op"].(string)
			op.WorkspacePath, _ = entry["workspacePath"].(string)
			if params, ok := entry["params"].(map[string]interface{}); ok {
				op.Params = params
			}
			ops = append(ops, op)
		}

		results := config.Service.BatchOperations(ctx, ops, defaultWorkspacePath)
		return marshalResult(results)
	}
}

// IndexHealthCheckTool implements the index_health_check tool.
func IndexHealthCheckTool(config Config) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		workspacePath, _ := args["workspacePath"].(string)

		report, aggregate, err := config.Service.IndexHealthCheck(workspacePath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if report != nil {
			return marshalResult(report)
		}
		return marshalResult(aggregate)
	}
}

func stringArray(v any) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok && v > 0 {
		return int(v)
	}
	return def
}
