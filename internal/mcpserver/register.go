package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterAll registers every request-surface tool with the given
// server, one entry per operation spec §6 names.
func RegisterAll(s *server.MCPServer, config Config) error {
	indexWorkspaceTool := mcp.NewTool("index_workspace",
		mcp.WithDescription(`Build or refresh the full-text index for a source-code workspace. Response: {indexed,skipped,failures,durationMs}. Starts a filesystem watcher for the workspace on success so subsequent edits stay reflected incrementally without re-running this tool.`),
		mcp.WithString("workspacePath", mcp.Required(), mcp.Description("Absolute path to the workspace root to index")),
		mcp.WithBoolean("forceRebuild", mcp.Description("Discard the existing index and rebuild from scratch (default false)")),
	)
	s.AddTool(indexWorkspaceTool, IndexWorkspaceTool(config))

	textSearchTool := mcp.NewTool("text_search",
		mcp.WithDescription(`Search a workspace's indexed source for text, ranked by relevance. Response: {success,mode,format,data:{files,hotspots,extensionDistribution,directoryDistribution,summary},metadata,error?,recovery?}.

**Modes:** Auto (default, picks the best of the below from the query shape), Standard, Literal (substring), Code (identifier-aware), Symbol (CamelCase-aware prefix match), Pattern (structural, e.g. ": ITool" or "[Fact]"), Fuzzy (edit-distance tolerant), Regex.`),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithString("workspacePath", mcp.Required(), mcp.Description("Absolute path to a previously indexed workspace")),
		mcp.WithString("mode", mcp.Description("Auto, Standard, Literal, Code, Symbol, Pattern, Fuzzy, or Regex (default Auto)")),
		mcp.WithArray("extensionFilter", mcp.Description("Restrict to files with these extensions (e.g. [\".go\",\".ts\"])"), mcp.WithStringItems()),
		mcp.WithArray("includePaths", mcp.Description("Only consider files whose relative path matches one of these globs"), mcp.WithStringItems()),
		mcp.WithArray("excludePaths", mcp.Description("Drop files whose relative path matches one of these globs"), mcp.WithStringItems()),
		mcp.WithString("responseMode", mcp.Description("summary or full (default adaptive to token budget)")),
		mcp.WithNumber("maxTokens", mcp.Description("Approximate token budget for the response (default 4000)"), mcp.Min(1)),
		mcp.WithBoolean("noCache", mcp.Description("Bypass the query result cache for this call")),
	)
	s.AddTool(textSearchTool, TextSearchTool(config))

	fileSearchTool := mcp.NewTool("file_search",
		mcp.WithDescription(`Find files by name pattern. Supports glob wildcards (*, ?) or a regular expression when the pattern looks like one. Response: array of {path,relativePath,filename,extension,size,modifiedTicks}.`),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Filename glob or regex pattern")),
		mcp.WithString("workspacePath", mcp.Required(), mcp.Description("Absolute path to a previously indexed workspace")),
		mcp.WithNumber("maxResults", mcp.Description("Maximum matches to return (default 100)"), mcp.Min(1)),
	)
	s.AddTool(fileSearchTool, FileSearchTool(config))

	directorySearchTool := mcp.NewTool("directory_search",
		mcp.WithDescription(`Find directories by name/prefix pattern, with a per-directory file count. Response: array of {path,fileCount}.`),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Directory name prefix or glob pattern")),
		mcp.WithString("workspacePath", mcp.Required(), mcp.Description("Absolute path to a previously indexed workspace")),
		mcp.WithBoolean("includeSubdirectories", mcp.Description("Count files in nested subdirectories too (default false)")),
		mcp.WithNumber("maxResults", mcp.Description("Maximum matches to return (default 100)"), mcp.Min(1)),
	)
	s.AddTool(directorySearchTool, DirectorySearchTool(config))

	recentFilesTool := mcp.NewTool("recent_files",
		mcp.WithDescription(`List files modified within a time frame, newest first. Response: array of {path,relativePath,extension,modifiedTicks}.`),
		mcp.WithString("workspacePath", mcp.Required(), mcp.Description("Absolute path to a previously indexed workspace")),
		mcp.WithString("timeFrame", mcp.Required(), mcp.Description("Go duration syntax (\"2h\", \"30m\") or a trailing-d day count (\"7d\")")),
		mcp.WithNumber("maxResults", mcp.Description("Maximum matches to return (default 100)"), mcp.Min(1)),
	)
	s.AddTool(recentFilesTool, RecentFilesTool(config))

	similarFilesTool := mcp.NewTool("similar_files",
		mcp.WithDescription(`Find files whose content resembles a given file's, ranked by a [0,1] similarity score. Response: array of {path,relativePath,score}.`),
		mcp.WithString("filePath", mcp.Required(), mcp.Description("Path (absolute, or relative to workspacePath) to the source file")),
		mcp.WithString("workspacePath", mcp.Required(), mcp.Description("Absolute path to a previously indexed workspace")),
		mcp.WithNumber("maxResults", mcp.Description("Maximum matches to return (default 100)"), mcp.Min(1)),
		mcp.WithNumber("minScore", mcp.Description("Drop matches scoring below this (0-1, default 0)")),
	)
	s.AddTool(similarFilesTool, SimilarFilesTool(config))

	batchOperationsTool := mcp.NewTool("batch_operations",
		mcp.WithDescription(`Run several of the above operations concurrently in one call. Each entry runs independently; one failing entry doesn't abort its siblings. Response: array of {op,success,data?,error?}.`),
		mcp.WithArray("operations",
			mcp.Required(),
			mcp.Description("Operations to run"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"op":            map[string]any{"type": "string", "description": "index_workspace, text_search, file_search, directory_search, recent_files, or similar_files"},
					"workspacePath": map[string]any{"type": "string", "description": "Overrides defaultWorkspacePath for this entry"},
					"params":        map[string]any{"type": "object", "description": "The operation's own parameters (query, pattern, timeFrame, filePath, maxResults, ...)"},
				},
				"required": []string{"op"},
			}),
		),
		mcp.WithString("defaultWorkspacePath", mcp.Description("Workspace path used for entries that don't set their own workspacePath")),
	)
	s.AddTool(batchOperationsTool, BatchOperationsTool(config))

	healthCheckTool := mcp.NewTool("index_health_check",
		mcp.WithDescription(`Report index health. With workspacePath: one workspace's registry entry, document count, circuit-breaker state, watcher status, and any stale-lock findings. Without it: registry-wide statistics, the full lock report, and orphaned-index count.`),
		mcp.WithString("workspacePath", mcp.Description("Absolute path to a workspace; omit for a registry-wide report")),
	)
	s.AddTool(healthCheckTool, IndexHealthCheckTool(config))

	return nil
}
