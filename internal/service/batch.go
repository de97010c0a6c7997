package service

import (
	"context"
	"sync"

	"github.com/anortham/codesearch-mcp/internal/queryplanner"
)

// BatchOperations implements batch_operations (spec §6): every entry
// runs concurrently against its own (or the shared default) workspace,
// each failure captured in its own result rather than aborting its
// siblings.
func (s *Service) BatchOperations(ctx context.Context, ops []BatchOperation, defaultWorkspacePath string) []BatchResult {
	results := make([]BatchResult, len(ops))

	var wg sync.WaitGroup
	for i, op := range ops {
		i, op := i, op
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.runBatchOp(ctx, op, defaultWorkspacePath)
		}()
	}
	wg.Wait()

	return results
}

func (s *Service) runBatchOp(ctx context.Context, op BatchOperation, defaultWorkspacePath string) BatchResult {
	workspacePath := op.WorkspacePath
	if workspacePath == "" {
		workspacePath = defaultWorkspacePath
	}

	switch op.Op {
	case "index_workspace":
		forceRebuild, _ := op.Params["forceRebuild"].(bool)
		result, err := s.IndexWorkspace(ctx, workspacePath, forceRebuild)
		return toBatchResult(op.Op, result, err)

	case "text_search":
		query, _ := op.Params["query"].(string)
		resp, err := s.TextSearch(TextSearchRequest{
			Query:         query,
			WorkspacePath: workspacePath,
			Mode:          queryplanner.ModeAuto,
		})
		return toBatchResult(op.Op, resp, err)

	case "file_search":
		pattern, _ := op.Params["pattern"].(string)
		maxResults := paramInt(op.Params, "maxResults", 100)
		result, err := s.FileSearch(workspacePath, pattern, maxResults)
		return toBatchResult(op.Op, result, err)

	case "directory_search":
		pattern, _ := op.Params["pattern"].(string)
		includeSubdirectories, _ := op.Params["includeSubdirectories"].(bool)
		maxResults := paramInt(op.Params, "maxResults", 100)
		result, err := s.DirectorySearch(workspacePath, pattern, includeSubdirectories, maxResults)
		return toBatchResult(op.Op, result, err)

	case "recent_files":
		timeFrame, _ := op.Params["timeFrame"].(string)
		maxResults := paramInt(op.Params, "maxResults", 100)
		result, err := s.RecentFiles(workspacePath, timeFrame, maxResults)
		return toBatchResult(op.Op, result, err)

	case "similar_files":
		filePath, _ := op.Params["filePath"].(string)
		maxResults := paramInt(op.Params, "maxResults", 100)
		minScore, _ := op.Params["minScore"].(float64)
		result, err := s.SimilarFiles(workspacePath, filePath, maxResults, minScore)
		return toBatchResult(op.Op, result, err)

	default:
		return BatchResult{Op: op.Op, Success: false, Error: "unknown operation"}
	}
}

func toBatchResult(op string, data any, err error) BatchResult {
	if err != nil {
		return BatchResult{Op: op, Success: false, Error: err.Error()}
	}
	return BatchResult{Op: op, Success: true, Data: data}
}

func paramInt(params map[string]any, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}
