// Package mcpserver registers the request-surface operations of
// internal/service as Model Context Protocol tools, the way the
// teacher's pkg/mcp package adapts pkg/cache.Service into tools over
// mark3labs/mcp-go. One Config, one Service, one tool per operation.
package mcpserver

import "github.com/anortham/codesearch-mcp/internal/service"

// Config carries everything the registered tool handlers close over.
type Config struct {
	Service              *service.Service
	DefaultWorkspacePath string
	Debug                bool
}
