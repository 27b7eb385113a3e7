// Package mcp provides an MCP (Model Context Protocol) server adapter for
// artfetch. It lets AI assistants resolve assets and inspect the manifest.
package mcp

import "errors"

// ErrMissingResolverService is returned when the resolver service is not provided.
var ErrMissingResolverService = errors.New("mcp: resolver service is required")
