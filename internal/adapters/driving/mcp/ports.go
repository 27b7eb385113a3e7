package mcp

import (
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Resolver resolves assets for domain objects.
	Resolver driving.ResolverService

	// Reconciler runs the offline relock job.
	Reconciler driving.ReconcilerService

	// Manifest gives read access to the manifest.
	Manifest driven.ManifestStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Resolver == nil {
		return ErrMissingResolverService
	}
	// Reconciler and Manifest are optional; their tools are skipped.
	return nil
}
