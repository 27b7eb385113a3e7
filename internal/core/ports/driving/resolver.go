package driving

import (
	"context"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

// ResolveOptions tune a single resolution request.
type ResolveOptions struct {
	// ForceRefresh re-runs federation even when a manifest entry exists.
	// It never overrides a locked or official entry.
	ForceRefresh bool
}

// ResolverService resolves a visual asset for a domain object.
type ResolverService interface {
	// Resolve returns the asset chosen for the context, consulting the
	// manifest first and running provider federation when needed.
	//
	// Resolve never fails: internal errors are logged and degrade to the
	// last-known manifest entry. A nil result means "nothing to show,
	// render a placeholder" - either the context derives no key or no
	// provider and no fallback produced anything.
	Resolve(ctx context.Context, actx domain.AssetContext, opts ResolveOptions) *domain.ResolvedAsset

	// Entry returns the raw manifest entry for a context, or nil.
	Entry(ctx context.Context, actx domain.AssetContext) *domain.ManifestEntry

	// UpdateCredit edits the attribution line of an existing entry.
	UpdateCredit(ctx context.Context, actx domain.AssetContext, credit string)

	// ToggleLock sets or releases the manual lock on an existing entry.
	ToggleLock(ctx context.Context, actx domain.AssetContext, locked bool)

	// ClearManifest drops all entries, or only those of scope when
	// non-empty.
	ClearManifest(ctx context.Context, scope domain.Scope)

	// Subscribe registers a listener for manifest snapshots; the listener
	// is replayed the current snapshot immediately.
	Subscribe(listener driven.ManifestListener) (unsubscribe func())
}
