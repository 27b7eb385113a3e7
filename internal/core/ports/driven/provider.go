package driven

import (
	"context"

	"github.com/shadowgov/artfetch/internal/core/domain"
)

// Provider attempts to satisfy an asset query from one source of images.
// Providers are registered in an explicit ordered registry at startup and
// tried in ascending Priority order.
//
// Fetch must never panic past its own boundary; the orchestrator treats a
// returned error as zero candidates and moves on.
type Provider interface {
	// ID returns the provider identifier used in manifest entries and
	// ranking tiers.
	ID() string

	// Priority orders federation. Lower values run first.
	Priority() int

	// Authoritative providers bypass the license filter: their candidates
	// are curated or owned, not third-party search results.
	Authoritative() bool

	// ShouldSkip is a fast reject for contexts the provider cannot serve,
	// checked before Fetch.
	ShouldSkip(actx domain.AssetContext) bool

	// Fetch returns zero or more candidates for the query.
	Fetch(ctx context.Context, plan domain.QueryPlan, actx domain.AssetContext) ([]domain.AssetCandidate, error)
}

// OfficialLookup is the direct authoritative path for card art, used by the
// resolution orchestrator's card shortcut and by the reconciliation job.
// It bypasses query federation entirely.
type OfficialLookup interface {
	// Lookup returns the official candidate for a card, or nil when the
	// catalogue has no official art for it.
	Lookup(ctx context.Context, card domain.Card) (*domain.AssetCandidate, error)
}

// CardCatalog exposes the full card catalogue to the reconciliation job.
// The catalogue is owned by the game data model and read-only here.
type CardCatalog interface {
	// Cards returns a snapshot of every card in the catalogue.
	Cards(ctx context.Context) ([]domain.Card, error)
}
