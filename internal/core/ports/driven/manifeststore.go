package driven

import (
	"context"

	"github.com/shadowgov/artfetch/internal/core/domain"
)

// ManifestListener receives the full sorted snapshot after every mutation.
type ManifestListener func(entries []domain.ManifestEntry)

// ManifestStore is the durable, subscribable map from resolution key to the
// chosen asset record. It is the system's source of truth.
//
// Invariants every implementation must hold:
//   - exactly one entry per key at any time;
//   - every mutation is a single atomic whole-map replace, so subscribers
//     never observe a half-written entry;
//   - persistence failures are logged and swallowed: the in-memory view
//     stays authoritative for the remainder of the process.
type ManifestStore interface {
	// GetAll returns all entries sorted by recency, newest first.
	GetAll(ctx context.Context) []domain.ManifestEntry

	// Get returns the entry for a key, or nil when absent.
	Get(ctx context.Context, key string) *domain.ManifestEntry

	// Upsert replaces the entry for its key and notifies subscribers.
	Upsert(ctx context.Context, entry domain.ManifestEntry)

	// UpdateCredit patches the credit line and updatedAt of an existing
	// entry. No-op when the key is absent.
	UpdateCredit(ctx context.Context, key, credit string)

	// ToggleLock patches the lock flag and updatedAt of an existing entry.
	// No-op when the key is absent. This is the manual override that can
	// release an otherwise immutable entry.
	ToggleLock(ctx context.Context, key string, locked bool)

	// Clear drops every entry, or only entries of the given scope when
	// scope is non-empty.
	Clear(ctx context.Context, scope domain.Scope)

	// Replace swaps the entire manifest contents in one atomic operation.
	// Used by the reconciliation job so readers never see a half-migrated
	// manifest.
	Replace(ctx context.Context, entries []domain.ManifestEntry)

	// Subscribe registers a listener, immediately replays the current
	// snapshot to it, and returns an unsubscribe func.
	Subscribe(listener ManifestListener) (unsubscribe func())
}
