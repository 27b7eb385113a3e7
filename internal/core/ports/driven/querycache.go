package driven

import (
	"context"
	"time"

	"github.com/shadowgov/artfetch/internal/core/domain"
)

// QueryCache is a TTL cache of federation results keyed by query-plan
// content hash. It is a pure performance optimization: a cold cache only
// costs provider calls, never correctness.
type QueryCache interface {
	// Get returns the cached candidate pool for a plan hash, or nil and
	// false when absent or expired.
	Get(ctx context.Context, key string) ([]domain.AssetCandidate, bool)

	// Set stores a candidate pool under a plan hash for ttl.
	Set(ctx context.Context, key string, pool []domain.AssetCandidate, ttl time.Duration)

	// Clear drops every cached pool. The reconciliation job flushes the
	// cache so normal resolution does not reuse pre-reconciliation answers.
	Clear(ctx context.Context)
}
