package driving

import (
	"context"
	"time"
)

// ReconcileOptions configure the offline relock job.
type ReconcileOptions struct {
	// CleanupDownloads drops card entries with source "download" that
	// could not be upgraded to official art. Off by default so fallback
	// art is not lost.
	CleanupDownloads bool

	// KeepQueryCache skips flushing the query cache after the swap.
	// The cache is flushed by default because stale pre-reconciliation
	// pools are cheap to rebuild and wrong to reuse.
	KeepQueryCache bool
}

// ReconcileError records a single card that failed during the batch.
type ReconcileError struct {
	CardID  string `json:"cardId"`
	Message string `json:"message"`
}

// ReconcileReport summarizes a reconciliation run.
type ReconcileReport struct {
	// Processed is the number of catalogue cards visited.
	Processed int `json:"processed"`

	// Relocked is the number of entries upgraded to official art.
	Relocked int `json:"relocked"`

	// Skipped counts cards with no official art or a failed lookup.
	Skipped int `json:"skipped"`

	// Preserved counts prior card entries carried through unchanged.
	Preserved int `json:"preserved"`

	// DownloadsRemoved counts download-sourced entries dropped or
	// superseded.
	DownloadsRemoved int `json:"downloadsRemoved"`

	// CacheCleared reports whether the query cache was flushed.
	CacheCleared bool `json:"cacheCleared"`

	// TotalEntries is the manifest size after the swap.
	TotalEntries int `json:"totalEntries"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`

	// Errors lists per-card failures. A failure degrades that card to
	// skipped and never aborts the batch.
	Errors []ReconcileError `json:"errors,omitempty"`
}

// ReconcilerService is the offline batch job that upgrades the manifest
// toward authoritative sources. It is idempotent: re-running it over an
// already-reconciled manifest changes nothing but timestamps.
type ReconcilerService interface {
	// Reconcile walks the full card catalogue, stages replacement entries,
	// and commits them in exactly one atomic manifest swap.
	Reconcile(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error)
}
