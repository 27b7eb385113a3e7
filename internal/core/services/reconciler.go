package services

import (
	"context"
	"time"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
	"github.com/shadowgov/artfetch/internal/logger"
)

// Ensure Reconciler implements the interface.
var _ driving.ReconcilerService = (*Reconciler)(nil)

// Reconciler is the offline relock job. It walks the full card catalogue,
// upgrades card entries to official art where possible, carries everything
// else through unchanged, and commits the staged manifest in exactly one
// atomic swap so readers never observe a half-migrated state.
type Reconciler struct {
	manifest driven.ManifestStore
	cache    driven.QueryCache
	styler   driven.Styler
	official driven.OfficialLookup
	catalog  driven.CardCatalog
	style    driven.StyleOptions
}

// NewReconciler creates the reconciliation job.
func NewReconciler(
	manifest driven.ManifestStore,
	cache driven.QueryCache,
	styler driven.Styler,
	official driven.OfficialLookup,
	catalog driven.CardCatalog,
	style driven.StyleOptions,
) *Reconciler {
	return &Reconciler{
		manifest: manifest,
		cache:    cache,
		styler:   styler,
		official: official,
		catalog:  catalog,
		style:    style,
	}
}

// Reconcile implements driving.ReconcilerService.
func (r *Reconciler) Reconcile(ctx context.Context, opts driving.ReconcileOptions) (*driving.ReconcileReport, error) {
	start := time.Now()

	cards, err := r.catalog.Cards(ctx)
	if err != nil {
		return nil, err
	}

	// Snapshot and partition: non-card entries are untouched and staged
	// as-is; card entries are candidates for upgrade.
	snapshot := r.manifest.GetAll(ctx)
	staged := make(map[string]domain.ManifestEntry)
	priorCards := make(map[string]domain.ManifestEntry)
	for _, entry := range snapshot {
		if entry.Scope == domain.ScopeCard {
			priorCards[entry.Key] = entry
			continue
		}
		staged[entry.Key] = entry
	}

	report := &driving.ReconcileReport{}
	relocked := make(map[string]struct{})

	for _, card := range cards {
		report.Processed++
		key := string(domain.ScopeCard) + ":" + card.ID

		official, err := r.official.Lookup(ctx, card)
		if err != nil {
			report.Skipped++
			report.Errors = append(report.Errors, driving.ReconcileError{
				CardID:  card.ID,
				Message: err.Error(),
			})
			continue
		}
		if official == nil {
			report.Skipped++
			continue
		}

		styled, err := r.styler.Style(ctx, official.URL, r.style)
		if err != nil {
			logger.Warn("relock %s: style pipeline failed, using unstyled url: %v", card.ID, err)
			styled = official.URL
		}

		prior, hadPrior := priorCards[key]

		entry := domain.ManifestEntry{
			Key:          key,
			Scope:        domain.ScopeCard,
			URL:          official.URL,
			StyledURL:    styled,
			Provider:     official.Provider,
			Credit:       mergeCredit(prior.Credit, official.Credit),
			License:      official.License,
			Locked:       true,
			Tags:         mergeTags(official.Tags, prior.Tags, card.ArtTags),
			ThumbnailURL: prior.ThumbnailURL,
			Metadata:     mergeMetadata(prior.Metadata, official.Metadata),
			UpdatedAt:    time.Now(),
			Source:       domain.SourceOfficial,
		}
		if entry.License == "" {
			entry.License = prior.License
		}

		staged[key] = entry
		relocked[key] = struct{}{}
		report.Relocked++

		if hadPrior && prior.Source == domain.SourceDownload {
			report.DownloadsRemoved++
		}
	}

	// Prior card entries that were not upgraded stay as-is, unless the
	// cleanup option drops stale downloads outright.
	for key, entry := range priorCards {
		if _, ok := relocked[key]; ok {
			continue
		}
		if opts.CleanupDownloads && entry.Source == domain.SourceDownload {
			report.DownloadsRemoved++
			continue
		}
		staged[key] = entry
		report.Preserved++
	}

	entries := make([]domain.ManifestEntry, 0, len(staged))
	for _, entry := range staged {
		entries = append(entries, entry)
	}
	r.manifest.Replace(ctx, entries)

	if !opts.KeepQueryCache {
		r.cache.Clear(ctx)
		report.CacheCleared = true
	}

	report.TotalEntries = len(entries)
	report.Duration = time.Since(start)

	logger.Info("relock complete: processed=%d relocked=%d skipped=%d preserved=%d removed=%d in %s",
		report.Processed, report.Relocked, report.Skipped, report.Preserved,
		report.DownloadsRemoved, report.Duration)

	return report, nil
}
