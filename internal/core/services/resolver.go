package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
	"github.com/shadowgov/artfetch/internal/logger"
)

// Ensure Resolver implements the interface.
var _ driving.ResolverService = (*Resolver)(nil)

// queryCacheTTL bounds how long a federation pool is reused.
const queryCacheTTL = 30 * time.Minute

// FeatureFlags gate automatic resolution per scope. A disabled scope still
// serves existing manifest entries but never runs providers.
type FeatureFlags struct {
	AutofillCard    bool
	AutofillEvent   bool
	AutofillArticle bool
}

// Enabled reports whether automatic resolution runs for a scope.
func (f FeatureFlags) Enabled(scope domain.Scope) bool {
	switch scope {
	case domain.ScopeCard:
		return f.AutofillCard
	case domain.ScopeEvent:
		return f.AutofillEvent
	case domain.ScopeArticle:
		return f.AutofillArticle
	}
	return false
}

// Resolver is the resolution orchestrator. It composes the query builder,
// the ordered provider registry, the license filter, the ranker, the style
// pipeline, the query cache, and the manifest store into the per-request
// state machine.
//
// Concurrency: requests for different keys run fully concurrently. For the
// same key the resolver uses an optimistic re-check rather than a mutex: it
// re-reads the manifest immediately before its final write to defer to a
// concurrently-completed authoritative write. Two concurrent
// non-authoritative resolutions can still race and the later upsert wins,
// which is acceptable for equal-priority answers; authoritative entries are
// protected by the unconditional check at the top of Resolve.
type Resolver struct {
	manifest  driven.ManifestStore
	cache     driven.QueryCache
	styler    driven.Styler
	official  driven.OfficialLookup
	providers []driven.Provider
	flags     FeatureFlags
	style     driven.StyleOptions
}

// NewResolver creates a resolution orchestrator. Providers are copied and
// kept sorted by ascending priority; official may be nil when no
// authoritative lookup exists.
func NewResolver(
	manifest driven.ManifestStore,
	cache driven.QueryCache,
	styler driven.Styler,
	official driven.OfficialLookup,
	providers []driven.Provider,
	flags FeatureFlags,
	style driven.StyleOptions,
) *Resolver {
	ordered := make([]driven.Provider, len(providers))
	copy(ordered, providers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	return &Resolver{
		manifest:  manifest,
		cache:     cache,
		styler:    styler,
		official:  official,
		providers: ordered,
		flags:     flags,
		style:     style,
	}
}

// Resolve implements driving.ResolverService.
func (r *Resolver) Resolve(ctx context.Context, actx domain.AssetContext, opts driving.ResolveOptions) *domain.ResolvedAsset {
	key := actx.Key()
	if key == "" {
		return nil
	}

	existing := r.manifest.Get(ctx, key)

	if !r.flags.Enabled(actx.Scope) {
		if existing != nil {
			return existing.Resolved()
		}
		return nil
	}

	// Locked and official entries are terminal, even under forced refresh.
	if existing != nil && existing.Authoritative() {
		return existing.Resolved()
	}

	if existing != nil && !opts.ForceRefresh {
		return existing.Resolved()
	}

	resolved, err := r.resolveFresh(ctx, key, actx, existing)
	if err != nil {
		logger.Warn("resolve %s: %v", key, err)
		if latest := r.manifest.Get(ctx, key); latest != nil {
			return latest.Resolved()
		}
		return nil
	}
	return resolved
}

// resolveFresh runs the provider path: the card direct lookup first, then
// full federation. existing may be nil.
func (r *Resolver) resolveFresh(ctx context.Context, key string, actx domain.AssetContext, existing *domain.ManifestEntry) (*domain.ResolvedAsset, error) {
	if actx.Scope == domain.ScopeCard && actx.Card != nil && r.official != nil {
		official, err := r.official.Lookup(ctx, *actx.Card)
		if err != nil {
			return nil, err
		}
		if official != nil {
			entry := r.buildEntry(ctx, key, actx, *official, existing, domain.SourceOfficial, true)
			r.manifest.Upsert(ctx, entry)
			return entry.Resolved(), nil
		}
	}

	plan := domain.BuildQuery(actx)
	pool := r.federate(ctx, plan, actx)

	if len(pool) == 0 {
		if actx.FallbackURL == "" {
			if existing != nil {
				return existing.Resolved(), nil
			}
			return nil, nil
		}

		entry := domain.ManifestEntry{
			Key:       key,
			Scope:     actx.Scope,
			URL:       actx.FallbackURL,
			StyledURL: actx.FallbackURL,
			Provider:  "fallback",
			Locked:    false,
			Tags:      actx.Tags,
			Metadata:  map[string]any{"query": plan},
			UpdatedAt: time.Now(),
			Source:    domain.SourceFallback,
		}

		// An authoritative write may have landed while providers ran.
		if latest := r.manifest.Get(ctx, key); latest != nil && latest.Authoritative() {
			return latest.Resolved(), nil
		}

		r.manifest.Upsert(ctx, entry)
		return entry.Resolved(), nil
	}

	// Copy the metadata before stamping the plan so the cached pool entry
	// and the manifest entry never share a map.
	best := pool[0]
	stamped := make(map[string]any, len(best.Metadata)+1)
	for k, v := range best.Metadata {
		stamped[k] = v
	}
	stamped["query"] = plan
	best.Metadata = stamped

	entry := r.buildEntry(ctx, key, actx, best, existing, domain.SourceDownload, best.Locked)

	// Optimistic race guard: prefer a concurrently-written authoritative
	// entry over this result.
	if latest := r.manifest.Get(ctx, key); latest != nil && latest.Authoritative() {
		return latest.Resolved(), nil
	}

	r.manifest.Upsert(ctx, entry)
	return entry.Resolved(), nil
}

// federate runs the ordered provider pass with license filtering, ranking,
// and the query cache. It returns the ranked candidate pool, best first.
func (r *Resolver) federate(ctx context.Context, plan domain.QueryPlan, actx domain.AssetContext) []domain.AssetCandidate {
	cacheKey := planHash(plan)
	if pool, ok := r.cache.Get(ctx, cacheKey); ok {
		logger.Debug("query cache hit for %s", cacheKey)
		return pool
	}

	rctx := domain.RankingContext{
		Scope:             actx.Scope,
		DesiredTags:       plan.IncludeTags,
		LicensePreference: plan.LicensePreference,
	}

	var pool []domain.AssetCandidate
	for _, provider := range r.providers {
		if provider.ShouldSkip(actx) {
			continue
		}

		candidates, err := provider.Fetch(ctx, plan, actx)
		if err != nil {
			logger.Warn("provider %s unavailable: %v", provider.ID(), err)
			continue
		}

		licensed := r.filterLicensed(candidates, provider)
		if len(licensed) == 0 {
			continue
		}

		ranked := domain.RankCandidates(licensed, rctx)
		pool = append(pool, ranked...)

		// A locked candidate is definitive; lower-priority providers are
		// never consulted.
		if hasLocked(ranked) {
			break
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Confidence > pool[j].Confidence
	})

	r.cache.Set(ctx, cacheKey, pool, queryCacheTTL)
	return pool
}

// filterLicensed applies the compliance gate to a provider's output.
// Authoritative providers bypass it; everyone else fails closed on a
// missing or disallowed license.
func (r *Resolver) filterLicensed(candidates []domain.AssetCandidate, provider driven.Provider) []domain.AssetCandidate {
	if provider.Authoritative() {
		return candidates
	}

	kept := candidates[:0:0]
	for _, candidate := range candidates {
		if candidate.License == "" {
			logger.Warn("dropping %s candidate %s: no license metadata", provider.ID(), candidate.ID)
			continue
		}
		if !domain.LicenseAllowed(candidate.License) {
			logger.Warn("dropping %s candidate %s: unsupported license %q", provider.ID(), candidate.ID, candidate.License)
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

// buildEntry assembles a manifest entry from a chosen candidate, merging
// credit with any prior entry and tolerating style pipeline failure.
func (r *Resolver) buildEntry(
	ctx context.Context,
	key string,
	actx domain.AssetContext,
	candidate domain.AssetCandidate,
	existing *domain.ManifestEntry,
	source domain.Source,
	locked bool,
) domain.ManifestEntry {
	styled := r.styleTolerant(ctx, candidate.URL)

	var priorCredit string
	if existing != nil {
		priorCredit = existing.Credit
	}

	tags := candidate.Tags
	if len(tags) == 0 {
		tags = actx.Tags
	}

	return domain.ManifestEntry{
		Key:          key,
		Scope:        actx.Scope,
		URL:          candidate.URL,
		StyledURL:    styled,
		Provider:     candidate.Provider,
		Credit:       mergeCredit(priorCredit, candidate.Credit),
		License:      candidate.License,
		Locked:       locked,
		Tags:         tags,
		ThumbnailURL: candidate.ThumbnailURL,
		Metadata:     candidate.Metadata,
		UpdatedAt:    time.Now(),
		Source:       source,
	}
}

// styleTolerant runs the style pipeline, degrading to the unstyled URL on
// any failure.
func (r *Resolver) styleTolerant(ctx context.Context, url string) string {
	styled, err := r.styler.Style(ctx, url, r.style)
	if err != nil {
		logger.Warn("style pipeline failed, using unstyled url: %v", err)
		return url
	}
	return styled
}

// Entry implements driving.ResolverService.
func (r *Resolver) Entry(ctx context.Context, actx domain.AssetContext) *domain.ManifestEntry {
	key := actx.Key()
	if key == "" {
		return nil
	}
	return r.manifest.Get(ctx, key)
}

// UpdateCredit implements driving.ResolverService.
func (r *Resolver) UpdateCredit(ctx context.Context, actx domain.AssetContext, credit string) {
	key := actx.Key()
	if key == "" {
		return
	}
	r.manifest.UpdateCredit(ctx, key, credit)
}

// ToggleLock implements driving.ResolverService.
func (r *Resolver) ToggleLock(ctx context.Context, actx domain.AssetContext, locked bool) {
	key := actx.Key()
	if key == "" {
		return
	}
	r.manifest.ToggleLock(ctx, key, locked)
}

// ClearManifest implements driving.ResolverService.
func (r *Resolver) ClearManifest(ctx context.Context, scope domain.Scope) {
	r.manifest.Clear(ctx, scope)
}

// Subscribe implements driving.ResolverService.
func (r *Resolver) Subscribe(listener driven.ManifestListener) func() {
	return r.manifest.Subscribe(listener)
}

// planHash derives the query cache key from the plan's canonical JSON.
func planHash(plan domain.QueryPlan) string {
	data, err := json.Marshal(plan)
	if err != nil {
		// QueryPlan is marshal-safe; this path exists only to satisfy
		// the json contract.
		return "plan:unhashable"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hasLocked(candidates []domain.AssetCandidate) bool {
	for _, c := range candidates {
		if c.Locked {
			return true
		}
	}
	return false
}
