package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgov/artfetch/internal/adapters/driven/storage/memory"
	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

// --- Mock implementations ---

// mockProvider implements driven.Provider for testing.
type mockProvider struct {
	id            string
	priority      int
	authoritative bool
	skip          bool
	candidates    []domain.AssetCandidate
	fetchErr      error
	fetchCount    int

	// onFetch, when set, runs before returning candidates. Used to
	// simulate concurrent manifest writes during federation.
	onFetch func()
}

func (m *mockProvider) ID() string          { return m.id }
func (m *mockProvider) Priority() int       { return m.priority }
func (m *mockProvider) Authoritative() bool { return m.authoritative }

func (m *mockProvider) ShouldSkip(_ domain.AssetContext) bool { return m.skip }

func (m *mockProvider) Fetch(_ context.Context, _ domain.QueryPlan, _ domain.AssetContext) ([]domain.AssetCandidate, error) {
	m.fetchCount++
	if m.onFetch != nil {
		m.onFetch()
	}
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.candidates, nil
}

// mockStyler implements driven.Styler for testing.
type mockStyler struct {
	err   error
	calls int
}

func (m *mockStyler) Style(_ context.Context, url string, _ driven.StyleOptions) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return "styled:" + url, nil
}

// mockOfficial implements driven.OfficialLookup for testing.
type mockOfficial struct {
	art    map[string]*domain.AssetCandidate
	err    error
	lookup int
}

func (m *mockOfficial) Lookup(_ context.Context, card domain.Card) (*domain.AssetCandidate, error) {
	m.lookup++
	if m.err != nil {
		return nil, m.err
	}
	return m.art[card.ID], nil
}

func allFlags() FeatureFlags {
	return FeatureFlags{AutofillCard: true, AutofillEvent: true, AutofillArticle: true}
}

func newTestResolver(official driven.OfficialLookup, providers ...driven.Provider) (*Resolver, *memory.ManifestStore, *memory.QueryCache) {
	manifest := memory.NewManifestStore()
	cache := memory.NewQueryCache()
	r := NewResolver(manifest, cache, &mockStyler{}, official, providers, allFlags(), driven.StyleOptions{})
	return r, manifest, cache
}

func cardContext(id, name string) domain.AssetContext {
	return domain.AssetContext{
		Scope: domain.ScopeCard,
		Card:  &domain.Card{ID: id, Name: name},
	}
}

func articleContext(id, title string) domain.AssetContext {
	return domain.AssetContext{
		Scope:   domain.ScopeArticle,
		Article: &domain.Article{ID: id, Title: title},
	}
}

// --- Tests ---

func TestResolve_NoKey(t *testing.T) {
	r, _, _ := newTestResolver(nil)
	assert.Nil(t, r.Resolve(context.Background(), domain.AssetContext{Scope: domain.ScopeCard}, driving.ResolveOptions{}))
}

// TestResolve_OfficialDirect: empty manifest, official art for the card
// exists, so the direct lookup wins without federation.
func TestResolve_OfficialDirect(t *testing.T) {
	official := &mockOfficial{art: map[string]*domain.AssetCandidate{
		"x": {ID: "official-x", URL: "https://art.example/x.png", Provider: "official", Credit: "Studio"},
	}}
	search := &mockProvider{id: "wikimedia", priority: 10}
	r, manifest, _ := newTestResolver(official, search)

	got := r.Resolve(context.Background(), cardContext("x", "Card X"), driving.ResolveOptions{})
	require.NotNil(t, got)

	assert.Equal(t, domain.SourceOfficial, got.Source)
	assert.True(t, got.Locked)
	assert.Equal(t, "https://art.example/x.png", got.URL)
	assert.Equal(t, "styled:https://art.example/x.png", got.StyledURL)
	assert.Equal(t, 0, search.fetchCount, "direct lookup bypasses federation")

	entry := manifest.Get(context.Background(), "card:x")
	require.NotNil(t, entry)
	assert.True(t, entry.Authoritative())
}

// TestResolve_Idempotent covers the idempotence property: the second call
// returns the persisted entry and triggers zero provider calls.
func TestResolve_Idempotent(t *testing.T) {
	provider := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia", License: "CC0"},
	}}
	r, _, _ := newTestResolver(nil, provider)
	ctx := context.Background()
	actx := articleContext("a1", "Strange Lights")

	first := r.Resolve(ctx, actx, driving.ResolveOptions{})
	require.NotNil(t, first)
	assert.Equal(t, 1, provider.fetchCount)

	second := r.Resolve(ctx, actx, driving.ResolveOptions{})
	require.NotNil(t, second)
	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, 1, provider.fetchCount, "manifest hit makes no provider calls")
}

// TestResolve_AuthoritativeStickiness: a locked entry is returned unchanged
// even under forced refresh.
func TestResolve_AuthoritativeStickiness(t *testing.T) {
	provider := &mockProvider{id: "wikimedia", priority: 10}
	r, manifest, _ := newTestResolver(nil, provider)
	ctx := context.Background()

	locked := domain.ManifestEntry{
		Key: "article:a1", Scope: domain.ScopeArticle,
		URL: "https://img.example/locked.png", StyledURL: "https://img.example/locked.png",
		Provider: "wikimedia", Locked: true,
		UpdatedAt: time.Now(), Source: domain.SourceDownload,
	}
	manifest.Upsert(ctx, locked)

	got := r.Resolve(ctx, articleContext("a1", "Whatever"), driving.ResolveOptions{ForceRefresh: true})
	require.NotNil(t, got)
	assert.Equal(t, locked.URL, got.URL)
	assert.Equal(t, 0, provider.fetchCount, "locked entry short-circuits federation")
}

// TestResolve_LicenseFilter: the unlicensed candidate is dropped, the
// public-domain one survives.
func TestResolve_LicenseFilter(t *testing.T) {
	provider := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{ID: "licensed", URL: "https://img.example/pd.png", Provider: "wikimedia", License: "Public Domain"},
		{ID: "unlicensed", URL: "https://img.example/no.png", Provider: "wikimedia"},
	}}
	r, _, _ := newTestResolver(nil, provider)

	got := r.Resolve(context.Background(), articleContext("a1", "Mothman"), driving.ResolveOptions{})
	require.NotNil(t, got)
	assert.Equal(t, "https://img.example/pd.png", got.URL)
	assert.Equal(t, domain.SourceDownload, got.Source)
	assert.False(t, got.Locked)
}

// TestFilterLicensed_AllowList walks representative license strings against
// authoritative and non-authoritative providers.
func TestFilterLicensed_AllowList(t *testing.T) {
	candidates := []domain.AssetCandidate{
		{ID: "1", License: "Public Domain"},
		{ID: "2", License: "CC0"},
		{ID: "3", License: "Creative Commons Attribution-ShareAlike 4.0 International"},
		{ID: "4", License: "All Rights Reserved"},
		{ID: "5"},
	}
	r, _, _ := newTestResolver(nil)

	kept := r.filterLicensed(candidates, &mockProvider{id: "wikimedia"})
	require.Len(t, kept, 3)
	assert.Equal(t, "1", kept[0].ID)
	assert.Equal(t, "2", kept[1].ID)
	assert.Equal(t, "3", kept[2].ID)

	keptAuth := r.filterLicensed(candidates, &mockProvider{id: "pack", authoritative: true})
	assert.Len(t, keptAuth, 5, "authoritative providers bypass the filter")
}

// TestResolve_PriorityShortCircuit: a locked candidate from the pack
// provider stops federation before the search provider runs.
func TestResolve_PriorityShortCircuit(t *testing.T) {
	pack := &mockProvider{id: "pack", priority: 1, authoritative: true, candidates: []domain.AssetCandidate{
		{ID: "pack-1", URL: "https://pack.example/1.png", Provider: "pack", Locked: true},
	}}
	search := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia", License: "CC0"},
	}}
	r, _, _ := newTestResolver(nil, search, pack) // registration order is irrelevant

	got := r.Resolve(context.Background(), articleContext("a1", "Chupacabra"), driving.ResolveOptions{})
	require.NotNil(t, got)
	assert.Equal(t, "https://pack.example/1.png", got.URL)
	assert.True(t, got.Locked)
	assert.Equal(t, 1, pack.fetchCount)
	assert.Equal(t, 0, search.fetchCount, "lower-priority provider never invoked")
}

// TestResolve_FailureContainment: a failing provider and a failing styler
// still produce a valid, non-nil result.
func TestResolve_FailureContainment(t *testing.T) {
	failing := &mockProvider{id: "pack", priority: 1, authoritative: true, fetchErr: errors.New("pack exploded")}
	working := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia", License: "CC-BY 4.0"},
	}}

	manifest := memory.NewManifestStore()
	cache := memory.NewQueryCache()
	styler := &mockStyler{err: errors.New("decode failed")}
	r := NewResolver(manifest, cache, styler, nil, []driven.Provider{failing, working}, allFlags(), driven.StyleOptions{})

	got := r.Resolve(context.Background(), articleContext("a1", "Area 51"), driving.ResolveOptions{})
	require.NotNil(t, got)
	assert.Equal(t, "https://img.example/1.png", got.URL)
	assert.Equal(t, got.URL, got.StyledURL, "style failure degrades to unstyled url")
}

// TestResolve_FallbackURL: no candidates anywhere, fallback provided.
func TestResolve_FallbackURL(t *testing.T) {
	empty := &mockProvider{id: "wikimedia", priority: 10}
	r, manifest, _ := newTestResolver(nil, empty)
	ctx := context.Background()

	actx := articleContext("a1", "Nothing Matches")
	actx.FallbackURL = "https://cdn.example/placeholder.png"

	got := r.Resolve(ctx, actx, driving.ResolveOptions{})
	require.NotNil(t, got)
	assert.Equal(t, domain.SourceFallback, got.Source)
	assert.Equal(t, "fallback", got.Provider)
	assert.False(t, got.Locked)

	entry := manifest.Get(ctx, "article:a1")
	require.NotNil(t, entry)
	assert.Equal(t, domain.SourceFallback, entry.Source)
}

// TestResolve_NoCandidatesNoFallback: a legitimate none outcome.
func TestResolve_NoCandidatesNoFallback(t *testing.T) {
	empty := &mockProvider{id: "wikimedia", priority: 10}
	r, _, _ := newTestResolver(nil, empty)

	got := r.Resolve(context.Background(), articleContext("a1", "Void"), driving.ResolveOptions{})
	assert.Nil(t, got)
}

// TestResolve_FeatureFlagOff: disabled scope serves the existing entry
// verbatim and never calls providers.
func TestResolve_FeatureFlagOff(t *testing.T) {
	provider := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia", License: "CC0"},
	}}
	manifest := memory.NewManifestStore()
	cache := memory.NewQueryCache()
	flags := FeatureFlags{AutofillCard: false, AutofillEvent: true, AutofillArticle: true}
	r := NewResolver(manifest, cache, &mockStyler{}, nil, []driven.Provider{provider}, flags, driven.StyleOptions{})
	ctx := context.Background()

	assert.Nil(t, r.Resolve(ctx, cardContext("c1", "Card"), driving.ResolveOptions{}))
	assert.Equal(t, 0, provider.fetchCount)

	existing := domain.ManifestEntry{
		Key: "card:c1", Scope: domain.ScopeCard,
		URL: "u", StyledURL: "u", Provider: "pack",
		UpdatedAt: time.Now(), Source: domain.SourceDownload,
	}
	manifest.Upsert(ctx, existing)

	got := r.Resolve(ctx, cardContext("c1", "Card"), driving.ResolveOptions{})
	require.NotNil(t, got)
	assert.Equal(t, "u", got.URL)
	assert.Equal(t, 0, provider.fetchCount)
}

// TestResolve_RaceRecheck: an authoritative entry written while federation
// runs wins over the federation result.
func TestResolve_RaceRecheck(t *testing.T) {
	manifest := memory.NewManifestStore()
	cache := memory.NewQueryCache()
	ctx := context.Background()

	authoritative := domain.ManifestEntry{
		Key: "article:a1", Scope: domain.ScopeArticle,
		URL: "https://art.example/official.png", StyledURL: "https://art.example/official.png",
		Provider: "official", Locked: true,
		UpdatedAt: time.Now(), Source: domain.SourceOfficial,
	}

	racer := &mockProvider{
		id: "wikimedia", priority: 10,
		candidates: []domain.AssetCandidate{
			{ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia", License: "CC0"},
		},
		onFetch: func() { manifest.Upsert(ctx, authoritative) },
	}

	r := NewResolver(manifest, cache, &mockStyler{}, nil, []driven.Provider{racer}, allFlags(), driven.StyleOptions{})

	got := r.Resolve(ctx, articleContext("a1", "Raced"), driving.ResolveOptions{})
	require.NotNil(t, got)
	assert.Equal(t, authoritative.URL, got.URL, "concurrent authoritative write is preferred")
	assert.True(t, got.Locked)
}

// TestResolve_QueryCacheReuse: a forced refresh within the TTL reuses the
// cached federation pool instead of re-querying providers.
func TestResolve_QueryCacheReuse(t *testing.T) {
	provider := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia", License: "CC0"},
	}}
	r, _, _ := newTestResolver(nil, provider)
	ctx := context.Background()
	actx := articleContext("a1", "Cached")

	first := r.Resolve(ctx, actx, driving.ResolveOptions{})
	require.NotNil(t, first)
	second := r.Resolve(ctx, actx, driving.ResolveOptions{ForceRefresh: true})
	require.NotNil(t, second)

	assert.Equal(t, 1, provider.fetchCount, "second federation served from query cache")
}

// TestResolve_OfficialLookupError degrades to the prior entry.
func TestResolve_OfficialLookupError(t *testing.T) {
	official := &mockOfficial{err: errors.New("catalogue offline")}
	r, manifest, _ := newTestResolver(official)
	ctx := context.Background()

	prior := domain.ManifestEntry{
		Key: "card:x", Scope: domain.ScopeCard,
		URL: "https://img.example/prior.png", StyledURL: "https://img.example/prior.png",
		Provider: "wikimedia", UpdatedAt: time.Now(), Source: domain.SourceDownload,
	}
	manifest.Upsert(ctx, prior)

	got := r.Resolve(ctx, cardContext("x", "Card X"), driving.ResolveOptions{ForceRefresh: true})
	require.NotNil(t, got)
	assert.Equal(t, prior.URL, got.URL, "stale-but-valid beats a crash")
}

// TestResolve_CreditMerged: a prior credit and a new official credit are
// joined, deduplicated.
func TestResolve_CreditMerged(t *testing.T) {
	official := &mockOfficial{art: map[string]*domain.AssetCandidate{
		"x": {ID: "o", URL: "https://art.example/x.png", Provider: "official", Credit: "Studio"},
	}}
	r, manifest, _ := newTestResolver(official)
	ctx := context.Background()

	manifest.Upsert(ctx, domain.ManifestEntry{
		Key: "card:x", Scope: domain.ScopeCard,
		URL: "u", StyledURL: "u", Provider: "wikimedia", Credit: "Jane",
		UpdatedAt: time.Now(), Source: domain.SourceDownload,
	})

	got := r.Resolve(ctx, cardContext("x", "Card X"), driving.ResolveOptions{ForceRefresh: true})
	require.NotNil(t, got)
	assert.Equal(t, "Jane; Studio", got.Credit)
}

func TestMergeCredit(t *testing.T) {
	assert.Equal(t, "", mergeCredit("", ""))
	assert.Equal(t, "A", mergeCredit("A", ""))
	assert.Equal(t, "B", mergeCredit("", "B"))
	assert.Equal(t, "Jane", mergeCredit("Jane", "jane"))
	assert.Equal(t, "Jane; Studio", mergeCredit(" Jane ", " Studio "))
}

func TestMergeTags(t *testing.T) {
	tags := mergeTags([]string{"UFO", "desert"}, []string{"ufo", "Night"}, nil)
	assert.Equal(t, []string{"UFO", "desert", "Night"}, tags)
}

// TestResolve_CachedPoolKeepsOwnMetadata: stamping the winning candidate's
// query onto the manifest entry must not leak into the cached pool.
func TestResolve_CachedPoolKeepsOwnMetadata(t *testing.T) {
	provider := &mockProvider{id: "wikimedia", priority: 10, candidates: []domain.AssetCandidate{
		{
			ID: "w1", URL: "https://img.example/1.png", Provider: "wikimedia",
			License:  "CC0",
			Metadata: map[string]any{"title": "File:One.png"},
		},
	}}
	r, manifest, cache := newTestResolver(nil, provider)
	ctx := context.Background()

	actx := articleContext("a1", "Area 51")
	require.NotNil(t, r.Resolve(ctx, actx, driving.ResolveOptions{}))

	pool, ok := cache.Get(ctx, planHash(domain.BuildQuery(actx)))
	require.True(t, ok)
	require.Len(t, pool, 1)
	assert.Equal(t, map[string]any{"title": "File:One.png"}, pool[0].Metadata)

	entry := manifest.Get(ctx, "article:a1")
	require.NotNil(t, entry)
	assert.Contains(t, entry.Metadata, "query")

	// The two maps are independent.
	entry.Metadata["title"] = "overwritten"
	cached, _ := cache.Get(ctx, planHash(domain.BuildQuery(actx)))
	assert.Equal(t, "File:One.png", cached[0].Metadata["title"])
}
