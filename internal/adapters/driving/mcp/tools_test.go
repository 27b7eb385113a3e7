package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgov/artfetch/internal/adapters/driven/storage/memory"
	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

func TestNewServer_RequiresResolver(t *testing.T) {
	_, err := NewServer(&Ports{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResolverService)
}

func TestNewServer_MinimalPorts(t *testing.T) {
	server, err := NewServer(&Ports{Resolver: &mockResolver{}})
	require.NoError(t, err)
	require.NotNil(t, server)
}

func TestHandleResolve(t *testing.T) {
	resolver := &mockResolver{resolved: &domain.ResolvedAsset{
		Key:       "card:cryptid-mothman",
		URL:       "https://cdn.local/mothman.png",
		StyledURL: "styled:mothman",
		Provider:  "official",
		Source:    domain.SourceOfficial,
		Locked:    true,
	}}
	server, err := NewServer(&Ports{Resolver: resolver})
	require.NoError(t, err)

	_, out, err := server.handleResolve(context.Background(), nil, ResolveInput{
		Scope:        "card",
		ID:           "cryptid-mothman",
		Name:         "Mothman",
		Faction:      "cryptid",
		ForceRefresh: true,
	})
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Equal(t, "card:cryptid-mothman", out.Asset.Key)

	assert.Equal(t, domain.ScopeCard, resolver.lastCtx.Scope)
	require.NotNil(t, resolver.lastCtx.Card)
	assert.Equal(t, "Mothman", resolver.lastCtx.Card.Name)
	assert.True(t, resolver.lastOpts.ForceRefresh)
}

func TestHandleResolve_NameDefaultsToID(t *testing.T) {
	resolver := &mockResolver{}
	server, err := NewServer(&Ports{Resolver: resolver})
	require.NoError(t, err)

	_, out, err := server.handleResolve(context.Background(), nil, ResolveInput{Scope: "card", ID: "c-1"})
	require.NoError(t, err)
	assert.False(t, out.Resolved)
	assert.Equal(t, "c-1", resolver.lastCtx.Card.Name)
}

func TestHandleResolve_InvalidScope(t *testing.T) {
	server, err := NewServer(&Ports{Resolver: &mockResolver{}})
	require.NoError(t, err)

	_, _, err = server.handleResolve(context.Background(), nil, ResolveInput{Scope: "planet", ID: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHandleEntryAndList(t *testing.T) {
	manifest := memory.NewManifestStore()
	ctx := context.Background()
	manifest.Upsert(ctx, domain.ManifestEntry{Key: "card:c-1", Scope: domain.ScopeCard, URL: "https://cdn.local/a.png"})
	manifest.Upsert(ctx, domain.ManifestEntry{Key: "event:e-1", Scope: domain.ScopeEvent, URL: "https://cdn.local/b.png"})

	server, err := NewServer(&Ports{Resolver: &mockResolver{}, Manifest: manifest})
	require.NoError(t, err)

	_, entryOut, err := server.handleEntry(ctx, nil, EntryInput{Key: "card:c-1"})
	require.NoError(t, err)
	assert.True(t, entryOut.Found)
	assert.Equal(t, "https://cdn.local/a.png", entryOut.Entry.URL)

	_, entryOut, err = server.handleEntry(ctx, nil, EntryInput{Key: "card:absent"})
	require.NoError(t, err)
	assert.False(t, entryOut.Found)

	_, listOut, err := server.handleList(ctx, nil, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, listOut.Count)

	_, listOut, err = server.handleList(ctx, nil, ListInput{Scope: "event"})
	require.NoError(t, err)
	assert.Equal(t, 1, listOut.Count)

	_, _, err = server.handleList(ctx, nil, ListInput{Scope: "bogus"})
	require.Error(t, err)
}

func TestHandleRelock(t *testing.T) {
	reconciler := &mockReconciler{report: &driving.ReconcileReport{Processed: 3, Relocked: 2}}
	server, err := NewServer(&Ports{Resolver: &mockResolver{}, Reconciler: reconciler})
	require.NoError(t, err)

	_, out, err := server.handleRelock(context.Background(), nil, RelockInput{CleanupDownloads: true})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Report.Relocked)
	assert.True(t, reconciler.lastOpts.CleanupDownloads)
}

func TestHandleRelock_Error(t *testing.T) {
	reconciler := &mockReconciler{err: errors.New("catalogue unavailable")}
	server, err := NewServer(&Ports{Resolver: &mockResolver{}, Reconciler: reconciler})
	require.NoError(t, err)

	_, _, err = server.handleRelock(context.Background(), nil, RelockInput{})
	require.Error(t, err)
}
