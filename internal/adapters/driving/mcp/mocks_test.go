package mcp

import (
	"context"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
	"github.com/shadowgov/artfetch/internal/core/ports/driving"
)

// mockResolver implements driving.ResolverService for tests.
type mockResolver struct {
	resolved *domain.ResolvedAsset
	lastCtx  domain.AssetContext
	lastOpts driving.ResolveOptions
}

var _ driving.ResolverService = (*mockResolver)(nil)

func (m *mockResolver) Resolve(_ context.Context, actx domain.AssetContext, opts driving.ResolveOptions) *domain.ResolvedAsset {
	m.lastCtx = actx
	m.lastOpts = opts
	return m.resolved
}

func (m *mockResolver) Entry(context.Context, domain.AssetContext) *domain.ManifestEntry { return nil }

func (m *mockResolver) UpdateCredit(context.Context, domain.AssetContext, string) {}

func (m *mockResolver) ToggleLock(context.Context, domain.AssetContext, bool) {}

func (m *mockResolver) ClearManifest(context.Context, domain.Scope) {}

func (m *mockResolver) Subscribe(driven.ManifestListener) func() { return func() {} }

// mockReconciler implements driving.ReconcilerService for tests.
type mockReconciler struct {
	report   *driving.ReconcileReport
	err      error
	lastOpts driving.ReconcileOptions
}

var _ driving.ReconcilerService = (*mockReconciler)(nil)

func (m *mockReconciler) Reconcile(_ context.Context, opts driving.ReconcileOptions) (*driving.ReconcileReport, error) {
	m.lastOpts = opts
	return m.report, m.err
}
