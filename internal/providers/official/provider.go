// Package official serves the authoritative card art index.
//
// Official art is curated and owned, so the provider is exempt from the
// license filter and its answers lock the manifest entry against future
// automatic overwrites.
package official

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

// Ensure Provider implements the interfaces.
var (
	_ driven.Provider       = (*Provider)(nil)
	_ driven.OfficialLookup = (*Provider)(nil)
)

// ArtRecord is one curated entry in the official art index.
type ArtRecord struct {
	URL      string         `json:"url"`
	Credit   string         `json:"credit,omitempty"`
	License  string         `json:"license,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Provider answers card-scoped queries from a curated card-id to art-record
// index. It also implements the direct lookup path used by the resolution
// orchestrator's card shortcut and the reconciliation job.
type Provider struct {
	mu    sync.RWMutex
	index map[string]ArtRecord
}

// New creates an official provider over an in-memory index.
func New(index map[string]ArtRecord) *Provider {
	if index == nil {
		index = make(map[string]ArtRecord)
	}
	return &Provider{index: index}
}

// NewFromFile loads the index from a JSON file mapping card ID to record.
// A missing file yields an empty index, not an error: a fresh install has
// no official art yet.
func NewFromFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading official art index: %w", err)
	}

	var index map[string]ArtRecord
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parsing official art index: %w", err)
	}
	return New(index), nil
}

// ID returns the provider identifier.
func (p *Provider) ID() string {
	return "official"
}

// Priority places official art first in federation.
func (p *Provider) Priority() int {
	return 0
}

// Authoritative official art bypasses the license filter.
func (p *Provider) Authoritative() bool {
	return true
}

// ShouldSkip rejects everything but card contexts.
func (p *Provider) ShouldSkip(actx domain.AssetContext) bool {
	return actx.Scope != domain.ScopeCard || actx.Card == nil
}

// Fetch returns the indexed candidate for the context's card, if any.
func (p *Provider) Fetch(ctx context.Context, _ domain.QueryPlan, actx domain.AssetContext) ([]domain.AssetCandidate, error) {
	if actx.Card == nil {
		return nil, nil
	}
	candidate, err := p.Lookup(ctx, *actx.Card)
	if err != nil || candidate == nil {
		return nil, err
	}
	return []domain.AssetCandidate{*candidate}, nil
}

// Lookup implements driven.OfficialLookup.
func (p *Provider) Lookup(_ context.Context, card domain.Card) (*domain.AssetCandidate, error) {
	p.mu.RLock()
	record, ok := p.index[card.ID]
	p.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	credit := record.Credit
	if credit == "" {
		credit = card.ArtAttribution
	}

	return &domain.AssetCandidate{
		ID:       "official-" + card.ID,
		URL:      record.URL,
		Provider: p.ID(),
		Credit:   credit,
		License:  record.License,
		Tags:     record.Tags,
		Locked:   true,
		Metadata: record.Metadata,
	}, nil
}

// Put adds or replaces an index record. Test and tooling hook.
func (p *Provider) Put(cardID string, record ArtRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index[cardID] = record
}
