// Package wikimedia federates asset queries out to Wikimedia Commons.
//
// Commons is the primary external search tier. Results carry the artist and
// license metadata the downstream license filter needs, so nothing here
// decides what is usable; candidates are returned as-is and filtered later.
package wikimedia

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

var _ driven.Provider = (*Provider)(nil)

const maxResults = 12

// Provider searches Wikimedia Commons for candidate art.
type Provider struct {
	client *Client
}

// New creates a Commons provider with a default client.
func New() *Provider {
	return &Provider{client: NewClient()}
}

// NewWithClient creates a Commons provider over an existing client.
func NewWithClient(client *Client) *Provider {
	return &Provider{client: client}
}

// ID returns the provider identifier.
func (p *Provider) ID() string {
	return "wikimedia"
}

// Priority places Commons in the external search tier.
func (p *Provider) Priority() int {
	return 10
}

// Authoritative external results always go through the license filter.
func (p *Provider) Authoritative() bool {
	return false
}

// ShouldSkip never skips; Commons serves every scope.
func (p *Provider) ShouldSkip(domain.AssetContext) bool {
	return false
}

// Fetch searches Commons with the plan's terms and returns ranked-order
// candidates with license and credit metadata attached.
func (p *Provider) Fetch(ctx context.Context, plan domain.QueryPlan, _ domain.AssetContext) ([]domain.AssetCandidate, error) {
	term := buildSearchTerm(plan)
	if term == "" {
		return nil, nil
	}

	images, err := p.client.SearchImages(ctx, term, maxResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	// The pages map loses search order; restore it from the index field.
	sort.Slice(images, func(i, j int) bool { return images[i].Index < images[j].Index })

	candidates := make([]domain.AssetCandidate, 0, len(images))
	for _, img := range images {
		candidates = append(candidates, domain.AssetCandidate{
			ID:           "wikimedia-" + img.Title,
			URL:          img.URL,
			Provider:     p.ID(),
			Credit:       img.Credit,
			License:      img.License,
			ThumbnailURL: img.ThumbURL,
			Metadata:     map[string]any{"title": img.Title},
		})
	}
	return candidates, nil
}

// buildSearchTerm joins the plan's terms and quotes its tags so multi-word
// tags stay phrases.
func buildSearchTerm(plan domain.QueryPlan) string {
	parts := make([]string, 0, len(plan.Terms)+len(plan.IncludeTags))
	parts = append(parts, plan.Terms...)
	for _, tag := range plan.IncludeTags {
		if strings.ContainsRune(tag, ' ') {
			parts = append(parts, `"`+tag+`"`)
		} else {
			parts = append(parts, tag)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
