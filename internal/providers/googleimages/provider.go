// Package googleimages federates asset queries to Google Programmable Search.
//
// It is an optional last-resort tier, constructed only when an API key and
// search engine ID are configured. The Custom Search API does not return
// per-image license text, so searches are restricted with a usage-rights
// filter and the license field is set from the filter that was applied.
package googleimages

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

var _ driven.Provider = (*Provider)(nil)

const maxResults = 10

// Provider searches Google Programmable Search for candidate images.
type Provider struct {
	service  *customsearch.Service
	engineID string
}

// New creates a provider with the given API key and search engine ID.
func New(ctx context.Context, apiKey, engineID string) (*Provider, error) {
	if apiKey == "" || engineID == "" {
		return nil, fmt.Errorf("google image search requires an API key and engine ID")
	}
	service, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating custom search service: %w", err)
	}
	return &Provider{service: service, engineID: engineID}, nil
}

// ID returns the provider identifier.
func (p *Provider) ID() string {
	return "googleimages"
}

// Priority places Google search after Wikimedia Commons.
func (p *Provider) Priority() int {
	return 11
}

// Authoritative results still go through the license filter.
func (p *Provider) Authoritative() bool {
	return false
}

// ShouldSkip never skips; the tier serves every scope.
func (p *Provider) ShouldSkip(domain.AssetContext) bool {
	return false
}

// Fetch runs an image search restricted to reusable-rights results.
func (p *Provider) Fetch(ctx context.Context, plan domain.QueryPlan, _ domain.AssetContext) ([]domain.AssetCandidate, error) {
	query := strings.TrimSpace(strings.Join(append(append([]string{}, plan.Terms...), plan.IncludeTags...), " "))
	if query == "" {
		return nil, nil
	}
	for _, term := range plan.ExcludeTerms {
		query += " -" + term
	}

	rights, license := rightsFilter(plan.LicensePreference)

	call := p.service.Cse.List().
		Context(ctx).
		Cx(p.engineID).
		Q(query).
		SearchType("image").
		Rights(rights).
		Num(maxResults)

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	return p.candidatesFrom(resp.Items, license), nil
}

// candidatesFrom maps API results to candidates, stamping the license derived
// from the applied rights filter.
func (p *Provider) candidatesFrom(items []*customsearch.Result, license string) []domain.AssetCandidate {
	candidates := make([]domain.AssetCandidate, 0, len(items))
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		credit := item.DisplayLink
		if credit == "" {
			credit = "Google Image Search"
		}
		candidate := domain.AssetCandidate{
			ID:       "googleimages-" + item.Link,
			URL:      item.Link,
			Provider: p.ID(),
			Credit:   credit,
			License:  license,
			Metadata: map[string]any{"title": item.Title},
		}
		if item.Image != nil {
			candidate.ThumbnailURL = item.Image.ThumbnailLink
		}
		candidates = append(candidates, candidate)
	}
	return candidates
}

// rightsFilter maps a license preference to the API's usage-rights filter and
// the license string stamped on returned candidates.
func rightsFilter(pref domain.LicensePreference) (rights, license string) {
	if pref == domain.PreferPublicDomain {
		return "cc_publicdomain", "Public domain"
	}
	return "cc_publicdomain|cc_attribute|cc_sharealike", "CC-BY"
}
