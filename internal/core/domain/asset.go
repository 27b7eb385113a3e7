package domain

import "time"

// Scope identifies which kind of domain object an asset belongs to.
type Scope string

// Asset scopes.
const (
	ScopeCard    Scope = "card"
	ScopeEvent   Scope = "event"
	ScopeArticle Scope = "article"
)

// IsValid reports whether the scope is one of the known values.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeCard, ScopeEvent, ScopeArticle:
		return true
	}
	return false
}

// Source records how a manifest entry was obtained.
type Source string

// Entry sources.
const (
	// SourceOfficial marks entries produced by the authoritative catalogue
	// lookup. Official entries are never overwritten by normal resolution.
	SourceOfficial Source = "official"

	// SourceDownload marks entries produced by provider federation.
	SourceDownload Source = "download"

	// SourceFallback marks low-confidence entries persisted from a
	// caller-supplied fallback URL when no provider returned anything.
	SourceFallback Source = "fallback"
)

// Card is the read-only card contract owned by the game data model.
type Card struct {
	// ID is the stable card identifier.
	ID string

	// Name is the display name, used for query terms.
	Name string

	// Faction the card belongs to (government, truth, neutral, ...).
	Faction string

	// Type is the card type (agent, operation, asset, ...).
	Type string

	// ArtTags are curated hints for image search.
	ArtTags []string

	// ArtPolicy is "auto" or "manual". Manual art relaxes the license
	// preference because a human vetted the selection.
	ArtPolicy string

	// ArtAttribution is a curated credit line, if any.
	ArtAttribution string
}

// Event is the read-only event contract owned by the game data model.
type Event struct {
	ID       string
	Title    string
	Headline string
	Tags     []string
}

// Article is the read-only newspaper article contract.
type Article struct {
	ID       string
	Title    string
	Headline string
	Tags     []string
}

// AssetContext describes a single resolution request. It references exactly
// one domain object matching its scope and is never mutated.
type AssetContext struct {
	Scope   Scope
	Card    *Card
	Event   *Event
	Article *Article

	// Tags are caller-supplied hints merged into the query plan.
	Tags []string

	// FallbackURL is persisted as a last resort when no provider matches.
	FallbackURL string
}

// Key derives the manifest key for the context, "scope:identity".
// Returns empty string when the context references no domain object,
// in which case there is nothing to resolve.
func (c AssetContext) Key() string {
	switch {
	case c.Scope == ScopeCard && c.Card != nil:
		return string(ScopeCard) + ":" + c.Card.ID
	case c.Scope == ScopeEvent && c.Event != nil:
		return string(ScopeEvent) + ":" + c.Event.ID
	case c.Scope == ScopeArticle && c.Article != nil:
		return string(ScopeArticle) + ":" + c.Article.ID
	}
	return ""
}

// AssetCandidate is a single image a provider offered for a query.
type AssetCandidate struct {
	// ID identifies the candidate within its provider.
	ID string `json:"id"`

	// URL is the full-size image URL.
	URL string `json:"url"`

	// Provider is the offering provider's ID.
	Provider string `json:"provider"`

	// Credit is the attribution line, if the provider supplied one.
	Credit string `json:"credit,omitempty"`

	// License is the raw license text. Non-authoritative candidates with
	// no license are dropped by the license filter.
	License string `json:"license,omitempty"`

	// Tags describe the image content.
	Tags []string `json:"tags,omitempty"`

	// Locked means the provider asserts this candidate is definitive;
	// federation stops querying lower-priority providers once one appears.
	Locked bool `json:"locked,omitempty"`

	// ThumbnailURL is an optional reduced-size preview.
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// Confidence is the provider's own score, later rewritten by ranking.
	Confidence float64 `json:"confidence,omitempty"`

	// Metadata carries provider-specific extras (source page, query, ...).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ManifestEntry is the durable record of the asset chosen for a key.
// It is the system's single source of truth.
type ManifestEntry struct {
	Key          string         `json:"key"`
	Scope        Scope          `json:"scope"`
	URL          string         `json:"url"`
	StyledURL    string         `json:"styledUrl"`
	Provider     string         `json:"provider"`
	Credit       string         `json:"credit,omitempty"`
	License      string         `json:"license,omitempty"`
	Locked       bool           `json:"locked"`
	Tags         []string       `json:"tags"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Source       Source         `json:"source"`
}

// Authoritative reports whether the entry must never be replaced by the
// normal resolution path. Only the reconciliation job or an explicit manual
// lock toggle may change it.
func (e ManifestEntry) Authoritative() bool {
	return e.Locked || e.Source == SourceOfficial
}

// ResolvedAsset is the only type exposed to consumers. Consumers display
// StyledURL and use URL/Credit/License solely for attribution.
type ResolvedAsset struct {
	Key       string         `json:"key"`
	URL       string         `json:"url"`
	StyledURL string         `json:"styledUrl"`
	Provider  string         `json:"provider"`
	Credit    string         `json:"credit,omitempty"`
	License   string         `json:"license,omitempty"`
	Locked    bool           `json:"locked"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Tags      []string       `json:"tags"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Source    Source         `json:"source"`
}

// Resolved converts a manifest entry into the consumer-facing shape.
func (e ManifestEntry) Resolved() *ResolvedAsset {
	return &ResolvedAsset{
		Key:       e.Key,
		URL:       e.URL,
		StyledURL: e.StyledURL,
		Provider:  e.Provider,
		Credit:    e.Credit,
		License:   e.License,
		Locked:    e.Locked,
		UpdatedAt: e.UpdatedAt,
		Tags:      e.Tags,
		Metadata:  e.Metadata,
		Source:    e.Source,
	}
}
