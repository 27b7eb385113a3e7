package domain

import (
	"regexp"
	"strings"
)

// LicensePreference biases ranking toward a license family.
type LicensePreference string

// License preferences.
const (
	PreferCC           LicensePreference = "cc"
	PreferPublicDomain LicensePreference = "public-domain"
	PreferAny          LicensePreference = "any"
)

// QueryPlan is the normalized, bounded search input derived from a context.
// It is independent of any provider.
type QueryPlan struct {
	Terms             []string          `json:"terms"`
	IncludeTags       []string          `json:"includeTags"`
	ExcludeTerms      []string          `json:"excludeTerms"`
	LicensePreference LicensePreference `json:"licensePreference"`
}

// Bounds on query plan size, so provider cost stays fixed regardless of how
// verbose the source object is.
const (
	MaxQueryTerms = 12
	MaxQueryTags  = 8
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "or": {},
}

var tokenSplit = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// tokenize splits free text into query terms, dropping single characters
// and stop words.
func tokenize(text string) []string {
	var tokens []string
	for _, tok := range tokenSplit.Split(text, -1) {
		tok = strings.TrimSpace(tok)
		if len(tok) <= 1 {
			continue
		}
		if _, stop := stopWords[strings.ToLower(tok)]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// BuildQuery derives a query plan from a context. It is pure and total:
// a missing or empty context yields a minimal default plan, never an error.
func BuildQuery(ctx AssetContext) QueryPlan {
	terms := newOrderedSet()
	tags := newOrderedSet()
	pref := PreferCC

	if ctx.Card != nil {
		terms.addAll(tokenize(ctx.Card.Name))
		if ctx.Card.Faction != "" {
			terms.add(ctx.Card.Faction + " faction")
		}
		if ctx.Card.Type != "" {
			terms.add(strings.ToLower(ctx.Card.Type) + " card art")
		}
		tags.addAll(ctx.Card.ArtTags)
		if ctx.Card.ArtPolicy == "manual" {
			pref = PreferAny
		}
	}

	if ctx.Event != nil {
		terms.addAll(tokenize(ctx.Event.Title))
		terms.addAll(tokenize(ctx.Event.Headline))
		tags.addAll(ctx.Event.Tags)
		pref = PreferPublicDomain
	}

	if ctx.Article != nil {
		terms.addAll(tokenize(ctx.Article.Title))
		terms.addAll(tokenize(ctx.Article.Headline))
		tags.addAll(ctx.Article.Tags)
	}

	tags.addAll(ctx.Tags)

	return QueryPlan{
		Terms:             terms.take(MaxQueryTerms),
		IncludeTags:       tags.take(MaxQueryTags),
		ExcludeTerms:      []string{"logo", "watermark"},
		LicensePreference: pref,
	}
}

// orderedSet keeps insertion order while deduplicating.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if item == "" {
		return
	}
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) addAll(items []string) {
	for _, item := range items {
		s.add(item)
	}
}

func (s *orderedSet) take(n int) []string {
	if len(s.items) > n {
		return s.items[:n:n]
	}
	return s.items
}
