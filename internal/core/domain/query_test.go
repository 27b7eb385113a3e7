package domain

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildQuery_CardContext tests term derivation from a card.
func TestBuildQuery_CardContext(t *testing.T) {
	plan := BuildQuery(AssetContext{
		Scope: ScopeCard,
		Card: &Card{
			ID:      "card-001",
			Name:    "The Men in Black",
			Faction: "government",
			Type:    "Agent",
			ArtTags: []string{"conspiracy", "suits"},
		},
	})

	assert.Contains(t, plan.Terms, "Men")
	assert.Contains(t, plan.Terms, "Black")
	assert.NotContains(t, plan.Terms, "The", "stop word must be dropped")
	assert.NotContains(t, plan.Terms, "in", "short token must be dropped")
	assert.Contains(t, plan.Terms, "government faction")
	assert.Contains(t, plan.Terms, "agent card art")
	assert.Contains(t, plan.IncludeTags, "conspiracy")
	assert.Contains(t, plan.IncludeTags, "suits")
	assert.Equal(t, PreferCC, plan.LicensePreference)
}

// TestBuildQuery_ManualArtPolicy tests that a manual art policy relaxes the
// license preference.
func TestBuildQuery_ManualArtPolicy(t *testing.T) {
	plan := BuildQuery(AssetContext{
		Scope: ScopeCard,
		Card:  &Card{ID: "c", Name: "Roswell Crash", ArtPolicy: "manual"},
	})

	assert.Equal(t, PreferAny, plan.LicensePreference)
}

// TestBuildQuery_EventForcesPublicDomain tests the event scope preference.
func TestBuildQuery_EventForcesPublicDomain(t *testing.T) {
	plan := BuildQuery(AssetContext{
		Scope: ScopeEvent,
		Event: &Event{
			ID:       "ev-1",
			Title:    "Lights over Phoenix",
			Headline: "Thousands report strange lights",
			Tags:     []string{"ufo"},
		},
	})

	assert.Equal(t, PreferPublicDomain, plan.LicensePreference)
	assert.Contains(t, plan.Terms, "Lights")
	assert.Contains(t, plan.Terms, "Phoenix")
	assert.Contains(t, plan.Terms, "Thousands")
	assert.Contains(t, plan.IncludeTags, "ufo")
}

// TestBuildQuery_CallerTagsMerged tests that caller hints join object tags.
func TestBuildQuery_CallerTagsMerged(t *testing.T) {
	plan := BuildQuery(AssetContext{
		Scope:   ScopeArticle,
		Article: &Article{ID: "a", Title: "Bigfoot Sighted", Headline: "Again"},
		Tags:    []string{"cryptid", "forest"},
	})

	assert.Contains(t, plan.IncludeTags, "cryptid")
	assert.Contains(t, plan.IncludeTags, "forest")
}

// TestBuildQuery_EmptyContext tests the minimal default plan.
func TestBuildQuery_EmptyContext(t *testing.T) {
	plan := BuildQuery(AssetContext{})

	assert.Empty(t, plan.Terms)
	assert.Empty(t, plan.IncludeTags)
	assert.Equal(t, []string{"logo", "watermark"}, plan.ExcludeTerms)
	assert.Equal(t, PreferCC, plan.LicensePreference)
}

// TestBuildQuery_Truncation tests the term and tag bounds.
func TestBuildQuery_Truncation(t *testing.T) {
	words := make([]string, 0, 30)
	tags := make([]string, 0, 20)
	for i := 0; i < 30; i++ {
		words = append(words, "word"+strconv.Itoa(i))
	}
	for i := 0; i < 20; i++ {
		tags = append(tags, "tag"+strconv.Itoa(i))
	}

	plan := BuildQuery(AssetContext{
		Scope:   ScopeArticle,
		Article: &Article{ID: "a", Title: strings.Join(words, " ")},
		Tags:    tags,
	})

	assert.Len(t, plan.Terms, MaxQueryTerms)
	assert.Len(t, plan.IncludeTags, MaxQueryTags)
}

// TestBuildQuery_Deduplicates tests that repeated terms collapse.
func TestBuildQuery_Deduplicates(t *testing.T) {
	plan := BuildQuery(AssetContext{
		Scope:   ScopeArticle,
		Article: &Article{ID: "a", Title: "Mothman Mothman", Headline: "Mothman"},
	})

	count := 0
	for _, term := range plan.Terms {
		if term == "Mothman" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
