package domain

import (
	"sort"
	"strings"
)

// RankingContext carries the inputs that bias candidate scoring.
type RankingContext struct {
	Scope             Scope
	DesiredTags       []string
	LicensePreference LicensePreference
}

// Provider tier bonuses. Authoritative tiers dominate anything a search
// provider can score through tags and license alignment.
const (
	tierOfficial  = 100
	tierPack      = 75
	tierWikimedia = 10

	tagMatchBonus = 4
	lockedBonus   = 200
)

func scoreForProvider(providerID string) float64 {
	switch providerID {
	case "official":
		return tierOfficial
	case "pack":
		return tierPack
	case "wikimedia":
		return tierWikimedia
	}
	return 0
}

func scoreForLicense(license string, pref LicensePreference) float64 {
	if license == "" || pref == "" || pref == PreferAny {
		return 0
	}
	lower := strings.ToLower(license)
	switch pref {
	case PreferPublicDomain:
		if strings.Contains(lower, "public") || strings.Contains(lower, "cc0") {
			return 12
		}
		return -10
	case PreferCC:
		if strings.Contains(lower, "cc") {
			return 6
		}
		return -4
	}
	return 0
}

func scoreForTags(candidateTags, desired []string) float64 {
	if len(desired) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(candidateTags))
	for _, tag := range candidateTags {
		have[strings.ToLower(tag)] = struct{}{}
	}
	var score float64
	for _, tag := range desired {
		if _, ok := have[strings.ToLower(tag)]; ok {
			score += tagMatchBonus
		}
	}
	return score
}

// RankCandidates scores every candidate and returns the full list ordered by
// descending score. The sort is stable so equally-scored candidates keep
// provider order, and each returned candidate carries its computed score in
// Confidence. Returning the whole list lets federation short-circuit when a
// locked candidate surfaces.
func RankCandidates(candidates []AssetCandidate, rctx RankingContext) []AssetCandidate {
	scored := make([]AssetCandidate, len(candidates))
	for i, candidate := range candidates {
		score := candidate.Confidence
		score += scoreForProvider(candidate.Provider)
		score += scoreForLicense(candidate.License, rctx.LicensePreference)
		score += scoreForTags(candidate.Tags, rctx.DesiredTags)
		if candidate.Locked {
			score += lockedBonus
		}
		candidate.Confidence = score
		scored[i] = candidate
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})
	return scored
}
