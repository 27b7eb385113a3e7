package services

import "strings"

// mergeCredit combines a prior entry's credit line with a newly fetched one.
// Whitespace is trimmed, an empty side yields the other, a case-insensitive
// match keeps the existing line, and a genuine conflict joins both with a
// semicolon so no attribution is ever dropped.
func mergeCredit(existing, incoming string) string {
	existing = strings.TrimSpace(existing)
	incoming = strings.TrimSpace(incoming)

	switch {
	case existing == "":
		return incoming
	case incoming == "":
		return existing
	case strings.EqualFold(existing, incoming):
		return existing
	}
	return existing + "; " + incoming
}

// mergeTags deduplicates tags from multiple sources, case-insensitively,
// keeping first-seen casing and order.
func mergeTags(sources ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tags := range sources {
		for _, raw := range tags {
			tag := strings.TrimSpace(raw)
			if tag == "" {
				continue
			}
			lower := strings.ToLower(tag)
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}

// mergeMetadata overlays incoming metadata on top of prior metadata.
// Returns nil when both sides are empty.
func mergeMetadata(prior, incoming map[string]any) map[string]any {
	if len(prior) == 0 && len(incoming) == 0 {
		return nil
	}
	merged := make(map[string]any, len(prior)+len(incoming))
	for k, v := range prior {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
