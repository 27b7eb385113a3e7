// Package domain defines the core business entities for artfetch.
//
// This package is the hexagonal architecture's innermost layer. It has no
// external dependencies and defines the fundamental types:
//
//   - AssetContext: a single resolution request (card, event, or article)
//   - QueryPlan: the normalized, bounded search input derived from a context
//   - AssetCandidate: one image a provider offered for a query
//   - ManifestEntry: the durable record of the asset chosen for a key
//   - ResolvedAsset: the only type exposed to consumers
//
// It also holds the three pure pipeline stages: query building (BuildQuery),
// candidate ranking (RankCandidates), and the license allow-pattern
// (LicenseAllowed). These are total functions over in-memory values.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
