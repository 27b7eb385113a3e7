// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Provider: one ranked source of asset candidates
//   - OfficialLookup: the direct authoritative path for card art
//   - CardCatalog: read-only access to the full card catalogue
//   - ManifestStore: the durable, subscribable source of truth
//   - QueryCache: TTL cache of federation results
//   - Styler: house visual style transform
//   - ConfigStore: application configuration
//
// The Styler may be the passthrough implementation on headless targets;
// resolution still works, entries simply carry the unstyled URL twice.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or provider package
package driven
