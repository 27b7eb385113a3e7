// Package driving defines the interfaces through which the outside world
// calls INTO the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI, TUI, and MCP adapters depend on these interfaces; the services
// package implements them.
//
//   - ResolverService: per-request asset resolution and manifest admin
//   - ReconcilerService: the offline relock batch job
//
// # Import Rules
//
//   - Can Import: domain and driven port packages
//   - Cannot Import: services or any adapter package
package driving
