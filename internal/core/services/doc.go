// Package services implements the driving ports on top of the driven ports.
//
// Resolver is the per-request resolution orchestrator; Reconciler is the
// offline relock batch job. Both are plain structs assembled at bootstrap
// with explicit dependencies, so tests substitute in-memory stores and fake
// providers without touching package state.
package services
