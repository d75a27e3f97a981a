// Package core provides the foundational domain types and contracts used by
// BioMesh. It defines the core abstractions for:
//
//   - Messages (role-tagged conversation records)
//   - Trace events (a closed tagged-variant set emitted by execution engines)
//   - The Engine contract (streaming multi-agent execution)
//   - Response extraction (reducing a trace to the user-facing answer)
//
// The package intentionally keeps implementation concerns (concrete engines,
// model providers, persistence) out of scope, exposing small interfaces to
// enable custom backends and extensions.
package core
