// Package data contains the session-scoped artifact store: the current
// tabular dataset, its derived analytic matrix, the bounded plot collection
// and the tool-usage provenance log. A Manager owns all four and exposes the
// lifecycle operations the orchestrator, agents and web routes consume.
//
// A Manager assumes a single logical caller per session and performs no
// internal locking; concurrent access to the same session must be serialized
// by the caller. Different sessions own independent Managers and never share
// state.
package data
