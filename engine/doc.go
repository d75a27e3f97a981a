// Package engine provides Mesh, the reference core.Engine implementation.
//
// Mesh runs a two-step graph: a supervisor node routes the conversation to
// one of the registered expert agents, and the chosen expert produces the
// answer. The run is observable through the trace event stream defined in
// package core; clients that only want display updates can request the
// updates stream mode instead.
package engine
