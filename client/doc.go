// Package client provides the session-scoped orchestrator tying an execution
// engine to a workspace-backed artifact store.
//
// A Client owns one conversation: it forwards user queries to the configured
// core.Engine, extracts the final answer from the resulting trace events,
// maintains the conversation history, and exposes the session's data, plots
// and workspace files. Query never returns a Go error; engine and model
// failures are converted into a conversational error response so a chat
// front end can always render something.
//
// Like the data manager it wraps, a Client assumes a single logical caller.
package client
