// Package server exposes sessions over HTTP.
//
// Each session wraps a client.Client with its own workspace directory. The
// registry hands out UUID session ids; handlers serialize access per session
// so the single-caller contract of the underlying client holds even though
// gin runs handlers concurrently.
package server
