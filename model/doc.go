// Package model defines the minimal provider-agnostic abstraction the
// reference engine uses to drive text generation. Provider adapters live in
// subpackages (anthropic, openai) and normalize each SDK's message shapes to
// the Request/Response structures defined here.
package model
