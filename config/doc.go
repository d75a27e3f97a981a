// Package config manages per-agent model settings for a biomesh deployment.
//
// Settings resolve in three layers: built-in profiles provide defaults,
// an optional JSON config file overrides the profile, and environment
// variables (BIOMESH_*) override everything. A Configurator instance holds
// the resolved settings; there is no process-global state.
package config
