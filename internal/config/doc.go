// Package config loads, normalizes, and validates snapsort configuration.
//
// Configuration comes from a TOML file (~/.config/snapsort/config.toml or a
// project-local snapsort.toml) merged over built-in defaults; CLI flags are
// applied on top by the command layer before Validate runs.
package config
