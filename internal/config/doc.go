// Package config loads, normalizes, and validates macrowatch configuration.
//
// Configuration comes from a TOML file (default ~/.config/macrowatch/config.toml,
// falling back to ./macrowatch.toml) layered over built-in defaults. All path
// fields are tilde-expanded and made absolute during Load, so downstream code
// never deals with relative or unexpanded paths.
package config
