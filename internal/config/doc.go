// Package config loads, validates, and normalizes gavel's TOML
// configuration.
//
// Configuration lives at ~/.config/gavel/config.toml by default. Load applies
// defaults for every omitted field, expands ~ in path fields, and validates
// cross-field constraints. A commented sample config is embedded and written
// by `gavel config init`.
package config
