// Package config loads, validates, and normalizes the daemon's TOML
// configuration, providing defaults suitable for local use.
package config
