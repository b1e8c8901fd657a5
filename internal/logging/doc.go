// Package logging wires log/slog for the daemon and CLI: handler construction
// from config, shared attribute helpers, and standardized field keys derived
// from context annotations.
package logging
