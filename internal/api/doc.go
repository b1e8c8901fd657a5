// Package api defines the wire types shared by the daemon HTTP surface and
// the CLI, plus the client used to talk to a running daemon.
package api
