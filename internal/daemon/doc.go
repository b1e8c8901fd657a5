// Package daemon ties the captioning services together: it enforces
// single-instance execution, runs the workflow manager and retention
// sweeper, and serves the HTTP API for submitting and fetching jobs.
package daemon
