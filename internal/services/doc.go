// Package services provides shared plumbing for pipeline stages: the error
// taxonomy used to classify stage failures and context annotation helpers for
// correlation across log output.
package services
