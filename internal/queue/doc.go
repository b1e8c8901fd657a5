// Package queue provides the job registry backing the captioning pipeline.
// Jobs move through a forward-only status state machine; the store serializes
// all access through a single in-memory sqlite connection.
package queue
