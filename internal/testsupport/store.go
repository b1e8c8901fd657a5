package testsupport

import (
	"context"
	"testing"

	"caption/internal/queue"

	"github.com/google/uuid"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB) *queue.Store {
	t.Helper()

	store, err := queue.Open()
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a queued job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, inputFile, sourcePath string) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), uuid.NewString(), inputFile, sourcePath)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}
