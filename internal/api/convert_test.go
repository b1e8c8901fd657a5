package api

import (
	"context"
	"testing"
	"time"

	"caption/internal/queue"
)

func TestFromJobFormatsTimestamps(t *testing.T) {
	created := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)
	job := &queue.Job{
		ID:              "job-1",
		InputFile:       "clip.mp4",
		OutputFile:      "job-1_captioned.mp4",
		Status:          queue.StatusCompleted,
		ProgressMessage: "Done",
		CreatedAt:       created,
		UpdatedAt:       created.Add(time.Minute),
	}

	converted := FromJob(job)
	if converted.ID != "job-1" || converted.Status != string(queue.StatusCompleted) {
		t.Fatalf("unexpected conversion: %+v", converted)
	}
	if converted.CreatedAt != "2026-03-04T10:30:00.000Z" {
		t.Fatalf("unexpected created_at: %q", converted.CreatedAt)
	}
	if converted.UpdatedAt != "2026-03-04T10:31:00.000Z" {
		t.Fatalf("unexpected updated_at: %q", converted.UpdatedAt)
	}
}

func TestFromJobNilIsZero(t *testing.T) {
	converted := FromJob(nil)
	if converted.ID != "" || converted.CreatedAt != "" {
		t.Fatalf("expected zero value, got %+v", converted)
	}
}

func TestMergeStatsIncludesEveryStatus(t *testing.T) {
	merged := MergeStats(map[queue.Status]int{
		queue.StatusQueued:    2,
		queue.StatusCompleted: 1,
	})

	if len(merged) != len(queue.AllStatuses()) {
		t.Fatalf("expected %d entries, got %d", len(queue.AllStatuses()), len(merged))
	}
	if merged[string(queue.StatusQueued)] != 2 {
		t.Fatalf("queued count = %d", merged[string(queue.StatusQueued)])
	}
	if merged[string(queue.StatusError)] != 0 {
		t.Fatalf("error count = %d", merged[string(queue.StatusError)])
	}
}

type stubReader struct {
	jobs []*queue.Job
}

func (r *stubReader) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error) {
	if len(statuses) == 0 {
		return r.jobs, nil
	}
	var filtered []*queue.Job
	for _, job := range r.jobs {
		for _, status := range statuses {
			if job.Status == status {
				filtered = append(filtered, job)
			}
		}
	}
	return filtered, nil
}

func (r *stubReader) Stats(ctx context.Context) (map[queue.Status]int, error) {
	stats := make(map[queue.Status]int)
	for _, job := range r.jobs {
		stats[job.Status]++
	}
	return stats, nil
}

func (r *stubReader) GetByID(ctx context.Context, id string) (*queue.Job, error) {
	for _, job := range r.jobs {
		if job.ID == id {
			return job, nil
		}
	}
	return nil, nil
}

func TestJobServiceDescribeMissingReturnsNil(t *testing.T) {
	svc := NewJobService(&stubReader{})
	job, err := svc.Describe(context.Background(), "missing")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil job, got %+v", job)
	}
}

func TestJobServiceListFiltersByStatus(t *testing.T) {
	svc := NewJobService(&stubReader{jobs: []*queue.Job{
		{ID: "a", Status: queue.StatusQueued},
		{ID: "b", Status: queue.StatusCompleted},
	}})

	jobs, err := svc.List(context.Background(), queue.StatusCompleted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "b" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}
