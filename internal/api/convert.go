package api

import (
	"caption/internal/queue"
)

// FromJob converts a registry record into its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	converted := Job{
		ID:              job.ID,
		InputFile:       job.InputFile,
		OutputFile:      job.OutputFile,
		Status:          string(job.Status),
		ProgressMessage: job.ProgressMessage,
		ErrorMessage:    job.ErrorMessage,
	}
	if !job.CreatedAt.IsZero() {
		converted.CreatedAt = job.CreatedAt.Format(dateTimeFormat)
	}
	if !job.UpdatedAt.IsZero() {
		converted.UpdatedAt = job.UpdatedAt.Format(dateTimeFormat)
	}
	return converted
}

// FromJobs converts a slice of registry records.
func FromJobs(jobs []*queue.Job) []Job {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// MergeStats normalizes status counts so every known status appears, zero or
// not, keyed by its string form.
func MergeStats(stats map[queue.Status]int) map[string]int {
	merged := make(map[string]int, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		merged[string(status)] = stats[status]
	}
	return merged
}
