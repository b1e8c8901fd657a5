package stage

import (
	"caption/internal/captions"
	"caption/internal/queue"
	"caption/internal/transcript"
)

// Run carries one job through the pipeline along with the in-flight state
// stages hand to each other. Only the Job record is persisted; audio paths,
// words, and the compiled program live for the duration of the run.
type Run struct {
	Job          *queue.Job
	AudioPath    string
	AudioURL     string
	TranscriptID string
	Words        []transcript.Word
	Program      captions.Program
}

// NewRun wraps a claimed job for pipeline execution.
func NewRun(job *queue.Job) *Run {
	return &Run{Job: job}
}
