package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a captioning job.
type Status string

const (
	StatusQueued          Status = "queued"
	StatusExtractingAudio Status = "extracting_audio"
	StatusUploadingAudio  Status = "uploading_audio"
	StatusTranscribing    Status = "transcribing"
	StatusRendering       Status = "rendering"
	StatusCompleted       Status = "completed"
	StatusError           Status = "error"
)

var allStatuses = []Status{
	StatusQueued,
	StatusExtractingAudio,
	StatusUploadingAudio,
	StatusTranscribing,
	StatusRendering,
	StatusCompleted,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusExtractingAudio: {},
	StatusUploadingAudio:  {},
	StatusTranscribing:    {},
	StatusRendering:       {},
}

// forwardEdges holds the allowed non-failure transitions of the state machine.
var forwardEdges = map[Status]Status{
	StatusQueued:          StatusExtractingAudio,
	StatusExtractingAudio: StatusUploadingAudio,
	StatusUploadingAudio:  StatusTranscribing,
	StatusTranscribing:    StatusRendering,
	StatusRendering:       StatusCompleted,
}

// HealthSummary describes aggregated job counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Queued     int
	Processing int
	Completed  int
	Errored    int
}

// Job represents one end-to-end captioning request and its lifecycle record.
type Job struct {
	ID              string
	InputFile       string
	SourcePath      string
	OutputFile      string
	OutputPath      string
	Status          Status
	ErrorMessage    string
	ProgressMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the job lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// IsProcessing reports whether the status reflects an in-flight stage.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// CanTransition reports whether moving from one status to another follows the
// forward-only state machine. Any non-terminal status may transition to
// StatusError; terminal statuses accept no further transitions.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusError {
		return true
	}
	return forwardEdges[from] == to
}

// IsProcessing reports whether the job is mid-pipeline.
func (j Job) IsProcessing() bool {
	return j.Status.IsProcessing()
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusError
	j.ErrorMessage = message
	j.ProgressMessage = ""
	j.OutputFile = ""
	j.OutputPath = ""
}

// SetCompleted marks the job as completed with the produced artifact.
func (j *Job) SetCompleted(outputPath, outputFile string) {
	j.Status = StatusCompleted
	j.OutputPath = outputPath
	j.OutputFile = outputFile
	j.ErrorMessage = ""
	j.ProgressMessage = ""
}
