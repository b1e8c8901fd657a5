package queue_test

import (
	"testing"

	"caption/internal/queue"
)

func TestCanTransitionFollowsPipelineOrder(t *testing.T) {
	cases := []struct {
		from, to queue.Status
		want     bool
	}{
		{queue.StatusQueued, queue.StatusExtractingAudio, true},
		{queue.StatusExtractingAudio, queue.StatusUploadingAudio, true},
		{queue.StatusUploadingAudio, queue.StatusTranscribing, true},
		{queue.StatusTranscribing, queue.StatusRendering, true},
		{queue.StatusRendering, queue.StatusCompleted, true},
		{queue.StatusQueued, queue.StatusTranscribing, false},
		{queue.StatusExtractingAudio, queue.StatusQueued, false},
		{queue.StatusRendering, queue.StatusQueued, false},
	}
	for _, tc := range cases {
		if got := queue.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionToErrorFromAnyNonTerminal(t *testing.T) {
	for _, status := range queue.AllStatuses() {
		got := queue.CanTransition(status, queue.StatusError)
		want := !status.IsTerminal()
		if got != want {
			t.Errorf("CanTransition(%s, error) = %v, want %v", status, got, want)
		}
	}
}

func TestTerminalStatusesAcceptNoTransitions(t *testing.T) {
	for _, from := range []queue.Status{queue.StatusCompleted, queue.StatusError} {
		for _, to := range queue.AllStatuses() {
			if queue.CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Extracting_Audio "); !ok || status != queue.StatusExtractingAudio {
		t.Fatalf("ParseStatus = %q, %v", status, ok)
	}
	if _, ok := queue.ParseStatus("finished"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestSetFailedClearsOutput(t *testing.T) {
	job := &queue.Job{
		Status:     queue.StatusRendering,
		OutputFile: "abc_captioned.mp4",
		OutputPath: "/tmp/abc_captioned.mp4",
	}
	job.SetFailed("Video rendering failed")
	if job.Status != queue.StatusError {
		t.Fatalf("status = %s", job.Status)
	}
	if job.OutputFile != "" || job.OutputPath != "" {
		t.Fatal("expected output fields cleared on failure")
	}
	if job.ErrorMessage != "Video rendering failed" {
		t.Fatalf("error message = %q", job.ErrorMessage)
	}
}

func TestSetCompletedClearsError(t *testing.T) {
	job := &queue.Job{Status: queue.StatusRendering, ErrorMessage: "stale"}
	job.SetCompleted("/out/abc_captioned.mp4", "abc_captioned.mp4")
	if job.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", job.Status)
	}
	if job.ErrorMessage != "" {
		t.Fatal("expected error message cleared on completion")
	}
	if job.OutputPath != "/out/abc_captioned.mp4" || job.OutputFile != "abc_captioned.mp4" {
		t.Fatalf("output = %q %q", job.OutputPath, job.OutputFile)
	}
}
