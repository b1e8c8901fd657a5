package sweeper_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"caption/internal/queue"
	"caption/internal/sweeper"
	"caption/internal/testsupport"
)

func TestSweepOnceRemovesExpiredTerminalJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.WindowMinutes = 0 // everything terminal is already expired
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	done := testsupport.NewJob(t, store, "clip.mp4", filepath.Join(cfg.Paths.UploadDir, "x"))
	done.SetCompleted(filepath.Join(cfg.Paths.OutputDir, done.ID+"_captioned.mp4"), done.ID+"_captioned.mp4")
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	upload := filepath.Join(cfg.Paths.UploadDir, done.ID+"_clip.mp4")
	audio := filepath.Join(cfg.Paths.UploadDir, done.ID+"_audio.wav")
	output := filepath.Join(cfg.Paths.OutputDir, done.ID+"_captioned.mp4")
	unrelated := filepath.Join(cfg.Paths.UploadDir, "other_clip.mp4")
	for _, path := range []string{upload, audio, output, unrelated} {
		testsupport.WriteFile(t, path, 16)
	}

	s := sweeper.New(cfg, store, nil)
	swept, err := s.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept = %d, want 1", swept)
	}

	for _, path := range []string{upload, audio, output} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("artifact %s should be gone", path)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("unrelated artifact removed: %v", err)
	}

	job, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job != nil {
		t.Fatalf("registry entry should be gone, got %#v", job)
	}
}

func TestSweepOnceSkipsActiveAndFreshJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.WindowMinutes = 60
	store := testsupport.MustOpenStore(t)
	ctx := context.Background()

	active := testsupport.NewJob(t, store, "a.mp4", "/uploads/a.mp4")
	active.Status = queue.StatusTranscribing
	if err := store.Update(ctx, active); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewJob(t, store, "b.mp4", "/uploads/b.mp4")
	fresh.SetFailed("Failed to extract audio")
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	s := sweeper.New(cfg, store, nil)
	swept, err := s.SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}
	if swept != 0 {
		t.Fatalf("swept = %d, want 0", swept)
	}

	for _, id := range []string{active.ID, fresh.ID} {
		job, err := store.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if job == nil {
			t.Fatalf("job %s should survive the sweep", id)
		}
	}
}
