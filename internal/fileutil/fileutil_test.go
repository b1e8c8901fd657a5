package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestEnsureNonEmpty(t *testing.T) {
	dir := t.TempDir()

	if err := EnsureNonEmpty(filepath.Join(dir, "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureNonEmpty(empty); err == nil {
		t.Fatal("expected error for empty file")
	}

	full := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(full, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureNonEmpty(full); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRemoveWithPrefix(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "other_clip.mp4")
	match1 := filepath.Join(dir, "job1_clip.mp4")
	match2 := filepath.Join(dir, "job1_captioned.mp4")
	for _, path := range []string{keep, match1, match2} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := RemoveWithPrefix(dir, "job1_")
	if err != nil {
		t.Fatalf("RemoveWithPrefix failed: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed = %v", removed)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("unrelated file was removed: %v", err)
	}
	if _, err := os.Stat(match1); !os.IsNotExist(err) {
		t.Fatal("expected prefixed file removed")
	}
}

func TestRemoveWithPrefixMissingDir(t *testing.T) {
	removed, err := RemoveWithPrefix(filepath.Join(t.TempDir(), "absent"), "job1_")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != nil {
		t.Fatalf("removed = %v", removed)
	}
}
