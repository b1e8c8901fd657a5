package audio_test

import (
	"context"
	"path/filepath"
	"testing"

	"caption/internal/audio"
	"caption/internal/testsupport"
)

func TestExtractWritesAudioFile(t *testing.T) {
	// Stub ffmpeg writes a byte to its final argument, mimicking output creation.
	testsupport.StubBinary(t, "ffmpeg", `for dest; do :; done
printf 'RIFF' > "$dest"`)

	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	testsupport.WriteFile(t, source, 128)
	dest := filepath.Join(dir, "clip.wav")

	if err := audio.Extract(context.Background(), "ffmpeg", source, dest); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
}

func TestExtractFailsWhenToolExitsNonZero(t *testing.T) {
	testsupport.StubBinary(t, "ffmpeg", `echo "No audio stream" >&2
exit 1`)

	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	testsupport.WriteFile(t, source, 128)

	err := audio.Extract(context.Background(), "ffmpeg", source, filepath.Join(dir, "clip.wav"))
	if err == nil {
		t.Fatal("expected error from failing tool")
	}
}

func TestExtractFailsOnEmptyOutput(t *testing.T) {
	testsupport.StubBinary(t, "ffmpeg", `for dest; do :; done
: > "$dest"`)

	dir := t.TempDir()
	source := filepath.Join(dir, "clip.mp4")
	testsupport.WriteFile(t, source, 128)

	err := audio.Extract(context.Background(), "ffmpeg", source, filepath.Join(dir, "clip.wav"))
	if err == nil {
		t.Fatal("expected error for empty output artifact")
	}
}
