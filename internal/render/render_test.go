package render_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"caption/internal/captions"
	"caption/internal/render"
	"caption/internal/services"
	"caption/internal/testsupport"
	"caption/internal/transcript"
)

func testProgram() captions.Program {
	return captions.Compile([]transcript.Word{
		{Text: "hello", StartMS: 0, EndMS: 500},
		{Text: "world", StartMS: 500, EndMS: 1000},
	}, captions.StyleBox)
}

func TestVideoProducesOutput(t *testing.T) {
	testsupport.StubBinary(t, "ffmpeg", `for dest; do :; done
printf 'mp4' > "$dest"`)

	dir := t.TempDir()
	source := filepath.Join(dir, "in.mp4")
	testsupport.WriteFile(t, source, 256)
	dest := filepath.Join(dir, "out.mp4")

	opts := render.Options{FFmpegBinary: "ffmpeg", Timeout: time.Minute}
	if err := render.Video(context.Background(), opts, source, testProgram(), dest); err != nil {
		t.Fatalf("Video failed: %v", err)
	}
}

func TestVideoRejectsEmptyProgram(t *testing.T) {
	opts := render.Options{FFmpegBinary: "ffmpeg", Timeout: time.Minute}
	err := render.Video(context.Background(), opts, "in.mp4", captions.Program{}, "out.mp4")
	if !errors.Is(err, render.ErrNoCaptions) {
		t.Fatalf("err = %v, want ErrNoCaptions", err)
	}
}

func TestVideoReportsToolFailure(t *testing.T) {
	testsupport.StubBinary(t, "ffmpeg", `echo "unsupported codec" >&2
exit 1`)

	dir := t.TempDir()
	source := filepath.Join(dir, "in.mp4")
	testsupport.WriteFile(t, source, 256)

	opts := render.Options{FFmpegBinary: "ffmpeg", Timeout: time.Minute}
	err := render.Video(context.Background(), opts, source, testProgram(), filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Fatal("expected error from failing tool")
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatalf("tool failure misclassified as timeout: %v", err)
	}
}

func TestVideoTimesOut(t *testing.T) {
	testsupport.StubBinary(t, "ffmpeg", `sleep 5`)

	dir := t.TempDir()
	source := filepath.Join(dir, "in.mp4")
	testsupport.WriteFile(t, source, 256)

	opts := render.Options{FFmpegBinary: "ffmpeg", Timeout: 50 * time.Millisecond}
	err := render.Video(context.Background(), opts, source, testProgram(), filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want timeout classification", err)
	}
}
