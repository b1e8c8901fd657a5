// Package render burns a compiled caption program into a video with ffmpeg.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"caption/internal/captions"
	"caption/internal/fileutil"
	"caption/internal/services"
)

// ErrNoCaptions is returned when the program has nothing to draw. Callers
// decide whether that is a job failure or a passthrough.
var ErrNoCaptions = errors.New("no captions to render")

// Options controls how the render invocation runs.
type Options struct {
	FFmpegBinary string
	Timeout      time.Duration
}

// Video re-encodes source with the caption filtergraph applied, writing the
// result to dest. The audio stream is copied untouched. The whole invocation
// is bounded by opts.Timeout; an overrun kills ffmpeg and reports a timeout.
func Video(ctx context.Context, opts Options, source string, program captions.Program, dest string) error {
	if program.Empty() {
		return ErrNoCaptions
	}
	binary := opts.FFmpegBinary
	if binary == "" {
		binary = "ffmpeg"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	// The filtergraph grows with every spoken word; a script file sidesteps
	// argv length limits on long videos.
	scriptPath, cleanup, err := writeFilterScript(dest, program)
	if err != nil {
		return err
	}
	defer cleanup()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-i", source,
		"-filter_script:v", scriptPath,
		"-c:a", "copy",
		"-c:v", "libx264",
		"-preset", "fast",
		"-y",
		dest,
	}
	cmd := exec.CommandContext(runCtx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return context.Canceled
		}
		if runCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: video rendering exceeded %s", services.ErrTimeout, timeout)
		}
		return fmt.Errorf("ffmpeg render: %w: %s", err, tail(string(output), 512))
	}
	if err := fileutil.EnsureNonEmpty(dest); err != nil {
		return fmt.Errorf("ffmpeg render produced no output: %w", err)
	}
	return nil
}

func writeFilterScript(dest string, program captions.Program) (string, func(), error) {
	script, err := os.CreateTemp(filepath.Dir(dest), "filter-*.txt")
	if err != nil {
		return "", nil, fmt.Errorf("create filter script: %w", err)
	}
	cleanup := func() {
		_ = os.Remove(script.Name())
	}
	if _, err := script.WriteString(program.FilterGraph()); err != nil {
		_ = script.Close()
		cleanup()
		return "", nil, fmt.Errorf("write filter script: %w", err)
	}
	if err := script.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close filter script: %w", err)
	}
	return script.Name(), cleanup, nil
}

func tail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}
