// Package audio shells out to ffmpeg to pull the audio track out of an
// uploaded video so it can be sent for transcription.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"caption/internal/fileutil"
)

// Extract demuxes the source video's audio into a stereo 44.1kHz PCM WAV at
// dest. The WAV container keeps the transcription upload format-agnostic.
func Extract(ctx context.Context, ffmpegBinary, source, dest string) error {
	args := []string{
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		"-y",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return context.Canceled
		}
		return fmt.Errorf("ffmpeg extract: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if err := fileutil.EnsureNonEmpty(dest); err != nil {
		return fmt.Errorf("ffmpeg extract produced no audio: %w", err)
	}
	return nil
}
