package stages

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"caption/internal/audio"
	"caption/internal/config"
	"caption/internal/logging"
	"caption/internal/services"
	"caption/internal/stage"
)

// AudioExtractor demuxes the uploaded video's audio track into a WAV file
// that the transcription service can ingest.
type AudioExtractor struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewAudioExtractor constructs the audio extraction stage.
func NewAudioExtractor(cfg *config.Config, logger *slog.Logger) *AudioExtractor {
	return &AudioExtractor{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "audio-extractor"),
	}
}

func (e *AudioExtractor) Prepare(ctx context.Context, run *stage.Run) error {
	source := run.Job.SourcePath
	if source == "" {
		return services.Wrap(services.ErrValidation, "extracting_audio", "prepare",
			"Uploaded video is missing", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "extracting_audio", "prepare",
			"Uploaded video is missing", err)
	}
	run.Job.ProgressMessage = "Extracting audio"
	return nil
}

func (e *AudioExtractor) Execute(ctx context.Context, run *stage.Run) error {
	// The WAV lands next to the upload with the job-id prefix so retention
	// cleanup catches it even if this run dies before its own removal.
	// Recorded on the run before ffmpeg starts so that a failed extraction's
	// partial file is removed when the run ends, not left for the sweeper.
	dest := filepath.Join(e.cfg.Paths.UploadDir, run.Job.ID+"_audio.wav")
	run.AudioPath = dest

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("extracting audio", logging.String("source", run.Job.SourcePath))

	if err := audio.Extract(ctx, e.cfg.FFmpegBinary(), run.Job.SourcePath, dest); err != nil {
		return services.Wrap(services.ErrExternalTool, "extracting_audio", "run ffmpeg",
			"Failed to extract audio", err)
	}
	return nil
}

func (e *AudioExtractor) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(e.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy("audio-extractor", "ffmpeg not found on PATH")
	}
	return stage.Healthy("audio-extractor")
}
