package stages

import (
	"context"
	"log/slog"
	"strings"

	"caption/internal/config"
	"caption/internal/logging"
	"caption/internal/services"
	"caption/internal/stage"
	"caption/internal/transcriber"
)

// AudioUploader sends the extracted audio to the transcription service's
// hosted storage and records the resulting audio URL on the run.
type AudioUploader struct {
	cfg    *config.Config
	client *transcriber.Client
	logger *slog.Logger
}

// NewAudioUploader constructs the audio upload stage.
func NewAudioUploader(cfg *config.Config, client *transcriber.Client, logger *slog.Logger) *AudioUploader {
	return &AudioUploader{
		cfg:    cfg,
		client: client,
		logger: logging.NewComponentLogger(logger, "audio-uploader"),
	}
}

func (u *AudioUploader) Prepare(ctx context.Context, run *stage.Run) error {
	if run.AudioPath == "" {
		return services.Wrap(services.ErrValidation, "uploading_audio", "prepare",
			"No extracted audio to upload", nil)
	}
	run.Job.ProgressMessage = "Uploading audio"
	return nil
}

func (u *AudioUploader) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, u.logger)
	logger.Info("uploading audio", logging.String("audio_path", run.AudioPath))

	audioURL, err := u.client.Upload(ctx, run.AudioPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "uploading_audio", "upload audio",
			"Failed to upload audio", err)
	}
	run.AudioURL = audioURL
	return nil
}

func (u *AudioUploader) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(u.cfg.Transcriber.APIKey) == "" {
		return stage.Unhealthy("audio-uploader", "transcription API key not configured")
	}
	return stage.Healthy("audio-uploader")
}
