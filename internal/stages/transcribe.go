package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"caption/internal/config"
	"caption/internal/logging"
	"caption/internal/queue"
	"caption/internal/services"
	"caption/internal/stage"
	"caption/internal/transcriber"
)

// Transcribe submits the hosted audio for transcription and polls until the
// service produces word timestamps or the poll budget is exhausted.
type Transcribe struct {
	cfg    *config.Config
	store  *queue.Store
	client *transcriber.Client
	logger *slog.Logger
}

// NewTranscribe constructs the transcription stage. The store is used to
// surface the service's intermediate status while polling.
func NewTranscribe(cfg *config.Config, store *queue.Store, client *transcriber.Client, logger *slog.Logger) *Transcribe {
	return &Transcribe{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logging.NewComponentLogger(logger, "transcribe"),
	}
}

func (t *Transcribe) Prepare(ctx context.Context, run *stage.Run) error {
	if run.AudioURL == "" {
		return services.Wrap(services.ErrValidation, "transcribing", "prepare",
			"No uploaded audio to transcribe", nil)
	}
	run.Job.ProgressMessage = "Transcribing"
	return nil
}

func (t *Transcribe) Execute(ctx context.Context, run *stage.Run) error {
	logger := logging.WithContext(ctx, t.logger)

	transcriptID, err := t.client.Submit(ctx, run.AudioURL)
	if err != nil {
		return services.Wrap(services.ErrTransient, "transcribing", "submit transcript",
			"Failed to transcribe audio", err)
	}
	run.TranscriptID = transcriptID

	words, err := t.client.Poll(ctx, transcriptID, func(status string) {
		// Best-effort progress surfacing; a failed write never stops the poll.
		run.Job.ProgressMessage = fmt.Sprintf("Transcribing (%s)", status)
		if updateErr := t.store.Update(ctx, run.Job); updateErr != nil {
			logger.Warn("failed to persist transcription progress", logging.Error(updateErr))
		}
	})
	if err != nil {
		return t.classify(err)
	}
	if len(words) == 0 {
		return services.Wrap(services.ErrValidation, "transcribing", "collect words",
			"No words were transcribed to generate captions", nil)
	}

	logger.Info("transcription completed",
		logging.String("transcript_id", transcriptID),
		logging.Int("words", len(words)))
	run.Words = words
	return nil
}

func (t *Transcribe) classify(err error) error {
	switch {
	case errors.Is(err, transcriber.ErrPollTimeout):
		return services.Wrap(services.ErrTimeout, "transcribing", "poll transcript",
			"Transcription timeout - please try with a shorter video", nil)
	case errors.Is(err, transcriber.ErrTranscription):
		return services.Wrap(services.ErrTransient, "transcribing", "poll transcript",
			"Transcription failed", err)
	default:
		return services.Wrap(services.ErrTransient, "transcribing", "poll transcript",
			"Failed to transcribe audio", err)
	}
}

func (t *Transcribe) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(t.cfg.Transcriber.APIKey) == "" {
		return stage.Unhealthy("transcribe", "transcription API key not configured")
	}
	return stage.Healthy("transcribe")
}
