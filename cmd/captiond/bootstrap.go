package main

import (
	"log/slog"

	"caption/internal/config"
	"caption/internal/queue"
	"caption/internal/stages"
	"caption/internal/transcriber"
	"caption/internal/workflow"
)

func buildWorkflow(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*workflow.Manager, error) {
	client := transcriber.FromConfig(cfg, logger)

	renderStage, err := stages.NewRender(cfg, logger)
	if err != nil {
		return nil, err
	}

	set := workflow.StageSet{
		Extract:    stages.NewAudioExtractor(cfg, logger),
		Upload:     stages.NewAudioUploader(cfg, client, logger),
		Transcribe: stages.NewTranscribe(cfg, store, client, logger),
		Render:     renderStage,
	}
	return workflow.NewManager(cfg, store, logger, set), nil
}
