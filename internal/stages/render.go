package stages

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"caption/internal/captions"
	"caption/internal/config"
	"caption/internal/logging"
	"caption/internal/render"
	"caption/internal/services"
	"caption/internal/stage"
)

// Render compiles the transcript words into a caption program and burns
// them into the output video.
type Render struct {
	cfg    *config.Config
	style  captions.Style
	logger *slog.Logger
}

// NewRender constructs the rendering stage.
func NewRender(cfg *config.Config, logger *slog.Logger) (*Render, error) {
	style, err := captions.ParseStyle(cfg.Render.CaptionStyle)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rendering", "parse style", "", err)
	}
	return &Render{
		cfg:    cfg,
		style:  style,
		logger: logging.NewComponentLogger(logger, "render"),
	}, nil
}

func (r *Render) Prepare(ctx context.Context, run *stage.Run) error {
	if len(run.Words) == 0 {
		return services.Wrap(services.ErrValidation, "rendering", "prepare",
			"No words were transcribed to generate captions", nil)
	}
	run.Program = captions.Compile(run.Words, r.style)
	if run.Program.Empty() {
		return services.Wrap(services.ErrValidation, "rendering", "compile captions",
			"Could not create caption filters", nil)
	}
	run.Job.ProgressMessage = "Rendering video"
	return nil
}

func (r *Render) Execute(ctx context.Context, run *stage.Run) error {
	outputFile := run.Job.ID + "_captioned.mp4"
	outputPath := filepath.Join(r.cfg.Paths.OutputDir, outputFile)

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("rendering captions",
		logging.Int("cues", len(run.Program.Cues)),
		logging.String("output", outputPath))

	opts := render.Options{
		FFmpegBinary: r.cfg.FFmpegBinary(),
		Timeout:      time.Duration(r.cfg.Render.TimeoutSeconds) * time.Second,
	}
	if err := render.Video(ctx, opts, run.Job.SourcePath, run.Program, outputPath); err != nil {
		switch {
		case errors.Is(err, services.ErrTimeout):
			return services.Wrap(services.ErrTimeout, "rendering", "run ffmpeg",
				"Video rendering took too long - please try a shorter video", err)
		case errors.Is(err, render.ErrNoCaptions):
			return services.Wrap(services.ErrValidation, "rendering", "run ffmpeg",
				"Could not create caption filters", err)
		default:
			return services.Wrap(services.ErrExternalTool, "rendering", "run ffmpeg",
				"Failed to render captioned video", err)
		}
	}

	run.Job.OutputFile = outputFile
	run.Job.OutputPath = outputPath
	return nil
}

func (r *Render) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(r.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy("render", "ffmpeg not found on PATH")
	}
	return stage.Healthy("render")
}
