package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"caption/internal/logging"
	"caption/internal/queue"
	"caption/internal/services"
	"caption/internal/stage"
)

func (m *Manager) runWorker(ctx context.Context, workerID int) {
	defer m.wg.Done()
	logger := m.logger.With(logging.Int("worker", workerID))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.ClaimNext(ctx, queue.StatusQueued, queue.StatusExtractingAudio)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			logger.Error("failed to claim next job",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_claim_failed"),
				logging.String(logging.FieldErrorHint, "check registry database access"))
			m.waitOrShutdown(ctx, m.errorRetryInterval)
			continue
		}
		if job == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		m.runJob(ctx, logger, job)
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context, wait time.Duration) {
	if wait <= 0 {
		wait = time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// runJob executes every stage in order for one claimed job. The run ends in
// exactly one terminal registry write: completed after the last stage, or
// error from the first stage that fails. A shutdown mid-stage writes nothing.
func (m *Manager) runJob(ctx context.Context, logger *slog.Logger, job *queue.Job) {
	run := stage.NewRun(job)
	jobCtx := services.WithJobID(ctx, job.ID)
	jobStart := time.Now()

	defer func() {
		if run.AudioPath != "" {
			if err := os.Remove(run.AudioPath); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove temp audio", logging.Error(err),
					logging.String("audio_path", run.AudioPath))
			}
		}
	}()

	for i, stg := range m.stages {
		if i > 0 {
			job.Status = stg.status
			if err := m.store.Update(jobCtx, job); err != nil {
				m.setLastError(err)
				logging.WithContext(jobCtx, logger).Error("failed to persist stage transition",
					logging.Error(err))
				return
			}
		}
		if err := m.executeStage(jobCtx, logger, stg, run); err != nil {
			if errors.Is(err, context.Canceled) {
				logging.WithContext(jobCtx, logger).Debug("job interrupted by shutdown")
			}
			return
		}
	}

	job.SetCompleted(job.OutputPath, job.OutputFile)
	if err := m.store.Update(jobCtx, job); err != nil {
		m.setLastError(err)
		logging.WithContext(jobCtx, logger).Error("failed to persist completion", logging.Error(err))
		return
	}
	logging.WithContext(jobCtx, logger).Info("job completed",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("output_file", job.OutputFile),
		logging.Duration("job_duration", time.Since(jobStart)))
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stg pipelineStage, run *stage.Run) error {
	stageCtx := services.WithStage(services.WithRequestID(ctx, uuid.NewString()), stg.name)
	stageLogger := logging.WithContext(stageCtx, logger)
	stageStart := time.Now()

	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := stg.handler.Prepare(stageCtx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.handleStageFailure(stageCtx, stageLogger, stg, run.Job, err)
		return err
	}
	if err := m.store.Update(stageCtx, run.Job); err != nil {
		m.setLastError(err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(err))
		return err
	}

	if err := stg.handler.Execute(stageCtx, run); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.handleStageFailure(stageCtx, stageLogger, stg, run.Job, err)
		return err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("stage_duration", time.Since(stageStart)))
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, logger *slog.Logger, stg pipelineStage, job *queue.Job, stageErr error) {
	m.setLastError(stageErr)

	message := services.UserMessage(stageErr)
	if message == "" {
		message = fmt.Sprintf("%s failed", stg.name)
	}
	job.SetFailed(message)

	logger.Error("stage failed",
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_message", message))

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}
