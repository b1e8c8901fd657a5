// Package sweeper reclaims disk space and registry entries for finished
// jobs once they age past the retention window. Jobs still moving through
// the pipeline are never touched, regardless of age.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"caption/internal/config"
	"caption/internal/fileutil"
	"caption/internal/logging"
	"caption/internal/queue"
)

// Sweeper periodically removes terminal jobs and their artifacts.
type Sweeper struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	window   time.Duration
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a sweeper from the retention settings.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "sweeper"),
		window:   time.Duration(cfg.Retention.WindowMinutes) * time.Minute,
		interval: time.Duration(cfg.Retention.SweepIntervalMinutes) * time.Minute,
	}
}

// Start launches the periodic sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("sweeper already running")
	}
	if s.interval <= 0 {
		return errors.New("sweep interval must be positive")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

// Stop terminates the sweep loop and waits for it to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("retention sweep failed", logging.Error(err))
			}
		}
	}
}

// SweepOnce removes every terminal job older than the retention window along
// with its job-id-prefixed artifacts. Individual file failures are logged and
// do not block the registry entry's removal. Returns the number of jobs swept.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.window)
	expired, err := s.store.TerminalOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, job := range expired {
		s.removeArtifacts(job)
		if _, err := s.store.Remove(ctx, job.ID); err != nil {
			s.logger.Error("failed to remove job record",
				logging.String(logging.FieldJobID, job.ID),
				logging.Error(err))
			continue
		}
		swept++
		s.logger.Info("swept expired job",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("status", string(job.Status)),
			logging.Duration("age", time.Since(job.CreatedAt)))
	}
	return swept, nil
}

func (s *Sweeper) removeArtifacts(job *queue.Job) {
	prefix := job.ID + "_"
	for _, dir := range []string{s.cfg.Paths.UploadDir, s.cfg.Paths.OutputDir} {
		removed, err := fileutil.RemoveWithPrefix(dir, prefix)
		if err != nil {
			s.logger.Warn("failed to remove some artifacts",
				logging.String(logging.FieldJobID, job.ID),
				logging.String("dir", dir),
				logging.Error(err))
		}
		for _, name := range removed {
			s.logger.Debug("removed artifact",
				logging.String(logging.FieldJobID, job.ID),
				logging.String("file", name))
		}
	}
}
