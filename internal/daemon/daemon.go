package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"caption/internal/api"
	"caption/internal/config"
	"caption/internal/logging"
	"caption/internal/queue"
	"caption/internal/sweeper"
	"caption/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance
// execution via a file lock.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	workflow *workflow.Manager
	sweeper  *sweeper.Sweeper

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LockFilePath string
	Workflow     api.WorkflowStatus
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, wf *workflow.Manager, sw *sweeper.Sweeper) (*Daemon, error) {
	if cfg == nil || store == nil || wf == nil || sw == nil {
		return nil, errors.New("daemon requires config, store, workflow manager, and sweeper")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "captiond.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		workflow: wf,
		sweeper:  sw,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock and launches the workflow, sweeper, and API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another captiond instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.workflow.Start(runCtx); err != nil {
		d.releaseOnFailedStart()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.sweeper.Start(runCtx); err != nil {
		d.workflow.Stop()
		d.releaseOnFailedStart()
		return fmt.Errorf("start sweeper: %w", err)
	}
	if err := d.api.start(runCtx); err != nil {
		d.sweeper.Stop()
		d.workflow.Stop()
		d.releaseOnFailedStart()
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("captiond started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) releaseOnFailedStart() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	_ = d.lock.Unlock()
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.sweeper.Stop()
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("captiond stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the API listener address, useful when binding to port 0.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}

// Status reports daemon runtime information.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("failed to read queue stats", logging.Error(err))
	}

	var health []api.StageHealth
	for _, h := range d.workflow.Health(ctx) {
		health = append(health, api.StageHealth{Name: h.Name, Ready: h.Ready, Detail: h.Detail})
	}

	var lastErr string
	if err := d.workflow.LastError(); err != nil {
		lastErr = err.Error()
	}

	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		Workflow: api.WorkflowStatus{
			Running:     d.running.Load(),
			QueueStats:  api.MergeStats(stats),
			LastError:   lastErr,
			StageHealth: health,
		},
	}
}

// ListJobs returns registry jobs filtered by optional statuses.
func (d *Daemon) ListJobs(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	return d.store.List(ctx, statuses...)
}
