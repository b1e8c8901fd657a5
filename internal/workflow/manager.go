package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"caption/internal/config"
	"caption/internal/logging"
	"caption/internal/queue"
	"caption/internal/stage"
)

// StageSet bundles the concrete pipeline handlers the manager orchestrates.
type StageSet struct {
	Extract    stage.Handler
	Upload     stage.Handler
	Transcribe stage.Handler
	Render     stage.Handler
}

type pipelineStage struct {
	name    string
	handler stage.Handler
	status  queue.Status
}

// Manager drives jobs through the pipeline with a bounded pool of workers.
// Each worker claims one queued job at a time and runs it end to end, so at
// most worker_count jobs are in flight while the rest wait in queued.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	stages             []pipelineStage
	workerCount        int
	pollInterval       time.Duration
	errorRetryInterval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager over the given stage set.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, set StageSet) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	workerCount := cfg.Workflow.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow-manager"),
		stages: []pipelineStage{
			{name: "extracting_audio", handler: set.Extract, status: queue.StatusExtractingAudio},
			{name: "uploading_audio", handler: set.Upload, status: queue.StatusUploadingAudio},
			{name: "transcribing", handler: set.Transcribe, status: queue.StatusTranscribing},
			{name: "rendering", handler: set.Render, status: queue.StatusRendering},
		},
		workerCount:        workerCount,
		pollInterval:       time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorRetryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	for _, stg := range m.stages {
		if stg.handler == nil {
			return errors.New("workflow stages not configured")
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	m.wg.Add(m.workerCount)
	for i := 0; i < m.workerCount; i++ {
		go m.runWorker(runCtx, i)
	}
	return nil
}

// Stop terminates background processing and waits for workers to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Health reports the readiness of every configured stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	health := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		health = append(health, stg.handler.HealthCheck(ctx))
	}
	return health
}

// LastError returns the most recent stage or queue failure, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
