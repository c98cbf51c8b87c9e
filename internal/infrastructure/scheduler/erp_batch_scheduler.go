package scheduler

import (
	"context"
	"sync"
	"time"

	apperp "github.com/erpbridge/backend/internal/application/erp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchRunner runs the automatic sweep for one tenant
type BatchRunner interface {
	RunForTenant(ctx context.Context, tenantID uuid.UUID) (*apperp.AutoBatchSummary, error)
}

// ErpBatchSchedulerConfig holds configuration for the ERP batch worker pool
type ErpBatchSchedulerConfig struct {
	// MaxConcurrentJobs is the number of workers
	MaxConcurrentJobs int
	// JobTimeout bounds one tenant's sweep
	JobTimeout time.Duration
	// QueueSize is the capacity of the pending job queue
	QueueSize int
	// HistorySize is how many finished jobs are kept for monitoring
	HistorySize int
}

// DefaultErpBatchSchedulerConfig returns default configuration
func DefaultErpBatchSchedulerConfig() ErpBatchSchedulerConfig {
	return ErpBatchSchedulerConfig{
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		QueueSize:         100,
		HistorySize:       100,
	}
}

// Validate validates the configuration
func (c *ErpBatchSchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 || c.HistorySize < 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ErpBatchScheduler runs queued tenant sweeps on a bounded worker pool
type ErpBatchScheduler struct {
	config ErpBatchSchedulerConfig
	runner BatchRunner
	logger *zap.Logger

	jobs      chan *ErpBatchJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// queued tracks tenants with a pending or running job
	queued map[uuid.UUID]struct{}

	historyMu sync.RWMutex
	history   []ErpBatchJob
}

// NewErpBatchScheduler creates a new scheduler
func NewErpBatchScheduler(config ErpBatchSchedulerConfig, runner BatchRunner, logger *zap.Logger) (*ErpBatchScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ErpBatchScheduler{
		config:  config,
		runner:  runner,
		logger:  logger,
		jobs:    make(chan *ErpBatchJob, config.QueueSize),
		queued:  make(map[uuid.UUID]struct{}),
		history: make([]ErpBatchJob, 0, config.HistorySize),
	}, nil
}

// Start starts the worker pool
func (s *ErpBatchScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("ERP batch scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)

	return nil
}

// Stop cancels running jobs and waits for the workers
func (s *ErpBatchScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	close(s.jobs)
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("ERP batch scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("ERP batch scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitTenant queues a sweep for a tenant and returns a snapshot of the queued job.
// A tenant that already has a pending or running job returns ErrJobAlreadyQueued.
func (s *ErpBatchScheduler) SubmitTenant(tenantID uuid.UUID, trigger JobTrigger) (*ErpBatchJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil, ErrSchedulerNotRunning
	}
	if _, ok := s.queued[tenantID]; ok {
		return nil, ErrJobAlreadyQueued
	}

	job := NewErpBatchJob(tenantID, trigger)
	snapshot := *job
	select {
	case s.jobs <- job:
		s.queued[tenantID] = struct{}{}
		s.logger.Debug("ERP batch job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", tenantID.String()),
			zap.String("trigger", string(trigger)),
		)
		return &snapshot, nil
	default:
		return nil, ErrJobQueueFull
	}
}

// TriggerTenant queues a manual sweep for a tenant
func (s *ErpBatchScheduler) TriggerTenant(tenantID uuid.UUID) (*ErpBatchJob, error) {
	return s.SubmitTenant(tenantID, JobTriggerManual)
}

func (s *ErpBatchScheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *ErpBatchScheduler) processJob(ctx context.Context, job *ErpBatchJob, workerID int) {
	defer s.release(job.TenantID)

	job.Start()
	s.logger.Info("Processing ERP batch job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("trigger", string(job.Trigger)),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	summary, err := s.runner.RunForTenant(jobCtx, job.TenantID)
	if err != nil {
		job.Fail(err.Error())
		s.logger.Error("ERP batch job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("tenant_id", job.TenantID.String()),
			zap.Error(err),
		)
		s.addToHistory(job)
		return
	}

	job.Complete(summary)
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("status", string(job.Status)),
		zap.Duration("duration", job.Duration()),
	}
	if summary != nil {
		fields = append(fields,
			zap.Int("generated", summary.GeneratedCount),
			zap.Int("generate_failed", summary.GenerateFailCount),
			zap.Int("sent", summary.SentCount),
			zap.Int("send_failed", summary.SendFailCount),
		)
	}
	s.logger.Info("ERP batch job completed", fields...)
	s.addToHistory(job)
}

func (s *ErpBatchScheduler) release(tenantID uuid.UUID) {
	s.mu.Lock()
	delete(s.queued, tenantID)
	s.mu.Unlock()
}

// addToHistory stores a copy of a finished job, newest first
func (s *ErpBatchScheduler) addToHistory(job *ErpBatchJob) {
	if s.config.HistorySize == 0 {
		return
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]ErpBatchJob{*job}, s.history...)
	if len(s.history) > s.config.HistorySize {
		s.history = s.history[:s.config.HistorySize]
	}
}

// GetJobHistory returns recent finished jobs, newest first
func (s *ErpBatchScheduler) GetJobHistory(limit int) []ErpBatchJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}

	result := make([]ErpBatchJob, limit)
	copy(result, s.history[:limit])
	return result
}

// GetJobHistoryByTenant returns a tenant's recent finished jobs, newest first
func (s *ErpBatchScheduler) GetJobHistoryByTenant(tenantID uuid.UUID, limit int) []ErpBatchJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	result := make([]ErpBatchJob, 0)
	for _, job := range s.history {
		if job.TenantID != tenantID {
			continue
		}
		result = append(result, job)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}
