package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants the daily batch runs for
type TenantProvider interface {
	GetAllActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// Hour and Minute are the daily run time in the server's local zone
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Hour:          6,
		Minute:        0,
		CheckInterval: time.Minute,
	}
}

// CronTrigger queues one ERP batch job per active tenant once a day
type CronTrigger struct {
	config         CronTriggerConfig
	scheduler      *ErpBatchScheduler
	tenantProvider TenantProvider
	logger         *zap.Logger
	now            func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config CronTriggerConfig,
	scheduler *ErpBatchScheduler,
	tenantProvider TenantProvider,
	logger *zap.Logger,
) *CronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &CronTrigger{
		config:         config,
		scheduler:      scheduler,
		tenantProvider: tenantProvider,
		logger:         logger,
		now:            time.Now,
	}
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("ERP batch cron trigger started",
		zap.Int("hour", c.config.Hour),
		zap.Int("minute", c.config.Minute),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("ERP batch cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger queues the daily batch at most once per calendar day
func (c *CronTrigger) checkAndTrigger(ctx context.Context) bool {
	now := c.now()
	currentDate := now.Format("2006-01-02")

	if now.Hour() != c.config.Hour || now.Minute() != c.config.Minute {
		return false
	}

	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering daily ERP batch")
	if _, err := c.TriggerAll(ctx); err != nil {
		c.logger.Error("Failed to trigger daily ERP batch", zap.Error(err))
	}
	return true
}

// TriggerAll queues a scheduled job for every active tenant and returns how many were queued.
// Tenants that already have a job queued are skipped.
func (c *CronTrigger) TriggerAll(ctx context.Context) (int, error) {
	tenantIDs, err := c.tenantProvider.GetAllActiveTenantIDs(ctx)
	if err != nil {
		return 0, err
	}

	c.logger.Info("Scheduling ERP batch for tenants",
		zap.Int("tenant_count", len(tenantIDs)),
	)

	queued := 0
	for _, tenantID := range tenantIDs {
		if _, err := c.scheduler.SubmitTenant(tenantID, JobTriggerScheduled); err != nil {
			if errors.Is(err, ErrJobAlreadyQueued) {
				continue
			}
			c.logger.Error("Failed to schedule ERP batch for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		queued++
	}
	return queued, nil
}
