package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SweepTriggerConfig holds the interval for each sweep
type SweepTriggerConfig struct {
	SessionOverdueInterval time.Duration
	PrintJobsInterval      time.Duration
	KitchenTicketsInterval time.Duration
}

// DefaultSweepTriggerConfig returns default sweep intervals. Sessions age
// in hours; stuck print work surfaces within a minute or two.
func DefaultSweepTriggerConfig() SweepTriggerConfig {
	return SweepTriggerConfig{
		SessionOverdueInterval: time.Hour,
		PrintJobsInterval:      time.Minute,
		KitchenTicketsInterval: time.Minute,
	}
}

// SweepTrigger submits sweep jobs to the scheduler on fixed intervals,
// one ticker goroutine per sweep type.
type SweepTrigger struct {
	config    SweepTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSweepTrigger creates a sweep trigger over the scheduler
func NewSweepTrigger(config SweepTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *SweepTrigger {
	return &SweepTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts one ticker loop per sweep type
func (t *SweepTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	intervals := map[SweepType]time.Duration{
		SweepSessionOverdue:      t.config.SessionOverdueInterval,
		SweepPrintJobsStuck:      t.config.PrintJobsInterval,
		SweepKitchenTicketsStuck: t.config.KitchenTicketsInterval,
	}

	for sweepType, interval := range intervals {
		if interval <= 0 {
			t.logger.Info("Sweep disabled", zap.String("sweep_type", string(sweepType)))
			continue
		}
		t.wg.Add(1)
		go t.runLoop(ctx, sweepType, interval)
	}

	t.logger.Info("Sweep trigger started",
		zap.Duration("session_overdue_interval", t.config.SessionOverdueInterval),
		zap.Duration("print_jobs_interval", t.config.PrintJobsInterval),
		zap.Duration("kitchen_tickets_interval", t.config.KitchenTicketsInterval),
	)

	return nil
}

// Stop stops all ticker loops
func (t *SweepTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sweep trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop submits a job for the sweep type on every tick
func (t *SweepTrigger) runLoop(ctx context.Context, sweepType SweepType, interval time.Duration) {
	defer t.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.scheduler.SubmitJob(NewJob(sweepType)); err != nil {
				t.logger.Warn("Failed to submit sweep job",
					zap.String("sweep_type", string(sweepType)),
					zap.Error(err),
				)
			}
		}
	}
}

// TriggerNow submits a sweep immediately, outside its interval
func (t *SweepTrigger) TriggerNow(sweepType SweepType) error {
	return t.scheduler.SubmitJob(NewJob(sweepType))
}
