package scheduler

import (
	"context"
	"time"
)

// SessionSweeper raises alerts for sessions left open past the warning age
type SessionSweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// PrintJobSweeper reports print jobs with no outcome past the cutoff
type PrintJobSweeper interface {
	SweepStuck(ctx context.Context, olderThan time.Duration) (int, error)
}

// TicketSweeper alerts on kitchen tickets stuck in printing past the cutoff
type TicketSweeper interface {
	SweepStuck(ctx context.Context, olderThan time.Duration) (int, error)
}

// SweepExecutorConfig holds the stuck cutoffs per sweep
type SweepExecutorConfig struct {
	StuckJobCutoff    time.Duration
	StuckTicketCutoff time.Duration
}

// SweepExecutor dispatches each sweep type to its owning service
type SweepExecutor struct {
	config   SweepExecutorConfig
	sessions SessionSweeper
	jobs     PrintJobSweeper
	tickets  TicketSweeper
}

// NewSweepExecutor creates a sweep executor over the three sweep owners
func NewSweepExecutor(
	config SweepExecutorConfig,
	sessions SessionSweeper,
	jobs PrintJobSweeper,
	tickets TicketSweeper,
) *SweepExecutor {
	return &SweepExecutor{
		config:   config,
		sessions: sessions,
		jobs:     jobs,
		tickets:  tickets,
	}
}

// Execute runs the job's sweep and returns how many rows it acted on
func (e *SweepExecutor) Execute(ctx context.Context, job *Job) (int, error) {
	switch job.SweepType {
	case SweepSessionOverdue:
		return e.sessions.SweepOverdue(ctx)
	case SweepPrintJobsStuck:
		return e.jobs.SweepStuck(ctx, e.config.StuckJobCutoff)
	case SweepKitchenTicketsStuck:
		return e.tickets.SweepStuck(ctx, e.config.StuckTicketCutoff)
	default:
		return 0, ErrUnknownSweepType
	}
}

var _ JobExecutor = (*SweepExecutor)(nil)
