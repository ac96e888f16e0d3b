package printing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/shared"
)

const defaultFetchLimit = 10

// AgentService is the print agent's side of the job outbox. Jobs are
// addressed by token; outcome calls are idempotent so the agent may repeat
// them after a dropped connection.
type AgentService struct {
	jobRepo   printing.PrintJobRepository
	txManager shared.TransactionManager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAgentService creates a new AgentService
func NewAgentService(jobRepo printing.PrintJobRepository, txManager shared.TransactionManager, logger *zap.Logger) *AgentService {
	return &AgentService{
		jobRepo:   jobRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AgentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Fetch hands pending jobs to an agent poll. The handoff persists before
// the response leaves, so a job is never delivered to two polls. Locked
// rows are skipped, letting concurrent agents partition the queue.
func (s *AgentService) Fetch(ctx context.Context, storeID uuid.UUID, req FetchJobsRequest) ([]JobResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultFetchLimit
	}

	var fetched []*printing.PrintJob
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		jobs, err := s.jobRepo.FindPendingForFetch(ctx, storeID, req.TerminalID, limit)
		if err != nil {
			return err
		}
		for i := range jobs {
			job := &jobs[i]
			if err := job.MarkFetched(); err != nil {
				return err
			}
			fetched = append(fetched, job)
		}
		if len(fetched) == 0 {
			return nil
		}
		return s.jobRepo.SaveAll(ctx, fetched)
	})
	if err != nil {
		return nil, err
	}

	responses := make([]JobResponse, len(fetched))
	for i, job := range fetched {
		responses[i] = ToJobResponse(job)
	}
	return responses, nil
}

// Complete records a successful print. Repeating the call for an already
// completed job succeeds without another transition.
func (s *AgentService) Complete(ctx context.Context, token uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := job.Complete(); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, job)
	resp := ToJobResponse(job)
	return &resp, nil
}

// Fail records the agent's error. While the retry budget lasts the job
// goes straight back to pending so the next poll retries it; once the
// budget is spent it stays failed for manual intervention.
func (s *AgentService) Fail(ctx context.Context, token uuid.UUID, req FailJobRequest) (*JobResponse, error) {
	job, err := s.jobRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := job.Fail(req.ErrorCode, req.ErrorMessage); err != nil {
		return nil, err
	}

	if job.CanRequeue() {
		if err := job.Requeue(); err != nil {
			return nil, err
		}
		s.logger.Info("print job requeued after failure",
			zap.String("token", token.String()),
			zap.String("ref_number", job.RefNumber),
			zap.Int("retry_count", job.RetryCount),
		)
	} else {
		s.logger.Warn("print job failed with retry budget spent",
			zap.String("token", token.String()),
			zap.String("ref_number", job.RefNumber),
			zap.String("error_message", req.ErrorMessage),
		)
	}

	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, job)
	resp := ToJobResponse(job)
	return &resp, nil
}

// ListByStatus lists the store's jobs in one status, newest first
func (s *AgentService) ListByStatus(ctx context.Context, storeID uuid.UUID, status printing.JobStatus, filter shared.Filter) ([]JobResponse, error) {
	jobs, err := s.jobRepo.FindByStatus(ctx, storeID, status, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]JobResponse, len(jobs))
	for i := range jobs {
		responses[i] = ToJobResponse(&jobs[i])
	}
	return responses, nil
}

// SweepStuck reports jobs fetched before the cutoff with no outcome. They
// are surfaced for manual intervention, never auto-cancelled.
func (s *AgentService) SweepStuck(ctx context.Context, olderThan time.Duration) (int, error) {
	stuck, err := s.jobRepo.FindStuck(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	for i := range stuck {
		s.logger.Warn("print job stuck without outcome",
			zap.String("token", stuck[i].Token.String()),
			zap.String("ref_number", stuck[i].RefNumber),
			zap.String("job_type", string(stuck[i].JobType)),
		)
	}
	return len(stuck), nil
}

func (s *AgentService) publishEvents(ctx context.Context, job *printing.PrintJob) {
	if s.publisher == nil {
		return
	}
	for _, event := range job.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	job.ClearDomainEvents()
}
