package printing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// DefaultMaxRetries bounds requeues of a failed print job
const DefaultMaxRetries = 3

// PrintJob is one durable outbox row for the print agent. The Token is the
// agent-facing key: fetch, complete and fail calls all address the job by
// token, which makes outcome reporting idempotent.
type PrintJob struct {
	shared.StoreAggregateRoot
	Token      uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	JobType    JobType
	Status     JobStatus
	TerminalID *uuid.UUID // target terminal; nil means any agent of the store

	// RefID points at the source document: the bill for receipts, the
	// kitchen ticket for station prints.
	RefID     uuid.UUID
	RefNumber string

	Payload   json.RawMessage `gorm:"type:jsonb"`
	PaperSize PaperSize
	Copies    int

	RetryCount   int
	MaxRetries   int
	ErrorCode    string
	ErrorMessage string

	FetchedAt   *time.Time
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (PrintJob) TableName() string {
	return "print_jobs"
}

// NewPrintJob queues a job for the agent
func NewPrintJob(storeID uuid.UUID, jobType JobType, terminalID *uuid.UUID, refID uuid.UUID, refNumber string, payload json.RawMessage, paperSize PaperSize) (*PrintJob, error) {
	if !jobType.IsValid() {
		return nil, shared.NewValidationError("INVALID_JOB_TYPE", "Unknown print job type")
	}
	if refID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_REF", "Source document ID is required")
	}
	if len(payload) == 0 {
		return nil, shared.NewValidationError("EMPTY_PAYLOAD", "Print payload cannot be empty")
	}
	if !paperSize.IsValid() {
		paperSize = PaperSizeReceipt80MM
	}

	job := &PrintJob{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Token:              uuid.New(),
		JobType:            jobType,
		Status:             JobStatusPending,
		TerminalID:         terminalID,
		RefID:              refID,
		RefNumber:          refNumber,
		Payload:            payload,
		PaperSize:          paperSize,
		Copies:             1,
		MaxRetries:         DefaultMaxRetries,
	}

	job.AddDomainEvent(NewPrintJobQueuedEvent(job))
	return job, nil
}

// SetCopies sets the number of copies to print
func (j *PrintJob) SetCopies(copies int) error {
	if copies < 1 || copies > 10 {
		return shared.NewValidationError("INVALID_COPIES", "Copies must be between 1 and 10")
	}
	j.Copies = copies
	j.UpdatedAt = time.Now()
	return nil
}

// MarkFetched hands the job to an agent poll
func (j *PrintJob) MarkFetched() error {
	if !j.Status.CanTransitionTo(JobStatusFetched) {
		return shared.NewConflictError("INVALID_STATE", "Job cannot be fetched in its current status",
			string(JobStatusPending), string(j.Status))
	}

	now := time.Now()
	j.Status = JobStatusFetched
	j.FetchedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// MarkPrinting records the agent's print-start report
func (j *PrintJob) MarkPrinting() error {
	if !j.Status.CanTransitionTo(JobStatusPrinting) {
		return shared.NewConflictError("INVALID_STATE", "Job is not fetched",
			string(JobStatusFetched), string(j.Status))
	}

	j.Status = JobStatusPrinting
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
	return nil
}

// Complete records a successful print. Completing an already completed job
// is a no-op, so the agent may safely repeat the call.
func (j *PrintJob) Complete() error {
	if j.Status == JobStatusCompleted {
		return nil
	}
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return shared.NewConflictError("INVALID_STATE", "Job cannot complete in its current status",
			string(JobStatusPrinting), string(j.Status))
	}

	now := time.Now()
	j.Status = JobStatusCompleted
	j.ErrorCode = ""
	j.ErrorMessage = ""
	j.CompletedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobCompletedEvent(j))
	return nil
}

// Fail records a failed print with the agent's error
func (j *PrintJob) Fail(errorCode, errorMessage string) error {
	if j.Status == JobStatusFailed {
		return nil
	}
	if !j.Status.CanTransitionTo(JobStatusFailed) {
		return shared.NewConflictError("INVALID_STATE", "Job cannot fail in its current status",
			string(JobStatusFetched), string(j.Status))
	}

	j.Status = JobStatusFailed
	j.ErrorCode = errorCode
	j.ErrorMessage = errorMessage
	j.UpdatedAt = time.Now()
	j.IncrementVersion()

	j.AddDomainEvent(NewPrintJobFailedEvent(j))
	return nil
}

// CanRequeue reports whether another retry is allowed
func (j *PrintJob) CanRequeue() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// Requeue puts a failed job back in the queue with a fresh attempt
func (j *PrintJob) Requeue() error {
	if j.Status != JobStatusFailed {
		return shared.NewConflictError("INVALID_STATE", "Only failed jobs can be requeued",
			string(JobStatusFailed), string(j.Status))
	}
	if j.RetryCount >= j.MaxRetries {
		return shared.NewValidationError("RETRY_EXHAUSTED",
			fmt.Sprintf("Job already retried %d of %d times", j.RetryCount, j.MaxRetries))
	}

	j.Status = JobStatusPending
	j.RetryCount++
	j.ErrorCode = ""
	j.ErrorMessage = ""
	j.FetchedAt = nil
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
	return nil
}

// IsPending reports whether the job waits for an agent poll
func (j *PrintJob) IsPending() bool {
	return j.Status == JobStatusPending
}

// IsCompleted reports whether the job printed
func (j *PrintJob) IsCompleted() bool {
	return j.Status == JobStatusCompleted
}
