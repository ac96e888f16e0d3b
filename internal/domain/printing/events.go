package printing

import (
	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePrintJob = "PrintJob"

// Event type constants
const (
	EventTypePrintJobQueued    = "PrintJobQueued"
	EventTypePrintJobCompleted = "PrintJobCompleted"
	EventTypePrintJobFailed    = "PrintJobFailed"
)

// PrintJobQueuedEvent is raised when a job enters the queue
type PrintJobQueuedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID `json:"job_id"`
	Token     uuid.UUID `json:"token"`
	JobType   JobType   `json:"job_type"`
	RefID     uuid.UUID `json:"ref_id"`
	RefNumber string    `json:"ref_number"`
}

// NewPrintJobQueuedEvent creates a new PrintJobQueuedEvent
func NewPrintJobQueuedEvent(j *PrintJob) *PrintJobQueuedEvent {
	return &PrintJobQueuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobQueued, AggregateTypePrintJob, j.ID, j.StoreID),
		JobID:           j.ID,
		Token:           j.Token,
		JobType:         j.JobType,
		RefID:           j.RefID,
		RefNumber:       j.RefNumber,
	}
}

// EventType returns the event type name
func (e *PrintJobQueuedEvent) EventType() string {
	return EventTypePrintJobQueued
}

// PrintJobCompletedEvent is raised when the agent confirms the print
type PrintJobCompletedEvent struct {
	shared.BaseDomainEvent
	JobID   uuid.UUID `json:"job_id"`
	Token   uuid.UUID `json:"token"`
	JobType JobType   `json:"job_type"`
}

// NewPrintJobCompletedEvent creates a new PrintJobCompletedEvent
func NewPrintJobCompletedEvent(j *PrintJob) *PrintJobCompletedEvent {
	return &PrintJobCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobCompleted, AggregateTypePrintJob, j.ID, j.StoreID),
		JobID:           j.ID,
		Token:           j.Token,
		JobType:         j.JobType,
	}
}

// EventType returns the event type name
func (e *PrintJobCompletedEvent) EventType() string {
	return EventTypePrintJobCompleted
}

// PrintJobFailedEvent is raised when the agent reports a failed print
type PrintJobFailedEvent struct {
	shared.BaseDomainEvent
	JobID        uuid.UUID `json:"job_id"`
	Token        uuid.UUID `json:"token"`
	JobType      JobType   `json:"job_type"`
	RetryCount   int       `json:"retry_count"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// NewPrintJobFailedEvent creates a new PrintJobFailedEvent
func NewPrintJobFailedEvent(j *PrintJob) *PrintJobFailedEvent {
	return &PrintJobFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePrintJobFailed, AggregateTypePrintJob, j.ID, j.StoreID),
		JobID:           j.ID,
		Token:           j.Token,
		JobType:         j.JobType,
		RetryCount:      j.RetryCount,
		ErrorCode:       j.ErrorCode,
		ErrorMessage:    j.ErrorMessage,
	}
}

// EventType returns the event type name
func (e *PrintJobFailedEvent) EventType() string {
	return EventTypePrintJobFailed
}
