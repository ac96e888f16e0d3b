package printing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// PrintJobRepository defines persistence for the print job outbox.
//
// FindPendingForFetch is the agent poll path: it uses FOR UPDATE SKIP LOCKED
// inside the surrounding transaction so concurrent agent polls partition the
// queue without handing the same job out twice.
type PrintJobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PrintJob, error)
	FindByToken(ctx context.Context, token uuid.UUID) (*PrintJob, error)
	FindByRef(ctx context.Context, refID uuid.UUID) ([]PrintJob, error)
	FindByStatus(ctx context.Context, storeID uuid.UUID, status JobStatus, filter shared.Filter) ([]PrintJob, error)
	// FindPendingForFetch loads up to limit pending jobs for a terminal
	// (or store-wide jobs with no terminal binding) ordered by creation
	// time, skipping locked rows. Must be called inside a transaction.
	FindPendingForFetch(ctx context.Context, storeID uuid.UUID, terminalID *uuid.UUID, limit int) ([]PrintJob, error)
	// FindStuck surfaces jobs that were fetched before the cutoff and
	// never got an outcome report.
	FindStuck(ctx context.Context, cutoff time.Time) ([]PrintJob, error)
	CountPending(ctx context.Context, storeID uuid.UUID) (int64, error)

	Save(ctx context.Context, job *PrintJob) error
	SaveAll(ctx context.Context, jobs []*PrintJob) error
}

// ReceiptTemplateRepository defines persistence for receipt templates
type ReceiptTemplateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReceiptTemplate, error)
	FindDefaultForBrand(ctx context.Context, storeID, brandID uuid.UUID) (*ReceiptTemplate, error)
	// Save persists the template; marking one default clears the flag on
	// the brand's other templates in the same transaction.
	Save(ctx context.Context, template *ReceiptTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}
