package kitchen

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// KitchenTicketRepository defines persistence for kitchen tickets.
//
// The claim path must let concurrent pollers partition the new-ticket queue
// without contention: FindNewForClaim uses FOR UPDATE SKIP LOCKED inside the
// surrounding transaction, so two pollers never receive the same ticket.
type KitchenTicketRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*KitchenTicket, error)
	FindByBill(ctx context.Context, billID uuid.UUID) ([]KitchenTicket, error)
	FindByStatus(ctx context.Context, storeID uuid.UUID, status TicketStatus, filter shared.Filter) ([]KitchenTicket, error)
	// FindNewForClaim loads up to limit new tickets ordered by creation
	// time, skipping rows locked by other pollers. Must be called inside a
	// transaction; the claim is persisted before the transaction commits.
	FindNewForClaim(ctx context.Context, limit int) ([]KitchenTicket, error)
	// FindStuckPrinting surfaces tickets that entered printing before the
	// cutoff and never got an outcome. They are reported for manual
	// intervention, never auto-cancelled.
	FindStuckPrinting(ctx context.Context, cutoff time.Time) ([]KitchenTicket, error)
	CountPending(ctx context.Context, storeID uuid.UUID) (int64, error)

	Save(ctx context.Context, ticket *KitchenTicket) error
	SaveAll(ctx context.Context, tickets []*KitchenTicket) error
}

// StationPrinterRepository defines persistence for printer configuration
type StationPrinterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StationPrinter, error)
	FindByStation(ctx context.Context, storeID, brandID uuid.UUID, station string) ([]StationPrinter, error)
	FindAllForStore(ctx context.Context, storeID uuid.UUID) ([]StationPrinter, error)
	Save(ctx context.Context, printer *StationPrinter) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TicketLogRepository persists the append-only ticket transition trail
type TicketLogRepository interface {
	Append(ctx context.Context, logs ...*KitchenTicketLog) error
	FindByTicket(ctx context.Context, ticketID uuid.UUID) ([]KitchenTicketLog, error)
}
