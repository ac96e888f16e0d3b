package printing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/shared"
)

// ReceiptOnCloseHandler queues a receipt job whenever a bill closes as
// paid. Queueing failures are logged, never propagated: a broken printer
// path must not fail the payment that raised the event.
type ReceiptOnCloseHandler struct {
	queue  *QueueService
	logger *zap.Logger
}

// NewReceiptOnCloseHandler creates a handler for bill close events
func NewReceiptOnCloseHandler(queue *QueueService, logger *zap.Logger) *ReceiptOnCloseHandler {
	return &ReceiptOnCloseHandler{queue: queue, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptOnCloseHandler) EventTypes() []string {
	return []string{ordering.EventTypeBillClosed}
}

// Handle processes a BillClosedEvent
func (h *ReceiptOnCloseHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	closed, ok := event.(*ordering.BillClosedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ordering.EventTypeBillClosed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ordering.EventTypeBillClosed, event.EventType())
	}

	if _, err := h.queue.EnqueueReceipt(ctx, closed.BillID, closed.ClosedBy, false, 1); err != nil {
		h.logger.Error("failed to queue receipt for closed bill",
			zap.String("bill_number", closed.BillNumber),
			zap.Error(err),
		)
	}
	return nil
}

// KitchenJobHandler queues a print job for every station ticket a send
// batch creates
type KitchenJobHandler struct {
	queue  *QueueService
	logger *zap.Logger
}

// NewKitchenJobHandler creates a handler for kitchen ticket creation events
func NewKitchenJobHandler(queue *QueueService, logger *zap.Logger) *KitchenJobHandler {
	return &KitchenJobHandler{queue: queue, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *KitchenJobHandler) EventTypes() []string {
	return []string{kitchen.EventTypeTicketCreated}
}

// Handle processes a TicketCreatedEvent
func (h *KitchenJobHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*kitchen.TicketCreatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", kitchen.EventTypeTicketCreated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			kitchen.EventTypeTicketCreated, event.EventType())
	}

	if _, err := h.queue.EnqueueKitchenTicket(ctx, created.TicketID, uuid.Nil, false); err != nil {
		h.logger.Error("failed to queue kitchen print job",
			zap.String("bill_number", created.BillNumber),
			zap.String("station", created.Station),
			zap.Error(err),
		)
	}
	return nil
}
