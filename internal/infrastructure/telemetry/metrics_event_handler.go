package telemetry

import (
	"context"

	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/shared"
)

// MetricsEventHandler records business metrics from domain events on the
// bus. Recording always succeeds from the bus's point of view; a metrics
// pipeline outage must not push events into the retry path.
type MetricsEventHandler struct {
	metrics *BusinessMetrics
	logger  *zap.Logger
}

// NewMetricsEventHandler creates a handler that feeds BusinessMetrics
func NewMetricsEventHandler(metrics *BusinessMetrics, logger *zap.Logger) *MetricsEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsEventHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MetricsEventHandler) EventTypes() []string {
	return []string{
		ordering.EventTypeBillOpened,
		ordering.EventTypeBillClosed,
		payment.EventTypePaymentRecorded,
		payment.EventTypeRefundCompleted,
		kitchen.EventTypeTicketFailed,
		printing.EventTypePrintJobFailed,
	}
}

// Handle records the metric matching the event type
func (h *MetricsEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ordering.BillOpenedEvent:
		h.metrics.RecordBillOpened(ctx, e.StoreID(), string(e.BillType))
	case *ordering.BillClosedEvent:
		h.metrics.RecordBillClosed(ctx, e.StoreID(), string(e.BillType), e.Total)
	case *payment.PaymentRecordedEvent:
		h.metrics.RecordPayment(ctx, e.StoreID(), string(e.Method), PaymentStatusSuccess)
	case *payment.RefundCompletedEvent:
		h.metrics.RecordRefundCompleted(ctx, e.StoreID())
	case *kitchen.TicketFailedEvent:
		h.metrics.RecordPrintFailure(ctx, e.StoreID(), "kitchen_ticket")
	case *printing.PrintJobFailedEvent:
		h.metrics.RecordPrintFailure(ctx, e.StoreID(), string(e.JobType))
	default:
		h.logger.Debug("metrics handler received unhandled event type",
			zap.String("event_type", event.EventType()),
		)
	}
	return nil
}
