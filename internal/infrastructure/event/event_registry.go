package event

import (
	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/session"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	// Ordering domain - Bill events
	serializer.Register(ordering.EventTypeBillOpened, &ordering.BillOpenedEvent{})
	serializer.Register(ordering.EventTypeBillItemsSent, &ordering.BillItemsSentEvent{})
	serializer.Register(ordering.EventTypeBillClosed, &ordering.BillClosedEvent{})
	serializer.Register(ordering.EventTypeBillCancelled, &ordering.BillCancelledEvent{})
	serializer.Register(ordering.EventTypeBillVoided, &ordering.BillVoidedEvent{})
	serializer.Register(ordering.EventTypeBillSplit, &ordering.BillSplitEvent{})
	serializer.Register(ordering.EventTypeBillsMerged, &ordering.BillsMergedEvent{})
	serializer.Register(ordering.EventTypeTableReleased, &ordering.TableReleasedEvent{})

	// Payment domain events
	serializer.Register(payment.EventTypePaymentRecorded, &payment.PaymentRecordedEvent{})
	serializer.Register(payment.EventTypeRefundRequested, &payment.RefundRequestedEvent{})
	serializer.Register(payment.EventTypeRefundApproved, &payment.RefundApprovedEvent{})
	serializer.Register(payment.EventTypeRefundRejected, &payment.RefundRejectedEvent{})
	serializer.Register(payment.EventTypeRefundCompleted, &payment.RefundCompletedEvent{})

	// Kitchen domain - ticket events
	serializer.Register(kitchen.EventTypeTicketCreated, &kitchen.TicketCreatedEvent{})
	serializer.Register(kitchen.EventTypeTicketPrinted, &kitchen.TicketPrintedEvent{})
	serializer.Register(kitchen.EventTypeTicketFailed, &kitchen.TicketFailedEvent{})

	// Session domain - business day and shift events
	serializer.Register(session.EventTypeSessionOpened, &session.SessionOpenedEvent{})
	serializer.Register(session.EventTypeSessionClosed, &session.SessionClosedEvent{})
	serializer.Register(session.EventTypeShiftOpened, &session.ShiftOpenedEvent{})
	serializer.Register(session.EventTypeShiftClosed, &session.ShiftClosedEvent{})
	serializer.Register(session.EventTypeShiftAbandoned, &session.ShiftAbandonedEvent{})
	serializer.Register(session.EventTypeCashVarianceDetected, &session.CashVarianceDetectedEvent{})

	// Printing domain - print job events
	serializer.Register(printing.EventTypePrintJobQueued, &printing.PrintJobQueuedEvent{})
	serializer.Register(printing.EventTypePrintJobCompleted, &printing.PrintJobCompletedEvent{})
	serializer.Register(printing.EventTypePrintJobFailed, &printing.PrintJobFailedEvent{})
}
