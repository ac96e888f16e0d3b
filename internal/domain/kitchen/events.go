package kitchen

import (
	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeKitchenTicket = "KitchenTicket"

// Event type constants
const (
	EventTypeTicketCreated = "KitchenTicketCreated"
	EventTypeTicketPrinted = "KitchenTicketPrinted"
	EventTypeTicketFailed  = "KitchenTicketFailed"
)

// TicketCreatedEvent is raised when a send batch produces a station ticket.
// The print job queue reacts by enqueueing a kitchen print job.
type TicketCreatedEvent struct {
	shared.BaseDomainEvent
	TicketID   uuid.UUID `json:"ticket_id"`
	BillID     uuid.UUID `json:"bill_id"`
	BillNumber string    `json:"bill_number"`
	Station    string    `json:"station"`
	ItemCount  int       `json:"item_count"`
}

// NewTicketCreatedEvent creates a new TicketCreatedEvent
func NewTicketCreatedEvent(t *KitchenTicket) *TicketCreatedEvent {
	return &TicketCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketCreated, AggregateTypeKitchenTicket, t.ID, t.StoreID),
		TicketID:        t.ID,
		BillID:          t.BillID,
		BillNumber:      t.BillNumber,
		Station:         t.Station,
		ItemCount:       len(t.Items),
	}
}

// EventType returns the event type name
func (e *TicketCreatedEvent) EventType() string {
	return EventTypeTicketCreated
}

// TicketPrintedEvent is raised when the agent confirms a print
type TicketPrintedEvent struct {
	shared.BaseDomainEvent
	TicketID    uuid.UUID `json:"ticket_id"`
	BillID      uuid.UUID `json:"bill_id"`
	Station     string    `json:"station"`
	PrinterName string    `json:"printer_name"`
	Attempts    int       `json:"attempts"`
}

// NewTicketPrintedEvent creates a new TicketPrintedEvent
func NewTicketPrintedEvent(t *KitchenTicket) *TicketPrintedEvent {
	return &TicketPrintedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketPrinted, AggregateTypeKitchenTicket, t.ID, t.StoreID),
		TicketID:        t.ID,
		BillID:          t.BillID,
		Station:         t.Station,
		PrinterName:     t.PrinterName,
		Attempts:        t.Attempts,
	}
}

// EventType returns the event type name
func (e *TicketPrintedEvent) EventType() string {
	return EventTypeTicketPrinted
}

// TicketFailedEvent is raised when a print attempt fails. Operators retry
// explicitly; nothing auto-cancels a failed ticket.
type TicketFailedEvent struct {
	shared.BaseDomainEvent
	TicketID     uuid.UUID `json:"ticket_id"`
	BillID       uuid.UUID `json:"bill_id"`
	Station      string    `json:"station"`
	Attempts     int       `json:"attempts"`
	MaxRetries   int       `json:"max_retries"`
	ErrorMessage string    `json:"error_message"`
}

// NewTicketFailedEvent creates a new TicketFailedEvent
func NewTicketFailedEvent(t *KitchenTicket) *TicketFailedEvent {
	return &TicketFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTicketFailed, AggregateTypeKitchenTicket, t.ID, t.StoreID),
		TicketID:        t.ID,
		BillID:          t.BillID,
		Station:         t.Station,
		Attempts:        t.Attempts,
		MaxRetries:      t.MaxRetries,
		ErrorMessage:    t.ErrorMessage,
	}
}

// EventType returns the event type name
func (e *TicketFailedEvent) EventType() string {
	return EventTypeTicketFailed
}
