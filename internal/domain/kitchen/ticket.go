package kitchen

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// DefaultMaxRetries bounds explicit retries of a failed ticket
const DefaultMaxRetries = 3

// TicketStatus represents the status of a kitchen ticket
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"      // waiting to be claimed by a poller
	TicketStatusPrinting TicketStatus = "printing" // claimed, print I/O in flight
	TicketStatusPrinted  TicketStatus = "printed"
	TicketStatusFailed   TicketStatus = "failed"
)

// IsValid checks if the status is a valid TicketStatus
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusNew, TicketStatusPrinting, TicketStatusPrinted, TicketStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of TicketStatus
func (s TicketStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status admits no further transitions.
// failed is not terminal: an explicit bounded retry moves it back to new.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusPrinted
}

// CanTransitionTo checks if the status can transition to the target status
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	switch s {
	case TicketStatusNew:
		return target == TicketStatusPrinting
	case TicketStatusPrinting:
		return target == TicketStatusPrinted || target == TicketStatusFailed
	case TicketStatusFailed:
		return target == TicketStatusNew
	case TicketStatusPrinted:
		return false
	}
	return false
}

// KitchenTicketItem is one line to print on a station ticket
type KitchenTicketItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketID    uuid.UUID `gorm:"type:uuid;index"`
	BillItemID  uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Notes       string
	Modifiers   []string `gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (KitchenTicketItem) TableName() string {
	return "kitchen_ticket_items"
}

// TicketLine is the dispatcher's input for one sent bill item
type TicketLine struct {
	BillItemID  uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Station     string
	Quantity    int
	Notes       string
	Modifiers   []string
}

// KitchenTicket routes one send-to-kitchen batch's items for a single
// station to a physical printer. Two sends on the same bill produce two
// tickets per station, never an amended one.
type KitchenTicket struct {
	shared.StoreAggregateRoot
	BrandID     uuid.UUID
	BillID      uuid.UUID
	BillNumber  string
	TableID     *uuid.UUID
	QueueNumber *int
	Station     string
	Status      TicketStatus

	Items []KitchenTicketItem `gorm:"foreignKey:TicketID;references:ID"`

	Attempts     int
	MaxRetries   int
	PrinterID    *uuid.UUID
	PrinterName  string
	ErrorMessage string
	ClaimedAt    *time.Time
	PrintedAt    *time.Time
}

// TableName returns the table name for GORM
func (KitchenTicket) TableName() string {
	return "kitchen_tickets"
}

// NewKitchenTicket creates a ticket for one station of a send batch
func NewKitchenTicket(storeID, brandID, billID uuid.UUID, billNumber string, tableID *uuid.UUID, queueNumber *int, station string, lines []TicketLine) (*KitchenTicket, error) {
	if billID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_BILL", "Bill ID is required")
	}
	if station == "" {
		return nil, shared.NewValidationError("INVALID_STATION", "Station cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_TICKET", "A ticket needs at least one item")
	}

	ticket := &KitchenTicket{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		BrandID:            brandID,
		BillID:             billID,
		BillNumber:         billNumber,
		TableID:            tableID,
		QueueNumber:        queueNumber,
		Station:            station,
		Status:             TicketStatusNew,
		MaxRetries:         DefaultMaxRetries,
		Items:              make([]KitchenTicketItem, 0, len(lines)),
	}

	now := time.Now()
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Ticket line quantity must be at least 1")
		}
		ticket.Items = append(ticket.Items, KitchenTicketItem{
			ID:          uuid.New(),
			TicketID:    ticket.ID,
			BillItemID:  line.BillItemID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Notes:       line.Notes,
			Modifiers:   line.Modifiers,
			CreatedAt:   now,
		})
	}

	ticket.AddDomainEvent(NewTicketCreatedEvent(ticket))
	return ticket, nil
}

// BuildTicketBatch groups one send batch's lines by station, one ticket per
// station, in stable station order.
func BuildTicketBatch(storeID, brandID, billID uuid.UUID, billNumber string, tableID *uuid.UUID, queueNumber *int, lines []TicketLine) ([]*KitchenTicket, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_BATCH", "A send batch needs at least one item")
	}

	byStation := make(map[string][]TicketLine)
	for _, line := range lines {
		byStation[line.Station] = append(byStation[line.Station], line)
	}

	stations := make([]string, 0, len(byStation))
	for station := range byStation {
		stations = append(stations, station)
	}
	sort.Strings(stations)

	tickets := make([]*KitchenTicket, 0, len(stations))
	for _, station := range stations {
		ticket, err := NewKitchenTicket(storeID, brandID, billID, billNumber, tableID, queueNumber, station, byStation[station])
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// Claim atomically moves the ticket to printing and assigns the printer.
// The attempt counter increments before any print I/O happens, so a crashed
// poller still burns the attempt.
func (t *KitchenTicket) Claim(printerID uuid.UUID, printerName string) error {
	if !t.Status.CanTransitionTo(TicketStatusPrinting) {
		return shared.NewConflictError("INVALID_STATE", "Ticket cannot be claimed in its current status",
			string(TicketStatusNew), string(t.Status))
	}
	if printerID == uuid.Nil {
		return shared.NewValidationError("INVALID_PRINTER", "Printer ID is required")
	}

	now := time.Now()
	t.Status = TicketStatusPrinting
	t.Attempts++
	t.PrinterID = &printerID
	t.PrinterName = printerName
	t.ErrorMessage = ""
	t.ClaimedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// MarkPrinterGap records that no active printer serves the ticket's station.
// The ticket stays new and no attempt is burned, so the next poll after a
// printer is configured claims it normally.
func (t *KitchenTicket) MarkPrinterGap(reason string) error {
	if t.Status != TicketStatusNew {
		return shared.NewConflictError("INVALID_STATE", "Only new tickets can record a printer gap",
			string(TicketStatusNew), string(t.Status))
	}

	t.ErrorMessage = reason
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// MarkPrinted records a successful print
func (t *KitchenTicket) MarkPrinted() error {
	if !t.Status.CanTransitionTo(TicketStatusPrinted) {
		return shared.NewConflictError("INVALID_STATE", "Ticket is not printing",
			string(TicketStatusPrinting), string(t.Status))
	}

	now := time.Now()
	t.Status = TicketStatusPrinted
	t.ErrorMessage = ""
	t.PrintedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTicketPrintedEvent(t))
	return nil
}

// MarkFailed records a failed print attempt with the agent's error
func (t *KitchenTicket) MarkFailed(errorMessage string) error {
	if !t.Status.CanTransitionTo(TicketStatusFailed) {
		return shared.NewConflictError("INVALID_STATE", "Ticket is not printing",
			string(TicketStatusPrinting), string(t.Status))
	}

	t.Status = TicketStatusFailed
	t.ErrorMessage = errorMessage
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTicketFailedEvent(t))
	return nil
}

// CanRetry reports whether another explicit retry is allowed
func (t *KitchenTicket) CanRetry() bool {
	return t.Status == TicketStatusFailed && t.Attempts < t.MaxRetries
}

// Retry puts a failed ticket back in the claim queue. Retries are explicit
// operator actions and bounded by MaxRetries.
func (t *KitchenTicket) Retry() error {
	if t.Status != TicketStatusFailed {
		return shared.NewConflictError("INVALID_STATE", "Only failed tickets can be retried",
			string(TicketStatusFailed), string(t.Status))
	}
	if t.Attempts >= t.MaxRetries {
		return shared.NewValidationError("RETRY_EXHAUSTED",
			fmt.Sprintf("Ticket already attempted %d of %d times", t.Attempts, t.MaxRetries))
	}

	t.Status = TicketStatusNew
	t.ErrorMessage = ""
	t.PrinterID = nil
	t.PrinterName = ""
	t.ClaimedAt = nil
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// IsNew reports whether the ticket waits in the claim queue
func (t *KitchenTicket) IsNew() bool {
	return t.Status == TicketStatusNew
}

// IsPrinted reports whether the ticket reached the kitchen
func (t *KitchenTicket) IsPrinted() bool {
	return t.Status == TicketStatusPrinted
}
