package ordering

import (
	"github.com/edgepos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBill = "Bill"

// Event type constants
const (
	EventTypeBillOpened    = "BillOpened"
	EventTypeBillItemsSent = "BillItemsSent"
	EventTypeBillClosed    = "BillClosed"
	EventTypeBillCancelled = "BillCancelled"
	EventTypeBillVoided    = "BillVoided"
	EventTypeBillSplit     = "BillSplit"
	EventTypeBillsMerged   = "BillsMerged"
)

// BillOpenedEvent is raised when a new bill is opened
type BillOpenedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID  `json:"bill_id"`
	BillNumber string     `json:"bill_number"`
	BillType   BillType   `json:"bill_type"`
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	TerminalID uuid.UUID  `json:"terminal_id"`
}

// NewBillOpenedEvent creates a new BillOpenedEvent
func NewBillOpenedEvent(bill *Bill) *BillOpenedEvent {
	return &BillOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillOpened, AggregateTypeBill, bill.ID, bill.StoreID),
		BillID:          bill.ID,
		BillNumber:      bill.BillNumber,
		BillType:        bill.BillType,
		TableID:         bill.TableID,
		TerminalID:      bill.TerminalID,
	}
}

// EventType returns the event type name
func (e *BillOpenedEvent) EventType() string {
	return EventTypeBillOpened
}

// SentItemInfo carries one sent line for downstream ticket creation
type SentItemInfo struct {
	ItemID      uuid.UUID          `json:"item_id"`
	ProductID   uuid.UUID          `json:"product_id"`
	ProductName string             `json:"product_name"`
	Station     string             `json:"station"`
	Quantity    int                `json:"quantity"`
	Notes       string             `json:"notes"`
	Modifiers   ModifierSelections `json:"modifiers"`
}

// BillItemsSentEvent is raised when pending items are sent to the kitchen.
// The kitchen dispatcher groups Items by Station into tickets.
type BillItemsSentEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID      `json:"bill_id"`
	BillNumber  string         `json:"bill_number"`
	BrandID     uuid.UUID      `json:"brand_id"`
	TableID     *uuid.UUID     `json:"table_id,omitempty"`
	QueueNumber *int           `json:"queue_number,omitempty"`
	Items       []SentItemInfo `json:"items"`
}

// NewBillItemsSentEvent creates a new BillItemsSentEvent
func NewBillItemsSentEvent(bill *Bill, sent []BillItem) *BillItemsSentEvent {
	items := make([]SentItemInfo, len(sent))
	for i, item := range sent {
		items[i] = SentItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Station:     item.Station,
			Quantity:    item.Quantity,
			Notes:       item.Notes,
			Modifiers:   item.Modifiers,
		}
	}
	return &BillItemsSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillItemsSent, AggregateTypeBill, bill.ID, bill.StoreID),
		BillID:          bill.ID,
		BillNumber:      bill.BillNumber,
		BrandID:         bill.BrandID,
		TableID:         bill.TableID,
		QueueNumber:     bill.QueueNumber,
		Items:           items,
	}
}

// EventType returns the event type name
func (e *BillItemsSentEvent) EventType() string {
	return EventTypeBillItemsSent
}

// BillClosedEvent is raised when a bill transitions to paid.
// The print queue reacts by enqueueing a receipt job.
type BillClosedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	BillNumber string          `json:"bill_number"`
	BillType   BillType        `json:"bill_type"`
	TerminalID uuid.UUID       `json:"terminal_id"`
	Total      decimal.Decimal `json:"total"`
	Change     decimal.Decimal `json:"change"`
	ClosedBy   uuid.UUID       `json:"closed_by"`
}

// NewBillClosedEvent creates a new BillClosedEvent
func NewBillClosedEvent(bill *Bill, change decimal.Decimal) *BillClosedEvent {
	var closedBy uuid.UUID
	if bill.ClosedBy != nil {
		closedBy = *bill.ClosedBy
	}
	return &BillClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillClosed, AggregateTypeBill, bill.ID, bill.StoreID),
		BillID:          bill.ID,
		BillNumber:      bill.BillNumber,
		BillType:        bill.BillType,
		TerminalID:      bill.TerminalID,
		Total:           bill.Total,
		Change:          change,
		ClosedBy:        closedBy,
	}
}

// EventType returns the event type name
func (e *BillClosedEvent) EventType() string {
	return EventTypeBillClosed
}

// BillCancelledEvent is raised when a never-sent bill is cancelled
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID  `json:"bill_id"`
	BillNumber string     `json:"bill_number"`
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	Reason     string     `json:"reason"`
}

// NewBillCancelledEvent creates a new BillCancelledEvent
func NewBillCancelledEvent(bill *Bill) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCancelled, AggregateTypeBill, bill.ID, bill.StoreID),
		BillID:          bill.ID,
		BillNumber:      bill.BillNumber,
		TableID:         bill.TableID,
		Reason:          bill.CancelReason,
	}
}

// EventType returns the event type name
func (e *BillCancelledEvent) EventType() string {
	return EventTypeBillCancelled
}

// BillVoidedEvent is raised when a bill with sent items is voided
type BillVoidedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID  `json:"bill_id"`
	BillNumber string     `json:"bill_number"`
	TableID    *uuid.UUID `json:"table_id,omitempty"`
	Reason     string     `json:"reason"`
	ApprovedBy *uuid.UUID `json:"approved_by,omitempty"`
}

// NewBillVoidedEvent creates a new BillVoidedEvent
func NewBillVoidedEvent(bill *Bill) *BillVoidedEvent {
	return &BillVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillVoided, AggregateTypeBill, bill.ID, bill.StoreID),
		BillID:          bill.ID,
		BillNumber:      bill.BillNumber,
		TableID:         bill.TableID,
		Reason:          bill.VoidReason,
		ApprovedBy:      bill.VoidApprovedBy,
	}
}

// EventType returns the event type name
func (e *BillVoidedEvent) EventType() string {
	return EventTypeBillVoided
}

// BillSplitEvent is raised on the originating bill after a split
type BillSplitEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID `json:"bill_id"`
	NewBillID     uuid.UUID `json:"new_bill_id"`
	NewBillNumber string    `json:"new_bill_number"`
}

// NewBillSplitEvent creates a new BillSplitEvent
func NewBillSplitEvent(original, spun *Bill) *BillSplitEvent {
	return &BillSplitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillSplit, AggregateTypeBill, original.ID, original.StoreID),
		BillID:          original.ID,
		NewBillID:       spun.ID,
		NewBillNumber:   spun.BillNumber,
	}
}

// EventType returns the event type name
func (e *BillSplitEvent) EventType() string {
	return EventTypeBillSplit
}

// BillsMergedEvent is raised on the target bill after a merge
type BillsMergedEvent struct {
	shared.BaseDomainEvent
	BillID           uuid.UUID  `json:"bill_id"`
	SourceBillID     uuid.UUID  `json:"source_bill_id"`
	SourceBillNumber string     `json:"source_bill_number"`
	SourceTableID    *uuid.UUID `json:"source_table_id,omitempty"`
}

// NewBillsMergedEvent creates a new BillsMergedEvent
func NewBillsMergedEvent(target, source *Bill) *BillsMergedEvent {
	return &BillsMergedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeBillsMerged, AggregateTypeBill, target.ID, target.StoreID),
		BillID:           target.ID,
		SourceBillID:     source.ID,
		SourceBillNumber: source.BillNumber,
		SourceTableID:    source.TableID,
	}
}

// EventType returns the event type name
func (e *BillsMergedEvent) EventType() string {
	return EventTypeBillsMerged
}
