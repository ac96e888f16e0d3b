package payment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypePayment = "Payment"
	AggregateTypeRefund  = "BillRefund"
)

// Event type constants
const (
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypeRefundRequested = "RefundRequested"
	EventTypeRefundApproved  = "RefundApproved"
	EventTypeRefundRejected  = "RefundRejected"
	EventTypeRefundCompleted = "RefundCompleted"
)

// PaymentRecordedEvent is raised when a settlement lands on a bill
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	BillID    uuid.UUID       `json:"bill_id"`
	ShiftID   *uuid.UUID      `json:"shift_id,omitempty"`
	Method    PaymentMethod   `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment, remaining decimal.Decimal) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID, p.StoreID),
		PaymentID:       p.ID,
		BillID:          p.BillID,
		ShiftID:         p.ShiftID,
		Method:          p.Method,
		Amount:          p.Amount,
		Remaining:       remaining,
	}
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// RefundRequestedEvent is raised when a refund enters the approval queue
type RefundRequestedEvent struct {
	shared.BaseDomainEvent
	RefundID     uuid.UUID       `json:"refund_id"`
	RefundNumber string          `json:"refund_number"`
	BillID       uuid.UUID       `json:"bill_id"`
	RefundType   RefundType      `json:"refund_type"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	RequestedBy  uuid.UUID       `json:"requested_by"`
}

// NewRefundRequestedEvent creates a new RefundRequestedEvent
func NewRefundRequestedEvent(r *BillRefund) *RefundRequestedEvent {
	return &RefundRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRequested, AggregateTypeRefund, r.ID, r.StoreID),
		RefundID:        r.ID,
		RefundNumber:    r.RefundNumber,
		BillID:          r.BillID,
		RefundType:      r.RefundType,
		TotalAmount:     r.TotalAmount,
		RequestedBy:     r.RequestedBy,
	}
}

// EventType returns the event type name
func (e *RefundRequestedEvent) EventType() string {
	return EventTypeRefundRequested
}

// RefundApprovedEvent is raised when an approver clears a refund
type RefundApprovedEvent struct {
	shared.BaseDomainEvent
	RefundID   uuid.UUID `json:"refund_id"`
	BillID     uuid.UUID `json:"bill_id"`
	ApprovedBy uuid.UUID `json:"approved_by"`
}

// NewRefundApprovedEvent creates a new RefundApprovedEvent
func NewRefundApprovedEvent(r *BillRefund) *RefundApprovedEvent {
	evt := &RefundApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundApproved, AggregateTypeRefund, r.ID, r.StoreID),
		RefundID:        r.ID,
		BillID:          r.BillID,
	}
	if r.ApprovedBy != nil {
		evt.ApprovedBy = *r.ApprovedBy
	}
	return evt
}

// EventType returns the event type name
func (e *RefundApprovedEvent) EventType() string {
	return EventTypeRefundApproved
}

// RefundRejectedEvent is raised when an approver turns a refund down
type RefundRejectedEvent struct {
	shared.BaseDomainEvent
	RefundID uuid.UUID `json:"refund_id"`
	BillID   uuid.UUID `json:"bill_id"`
	Reason   string    `json:"reason"`
}

// NewRefundRejectedEvent creates a new RefundRejectedEvent
func NewRefundRejectedEvent(r *BillRefund) *RefundRejectedEvent {
	return &RefundRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundRejected, AggregateTypeRefund, r.ID, r.StoreID),
		RefundID:        r.ID,
		BillID:          r.BillID,
		Reason:          r.RejectionReason,
	}
}

// EventType returns the event type name
func (e *RefundRejectedEvent) EventType() string {
	return EventTypeRefundRejected
}

// RefundCompletedEvent is raised when the reversals are recorded and the
// money is considered returned. CashAmount lets the shift manager reduce
// the owning shift's expected cash.
type RefundCompletedEvent struct {
	shared.BaseDomainEvent
	RefundID    uuid.UUID       `json:"refund_id"`
	BillID      uuid.UUID       `json:"bill_id"`
	ShiftID     *uuid.UUID      `json:"shift_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CashAmount  decimal.Decimal `json:"cash_amount"`
}

// NewRefundCompletedEvent creates a new RefundCompletedEvent
func NewRefundCompletedEvent(r *BillRefund) *RefundCompletedEvent {
	return &RefundCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRefundCompleted, AggregateTypeRefund, r.ID, r.StoreID),
		RefundID:        r.ID,
		BillID:          r.BillID,
		ShiftID:         r.ShiftID,
		TotalAmount:     r.TotalAmount,
		CashAmount:      r.CashReversalAmount(),
	}
}

// EventType returns the event type name
func (e *RefundCompletedEvent) EventType() string {
	return EventTypeRefundCompleted
}
