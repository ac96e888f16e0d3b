package session

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeSession = "StoreSession"
	AggregateTypeShift   = "CashierShift"
)

// Event type constants
const (
	EventTypeSessionOpened        = "SessionOpened"
	EventTypeSessionClosed        = "SessionClosed"
	EventTypeShiftOpened          = "ShiftOpened"
	EventTypeShiftClosed          = "ShiftClosed"
	EventTypeShiftAbandoned       = "ShiftAbandoned"
	EventTypeCashVarianceDetected = "CashVarianceDetected"
)

// SessionOpenedEvent is raised when a business day opens
type SessionOpenedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID `json:"session_id"`
	BusinessDate string    `json:"business_date"`
	OpenedBy     uuid.UUID `json:"opened_by"`
}

// NewSessionOpenedEvent creates a new SessionOpenedEvent
func NewSessionOpenedEvent(s *StoreSession) *SessionOpenedEvent {
	return &SessionOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionOpened, AggregateTypeSession, s.ID, s.StoreID),
		SessionID:       s.ID,
		BusinessDate:    s.BusinessDate.Format("2006-01-02"),
		OpenedBy:        s.OpenedBy,
	}
}

// EventType returns the event type name
func (e *SessionOpenedEvent) EventType() string {
	return EventTypeSessionOpened
}

// SessionClosedEvent is raised when the business day closes
type SessionClosedEvent struct {
	shared.BaseDomainEvent
	SessionID    uuid.UUID     `json:"session_id"`
	BusinessDate string        `json:"business_date"`
	Status       SessionStatus `json:"status"`
}

// NewSessionClosedEvent creates a new SessionClosedEvent
func NewSessionClosedEvent(s *StoreSession) *SessionClosedEvent {
	return &SessionClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionClosed, AggregateTypeSession, s.ID, s.StoreID),
		SessionID:       s.ID,
		BusinessDate:    s.BusinessDate.Format("2006-01-02"),
		Status:          s.Status,
	}
}

// EventType returns the event type name
func (e *SessionClosedEvent) EventType() string {
	return EventTypeSessionClosed
}

// ShiftOpenedEvent is raised when a cashier opens a drawer
type ShiftOpenedEvent struct {
	shared.BaseDomainEvent
	ShiftID     uuid.UUID       `json:"shift_id"`
	SessionID   uuid.UUID       `json:"session_id"`
	CashierID   uuid.UUID       `json:"cashier_id"`
	OpeningCash decimal.Decimal `json:"opening_cash"`
}

// NewShiftOpenedEvent creates a new ShiftOpenedEvent
func NewShiftOpenedEvent(s *CashierShift) *ShiftOpenedEvent {
	return &ShiftOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftOpened, AggregateTypeShift, s.ID, s.StoreID),
		ShiftID:         s.ID,
		SessionID:       s.SessionID,
		CashierID:       s.CashierID,
		OpeningCash:     s.OpeningCash,
	}
}

// EventType returns the event type name
func (e *ShiftOpenedEvent) EventType() string {
	return EventTypeShiftOpened
}

// ShiftClosedEvent is raised when a drawer is reconciled
type ShiftClosedEvent struct {
	shared.BaseDomainEvent
	ShiftID      uuid.UUID       `json:"shift_id"`
	SessionID    uuid.UUID       `json:"session_id"`
	CashierID    uuid.UUID       `json:"cashier_id"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	ActualCash   decimal.Decimal `json:"actual_cash"`
	Variance     decimal.Decimal `json:"variance"`
}

// NewShiftClosedEvent creates a new ShiftClosedEvent
func NewShiftClosedEvent(s *CashierShift) *ShiftClosedEvent {
	return &ShiftClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftClosed, AggregateTypeShift, s.ID, s.StoreID),
		ShiftID:         s.ID,
		SessionID:       s.SessionID,
		CashierID:       s.CashierID,
		ExpectedCash:    s.ExpectedCash,
		ActualCash:      s.ActualCash,
		Variance:        s.Variance,
	}
}

// EventType returns the event type name
func (e *ShiftClosedEvent) EventType() string {
	return EventTypeShiftClosed
}

// ShiftAbandonedEvent is raised when a forced session close orphans an
// open drawer
type ShiftAbandonedEvent struct {
	shared.BaseDomainEvent
	ShiftID   uuid.UUID `json:"shift_id"`
	SessionID uuid.UUID `json:"session_id"`
	CashierID uuid.UUID `json:"cashier_id"`
}

// NewShiftAbandonedEvent creates a new ShiftAbandonedEvent
func NewShiftAbandonedEvent(s *CashierShift) *ShiftAbandonedEvent {
	return &ShiftAbandonedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShiftAbandoned, AggregateTypeShift, s.ID, s.StoreID),
		ShiftID:         s.ID,
		SessionID:       s.SessionID,
		CashierID:       s.CashierID,
	}
}

// EventType returns the event type name
func (e *ShiftAbandonedEvent) EventType() string {
	return EventTypeShiftAbandoned
}

// CashVarianceDetectedEvent is raised when a closing variance exceeds the
// store threshold. Handlers persist a SessionAlert for it.
type CashVarianceDetectedEvent struct {
	shared.BaseDomainEvent
	ShiftID   uuid.UUID        `json:"shift_id"`
	CashierID uuid.UUID        `json:"cashier_id"`
	Variance  decimal.Decimal  `json:"variance"`
	Severity  VarianceSeverity `json:"severity"`
}

// NewCashVarianceDetectedEvent creates a new CashVarianceDetectedEvent
func NewCashVarianceDetectedEvent(s *CashierShift) *CashVarianceDetectedEvent {
	return &CashVarianceDetectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashVarianceDetected, AggregateTypeShift, s.ID, s.StoreID),
		ShiftID:         s.ID,
		CashierID:       s.CashierID,
		Variance:        s.Variance,
		Severity:        s.VarianceSeverity,
	}
}

// EventType returns the event type name
func (e *CashVarianceDetectedEvent) EventType() string {
	return EventTypeCashVarianceDetected
}
