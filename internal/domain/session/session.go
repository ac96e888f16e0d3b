package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// Session health thresholds. A session older than WarningAge should have
// been closed; older than CriticalAge it blocks new transactions entirely.
const (
	WarningAge  = 12 * time.Hour
	CriticalAge = 24 * time.Hour
)

// SessionStatus represents the status of a store session
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
	// SessionStatusForceClosed marks sessions closed past blocking
	// readiness issues.
	SessionStatusForceClosed SessionStatus = "force_closed"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	return s == SessionStatusOpen || s == SessionStatusClosed || s == SessionStatusForceClosed
}

// String returns the string representation of SessionStatus
func (s SessionStatus) String() string {
	return string(s)
}

// HealthState grades how overdue an open session is
type HealthState string

const (
	HealthOK       HealthState = "ok"
	HealthWarning  HealthState = "warning"
	HealthCritical HealthState = "critical"
)

// EODReport aggregates the business day being closed. It is generated and
// logged before the session closes, so it reflects the old day, not the new
// one.
type EODReport struct {
	BusinessDate    time.Time                  `json:"business_date"`
	BillCount       int64                      `json:"bill_count"`
	PaidBillCount   int64                      `json:"paid_bill_count"`
	CancelledCount  int64                      `json:"cancelled_count"`
	VoidCount       int64                      `json:"void_count"`
	GrossSales      decimal.Decimal            `json:"gross_sales"`
	RefundTotal     decimal.Decimal            `json:"refund_total"`
	PaymentTotals   map[string]decimal.Decimal `json:"payment_totals"`
	ShiftCount      int64                      `json:"shift_count"`
	VarianceTotal   decimal.Decimal            `json:"variance_total"`
	GeneratedAt     time.Time                  `json:"generated_at"`
	ForcedPastIssue bool                       `json:"forced_past_issue"`
}

// StoreSession is the business-day boundary for one store. Exactly one
// session per store may carry IsCurrent at a time; the uniqueness is
// enforced check-then-write inside the same transaction as the status
// change.
type StoreSession struct {
	shared.StoreAggregateRoot
	BusinessDate time.Time `gorm:"type:date"`
	Status       SessionStatus
	IsCurrent    bool
	OpenedBy     uuid.UUID
	OpenedAt     time.Time
	ClosedBy     *uuid.UUID
	ClosedAt     *time.Time
	Report       *EODReport `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (StoreSession) TableName() string {
	return "store_sessions"
}

// NewStoreSession opens a session for a business date and marks it current
func NewStoreSession(storeID uuid.UUID, businessDate time.Time, openedBy uuid.UUID) (*StoreSession, error) {
	if openedBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Opener is required")
	}
	if businessDate.IsZero() {
		return nil, shared.NewValidationError("INVALID_BUSINESS_DATE", "Business date is required")
	}

	session := &StoreSession{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, openedBy),
		BusinessDate:       businessDate,
		Status:             SessionStatusOpen,
		IsCurrent:          true,
		OpenedBy:           openedBy,
		OpenedAt:           time.Now(),
	}

	session.AddDomainEvent(NewSessionOpenedEvent(session))
	return session, nil
}

// Age returns how long the session has been open
func (s *StoreSession) Age(now time.Time) time.Duration {
	return now.Sub(s.OpenedAt)
}

// Health grades the open session's age. Closed sessions are always ok.
func (s *StoreSession) Health(now time.Time) HealthState {
	if s.Status != SessionStatusOpen {
		return HealthOK
	}
	age := s.Age(now)
	switch {
	case age > CriticalAge:
		return HealthCritical
	case age > WarningAge:
		return HealthWarning
	default:
		return HealthOK
	}
}

// BlocksTransactions reports whether the session is too stale for new
// bills or payments. The guard is consulted at every transaction entry.
func (s *StoreSession) BlocksTransactions(now time.Time) bool {
	return s.Health(now) == HealthCritical
}

// Close ends the business day. The EOD report must already be generated;
// it is stored on the closed row. force records that blocking readiness
// issues were overridden.
func (s *StoreSession) Close(closedBy uuid.UUID, report *EODReport, force bool) error {
	if s.Status != SessionStatusOpen {
		return shared.NewConflictError("SESSION_NOT_OPEN", "Session is already closed",
			string(SessionStatusOpen), string(s.Status))
	}
	if closedBy == uuid.Nil {
		return shared.NewValidationError("INVALID_ACTOR", "Closer is required")
	}
	if report == nil {
		return shared.NewIntegrityError("MISSING_EOD_REPORT", "EOD report must be generated before the session closes")
	}

	now := time.Now()
	s.Status = SessionStatusClosed
	if force {
		s.Status = SessionStatusForceClosed
	}
	s.IsCurrent = false
	s.ClosedBy = &closedBy
	s.ClosedAt = &now
	s.Report = report
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSessionClosedEvent(s))
	return nil
}

// NextSession opens the follow-on session after this one closes
func (s *StoreSession) NextSession(businessDate time.Time, openedBy uuid.UUID) (*StoreSession, error) {
	if !s.IsClosed() {
		return nil, shared.NewConflictError("SESSION_NOT_CLOSED", "Close the session before opening the next one",
			string(SessionStatusClosed), string(s.Status))
	}
	if !businessDate.After(s.BusinessDate) {
		return nil, shared.NewValidationError("INVALID_BUSINESS_DATE", "Next business date must follow the closed one")
	}
	return NewStoreSession(s.StoreID, businessDate, openedBy)
}

// IsOpen reports whether the session still accepts transactions at all
func (s *StoreSession) IsOpen() bool {
	return s.Status == SessionStatusOpen
}

// IsClosed reports whether the business day has ended, by normal or
// forced close
func (s *StoreSession) IsClosed() bool {
	return s.Status == SessionStatusClosed || s.Status == SessionStatusForceClosed
}

// ReadinessIssue is one finding of the pre-EOD validation
type ReadinessIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// ReadinessReport is the pre-EOD validation result. Blocking issues stop a
// normal close; the force flag overrides them. Warnings never block.
type ReadinessReport struct {
	Blocking []ReadinessIssue `json:"blocking"`
	Warnings []ReadinessIssue `json:"warnings"`
}

// CanClose reports whether a normal, unforced close may proceed
func (r *ReadinessReport) CanClose() bool {
	return len(r.Blocking) == 0
}
