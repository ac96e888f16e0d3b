package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// ShiftStatus represents the status of a cashier shift
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
	// ShiftStatusAbandoned marks shifts orphaned by a forced session
	// close, with the drawer never counted.
	ShiftStatusAbandoned ShiftStatus = "abandoned"
)

// IsValid checks if the status is a valid ShiftStatus
func (s ShiftStatus) IsValid() bool {
	return s == ShiftStatusOpen || s == ShiftStatusClosed || s == ShiftStatusAbandoned
}

// String returns the string representation of ShiftStatus
func (s ShiftStatus) String() string {
	return string(s)
}

// VarianceSeverity grades a cash variance against the store threshold
type VarianceSeverity string

const (
	VarianceNone     VarianceSeverity = "none"
	VarianceWarning  VarianceSeverity = "warning"  // beyond threshold
	VarianceCritical VarianceSeverity = "critical" // at or beyond double threshold
)

// GradeVariance grades the absolute variance against the threshold
func GradeVariance(variance, threshold decimal.Decimal) VarianceSeverity {
	abs := variance.Abs()
	switch {
	case threshold.IsPositive() && abs.GreaterThanOrEqual(threshold.Mul(decimal.NewFromInt(2))):
		return VarianceCritical
	case threshold.IsPositive() && abs.GreaterThan(threshold):
		return VarianceWarning
	default:
		return VarianceNone
	}
}

// ShiftPaymentSummary is one per-method takings row recorded at shift close
type ShiftPaymentSummary struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShiftID   uuid.UUID `gorm:"type:uuid;index"`
	Method    string
	Amount    decimal.Decimal
	TxnCount  int64
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (ShiftPaymentSummary) TableName() string {
	return "shift_payment_summaries"
}

// CashCount breaks the shift's cash movement down at close time
type CashCount struct {
	ActualCash    decimal.Decimal
	CashPayments  decimal.Decimal // cash settlements attributed to the shift
	CashReversals decimal.Decimal // completed cash refund reversals in the shift
}

// CashierShift tracks one cashier's drawer between open and close. A
// cashier holds at most one open shift across the whole system; the
// uniqueness is enforced check-then-write in the opening transaction.
type CashierShift struct {
	shared.StoreAggregateRoot
	SessionID  uuid.UUID `gorm:"type:uuid;index"`
	CashierID  uuid.UUID `gorm:"type:uuid;index"`
	TerminalID *uuid.UUID
	Status     ShiftStatus

	OpeningCash decimal.Decimal
	// Close-time figures. ExpectedCash = OpeningCash + cash payments in the
	// shift minus completed cash refund reversals.
	ExpectedCash decimal.Decimal
	ActualCash   decimal.Decimal
	Variance     decimal.Decimal

	VarianceSeverity VarianceSeverity
	// RequiresApproval flags variances beyond threshold; the shift is not
	// settled until a supervisor approves.
	RequiresApproval bool
	ApprovedBy       *uuid.UUID
	ApprovedAt       *time.Time

	Summaries []ShiftPaymentSummary `gorm:"foreignKey:ShiftID;references:ID"`

	OpenedAt time.Time
	ClosedAt *time.Time
	ClosedBy *uuid.UUID
	Notes    string
}

// TableName returns the table name for GORM
func (CashierShift) TableName() string {
	return "cashier_shifts"
}

// NewCashierShift opens a shift under the current session
func NewCashierShift(storeID, sessionID, cashierID uuid.UUID, terminalID *uuid.UUID, openingCash decimal.Decimal) (*CashierShift, error) {
	if sessionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SESSION", "Session ID is required")
	}
	if cashierID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CASHIER", "Cashier ID is required")
	}
	if openingCash.IsNegative() {
		return nil, shared.NewValidationError("INVALID_OPENING_CASH", "Opening cash cannot be negative")
	}

	shift := &CashierShift{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, cashierID),
		SessionID:          sessionID,
		CashierID:          cashierID,
		TerminalID:         terminalID,
		Status:             ShiftStatusOpen,
		OpeningCash:        openingCash,
		ExpectedCash:       openingCash,
		Variance:           decimal.Zero,
		VarianceSeverity:   VarianceNone,
		OpenedAt:           time.Now(),
	}

	shift.AddDomainEvent(NewShiftOpenedEvent(shift))
	return shift, nil
}

// Close reconciles the drawer. The actual counted cash is mandatory;
// expected cash and variance are computed here, and a variance beyond the
// threshold flags the shift for supervisor approval and raises an alert.
func (s *CashierShift) Close(closedBy uuid.UUID, count CashCount, threshold decimal.Decimal, summaries []ShiftPaymentSummary) error {
	if s.Status != ShiftStatusOpen {
		return shared.NewConflictError("SHIFT_NOT_OPEN", "Shift is already closed",
			string(ShiftStatusOpen), string(s.Status))
	}
	if closedBy == uuid.Nil {
		return shared.NewValidationError("INVALID_ACTOR", "Closer is required")
	}
	if count.ActualCash.IsNegative() {
		return shared.NewValidationError("INVALID_ACTUAL_CASH", "Actual cash cannot be negative")
	}

	now := time.Now()
	s.ExpectedCash = s.OpeningCash.Add(count.CashPayments).Sub(count.CashReversals)
	s.ActualCash = count.ActualCash
	s.Variance = count.ActualCash.Sub(s.ExpectedCash)
	s.VarianceSeverity = GradeVariance(s.Variance, threshold)
	s.RequiresApproval = s.VarianceSeverity != VarianceNone

	s.Status = ShiftStatusClosed
	s.ClosedBy = &closedBy
	s.ClosedAt = &now
	s.Summaries = summaries
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewShiftClosedEvent(s))
	if s.RequiresApproval {
		s.AddDomainEvent(NewCashVarianceDetectedEvent(s))
	}
	return nil
}

// Abandon marks a shift orphaned by its session's forced close. The drawer
// was never counted, so no reconciliation figures exist; the shift stays
// flagged until a supervisor reviews it.
func (s *CashierShift) Abandon(actorID uuid.UUID, reason string) error {
	if s.Status != ShiftStatusOpen {
		return shared.NewConflictError("SHIFT_NOT_OPEN", "Only open shifts can be abandoned",
			string(ShiftStatusOpen), string(s.Status))
	}
	if actorID == uuid.Nil {
		return shared.NewValidationError("INVALID_ACTOR", "Actor is required")
	}

	now := time.Now()
	s.Status = ShiftStatusAbandoned
	s.ClosedBy = &actorID
	s.ClosedAt = &now
	s.RequiresApproval = true
	s.Notes = reason
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewShiftAbandonedEvent(s))
	return nil
}

// ApproveVariance settles a flagged shift after supervisor review
func (s *CashierShift) ApproveVariance(approverID uuid.UUID) error {
	if s.Status != ShiftStatusClosed {
		return shared.NewConflictError("SHIFT_NOT_CLOSED", "Only closed shifts can be approved",
			string(ShiftStatusClosed), string(s.Status))
	}
	if !s.RequiresApproval {
		return shared.NewValidationError("NO_APPROVAL_NEEDED", "Shift variance is within threshold")
	}
	if approverID == uuid.Nil {
		return shared.NewValidationError("INVALID_APPROVER", "Approver is required")
	}
	if approverID == s.CashierID {
		return shared.NewAuthorizationError("SELF_APPROVAL", "A cashier cannot approve their own variance")
	}

	now := time.Now()
	s.ApprovedBy = &approverID
	s.ApprovedAt = &now
	s.UpdatedAt = now
	return nil
}

// IsSettled reports whether the closed shift needs no further action
func (s *CashierShift) IsSettled() bool {
	if s.Status != ShiftStatusClosed {
		return false
	}
	return !s.RequiresApproval || s.ApprovedBy != nil
}

// IsOpen reports whether the shift still takes payments
func (s *CashierShift) IsOpen() bool {
	return s.Status == ShiftStatusOpen
}
