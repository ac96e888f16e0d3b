package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// RefundType distinguishes whole-bill refunds from itemized partial ones
type RefundType string

const (
	RefundTypeFull    RefundType = "full"
	RefundTypePartial RefundType = "partial"
)

// RefundStatus represents the status of a bill refund
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"   // waiting for approval
	RefundStatusApproved  RefundStatus = "approved"  // approved, awaiting money movement
	RefundStatusRejected  RefundStatus = "rejected"  // rejected by approver
	RefundStatusCompleted RefundStatus = "completed" // reversals recorded, money returned
)

// IsValid checks if the status is a valid RefundStatus
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusApproved, RefundStatusRejected, RefundStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of RefundStatus
func (s RefundStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s RefundStatus) CanTransitionTo(target RefundStatus) bool {
	switch s {
	case RefundStatusPending:
		return target == RefundStatusApproved || target == RefundStatusRejected
	case RefundStatusApproved:
		return target == RefundStatusCompleted
	case RefundStatusRejected, RefundStatusCompleted:
		return false // terminal
	}
	return false
}

// BillRefundItem is one refunded line of the original bill
type BillRefundItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RefundID    uuid.UUID `gorm:"type:uuid;index"`
	BillItemID  uuid.UUID `gorm:"type:uuid;index"`
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal // Quantity * UnitPrice
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (BillRefundItem) TableName() string {
	return "bill_refund_items"
}

// RefundPaymentReversal returns money to one original payment instrument,
// so split-tender refunds land back on the correct methods.
type RefundPaymentReversal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RefundID  uuid.UUID `gorm:"type:uuid;index"`
	PaymentID *uuid.UUID
	Method    PaymentMethod
	Amount    decimal.Decimal
	Reference string
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (RefundPaymentReversal) TableName() string {
	return "refund_payment_reversals"
}

// OriginalBill is the snapshot of the paid bill a refund draws against
type OriginalBill struct {
	BillID        uuid.UUID
	BillNumber    string
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal // line discounts plus bill-level discount
	TaxAmount     decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
	PaidTotal     decimal.Decimal
}

// RefundLine selects a quantity of one original bill line to refund.
// AvailableQuantity is the line's original quantity net of prior refunds.
// UnitPrice is the line's effective price per unit, modifiers included,
// so refunded subtotals align with the bill subtotal they draw against.
type RefundLine struct {
	BillItemID        uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	Quantity          int
	AvailableQuantity int
	UnitPrice         decimal.Decimal
}

// ReversalInput describes one payment reversal at completion time
type ReversalInput struct {
	PaymentID *uuid.UUID
	Method    PaymentMethod
	Amount    decimal.Decimal
	Reference string
}

// BillRefund is the reverse-flow aggregate of a paid bill. It is a separate
// object, never a bill status change, and walks
// pending -> approved|rejected -> completed.
type BillRefund struct {
	shared.StoreAggregateRoot
	RefundNumber string // RF-{brand}-{yyyymmdd}-{seq:03d}
	BillID       uuid.UUID
	BillNumber   string
	RefundType   RefundType
	Status       RefundStatus
	Reason       string

	Items     []BillRefundItem        `gorm:"foreignKey:RefundID;references:ID"`
	Reversals []RefundPaymentReversal `gorm:"foreignKey:RefundID;references:ID"`

	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxAmount     decimal.Decimal
	ServiceCharge decimal.Decimal
	TotalAmount   decimal.Decimal

	RequestedBy uuid.UUID
	// ApprovedBy identifies the elevated approver; ApproverCode keeps only
	// the masked tail of the approval code for audit.
	ApprovedBy      *uuid.UUID
	ApproverCode    string
	RejectionReason string

	// ShiftID is the cashier shift in which the cash reversal landed. Cash
	// reversals reduce that shift's expected cash.
	ShiftID     *uuid.UUID
	CompletedBy *uuid.UUID
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (BillRefund) TableName() string {
	return "bill_refunds"
}

// NewBillRefund opens a pending refund against a paid bill.
//
// priorRefundedTotal is the sum of all already-completed-or-pending refunds
// for the bill; together with this refund it can never exceed the bill's
// paid total. Line quantities are bounded by each line's AvailableQuantity.
// A refund covering the bill's full subtotal with no prior refunds copies
// tax, service and total verbatim; anything else prorates them by
// refundedSubtotal / originalSubtotal.
func NewBillRefund(
	storeID uuid.UUID,
	refundNumber string,
	original OriginalBill,
	lines []RefundLine,
	reason string,
	requestedBy uuid.UUID,
	priorRefundedTotal decimal.Decimal,
) (*BillRefund, error) {
	if refundNumber == "" {
		return nil, shared.NewValidationError("INVALID_REFUND_NUMBER", "Refund number cannot be empty")
	}
	if original.BillID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_BILL", "Bill ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_REFUND", "Select at least one item to refund")
	}
	if reason == "" {
		return nil, shared.NewValidationError("REASON_REQUIRED", "Refund reason is required")
	}
	if requestedBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Requester is required")
	}
	if original.Subtotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_BILL", "Original bill has no refundable amount")
	}

	refund := &BillRefund{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, requestedBy),
		RefundNumber:       refundNumber,
		BillID:             original.BillID,
		BillNumber:         original.BillNumber,
		Status:             RefundStatusPending,
		Reason:             reason,
		RequestedBy:        requestedBy,
		Items:              make([]BillRefundItem, 0, len(lines)),
	}

	now := time.Now()
	refundedSubtotal := decimal.Zero
	for _, line := range lines {
		if line.BillItemID == uuid.Nil {
			return nil, shared.NewValidationError("INVALID_ITEM", "Bill item ID is required")
		}
		if line.Quantity < 1 {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Refund quantity must be at least 1")
		}
		if line.Quantity > line.AvailableQuantity {
			return nil, shared.NewValidationError("REFUND_EXCEEDS_QUANTITY",
				fmt.Sprintf("Cannot refund %d of %q, only %d left unrefunded", line.Quantity, line.ProductName, line.AvailableQuantity))
		}
		amount := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		refund.Items = append(refund.Items, BillRefundItem{
			ID:          uuid.New(),
			RefundID:    refund.ID,
			BillItemID:  line.BillItemID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Amount:      amount,
			CreatedAt:   now,
		})
		refundedSubtotal = refundedSubtotal.Add(amount)
	}

	refund.Subtotal = refundedSubtotal

	fullCoverage := refundedSubtotal.Equal(original.Subtotal) && priorRefundedTotal.IsZero()
	if fullCoverage {
		refund.RefundType = RefundTypeFull
		refund.DiscountTotal = original.DiscountTotal
		refund.TaxAmount = original.TaxAmount
		refund.ServiceCharge = original.ServiceCharge
		refund.TotalAmount = original.Total
	} else {
		refund.RefundType = RefundTypePartial
		ratio := refundedSubtotal.Div(original.Subtotal)
		refund.DiscountTotal = original.DiscountTotal.Mul(ratio).Round(2)
		refund.TaxAmount = original.TaxAmount.Mul(ratio).Round(2)
		refund.ServiceCharge = original.ServiceCharge.Mul(ratio).Round(2)
		refund.TotalAmount = refundedSubtotal.Sub(refund.DiscountTotal).
			Add(refund.TaxAmount).Add(refund.ServiceCharge)
	}

	if refund.TotalAmount.Add(priorRefundedTotal).GreaterThan(original.PaidTotal) {
		return nil, shared.NewValidationError("REFUND_EXCEEDS_PAID",
			fmt.Sprintf("Refund %s plus prior refunds %s exceeds paid total %s",
				refund.TotalAmount, priorRefundedTotal, original.PaidTotal))
	}

	refund.AddDomainEvent(NewRefundRequestedEvent(refund))
	return refund, nil
}

// Approve moves the refund to approved. Approval authority is checked by the
// caller against the approver's role and PIN; only the masked tail of the
// approval code is retained.
func (r *BillRefund) Approve(approverID uuid.UUID, maskedCode string) error {
	if !r.Status.CanTransitionTo(RefundStatusApproved) {
		return shared.NewConflictError("INVALID_STATE", "Refund cannot be approved in its current status",
			string(RefundStatusPending), string(r.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewValidationError("INVALID_APPROVER", "Approver is required")
	}
	if approverID == r.RequestedBy {
		return shared.NewAuthorizationError("SELF_APPROVAL", "A refund cannot be approved by its requester")
	}

	r.Status = RefundStatusApproved
	r.ApprovedBy = &approverID
	r.ApproverCode = maskedCode
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRefundApprovedEvent(r))
	return nil
}

// Reject moves the refund to rejected with the approver's reason
func (r *BillRefund) Reject(approverID uuid.UUID, reason string) error {
	if !r.Status.CanTransitionTo(RefundStatusRejected) {
		return shared.NewConflictError("INVALID_STATE", "Refund cannot be rejected in its current status",
			string(RefundStatusPending), string(r.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewValidationError("INVALID_APPROVER", "Approver is required")
	}
	if reason == "" {
		return shared.NewValidationError("REASON_REQUIRED", "Rejection reason is required")
	}

	r.Status = RefundStatusRejected
	r.ApprovedBy = &approverID
	r.RejectionReason = reason
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRefundRejectedEvent(r))
	return nil
}

// Complete records the payment reversals and closes the refund. The
// reversal amounts must sum exactly to the refund total.
func (r *BillRefund) Complete(reversals []ReversalInput, completedBy uuid.UUID, shiftID *uuid.UUID) error {
	if !r.Status.CanTransitionTo(RefundStatusCompleted) {
		return shared.NewConflictError("INVALID_STATE", "Refund cannot be completed in its current status",
			string(RefundStatusApproved), string(r.Status))
	}
	if len(reversals) == 0 {
		return shared.NewValidationError("EMPTY_REVERSALS", "At least one payment reversal is required")
	}
	if completedBy == uuid.Nil {
		return shared.NewValidationError("INVALID_ACTOR", "Completer is required")
	}

	now := time.Now()
	total := decimal.Zero
	rows := make([]RefundPaymentReversal, 0, len(reversals))
	for _, rev := range reversals {
		if !rev.Method.IsValid() {
			return shared.NewValidationError("INVALID_METHOD", "Unknown reversal payment method")
		}
		if rev.Amount.LessThanOrEqual(decimal.Zero) {
			return shared.NewValidationError("INVALID_AMOUNT", "Reversal amount must be positive")
		}
		rows = append(rows, RefundPaymentReversal{
			ID:        uuid.New(),
			RefundID:  r.ID,
			PaymentID: rev.PaymentID,
			Method:    rev.Method,
			Amount:    rev.Amount,
			Reference: rev.Reference,
			CreatedAt: now,
		})
		total = total.Add(rev.Amount)
	}
	if !total.Equal(r.TotalAmount) {
		return shared.NewIntegrityError("REVERSAL_MISMATCH",
			fmt.Sprintf("Reversals sum to %s but refund total is %s", total, r.TotalAmount))
	}

	r.Reversals = rows
	r.Status = RefundStatusCompleted
	r.CompletedBy = &completedBy
	r.ShiftID = shiftID
	r.CompletedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewRefundCompletedEvent(r))
	return nil
}

// CashReversalAmount sums the cash portion of the recorded reversals
func (r *BillRefund) CashReversalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range r.Reversals {
		if r.Reversals[i].Method == MethodCash {
			total = total.Add(r.Reversals[i].Amount)
		}
	}
	return total
}

// IsPending reports whether the refund still awaits approval
func (r *BillRefund) IsPending() bool {
	return r.Status == RefundStatusPending
}

// IsCompleted reports whether the refund has moved money
func (r *BillRefund) IsCompleted() bool {
	return r.Status == RefundStatusCompleted
}
