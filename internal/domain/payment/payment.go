package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// PaymentMethod represents the settlement instrument used for a payment
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodQRIS     PaymentMethod = "qris"
	MethodEWallet  PaymentMethod = "ewallet"
	MethodTransfer PaymentMethod = "transfer"
	MethodVoucher  PaymentMethod = "voucher"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodQRIS, MethodEWallet, MethodTransfer, MethodVoucher:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is one settlement instrument applied to a bill. A bill may carry
// any number of payments; the sum against the bill total determines the
// remaining balance and close eligibility.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StoreID   uuid.UUID `gorm:"type:uuid;index"`
	BillID    uuid.UUID `gorm:"type:uuid;index"`
	ShiftID   *uuid.UUID
	Method    PaymentMethod
	Amount    decimal.Decimal
	Reference string // card trace, QR invoice, voucher code
	CreatedBy uuid.UUID
	PaidAt    time.Time
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records a settlement against a bill
func NewPayment(storeID, billID uuid.UUID, shiftID *uuid.UUID, method PaymentMethod, amount decimal.Decimal, reference string, createdBy uuid.UUID) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_BILL", "Bill ID is required")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("INVALID_METHOD", "Unknown payment method")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Creator is required")
	}

	now := time.Now()
	return &Payment{
		ID:        uuid.New(),
		StoreID:   storeID,
		BillID:    billID,
		ShiftID:   shiftID,
		Method:    method,
		Amount:    amount,
		Reference: reference,
		CreatedBy: createdBy,
		PaidAt:    now,
		CreatedAt: now,
	}, nil
}

// IsCash reports whether the payment settles in physical cash. Cash payments
// feed the owning shift's expected-cash computation.
func (p *Payment) IsCash() bool {
	return p.Method == MethodCash
}

// SumPayments totals a set of payment rows
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		total = total.Add(payments[i].Amount)
	}
	return total
}

// RemainingBalance computes what is still owed on a bill. Negative values
// mean the payments overshot the total; the surplus is change, never a
// stored payment row.
func RemainingBalance(billTotal decimal.Decimal, payments []Payment) decimal.Decimal {
	return billTotal.Sub(SumPayments(payments))
}
