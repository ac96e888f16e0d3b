package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/shared"
)

// MethodSummary aggregates takings for one payment method
type MethodSummary struct {
	Method   PaymentMethod
	Amount   decimal.Decimal
	TxnCount int64
}

// PaymentRepository defines persistence for settlement rows. Remaining
// balances are always recomputed from persisted rows, never cached.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error

	// SumByBill totals all payments recorded against a bill.
	SumByBill(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error)
	// SumCashByShift totals cash payments attributed to a shift, feeding
	// the expected-cash computation at shift close.
	SumCashByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)
	// SummarizeByShift breaks a shift's payments down per method with
	// transaction counts, feeding the close-time summary rows.
	SummarizeByShift(ctx context.Context, shiftID uuid.UUID) ([]MethodSummary, error)
	// SumByMethodForBusinessDate aggregates store-wide takings for the EOD
	// report.
	SumByMethodForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (map[PaymentMethod]decimal.Decimal, error)
}

// RefundRepository defines persistence for the BillRefund aggregate
type RefundRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BillRefund, error)
	FindByBill(ctx context.Context, billID uuid.UUID) ([]BillRefund, error)
	FindByStatus(ctx context.Context, storeID uuid.UUID, status RefundStatus, filter shared.Filter) ([]BillRefund, error)
	Save(ctx context.Context, refund *BillRefund) error

	// RefundedQuantities returns, per original bill item, the quantity
	// already claimed by refunds that are not rejected.
	RefundedQuantities(ctx context.Context, billID uuid.UUID) (map[uuid.UUID]int, error)
	// RefundedTotal sums the amounts of all non-rejected refunds for a
	// bill.
	RefundedTotal(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error)
	// SumCashReversalsByShift totals the cash reversals landed in a shift;
	// these reduce the shift's expected cash.
	SumCashReversalsByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)
	// SumCompletedForBusinessDate totals the refunds completed on a business
	// date, feeding the EOD report.
	SumCompletedForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (decimal.Decimal, error)

	// GenerateRefundNumber produces the next RF-{brand}-{yyyymmdd}-{seq:03d}
	// number.
	GenerateRefundNumber(ctx context.Context, brandID uuid.UUID, brandCode string, businessDate time.Time) (string, error)
}
