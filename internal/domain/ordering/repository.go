package ordering

import (
	"context"
	"time"

	"github.com/edgepos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillRepository defines persistence for the Bill aggregate.
//
// Implementations must serialize mutations to a single bill: FindByIDForUpdate
// takes a row-level lock held for the remainder of the surrounding
// transaction, so two terminals racing to edit the same bill cannot corrupt
// totals.
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// FindByIDForUpdate loads the bill with its items under a row lock.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByNumber(ctx context.Context, storeID uuid.UUID, billNumber string) (*Bill, error)
	FindOpenByTable(ctx context.Context, storeID, tableID uuid.UUID) (*Bill, error)
	FindByStatus(ctx context.Context, storeID uuid.UUID, status BillStatus, filter shared.Filter) ([]Bill, error)
	FindForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time, filter shared.Filter) ([]Bill, error)
	CountByStatusForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time, status BillStatus) (int64, error)
	// SumPaidTotalForBusinessDate totals the closed bills of a business
	// date, feeding the EOD gross sales figure.
	SumPaidTotalForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (decimal.Decimal, error)

	Save(ctx context.Context, bill *Bill) error
	// Delete hard-deletes an empty never-sent bill together with its items.
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateBillNumber produces the next {outlet}-{yyyymmdd}-{seq:04d}
	// number for the brand and business date.
	GenerateBillNumber(ctx context.Context, brandID uuid.UUID, outletCode string, businessDate time.Time) (string, error)
	// NextQueueNumber produces the next takeaway queue number for the
	// business date.
	NextQueueNumber(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (int, error)
}

// BillLogRepository persists the append-only bill audit trail
type BillLogRepository interface {
	Append(ctx context.Context, logs ...*BillLog) error
	FindByBill(ctx context.Context, billID uuid.UUID, filter shared.Filter) ([]BillLog, error)
}
