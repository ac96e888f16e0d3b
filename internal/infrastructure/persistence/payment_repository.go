package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := dbFrom(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByBill finds a bill's payments, oldest first
func (r *GormPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]payment.Payment, error) {
	var payments []payment.Payment
	if err := dbFrom(ctx, r.db).
		Where("bill_id = ?", billID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save saves a payment (insert or update)
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return dbFrom(ctx, r.db).Save(p).Error
}

// SumByBill totals all payments recorded against a bill
func (r *GormPaymentRepository) SumByBill(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := dbFrom(ctx, r.db).Model(&payment.Payment{}).
		Where("bill_id = ?", billID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumCashByShift totals cash payments attributed to a shift
func (r *GormPaymentRepository) SumCashByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := dbFrom(ctx, r.db).Model(&payment.Payment{}).
		Where("shift_id = ? AND method = ?", shiftID, payment.MethodCash).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SummarizeByShift breaks a shift's payments down per method
func (r *GormPaymentRepository) SummarizeByShift(ctx context.Context, shiftID uuid.UUID) ([]payment.MethodSummary, error) {
	var summaries []payment.MethodSummary
	if err := dbFrom(ctx, r.db).Model(&payment.Payment{}).
		Where("shift_id = ?", shiftID).
		Select("method, COALESCE(SUM(amount), 0) AS amount, COUNT(*) AS txn_count").
		Group("method").
		Order("method ASC").
		Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// SumByMethodForBusinessDate aggregates store-wide takings per method for
// the business date. Payments carry no business date of their own; the
// bill they settle does.
func (r *GormPaymentRepository) SumByMethodForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (map[payment.PaymentMethod]decimal.Decimal, error) {
	var rows []payment.MethodSummary
	if err := dbFrom(ctx, r.db).Model(&payment.Payment{}).
		Joins("JOIN bills ON bills.id = payments.bill_id").
		Where("payments.store_id = ? AND bills.business_date = ?", storeID, businessDate).
		Select("payments.method, COALESCE(SUM(payments.amount), 0) AS amount, COUNT(*) AS txn_count").
		Group("payments.method").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[payment.PaymentMethod]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Method] = row.Amount
	}
	return totals, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ payment.PaymentRepository = (*GormPaymentRepository)(nil)
