package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/shared"
)

// RefundSortFields defines allowed sort fields for refunds
var RefundSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"refund_number": true,
	"status":        true,
	"total_amount":  true,
	"completed_at":  true,
}

// GormRefundRepository implements RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByID finds a refund with its items and reversals
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.BillRefund, error) {
	var refund payment.BillRefund
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Preload("Reversals").
		First(&refund, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindByBill finds all refunds raised against a bill, newest first
func (r *GormRefundRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]payment.BillRefund, error) {
	var refunds []payment.BillRefund
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Preload("Reversals").
		Where("bill_id = ?", billID).
		Order("created_at DESC").
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// FindByStatus finds a store's refunds in one status
func (r *GormRefundRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status payment.RefundStatus, filter shared.Filter) ([]payment.BillRefund, error) {
	var refunds []payment.BillRefund
	query := applyFilter(dbFrom(ctx, r.db).Model(&payment.BillRefund{}).
		Preload("Items").
		Preload("Reversals").
		Where("store_id = ? AND status = ?", storeID, status), filter, RefundSortFields)
	if err := query.Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// Save persists the refund with its items and reversals. Both children are
// append-only, so rows are upserted and never pruned.
func (r *GormRefundRepository) Save(ctx context.Context, refund *payment.BillRefund) error {
	db := dbFrom(ctx, r.db)
	if err := db.Omit("Items", "Reversals").Save(refund).Error; err != nil {
		return err
	}
	for i := range refund.Items {
		refund.Items[i].RefundID = refund.ID
		if err := db.Save(&refund.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range refund.Reversals {
		refund.Reversals[i].RefundID = refund.ID
		if err := db.Save(&refund.Reversals[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// refundedQuantityRow carries one grouped quantity result
type refundedQuantityRow struct {
	BillItemID uuid.UUID
	Quantity   int
}

// RefundedQuantities returns, per original bill item, the quantity already
// claimed by refunds that are not rejected
func (r *GormRefundRepository) RefundedQuantities(ctx context.Context, billID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []refundedQuantityRow
	if err := dbFrom(ctx, r.db).Model(&payment.BillRefundItem{}).
		Joins("JOIN bill_refunds ON bill_refunds.id = bill_refund_items.refund_id").
		Where("bill_refunds.bill_id = ? AND bill_refunds.status != ?", billID, payment.RefundStatusRejected).
		Select("bill_refund_items.bill_item_id, COALESCE(SUM(bill_refund_items.quantity), 0) AS quantity").
		Group("bill_refund_items.bill_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	quantities := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		quantities[row.BillItemID] = row.Quantity
	}
	return quantities, nil
}

// RefundedTotal sums the amounts of all non-rejected refunds for a bill
func (r *GormRefundRepository) RefundedTotal(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := dbFrom(ctx, r.db).Model(&payment.BillRefund{}).
		Where("bill_id = ? AND status != ?", billID, payment.RefundStatusRejected).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumCashReversalsByShift totals the completed cash reversals attributed to
// a shift
func (r *GormRefundRepository) SumCashReversalsByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := dbFrom(ctx, r.db).Model(&payment.RefundPaymentReversal{}).
		Joins("JOIN bill_refunds ON bill_refunds.id = refund_payment_reversals.refund_id").
		Where("bill_refunds.shift_id = ? AND bill_refunds.status = ? AND refund_payment_reversals.method = ?",
			shiftID, payment.RefundStatusCompleted, payment.MethodCash).
		Select("COALESCE(SUM(refund_payment_reversals.amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SumCompletedForBusinessDate totals the refunds completed on a business
// date. Completion time decides the date, so a refund of yesterday's bill
// lands in today's figures.
func (r *GormRefundRepository) SumCompletedForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (decimal.Decimal, error) {
	dayStart := businessDate
	dayEnd := businessDate.AddDate(0, 0, 1)

	var total decimal.Decimal
	if err := dbFrom(ctx, r.db).Model(&payment.BillRefund{}).
		Where("store_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			storeID, payment.RefundStatusCompleted, dayStart, dayEnd).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// GenerateRefundNumber produces the next RF-{brand}-{yyyymmdd}-{seq:03d}
// number. The newest matching row is locked so two terminals never mint the
// same sequence.
func (r *GormRefundRepository) GenerateRefundNumber(ctx context.Context, brandID uuid.UUID, brandCode string, businessDate time.Time) (string, error) {
	prefix := fmt.Sprintf("RF-%s-%s-", brandCode, businessDate.Format("20060102"))

	var last string
	err := dbFrom(ctx, r.db).Model(&payment.BillRefund{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("refund_number LIKE ?", prefix+"%").
		Order("refund_number DESC").
		Limit(1).
		Pluck("refund_number", &last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(last[strings.LastIndexByte(last, '-')+1:]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// Ensure GormRefundRepository implements RefundRepository
var _ payment.RefundRepository = (*GormRefundRepository)(nil)
