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

	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormBillRepository implements ordering.BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill with its items
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Bill, error) {
	var bill ordering.Bill
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindByIDForUpdate loads the bill under a row lock. The lock lives until
// the surrounding transaction commits, serializing mutations per bill.
func (r *GormBillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ordering.Bill, error) {
	var bill ordering.Bill
	if err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := dbFrom(ctx, r.db).
		Where("bill_id = ?", id).
		Order("created_at ASC").
		Find(&bill.Items).Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// FindByNumber finds a bill by its human-readable number
func (r *GormBillRepository) FindByNumber(ctx context.Context, storeID uuid.UUID, billNumber string) (*ordering.Bill, error) {
	var bill ordering.Bill
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("store_id = ? AND bill_number = ?", storeID, billNumber).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindOpenByTable finds the open or held bill seated at a table
func (r *GormBillRepository) FindOpenByTable(ctx context.Context, storeID, tableID uuid.UUID) (*ordering.Bill, error) {
	var bill ordering.Bill
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("store_id = ? AND table_id = ? AND status IN ?", storeID, tableID,
			[]ordering.BillStatus{ordering.BillStatusOpen, ordering.BillStatusHold}).
		First(&bill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// FindByStatus finds a store's bills in one status
func (r *GormBillRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status ordering.BillStatus, filter shared.Filter) ([]ordering.Bill, error) {
	var bills []ordering.Bill
	query := applyFilter(dbFrom(ctx, r.db).Model(&ordering.Bill{}).Preload("Items").
		Where("store_id = ? AND status = ?", storeID, status), filter, BillSortFields)
	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// FindForBusinessDate finds a store's bills for one business date
func (r *GormBillRepository) FindForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time, filter shared.Filter) ([]ordering.Bill, error) {
	var bills []ordering.Bill
	query := applyFilter(dbFrom(ctx, r.db).Model(&ordering.Bill{}).Preload("Items").
		Where("store_id = ? AND business_date = ?", storeID, businessDate), filter, BillSortFields)
	if err := query.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// CountByStatusForBusinessDate counts a business date's bills in one status
func (r *GormBillRepository) CountByStatusForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time, status ordering.BillStatus) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&ordering.Bill{}).
		Where("store_id = ? AND business_date = ? AND status = ?", storeID, businessDate, status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPaidTotalForBusinessDate totals the closed bills of a business date
func (r *GormBillRepository) SumPaidTotalForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := dbFrom(ctx, r.db).Model(&ordering.Bill{}).
		Where("store_id = ? AND business_date = ? AND status = ?", storeID, businessDate, ordering.BillStatusPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save creates or updates a bill with its items
func (r *GormBillRepository) Save(ctx context.Context, bill *ordering.Bill) error {
	db := dbFrom(ctx, r.db)
	if err := db.Omit("Items").Save(bill).Error; err != nil {
		return err
	}

	currentItemIDs := make([]uuid.UUID, len(bill.Items))
	for i, item := range bill.Items {
		currentItemIDs[i] = item.ID
	}
	removed := db.Where("bill_id = ?", bill.ID)
	if len(currentItemIDs) > 0 {
		removed = removed.Where("id NOT IN ?", currentItemIDs)
	}
	if err := removed.Delete(&ordering.BillItem{}).Error; err != nil {
		return err
	}

	for i := range bill.Items {
		bill.Items[i].BillID = bill.ID
		if err := db.Save(&bill.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete hard-deletes an empty never-sent bill together with its items
func (r *GormBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFrom(ctx, r.db)
	if err := db.Where("bill_id = ?", id).Delete(&ordering.BillItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&ordering.Bill{}, "id = ?", id).Error
}

// GenerateBillNumber produces the next {outlet}-{yyyymmdd}-{seq:04d} number
// for the brand and business date. The brand's newest number row is locked
// so two terminals never mint the same sequence.
func (r *GormBillRepository) GenerateBillNumber(ctx context.Context, brandID uuid.UUID, outletCode string, businessDate time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", outletCode, businessDate.Format("20060102"))

	var last string
	err := dbFrom(ctx, r.db).Model(&ordering.Bill{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("brand_id = ? AND bill_number LIKE ?", brandID, prefix+"%").
		Order("bill_number DESC").
		Limit(1).
		Pluck("bill_number", &last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	seq := 1
	if last != "" {
		if n, err := strconv.Atoi(last[strings.LastIndexByte(last, '-')+1:]); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// NextQueueNumber produces the next takeaway queue number for the business
// date
func (r *GormBillRepository) NextQueueNumber(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (int, error) {
	var highest int
	if err := dbFrom(ctx, r.db).Model(&ordering.Bill{}).
		Where("store_id = ? AND business_date = ? AND queue_number IS NOT NULL", storeID, businessDate).
		Select("COALESCE(MAX(queue_number), 0)").
		Scan(&highest).Error; err != nil {
		return 0, err
	}
	return highest + 1, nil
}
