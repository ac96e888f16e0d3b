package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/shared"
)

// BillLogSortFields defines allowed sort fields for bill logs
var BillLogSortFields = map[string]bool{
	"created_at": true,
	"action":     true,
}

// GormBillLogRepository implements BillLogRepository using GORM
type GormBillLogRepository struct {
	db *gorm.DB
}

// NewGormBillLogRepository creates a new GormBillLogRepository
func NewGormBillLogRepository(db *gorm.DB) *GormBillLogRepository {
	return &GormBillLogRepository{db: db}
}

// Append inserts audit rows. The trail is append-only; rows are never
// updated or deleted.
func (r *GormBillLogRepository) Append(ctx context.Context, logs ...*ordering.BillLog) error {
	if len(logs) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Create(logs).Error
}

// FindByBill finds a bill's audit trail, oldest first
func (r *GormBillLogRepository) FindByBill(ctx context.Context, billID uuid.UUID, filter shared.Filter) ([]ordering.BillLog, error) {
	var logs []ordering.BillLog
	query := applyFilter(dbFrom(ctx, r.db).Model(&ordering.BillLog{}).
		Where("bill_id = ?", billID), filter, BillLogSortFields)
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormBillLogRepository implements BillLogRepository
var _ ordering.BillLogRepository = (*GormBillLogRepository)(nil)
