package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// AlertSortFields defines allowed sort fields for alerts
var AlertSortFields = map[string]bool{
	"created_at": true,
	"severity":   true,
	"type":       true,
}

// GormAlertRepository implements AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.SessionAlert, error) {
	var alert session.SessionAlert
	if err := dbFrom(ctx, r.db).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindUnacknowledged finds a store's open alerts, newest first
func (r *GormAlertRepository) FindUnacknowledged(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]session.SessionAlert, error) {
	var alerts []session.SessionAlert
	query := applyFilter(dbFrom(ctx, r.db).Model(&session.SessionAlert{}).
		Where("store_id = ? AND acknowledged = ?", storeID, false), filter, AlertSortFields)
	if err := query.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Save saves an alert (insert or update)
func (r *GormAlertRepository) Save(ctx context.Context, alert *session.SessionAlert) error {
	return dbFrom(ctx, r.db).Save(alert).Error
}

// Ensure GormAlertRepository implements AlertRepository
var _ session.AlertRepository = (*GormAlertRepository)(nil)
