package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormChecklistRepository implements ChecklistRepository using GORM
type GormChecklistRepository struct {
	db *gorm.DB
}

// NewGormChecklistRepository creates a new GormChecklistRepository
func NewGormChecklistRepository(db *gorm.DB) *GormChecklistRepository {
	return &GormChecklistRepository{db: db}
}

// FindBySession finds a session's checklist in task order
func (r *GormChecklistRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]session.EODChecklistItem, error) {
	var items []session.EODChecklistItem
	if err := dbFrom(ctx, r.db).
		Where("session_id = ?", sessionID).
		Order("sequence ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID finds a checklist item by ID
func (r *GormChecklistRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.EODChecklistItem, error) {
	var item session.EODChecklistItem
	if err := dbFrom(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// SaveAll persists a batch of checklist items
func (r *GormChecklistRepository) SaveAll(ctx context.Context, items []session.EODChecklistItem) error {
	if len(items) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Save(&items).Error
}

// Save saves a checklist item (insert or update)
func (r *GormChecklistRepository) Save(ctx context.Context, item *session.EODChecklistItem) error {
	return dbFrom(ctx, r.db).Save(item).Error
}

// CountIncomplete counts a session's unfinished checklist tasks
func (r *GormChecklistRepository) CountIncomplete(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&session.EODChecklistItem{}).
		Where("session_id = ? AND completed = ?", sessionID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormChecklistRepository implements ChecklistRepository
var _ session.ChecklistRepository = (*GormChecklistRepository)(nil)
