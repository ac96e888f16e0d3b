package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormSessionRepository implements SessionRepository using GORM
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID finds a session by ID
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.StoreSession, error) {
	var sess session.StoreSession
	if err := dbFrom(ctx, r.db).First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// FindCurrent finds the store's current session
func (r *GormSessionRepository) FindCurrent(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, error) {
	var sess session.StoreSession
	if err := dbFrom(ctx, r.db).
		Where("store_id = ? AND is_current = ?", storeID, true).
		First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// FindCurrentForUpdate locks the store's current session row for the
// open/close check-then-write. Must run inside a transaction.
func (r *GormSessionRepository) FindCurrentForUpdate(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, error) {
	var sess session.StoreSession
	if err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND is_current = ?", storeID, true).
		First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// FindByBusinessDate finds a store's session for one business date
func (r *GormSessionRepository) FindByBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (*session.StoreSession, error) {
	var sess session.StoreSession
	if err := dbFrom(ctx, r.db).
		Where("store_id = ? AND business_date = ?", storeID, businessDate).
		First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// FindOpenOlderThan finds every open session opened before the cutoff,
// across all stores. Feeds the overdue sweep.
func (r *GormSessionRepository) FindOpenOlderThan(ctx context.Context, cutoff time.Time) ([]session.StoreSession, error) {
	var sessions []session.StoreSession
	if err := dbFrom(ctx, r.db).
		Where("status = ? AND opened_at < ?", session.SessionStatusOpen, cutoff).
		Order("opened_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save saves a session (insert or update)
func (r *GormSessionRepository) Save(ctx context.Context, sess *session.StoreSession) error {
	return dbFrom(ctx, r.db).Save(sess).Error
}

// Ensure GormSessionRepository implements SessionRepository
var _ session.SessionRepository = (*GormSessionRepository)(nil)
