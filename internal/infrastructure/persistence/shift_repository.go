package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormShiftRepository implements ShiftRepository using GORM
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GormShiftRepository
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

// FindByID finds a shift with its payment summaries
func (r *GormShiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.CashierShift, error) {
	var shift session.CashierShift
	if err := dbFrom(ctx, r.db).Preload("Summaries").First(&shift, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

// FindOpenByCashier finds the cashier's open shift if one exists
func (r *GormShiftRepository) FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*session.CashierShift, error) {
	var shift session.CashierShift
	if err := dbFrom(ctx, r.db).
		Where("cashier_id = ? AND status = ?", cashierID, session.ShiftStatusOpen).
		First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

// FindOpenByCashierForUpdate locks the cashier's open shift row for the
// opening check-then-write. Must run inside a transaction.
func (r *GormShiftRepository) FindOpenByCashierForUpdate(ctx context.Context, cashierID uuid.UUID) (*session.CashierShift, error) {
	var shift session.CashierShift
	if err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cashier_id = ? AND status = ?", cashierID, session.ShiftStatusOpen).
		First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shift, nil
}

// FindBySession finds all shifts of a session, oldest first
func (r *GormShiftRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]session.CashierShift, error) {
	var shifts []session.CashierShift
	if err := dbFrom(ctx, r.db).
		Preload("Summaries").
		Where("session_id = ?", sessionID).
		Order("opened_at ASC").
		Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

// CountOpenBySession counts a session's shifts still open
func (r *GormShiftRepository) CountOpenBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&session.CashierShift{}).
		Where("session_id = ? AND status = ?", sessionID, session.ShiftStatusOpen).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a shift with its payment summaries. Summaries are written
// once at close and never change afterwards.
func (r *GormShiftRepository) Save(ctx context.Context, shift *session.CashierShift) error {
	db := dbFrom(ctx, r.db)
	if err := db.Omit("Summaries").Save(shift).Error; err != nil {
		return err
	}
	for i := range shift.Summaries {
		shift.Summaries[i].ShiftID = shift.ID
		if err := db.Save(&shift.Summaries[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormShiftRepository implements ShiftRepository
var _ session.ShiftRepository = (*GormShiftRepository)(nil)
