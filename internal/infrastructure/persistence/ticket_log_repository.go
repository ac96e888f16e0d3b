package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/kitchen"
)

// GormTicketLogRepository implements TicketLogRepository using GORM
type GormTicketLogRepository struct {
	db *gorm.DB
}

// NewGormTicketLogRepository creates a new GormTicketLogRepository
func NewGormTicketLogRepository(db *gorm.DB) *GormTicketLogRepository {
	return &GormTicketLogRepository{db: db}
}

// Append inserts transition rows. The trail is append-only.
func (r *GormTicketLogRepository) Append(ctx context.Context, logs ...*kitchen.KitchenTicketLog) error {
	if len(logs) == 0 {
		return nil
	}
	return dbFrom(ctx, r.db).Create(logs).Error
}

// FindByTicket finds a ticket's transition trail, oldest first
func (r *GormTicketLogRepository) FindByTicket(ctx context.Context, ticketID uuid.UUID) ([]kitchen.KitchenTicketLog, error) {
	var logs []kitchen.KitchenTicketLog
	if err := dbFrom(ctx, r.db).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// Ensure GormTicketLogRepository implements TicketLogRepository
var _ kitchen.TicketLogRepository = (*GormTicketLogRepository)(nil)
