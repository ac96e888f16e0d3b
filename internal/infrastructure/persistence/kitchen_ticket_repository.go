package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/shared"
)

// KitchenTicketSortFields defines allowed sort fields for kitchen tickets
var KitchenTicketSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"station":    true,
	"status":     true,
	"printed_at": true,
}

// GormKitchenTicketRepository implements KitchenTicketRepository using GORM
type GormKitchenTicketRepository struct {
	db *gorm.DB
}

// NewGormKitchenTicketRepository creates a new GormKitchenTicketRepository
func NewGormKitchenTicketRepository(db *gorm.DB) *GormKitchenTicketRepository {
	return &GormKitchenTicketRepository{db: db}
}

// FindByID finds a ticket with its items
func (r *GormKitchenTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*kitchen.KitchenTicket, error) {
	var ticket kitchen.KitchenTicket
	if err := dbFrom(ctx, r.db).Preload("Items").First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// FindByBill finds all tickets produced for a bill, oldest first
func (r *GormKitchenTicketRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]kitchen.KitchenTicket, error) {
	var tickets []kitchen.KitchenTicket
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("bill_id = ?", billID).
		Order("created_at ASC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// FindByStatus finds a store's tickets in one status
func (r *GormKitchenTicketRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status kitchen.TicketStatus, filter shared.Filter) ([]kitchen.KitchenTicket, error) {
	var tickets []kitchen.KitchenTicket
	query := applyFilter(dbFrom(ctx, r.db).Model(&kitchen.KitchenTicket{}).
		Preload("Items").
		Where("store_id = ? AND status = ?", storeID, status), filter, KitchenTicketSortFields)
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// FindNewForClaim loads new tickets for a dispatcher poll. SKIP LOCKED lets
// concurrent pollers partition the queue without receiving the same ticket.
func (r *GormKitchenTicketRepository) FindNewForClaim(ctx context.Context, limit int) ([]kitchen.KitchenTicket, error) {
	var tickets []kitchen.KitchenTicket
	if err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", kitchen.TicketStatusNew).
		Order("created_at ASC").
		Limit(limit).
		Find(&tickets).Error; err != nil {
		return nil, err
	}

	// FOR UPDATE cannot ride a joined preload; items are loaded separately.
	for i := range tickets {
		if err := dbFrom(ctx, r.db).
			Where("ticket_id = ?", tickets[i].ID).
			Order("created_at ASC").
			Find(&tickets[i].Items).Error; err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

// FindStuckPrinting surfaces tickets claimed before the cutoff that never
// got an outcome
func (r *GormKitchenTicketRepository) FindStuckPrinting(ctx context.Context, cutoff time.Time) ([]kitchen.KitchenTicket, error) {
	var tickets []kitchen.KitchenTicket
	if err := dbFrom(ctx, r.db).
		Where("status = ? AND claimed_at < ?", kitchen.TicketStatusPrinting, cutoff).
		Order("claimed_at ASC").
		Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// CountPending counts a store's tickets that have not reached an outcome
func (r *GormKitchenTicketRepository) CountPending(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&kitchen.KitchenTicket{}).
		Where("store_id = ? AND status IN ?", storeID,
			[]kitchen.TicketStatus{kitchen.TicketStatusNew, kitchen.TicketStatusPrinting}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a ticket with its items. Items are written once at ticket
// creation and never change afterwards.
func (r *GormKitchenTicketRepository) Save(ctx context.Context, ticket *kitchen.KitchenTicket) error {
	db := dbFrom(ctx, r.db)
	if err := db.Omit("Items").Save(ticket).Error; err != nil {
		return err
	}
	for i := range ticket.Items {
		ticket.Items[i].TicketID = ticket.ID
		if err := db.Save(&ticket.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// SaveAll persists a batch of tickets
func (r *GormKitchenTicketRepository) SaveAll(ctx context.Context, tickets []*kitchen.KitchenTicket) error {
	for _, ticket := range tickets {
		if err := r.Save(ctx, ticket); err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormKitchenTicketRepository implements KitchenTicketRepository
var _ kitchen.KitchenTicketRepository = (*GormKitchenTicketRepository)(nil)
