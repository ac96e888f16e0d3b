package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormStationPrinterRepository implements StationPrinterRepository using GORM
type GormStationPrinterRepository struct {
	db *gorm.DB
}

// NewGormStationPrinterRepository creates a new GormStationPrinterRepository
func NewGormStationPrinterRepository(db *gorm.DB) *GormStationPrinterRepository {
	return &GormStationPrinterRepository{db: db}
}

// FindByID finds a printer by ID
func (r *GormStationPrinterRepository) FindByID(ctx context.Context, id uuid.UUID) (*kitchen.StationPrinter, error) {
	var printer kitchen.StationPrinter
	if err := dbFrom(ctx, r.db).First(&printer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &printer, nil
}

// FindByStation finds a station's active printers ordered by priority
func (r *GormStationPrinterRepository) FindByStation(ctx context.Context, storeID, brandID uuid.UUID, station string) ([]kitchen.StationPrinter, error) {
	var printers []kitchen.StationPrinter
	if err := dbFrom(ctx, r.db).
		Where("store_id = ? AND brand_id = ? AND station = ? AND active = ?", storeID, brandID, station, true).
		Order("priority ASC, created_at ASC").
		Find(&printers).Error; err != nil {
		return nil, err
	}
	return printers, nil
}

// FindAllForStore finds every printer configured for a store
func (r *GormStationPrinterRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID) ([]kitchen.StationPrinter, error) {
	var printers []kitchen.StationPrinter
	if err := dbFrom(ctx, r.db).
		Where("store_id = ?", storeID).
		Order("station ASC, priority ASC").
		Find(&printers).Error; err != nil {
		return nil, err
	}
	return printers, nil
}

// Save saves a printer (insert or update)
func (r *GormStationPrinterRepository) Save(ctx context.Context, printer *kitchen.StationPrinter) error {
	return dbFrom(ctx, r.db).Save(printer).Error
}

// Delete deletes a printer by ID
func (r *GormStationPrinterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&kitchen.StationPrinter{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormStationPrinterRepository implements StationPrinterRepository
var _ kitchen.StationPrinterRepository = (*GormStationPrinterRepository)(nil)
