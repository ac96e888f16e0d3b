package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/shared"
)

// GormReceiptTemplateRepository implements ReceiptTemplateRepository using GORM
type GormReceiptTemplateRepository struct {
	db *gorm.DB
}

// NewGormReceiptTemplateRepository creates a new GormReceiptTemplateRepository
func NewGormReceiptTemplateRepository(db *gorm.DB) *GormReceiptTemplateRepository {
	return &GormReceiptTemplateRepository{db: db}
}

// FindByID finds a template by ID
func (r *GormReceiptTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.ReceiptTemplate, error) {
	var template printing.ReceiptTemplate
	if err := dbFrom(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindDefaultForBrand finds a brand's default template
func (r *GormReceiptTemplateRepository) FindDefaultForBrand(ctx context.Context, storeID, brandID uuid.UUID) (*printing.ReceiptTemplate, error) {
	var template printing.ReceiptTemplate
	if err := dbFrom(ctx, r.db).
		Where("store_id = ? AND brand_id = ? AND is_default = ?", storeID, brandID, true).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// Save saves a template. A template marked default demotes the brand's other
// templates in the same transaction so at most one default survives.
func (r *GormReceiptTemplateRepository) Save(ctx context.Context, template *printing.ReceiptTemplate) error {
	db := dbFrom(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if template.IsDefault {
			if err := tx.Model(&printing.ReceiptTemplate{}).
				Where("store_id = ? AND brand_id = ? AND id != ? AND is_default = ?",
					template.StoreID, template.BrandID, template.ID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(template).Error
	})
}

// Delete deletes a template by ID
func (r *GormReceiptTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&printing.ReceiptTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormReceiptTemplateRepository implements ReceiptTemplateRepository
var _ printing.ReceiptTemplateRepository = (*GormReceiptTemplateRepository)(nil)
