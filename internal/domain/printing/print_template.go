package printing

import (
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// ReceiptTemplate configures how a brand's receipts render: header and
// footer text plus the paper width the brand's printers load. One default
// template per brand.
type ReceiptTemplate struct {
	shared.BaseEntity
	StoreID     uuid.UUID `gorm:"type:uuid;index"`
	BrandID     uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	HeaderLines []string `gorm:"type:jsonb;serializer:json"`
	FooterLines []string `gorm:"type:jsonb;serializer:json"`
	PaperSize   PaperSize
	IsDefault   bool
}

// TableName returns the table name for GORM
func (ReceiptTemplate) TableName() string {
	return "receipt_templates"
}

// NewReceiptTemplate creates a receipt template for a brand
func NewReceiptTemplate(storeID, brandID uuid.UUID, name string, paperSize PaperSize) (*ReceiptTemplate, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Template name cannot be empty")
	}
	if !paperSize.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAPER_SIZE", "Unknown paper size")
	}

	return &ReceiptTemplate{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    storeID,
		BrandID:    brandID,
		Name:       name,
		PaperSize:  paperSize,
	}, nil
}

// SetHeader replaces the header lines
func (t *ReceiptTemplate) SetHeader(lines []string) {
	t.HeaderLines = lines
	t.UpdatedAt = time.Now()
}

// SetFooter replaces the footer lines
func (t *ReceiptTemplate) SetFooter(lines []string) {
	t.FooterLines = lines
	t.UpdatedAt = time.Now()
}

// MarkDefault makes this the brand's default template. The repository
// clears the flag on siblings in the same transaction.
func (t *ReceiptTemplate) MarkDefault() {
	t.IsDefault = true
	t.UpdatedAt = time.Now()
}
