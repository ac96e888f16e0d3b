package printing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/printing"
)

// TemplateService manages brand receipt templates
type TemplateService struct {
	templateRepo printing.ReceiptTemplateRepository
	logger       *zap.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo printing.ReceiptTemplateRepository, logger *zap.Logger) *TemplateService {
	return &TemplateService{templateRepo: templateRepo, logger: logger}
}

// Create registers a receipt template for a brand
func (s *TemplateService) Create(ctx context.Context, storeID uuid.UUID, req UpsertTemplateRequest) (*TemplateResponse, error) {
	paperSize := printing.PaperSize(req.PaperSize)
	if req.PaperSize == "" {
		paperSize = printing.PaperSizeReceipt80MM
	}

	template, err := printing.NewReceiptTemplate(storeID, req.BrandID, req.Name, paperSize)
	if err != nil {
		return nil, err
	}
	template.SetHeader(req.HeaderLines)
	template.SetFooter(req.FooterLines)
	if req.IsDefault {
		template.MarkDefault()
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	resp := ToTemplateResponse(template)
	return &resp, nil
}

// Update replaces a template's header, footer and default flag
func (s *TemplateService) Update(ctx context.Context, templateID uuid.UUID, req UpsertTemplateRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	template.Name = req.Name
	template.SetHeader(req.HeaderLines)
	template.SetFooter(req.FooterLines)
	if req.PaperSize != "" {
		template.PaperSize = printing.PaperSize(req.PaperSize)
	}
	if req.IsDefault {
		template.MarkDefault()
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	resp := ToTemplateResponse(template)
	return &resp, nil
}

// GetDefault returns the brand's default template
func (s *TemplateService) GetDefault(ctx context.Context, storeID, brandID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindDefaultForBrand(ctx, storeID, brandID)
	if err != nil {
		return nil, err
	}
	resp := ToTemplateResponse(template)
	return &resp, nil
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, templateID uuid.UUID) error {
	return s.templateRepo.Delete(ctx, templateID)
}
