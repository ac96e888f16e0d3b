package kitchen

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
)

// PrinterService manages station printer configuration
type PrinterService struct {
	printerRepo kitchen.StationPrinterRepository
	logger      *zap.Logger
}

// NewPrinterService creates a new PrinterService
func NewPrinterService(printerRepo kitchen.StationPrinterRepository, logger *zap.Logger) *PrinterService {
	return &PrinterService{printerRepo: printerRepo, logger: logger}
}

// Register configures a new printer for a station
func (s *PrinterService) Register(ctx context.Context, storeID uuid.UUID, req RegisterPrinterRequest) (*PrinterResponse, error) {
	printer, err := kitchen.NewStationPrinter(storeID, req.BrandID, req.Station, req.Name, req.Address, req.Priority)
	if err != nil {
		return nil, err
	}
	if err := s.printerRepo.Save(ctx, printer); err != nil {
		return nil, err
	}

	s.logger.Info("registered station printer",
		zap.String("station", req.Station),
		zap.String("printer", req.Name),
	)
	resp := ToPrinterResponse(printer)
	return &resp, nil
}

// List returns every printer configured for a store
func (s *PrinterService) List(ctx context.Context, storeID uuid.UUID) ([]PrinterResponse, error) {
	printers, err := s.printerRepo.FindAllForStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	responses := make([]PrinterResponse, len(printers))
	for i := range printers {
		responses[i] = ToPrinterResponse(&printers[i])
	}
	return responses, nil
}

// SetActive toggles a printer in or out of the selection pool
func (s *PrinterService) SetActive(ctx context.Context, printerID uuid.UUID, active bool) (*PrinterResponse, error) {
	printer, err := s.printerRepo.FindByID(ctx, printerID)
	if err != nil {
		return nil, err
	}
	if active {
		printer.Activate()
	} else {
		printer.Deactivate()
	}
	if err := s.printerRepo.Save(ctx, printer); err != nil {
		return nil, err
	}
	resp := ToPrinterResponse(printer)
	return &resp, nil
}

// Remove deletes a printer configuration
func (s *PrinterService) Remove(ctx context.Context, printerID uuid.UUID) error {
	return s.printerRepo.Delete(ctx, printerID)
}
