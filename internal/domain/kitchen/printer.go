package kitchen

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// StationPrinter maps a kitchen station to a physical printer for one brand.
// Multiple printers per station are ordered by Priority; the lowest active
// priority wins.
type StationPrinter struct {
	shared.BaseEntity
	StoreID  uuid.UUID `gorm:"type:uuid;index"`
	BrandID  uuid.UUID `gorm:"type:uuid;index"`
	Station  string
	Name     string
	Address  string // agent-local device address, e.g. "tcp://192.168.1.20:9100"
	Priority int
	Active   bool
}

// TableName returns the table name for GORM
func (StationPrinter) TableName() string {
	return "station_printers"
}

// NewStationPrinter registers a printer for a station
func NewStationPrinter(storeID, brandID uuid.UUID, station, name, address string, priority int) (*StationPrinter, error) {
	if station == "" {
		return nil, shared.NewValidationError("INVALID_STATION", "Station cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_PRINTER_NAME", "Printer name cannot be empty")
	}

	return &StationPrinter{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    storeID,
		BrandID:    brandID,
		Station:    station,
		Name:       name,
		Address:    address,
		Priority:   priority,
		Active:     true,
	}, nil
}

// Deactivate takes the printer out of rotation
func (p *StationPrinter) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Activate puts the printer back in rotation
func (p *StationPrinter) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
}

// SelectPrinter picks the active printer with the lowest priority value.
// Returns nil when no active printer serves the station, in which case the
// ticket stays queued and an unconfigured-station alert is surfaced.
func SelectPrinter(printers []StationPrinter) *StationPrinter {
	active := make([]StationPrinter, 0, len(printers))
	for i := range printers {
		if printers[i].Active {
			active = append(active, printers[i])
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})
	return &active[0]
}
