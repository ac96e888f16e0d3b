// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQueueMetricsProvider implements QueueMetricsProvider using GORM. It
// queries the print_jobs and kitchen_tickets tables directly for aggregated
// counts.
type GormQueueMetricsProvider struct {
	db *gorm.DB
}

// NewGormQueueMetricsProvider creates a new GormQueueMetricsProvider.
func NewGormQueueMetricsProvider(db *gorm.DB) *GormQueueMetricsProvider {
	return &GormQueueMetricsProvider{db: db}
}

type storeCountRow struct {
	StoreID uuid.UUID `gorm:"column:store_id"`
	Count   int64     `gorm:"column:count"`
}

// GetPendingPrintJobs returns the number of queued receipt jobs per store.
func (p *GormQueueMetricsProvider) GetPendingPrintJobs(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []storeCountRow
	err := p.db.WithContext(ctx).
		Table("print_jobs").
		Select("store_id, COUNT(*) as count").
		Where("status = ?", "pending").
		Group("store_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		m[r.StoreID] = r.Count
	}
	return m, nil
}

// GetActiveKitchenTickets returns the number of new or printing tickets per store.
func (p *GormQueueMetricsProvider) GetActiveKitchenTickets(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []storeCountRow
	err := p.db.WithContext(ctx).
		Table("kitchen_tickets").
		Select("store_id, COUNT(*) as count").
		Where("status IN ?", []string{"new", "printing"}).
		Group("store_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		m[r.StoreID] = r.Count
	}
	return m, nil
}
