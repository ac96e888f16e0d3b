package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edgepos/backend/internal/domain/printing"
	"github.com/edgepos/backend/internal/domain/shared"
)

// PrintJobSortFields defines allowed sort fields for print jobs
var PrintJobSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"job_type":     true,
	"status":       true,
	"fetched_at":   true,
	"completed_at": true,
}

// GormPrintJobRepository implements PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db *gorm.DB
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

// FindByID finds a job by ID
func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	var job printing.PrintJob
	if err := dbFrom(ctx, r.db).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByToken finds a job by its agent-facing token
func (r *GormPrintJobRepository) FindByToken(ctx context.Context, token uuid.UUID) (*printing.PrintJob, error) {
	var job printing.PrintJob
	if err := dbFrom(ctx, r.db).First(&job, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByRef finds all jobs queued for one source document
func (r *GormPrintJobRepository) FindByRef(ctx context.Context, refID uuid.UUID) ([]printing.PrintJob, error) {
	var jobs []printing.PrintJob
	if err := dbFrom(ctx, r.db).
		Where("ref_id = ?", refID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindByStatus finds a store's jobs in one status
func (r *GormPrintJobRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status printing.JobStatus, filter shared.Filter) ([]printing.PrintJob, error) {
	var jobs []printing.PrintJob
	query := applyFilter(dbFrom(ctx, r.db).Model(&printing.PrintJob{}).
		Where("store_id = ? AND status = ?", storeID, status), filter, PrintJobSortFields)
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindPendingForFetch loads pending jobs for an agent poll. SKIP LOCKED lets
// concurrent polls partition the queue without double delivery; jobs bound to
// another terminal are never handed out.
func (r *GormPrintJobRepository) FindPendingForFetch(ctx context.Context, storeID uuid.UUID, terminalID *uuid.UUID, limit int) ([]printing.PrintJob, error) {
	var jobs []printing.PrintJob
	query := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("store_id = ? AND status = ?", storeID, printing.JobStatusPending)
	if terminalID != nil {
		query = query.Where("terminal_id = ? OR terminal_id IS NULL", *terminalID)
	} else {
		query = query.Where("terminal_id IS NULL")
	}
	if err := query.Order("created_at ASC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// FindStuck finds jobs fetched before the cutoff that never got an outcome
func (r *GormPrintJobRepository) FindStuck(ctx context.Context, cutoff time.Time) ([]printing.PrintJob, error) {
	var jobs []printing.PrintJob
	if err := dbFrom(ctx, r.db).
		Where("status IN ? AND fetched_at < ?",
			[]printing.JobStatus{printing.JobStatusFetched, printing.JobStatusPrinting}, cutoff).
		Order("fetched_at ASC").
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// CountPending counts a store's undelivered jobs
func (r *GormPrintJobRepository) CountPending(ctx context.Context, storeID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&printing.PrintJob{}).
		Where("store_id = ? AND status = ?", storeID, printing.JobStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save saves a job (insert or update)
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	return dbFrom(ctx, r.db).Save(job).Error
}

// SaveAll saves a batch of jobs
func (r *GormPrintJobRepository) SaveAll(ctx context.Context, jobs []*printing.PrintJob) error {
	for _, job := range jobs {
		if err := dbFrom(ctx, r.db).Save(job).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormPrintJobRepository implements PrintJobRepository
var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
