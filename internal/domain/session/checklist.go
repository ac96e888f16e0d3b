package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// EODChecklistItem is one closing task seeded when a session opens.
// Incomplete items show up as non-blocking warnings in the readiness check.
type EODChecklistItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID   uuid.UUID `gorm:"type:uuid;index"`
	Name        string
	Sequence    int
	Completed   bool
	CompletedBy *uuid.UUID
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (EODChecklistItem) TableName() string {
	return "eod_checklist_items"
}

// DefaultChecklistNames are the closing tasks seeded for every new session
var DefaultChecklistNames = []string{
	"Count cash drawers",
	"Settle card terminal batch",
	"Clear held bills",
	"Check kitchen ticket queue",
	"Print end-of-day report",
}

// SeedChecklist creates the default checklist rows for a session
func SeedChecklist(sessionID uuid.UUID) []EODChecklistItem {
	now := time.Now()
	items := make([]EODChecklistItem, 0, len(DefaultChecklistNames))
	for i, name := range DefaultChecklistNames {
		items = append(items, EODChecklistItem{
			ID:        uuid.New(),
			SessionID: sessionID,
			Name:      name,
			Sequence:  i + 1,
			CreatedAt: now,
		})
	}
	return items
}

// Complete marks the task done
func (c *EODChecklistItem) Complete(completedBy uuid.UUID) error {
	if c.Completed {
		return shared.NewValidationError("ALREADY_COMPLETED", "Checklist item is already completed")
	}
	if completedBy == uuid.Nil {
		return shared.NewValidationError("INVALID_ACTOR", "Completer is required")
	}
	now := time.Now()
	c.Completed = true
	c.CompletedBy = &completedBy
	c.CompletedAt = &now
	return nil
}
