package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// SessionRepository defines persistence for store sessions.
//
// The single-is-current invariant is transactional: FindCurrentForUpdate
// locks the current row so open/close/rollover can check-then-write inside
// one transaction.
type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StoreSession, error)
	FindCurrent(ctx context.Context, storeID uuid.UUID) (*StoreSession, error)
	// FindCurrentForUpdate locks the store's current session row. Must be
	// called inside a transaction.
	FindCurrentForUpdate(ctx context.Context, storeID uuid.UUID) (*StoreSession, error)
	FindByBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (*StoreSession, error)
	FindOpenOlderThan(ctx context.Context, cutoff time.Time) ([]StoreSession, error)
	Save(ctx context.Context, session *StoreSession) error
}

// ShiftRepository defines persistence for cashier shifts.
//
// The one-open-shift-per-cashier invariant is transactional:
// FindOpenByCashierForUpdate locks any open row so shift opening can
// check-then-write inside one transaction.
type ShiftRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CashierShift, error)
	FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*CashierShift, error)
	// FindOpenByCashierForUpdate locks the cashier's open shift row if one
	// exists. Must be called inside a transaction.
	FindOpenByCashierForUpdate(ctx context.Context, cashierID uuid.UUID) (*CashierShift, error)
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]CashierShift, error)
	CountOpenBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)
	Save(ctx context.Context, shift *CashierShift) error
}

// ChecklistRepository persists EOD checklist rows
type ChecklistRepository interface {
	FindBySession(ctx context.Context, sessionID uuid.UUID) ([]EODChecklistItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*EODChecklistItem, error)
	SaveAll(ctx context.Context, items []EODChecklistItem) error
	Save(ctx context.Context, item *EODChecklistItem) error
	CountIncomplete(ctx context.Context, sessionID uuid.UUID) (int64, error)
}

// AlertRepository persists operational alerts
type AlertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SessionAlert, error)
	FindUnacknowledged(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]SessionAlert, error)
	Save(ctx context.Context, alert *SessionAlert) error
}
