package ordering

import (
	"context"

	"github.com/google/uuid"
)

// SessionGuard gates transaction-entry operations on the store's current
// session. A critically overdue session blocks new bills and payments.
type SessionGuard interface {
	// EnsureTransactionsAllowed returns ErrNoActiveSession when no current
	// session exists and ErrSessionBlocked when it is critically overdue.
	EnsureTransactionsAllowed(ctx context.Context, storeID uuid.UUID) error
}

// ApprovalVerifier checks an elevated approval code (PIN) against a
// capability, returning the approver's identity and a masked rendering of
// the code for audit.
type ApprovalVerifier interface {
	VerifyApprover(ctx context.Context, storeID uuid.UUID, code string, capability string) (approverID uuid.UUID, maskedCode string, err error)
}

// TableReleaser reflects bill outcomes onto the floor plan. The floor-plan
// context owns table rows and join-groups; a dirty release of a joined table
// dissolves its whole group.
type TableReleaser interface {
	// ReleaseClean frees the table for the next party.
	ReleaseClean(ctx context.Context, storeID, tableID uuid.UUID) error
	// ReleaseDirty holds the table for bussing before reuse.
	ReleaseDirty(ctx context.Context, storeID, tableID uuid.UUID) error
}

// Approval capabilities consumed by bill operations
const (
	CapabilityVoidBill = "bill.void"
)
