package payment

import (
	"context"

	"github.com/google/uuid"
)

// Capabilities checked against the approver's role before an elevated
// operation proceeds.
const (
	CapabilityApproveRefund = "refund.approve"
)

// SessionGuard rejects transactional work while the store session is
// critically overdue
type SessionGuard interface {
	EnsureTransactionsAllowed(ctx context.Context, storeID uuid.UUID) error
}

// ApprovalVerifier resolves an elevated approval code to its owner. The
// returned masked code keeps only the tail for audit rows.
type ApprovalVerifier interface {
	VerifyApprover(ctx context.Context, storeID uuid.UUID, code, capability string) (uuid.UUID, string, error)
}

// TableReleaser frees a bill's table once payment closes the bill. The
// floor-plan context owns the table rows; a paid table in a join-group
// dissolves its whole group on release.
type TableReleaser interface {
	ReleaseClean(ctx context.Context, storeID, tableID uuid.UUID) error
}
