package session

import (
	"context"

	"github.com/google/uuid"
)

// Capabilities checked against the approver's role before an elevated
// operation proceeds.
const (
	CapabilityApproveVariance = "shift.variance.approve"
	CapabilityForceClose      = "session.force_close"
)

// ApprovalVerifier resolves an elevated approval code to its owner. The
// returned masked code keeps only the tail for audit rows.
type ApprovalVerifier interface {
	VerifyApprover(ctx context.Context, storeID uuid.UUID, code, capability string) (uuid.UUID, string, error)
}
