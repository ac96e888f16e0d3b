package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// Guard gates transaction entry on the store's current session. Ordering
// and payment operations call it before writing; a store with no session,
// or a session open past the critical age, takes no new transactions.
type Guard struct {
	sessionRepo session.SessionRepository
}

// NewGuard creates a session guard over the session repository
func NewGuard(sessionRepo session.SessionRepository) *Guard {
	return &Guard{sessionRepo: sessionRepo}
}

// EnsureTransactionsAllowed verifies the store has a usable current session
func (g *Guard) EnsureTransactionsAllowed(ctx context.Context, storeID uuid.UUID) error {
	sess, err := g.sessionRepo.FindCurrent(ctx, storeID)
	if err != nil {
		return shared.NewDomainError("NO_SESSION", "Open a business day session before taking transactions")
	}
	if sess.BlocksTransactions(time.Now()) {
		return shared.NewDomainError("SESSION_CRITICAL",
			fmt.Sprintf("Session for %s has been open more than %.0f hours; run end of day before taking transactions",
				sess.BusinessDate.Format("2006-01-02"), session.CriticalAge.Hours()))
	}
	return nil
}
