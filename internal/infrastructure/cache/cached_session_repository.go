package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/session"
)

// DefaultSessionCacheTTL bounds staleness when an invalidation is lost.
const DefaultSessionCacheTTL = 30 * time.Second

// CachedSessionRepository decorates a SessionRepository with a current
// session cache. Only FindCurrent is served from cache; locked reads go
// straight to the database and every Save invalidates the store's entry.
type CachedSessionRepository struct {
	session.SessionRepository
	cache SessionCache
	ttl   time.Duration
}

// NewCachedSessionRepository wraps the repository with the cache
func NewCachedSessionRepository(repo session.SessionRepository, cache SessionCache) *CachedSessionRepository {
	return &CachedSessionRepository{
		SessionRepository: repo,
		cache:             cache,
		ttl:               DefaultSessionCacheTTL,
	}
}

// FindCurrent returns the store's current session, preferring the cache
func (r *CachedSessionRepository) FindCurrent(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, error) {
	if sess, ok, err := r.cache.Get(ctx, storeID); err == nil && ok {
		return sess, nil
	}

	sess, err := r.SessionRepository.FindCurrent(ctx, storeID)
	if err != nil {
		return nil, err
	}

	// Cache write failures are not surfaced; the next lookup falls through
	// to the database.
	_ = r.cache.Set(ctx, sess, r.ttl)
	return sess, nil
}

// Save writes the session and invalidates the store's cached entry
func (r *CachedSessionRepository) Save(ctx context.Context, sess *session.StoreSession) error {
	if err := r.SessionRepository.Save(ctx, sess); err != nil {
		return err
	}
	_ = r.cache.Invalidate(ctx, sess.StoreID)
	return nil
}

var _ session.SessionRepository = (*CachedSessionRepository)(nil)
