package auth

import (
	"context"
	"time"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Revocations tracks logged-out token ids until the tokens would have
// expired anyway. Entries live in the shared idempotency store so replicas
// agree when Redis is configured.
type Revocations struct {
	store shared.IdempotencyStore
	now   func() time.Time
}

// NewRevocations creates a revocation list backed by store
func NewRevocations(store shared.IdempotencyStore) *Revocations {
	return &Revocations{store: store, now: time.Now}
}

// Revoke rejects the token described by claims for its remaining lifetime
func (r *Revocations) Revoke(ctx context.Context, claims *Claims) error {
	ttl := claims.RemainingTTL(r.now())
	if ttl <= 0 {
		return nil
	}
	_, err := r.store.MarkProcessed(ctx, revocationKey(claims.ID), ttl)
	return err
}

// IsRevoked reports whether claims belong to a revoked token
func (r *Revocations) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	return r.store.IsProcessed(ctx, revocationKey(claims.ID))
}

func revocationKey(jti string) string {
	return "revoked:" + jti
}
