package auth

import (
	"context"

	"github.com/atelierai/platform/cache"
	"github.com/atelierai/platform/logger"
)

// RevocationList revokes tokens by generation. Each subject has a counter
// under tokver:<subject>; a token carries the counter value current when
// it was issued, and Revoke bumps the counter so every earlier token falls
// behind. Tokens issued after Revoke carry the new value and pass, however
// close in time they are to the revocation.
//
// Counters carry no TTL. The list is best-effort: when the cache is
// unavailable IsRevoked reports false and expiry remains the only bound
// on a token.
type RevocationList struct {
	store *cache.Store
	log   *logger.Logger
}

// NewRevocationList creates a list backed by store.
func NewRevocationList(store *cache.Store, log *logger.Logger) *RevocationList {
	return &RevocationList{store: store, log: log.WithComponent("auth")}
}

// Current returns the token generation of subject. A subject never
// revoked is at generation 0.
func (r *RevocationList) Current(ctx context.Context, subject string) (int64, error) {
	var version int64
	if _, err := r.store.Get(ctx, cache.TokenVersionKey(subject), &version); err != nil {
		return 0, err
	}
	return version, nil
}

// Revoke invalidates every token issued to subject so far.
func (r *RevocationList) Revoke(ctx context.Context, subject string) error {
	if _, err := r.store.Increment(ctx, cache.TokenVersionKey(subject), 1); err != nil {
		r.log.WithContext(ctx).Warn("Token revocation not recorded", logger.Fields(logger.FieldUserID, subject, logger.FieldError, err.Error()))
		return err
	}
	return nil
}

// IsRevoked reports whether a token of subject issued at generation
// version has been revoked since.
func (r *RevocationList) IsRevoked(ctx context.Context, subject string, version int64) bool {
	current, err := r.Current(ctx, subject)
	if err != nil {
		return false
	}
	return version < current
}
