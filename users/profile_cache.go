package users

import (
	"context"

	"github.com/atelierai/platform/cache"
	"github.com/atelierai/platform/logger"
)

// ProfileCache serves profiles cache-aside. The cache is an optimization:
// a cache failure falls through to the repository and never fails a read.
type ProfileCache struct {
	repo     *Repository
	profiles *cache.Typed[Profile]
	log      *logger.Logger
}

// NewProfileCache creates a profile cache. A nil store disables caching.
func NewProfileCache(repo *Repository, store *cache.Store, log *logger.Logger) *ProfileCache {
	pc := &ProfileCache{repo: repo, log: log.WithComponent("users")}
	if store != nil {
		pc.profiles = cache.NewTyped[Profile](store, cache.EntityUser, cache.TTLMedium)
	}
	return pc
}

// Get returns the profile for id, reading through to the repository on a
// miss and filling the cache afterwards.
func (c *ProfileCache) Get(ctx context.Context, id string) (*Profile, error) {
	if c.profiles != nil {
		if p, _ := c.profiles.Load(ctx, id); p != nil {
			return p, nil
		}
	}

	u, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := u.Profile()
	if c.profiles != nil {
		_ = c.profiles.Save(ctx, id, p)
	}
	return p, nil
}

// Invalidate evicts id. Call it after every mutation of the user.
func (c *ProfileCache) Invalidate(ctx context.Context, id string) {
	if c.profiles == nil {
		return
	}
	if err := c.profiles.Delete(ctx, id); err != nil {
		c.log.WithContext(ctx).Warn("Profile cache invalidation failed", logger.Fields(logger.FieldUserID, id, logger.FieldError, err.Error()))
	}
}
