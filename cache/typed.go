package cache

import "context"

// Typed is a Store view for one entity type and one value type. Keys are
// built with Key(entity, id) and entries use a fixed TTL tier.
type Typed[T any] struct {
	store  *Store
	entity string
	ttl    int
}

// NewTyped creates a typed view. ttlSeconds <= 0 stores without expiry.
func NewTyped[T any](store *Store, entity string, ttlSeconds int) *Typed[T] {
	return &Typed[T]{store: store, entity: entity, ttl: ttlSeconds}
}

// Key returns the full cache key for id.
func (t *Typed[T]) Key(id string) string {
	return Key(t.entity, id)
}

// Load returns the cached value for id, or nil when absent for any reason.
func (t *Typed[T]) Load(ctx context.Context, id string) (*T, error) {
	var val T
	found, err := t.store.Get(ctx, t.Key(id), &val)
	if !found {
		return nil, err
	}
	return &val, nil
}

// Save caches val under id.
func (t *Typed[T]) Save(ctx context.Context, id string, val *T) error {
	_, err := t.store.Set(ctx, t.Key(id), val, t.ttl)
	return err
}

// Delete evicts id.
func (t *Typed[T]) Delete(ctx context.Context, id string) error {
	_, err := t.store.Delete(ctx, t.Key(id))
	return err
}

// Clear evicts every entry of the entity type.
func (t *Typed[T]) Clear(ctx context.Context) (int64, error) {
	return t.store.ClearPattern(ctx, Pattern(t.entity))
}
