package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/observability"
	"github.com/atelierai/platform/redis"
)

const scanCount = 100

// Store is the fail-open JSON cache. It is safe for concurrent use; all
// callers share the client's connection pool.
type Store struct {
	client  *redis.Client
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithMetrics records operation timings and failure counts.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates a Store over client.
func NewStore(client *redis.Client, log *logger.Logger, opts ...Option) *Store {
	s := &Store{client: client, log: log.WithComponent("cache")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect establishes the connection. Repeated calls are no-ops; every
// other method connects on first use anyway.
func (s *Store) Connect(ctx context.Context) error {
	if err := s.client.Connect(ctx); err != nil {
		return s.fail(ctx, "connect", "", ErrUnavailable, err)
	}
	return nil
}

// Disconnect releases the connection. It is safe when never connected.
func (s *Store) Disconnect() error {
	return s.client.Disconnect()
}

// Get decodes the value at key into dest. A miss, an expired entry and an
// undecodable entry all report found == false.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	start := time.Now()
	raw, err := s.client.Get(ctx, key)
	if redis.IsNil(err) {
		s.observe(ctx, "get", "miss", start)
		return false, nil
	}
	if err != nil {
		return false, s.fail(ctx, "get", key, ErrUnavailable, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, s.fail(ctx, "get", key, ErrSerialization, err)
	}
	s.observe(ctx, "get", "hit", start)
	return true, nil
}

// Set stores value as JSON. With ttlSeconds > 0 the entry expires;
// otherwise it is kept until deleted.
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttlSeconds int) (bool, error) {
	start := time.Now()
	raw, err := json.Marshal(value)
	if err != nil {
		return false, s.fail(ctx, "set", key, ErrSerialization, err)
	}
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	if err := s.client.Set(ctx, key, raw, ttl); err != nil {
		return false, s.fail(ctx, "set", key, ErrUnavailable, err)
	}
	s.observe(ctx, "set", "ok", start)
	return true, nil
}

// Delete removes key and reports whether it existed.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	n, err := s.client.Del(ctx, key)
	if err != nil {
		return false, s.fail(ctx, "delete", key, ErrUnavailable, err)
	}
	s.observe(ctx, "delete", "ok", start)
	return n > 0, nil
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	n, err := s.client.Exists(ctx, key)
	if err != nil {
		return false, s.fail(ctx, "exists", key, ErrUnavailable, err)
	}
	s.observe(ctx, "exists", "ok", start)
	return n > 0, nil
}

// Increment adds amount to the counter at key with the server's atomic
// INCRBY and returns the new value. A missing key counts from 0.
func (s *Store) Increment(ctx context.Context, key string, amount int64) (int64, error) {
	start := time.Now()
	n, err := s.client.IncrBy(ctx, key, amount)
	if err != nil {
		return 0, s.fail(ctx, "increment", key, ErrUnavailable, err)
	}
	s.observe(ctx, "increment", "ok", start)
	return n, nil
}

// IncrementWindow increments the counter at key like Increment and makes
// sure it expires within windowSeconds. The TTL is set whenever the counter
// has none, so a counter left without one by an earlier failed Expire is
// repaired on its next increment.
func (s *Store) IncrementWindow(ctx context.Context, key string, amount int64, windowSeconds int) (int64, error) {
	start := time.Now()
	n, ttl, err := s.client.IncrWithTTL(ctx, key, amount)
	if err != nil {
		return 0, s.fail(ctx, "increment", key, ErrUnavailable, err)
	}
	if ttl < 0 {
		if _, err := s.client.Expire(ctx, key, time.Duration(windowSeconds)*time.Second); err != nil {
			return n, s.fail(ctx, "expire", key, ErrUnavailable, err)
		}
	}
	s.observe(ctx, "increment", "ok", start)
	return n, nil
}

// Expire sets a TTL on an existing key without touching its value. It
// reports false when the key does not exist, and for a non-positive
// seconds, which never reaches the server.
func (s *Store) Expire(ctx context.Context, key string, seconds int) (bool, error) {
	if seconds <= 0 {
		return false, nil
	}
	start := time.Now()
	ok, err := s.client.Expire(ctx, key, time.Duration(seconds)*time.Second)
	if err != nil {
		return false, s.fail(ctx, "expire", key, ErrUnavailable, err)
	}
	s.observe(ctx, "expire", "ok", start)
	return ok, nil
}

// ClearPattern deletes every key matching the glob pattern, one SCAN page
// at a time, and returns how many were deleted. Keys written while the
// scan is running may survive. On failure the count deleted so far is
// returned with the error.
func (s *Store) ClearPattern(ctx context.Context, pattern string) (int64, error) {
	start := time.Now()
	var (
		deleted int64
		cursor  uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanCount)
		if err != nil {
			return deleted, s.fail(ctx, "clear_pattern", pattern, ErrUnavailable, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...)
			if err != nil {
				return deleted, s.fail(ctx, "clear_pattern", pattern, ErrUnavailable, err)
			}
			deleted += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	s.observe(ctx, "clear_pattern", "ok", start)
	s.log.Info("Cache pattern cleared", logger.Fields(logger.FieldKey, pattern, "deleted", deleted))
	return deleted, nil
}

// Ping reports whether the server answers.
func (s *Store) Ping(ctx context.Context) bool {
	return s.client.Ping(ctx) == nil
}

func (s *Store) observe(ctx context.Context, op, status string, start time.Time) {
	s.metrics.RecordOperation(ctx, "cache", op, status, time.Since(start))
}

func (s *Store) fail(ctx context.Context, op, key string, kind, err error) error {
	cerr := &Error{Kind: kind, Op: op, Key: key, Err: err}
	s.metrics.RecordError(ctx, kindName(kind), "cache")
	s.log.WithContext(ctx).Warn("Cache operation failed", logger.Fields(
		logger.FieldOperation, op,
		logger.FieldKey, key,
		logger.FieldError, cerr.Error(),
	))
	return cerr
}
