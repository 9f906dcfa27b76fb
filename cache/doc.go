// Package cache is a JSON value cache on top of the shared redis.Client.
//
// The cache is an optimization, never a correctness dependency, so the
// Store fails open: on any connection, I/O or serialization failure it
// logs, returns the operation's safe default (false, 0 or "absent") and
// also returns a *cache.Error so callers and tests can see what happened.
// Callers that only care about the value ignore the error:
//
//	var p users.Profile
//	if found, _ := store.Get(ctx, cache.UserKey(id), &p); found {
//	    return &p, nil
//	}
//
// Keys follow the "<type>:<id>" convention of keys.go.
package cache
