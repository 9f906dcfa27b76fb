// Package testutil runs an in-memory miniredis server behind a real
// redis.Client for tests.
//
//	rc := testutil.NewComponent()
//	gotestutil.T(t).Setup(rc)
//	store := cache.NewStore(rc.Client(), log)
//	rc.FastForward(5 * time.Minute) // expire keys
//	rc.Kill()                       // simulate an outage
package testutil
