// Package resilience keeps a failing dependency from slowing every request
// down.
//
// Breaker fails calls fast after a run of failures and lets a probe
// through once the open period has passed. Retry repeats an operation with
// exponential backoff until it succeeds, the attempts are used up or the
// context ends.
//
//	br := resilience.NewBreaker(resilience.BreakerConfig{Name: "redis", MaxFailures: 5, OpenTimeout: 10 * time.Second})
//	err := br.Execute(func() error { return rdb.Ping(ctx).Err() })
//
//	err = resilience.Retry(ctx, resilience.RetryConfig{MaxAttempts: 5, InitialBackoff: time.Second}, connect)
package resilience
