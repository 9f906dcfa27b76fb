// Package redis owns the connection to the shared cache server.
//
// A Client is built once at startup and injected wherever the cache is
// used. It does not dial until the first command (or an explicit Connect),
// Connect is idempotent, and Disconnect is safe on a client that never
// connected. Callers that want JSON values and fail-open semantics use the
// cache package on top of it.
//
//	client := redis.New(cfg, log)
//	defer client.Disconnect()
//	n, err := client.IncrBy(ctx, "ratelimit:login:1.2.3.4", 1)
package redis
