// Package config loads service configuration from a YAML file, an optional
// .env file and the process environment, in that order of precedence
// (later wins).
//
//	var cfg apiconfig.Config
//	if err := config.LoadConfig("api", &cfg); err != nil { ... }
//
// Environment variables map onto nested keys by splitting on underscores,
// so AUTH_JWT_SECRET sets auth.jwt.secret and REDIS_URL sets redis.url.
package config
