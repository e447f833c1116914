// Package redis provides the cache-store access layer for the probe
// service.
//
// This package wraps [github.com/redis/go-redis/v9] with startup retry, a
// write/read sentinel health check and the INFO counter fetch backing the
// metrics endpoint.
//
// # Usage
//
//	client, err := redis.Open(ctx, cfg.Redis.URL,
//	    redis.WithPoolSize(cfg.Redis.PoolSize),
//	    redis.WithRetry(cfg.Redis.RetryAttempts, cfg.Redis.RetryInterval),
//	)
//
// [Healthcheck] goes beyond a ping: it writes a short-lived sentinel key
// and reads it back, validating both data paths. [FetchInfo] extracts
// connected_clients, used_memory and used_memory_peak from the INFO reply,
// treating it as an untyped key-value map and defaulting missing fields to
// zero.
//
// # Error Handling
//
// Sentinel errors are joined with the underlying cause via errors.Join:
// [ErrEmptyConnectionURL], [ErrFailedToParseURL], [ErrConnectionFailed],
// [ErrHealthcheckFailed], [ErrSentinelMismatch], [ErrInfoUnavailable].
package redis
