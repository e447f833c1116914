// Package db provides the PostgreSQL access layer for the probe service.
//
// This package wraps [github.com/jackc/pgx/v5/pgxpool] with startup retry,
// a health check closure and the connection-counter query backing the
// metrics endpoint.
//
// # Configuration
//
// All settings are loaded from environment variables:
//
//	DATABASE_URL                - PostgreSQL connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - Maximum open connections (default: 4)
//	DATABASE_MIN_CONNS          - Minimum idle connections (default: 1)
//	DATABASE_HEALTHCHECK_PERIOD - Pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - Maximum connection idle time (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - Maximum connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - Startup retry attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - Base retry interval (default: 5s)
//
// # Usage
//
//	pool, err := db.Connect(ctx, cfg.DB)
//	if err != nil {
//	    return err
//	}
//	check := db.Healthcheck(pool) // SELECT 1 within the caller's deadline
//	stats := db.Stats(pool)       // pg_stat_activity counters
//
// [Healthcheck] runs a real query rather than a pool ping so the check
// exercises the same path requests would take. [Stats] scopes its
// pg_stat_activity query to the pool's own database name, taken from the
// parsed connection config.
//
// # Error Handling
//
// Sentinel errors ([ErrConnectionFailed], [ErrHealthcheckFailed],
// [ErrStatsUnavailable], [ErrFailedToParseConfig]) are joined with the
// underlying cause via errors.Join.
package db
