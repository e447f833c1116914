// Package health implements the probe endpoints of a forum platform
// deployment: overall health, readiness, liveness and a metrics snapshot.
//
// # Probes and aggregation
//
// A probe is one synchronous check yielding a [Check] with a [Status] of
// ok, warning, error or unknown. [Aggregate] folds checks into an overall
// severity with fixed precedence (error > warning > ok). Unknown checks
// (capability absent, not failed) are excluded from the fold but still
// reported individually.
//
// # Endpoints
//
// [Handler.Health] runs the database and cache checks plus host resource
// sampling and returns the full report. It answers 503 only on overall
// error; warning keeps 200 for load-balancer consumption.
//
// [Handler.Readiness] runs only the dependency checks. [Handler.Liveness]
// probes nothing and always answers 200 when reachable. [Handler.Metrics]
// returns live connection and memory counters, degrading any fetch failure
// to zero values.
//
// # Wiring
//
//	h := health.NewHandler(
//	    health.WithServiceInfo("forum", version),
//	    health.WithDatabaseCheck(db.Healthcheck(pool)),
//	    health.WithCacheCheck(redis.Healthcheck(client)),
//	    health.WithSampler(sysinfo.Detect(ctx)),
//	    health.WithLogger(log),
//	)
//
//	r.Get("/health/", h.Health)
//	r.Get("/ready/", h.Readiness)
//	r.Get("/live/", h.Liveness)
//	r.Get("/metrics/", h.Metrics)
//
// Every response echoes the inbound X-Request-ID header in its timestamp
// field (empty string when absent); see [RequestIDHeader].
//
// All probe invocations are scoped to a single request: bounded timeouts,
// no retries, no background polling, no shared mutable state.
package health
