// Package sysinfo samples host-level resource utilization (CPU, memory, disk)
// for health and metrics endpoints.
//
// Resource sampling is modeled as an optional capability: restricted
// deployments (minimal containers, locked-down hosts) may not expose the
// required OS interfaces. The capability is decided once at process start:
//
//	sampler := sysinfo.Detect(ctx)
//	if !sampler.Available() {
//	    log.Warn("system metrics disabled")
//	}
//
// Callers branch on [Sampler.Available] rather than interpreting errors as
// absence. A sampler that is available but fails mid-request returns an
// error from [Sampler.Sample]; that is a measurement failure, not a missing
// capability, and callers should report it as such.
//
// CPU sampling blocks for a short measurement window (default 500ms,
// configurable via [WithCPUSampleWindow]). Budget for it in request
// timeouts.
package sysinfo
