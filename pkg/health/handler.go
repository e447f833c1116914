package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forumkit/pulse/pkg/sysinfo"
)

// RequestIDHeader is the inbound correlation header. Its value is echoed
// back verbatim in the timestamp field of every response; when absent the
// field is an empty string. The field name is historical and kept for
// compatibility with existing monitoring consumers.
const RequestIDHeader = "X-Request-ID"

const capabilityAbsentMsg = "system metrics unavailable"

// CheckFunc is the dependency check signature. A nil error means the
// dependency is reachable and consistent.
type CheckFunc func(ctx context.Context) error

// DatabaseStats holds connection-pool counters from the relational store.
type DatabaseStats struct {
	TotalConnections  int64
	ActiveConnections int64
}

// CacheStats holds client and memory counters from the cache store.
// Memory values are in bytes.
type CacheStats struct {
	ConnectedClients int64
	UsedMemory       int64
	UsedMemoryPeak   int64
}

// DatabaseStatsFunc fetches relational-store counters for the metrics
// endpoint.
type DatabaseStatsFunc func(ctx context.Context) (DatabaseStats, error)

// CacheStatsFunc fetches cache-store counters for the metrics endpoint.
type CacheStatsFunc func(ctx context.Context) (CacheStats, error)

// Handler serves the health, readiness, liveness and metrics endpoints.
// All state is fixed at construction; handlers are safe for concurrent use
// and keep no cross-request state.
type Handler struct {
	cfg *config
}

// NewHandler creates a probe handler. Dependencies are injected through
// options; anything not provided degrades to unknown rather than failing.
func NewHandler(opts ...Option) *Handler {
	return &Handler{cfg: newConfig(opts...)}
}

type checksPayload struct {
	Database Check `json:"database"`
	Redis    Check `json:"redis"`
	Disk     Check `json:"disk"`
	Memory   Check `json:"memory"`
}

type healthPayload struct {
	Status    Status         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Checks    checksPayload  `json:"checks"`
	System    map[string]any `json:"system"`
}

// Health runs the dependency and resource probes, aggregates their
// severities and returns the full report. 503 only on overall error;
// warning still answers 200 so load balancers keep routing to a degraded
// but serviceable instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.budget())
	defer cancel()

	var (
		dbCheck, cacheCheck Check
		snap                sysinfo.Snapshot
		sampleErr           error
	)

	// Probes are independent; fan out so the endpoint answers within one
	// probe budget instead of the sum of all three.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbCheck = h.runCheck(gctx, "database", h.cfg.dbCheck)
		return nil
	})
	g.Go(func() error {
		cacheCheck = h.runCheck(gctx, "redis", h.cfg.cacheCheck)
		return nil
	})
	g.Go(func() error {
		if h.cfg.sampler.Available() {
			snap, sampleErr = h.cfg.sampler.Sample(gctx)
		}
		return nil
	})
	_ = g.Wait()

	diskCheck := Check{Status: StatusUnknown, Message: capabilityAbsentMsg}
	memoryCheck := diskCheck
	system := map[string]any{}

	if h.cfg.sampler.Available() {
		if sampleErr != nil {
			h.cfg.logger.WarnContext(ctx, "resource sampling failed",
				slog.String("error", sampleErr.Error()),
			)
			diskCheck = failure(sampleErr)
			memoryCheck = failure(sampleErr)
			system["error"] = sanitize(sampleErr.Error())
		} else {
			diskCheck = thresholdCheck(snap.DiskPercent, h.cfg.diskWarnPercent)
			memoryCheck = thresholdCheck(snap.MemoryPercent, h.cfg.memoryWarnPercent)
			system["cpu_percent"] = snap.CPUPercent
			system["memory_percent"] = snap.MemoryPercent
			system["disk_percent"] = snap.DiskPercent
		}
	}

	overall := Aggregate(dbCheck, cacheCheck, diskCheck, memoryCheck)

	code := http.StatusOK
	if overall == StatusError {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, healthPayload{
		Status:    overall,
		Timestamp: requestID(r),
		Service:   h.cfg.service,
		Version:   h.cfg.version,
		Checks: checksPayload{
			Database: dbCheck,
			Redis:    cacheCheck,
			Disk:     diskCheck,
			Memory:   memoryCheck,
		},
		System: system,
	})
}

type readyPayload struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Readiness checks only the external dependencies, sequentially and
// cheaply: orchestrators poll it often. No resource sampling.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.timeout)
	defer cancel()

	for _, probe := range []struct {
		name string
		fn   CheckFunc
	}{
		{"database", h.cfg.dbCheck},
		{"redis", h.cfg.cacheCheck},
	} {
		if c := h.runCheck(ctx, probe.name, probe.fn); c.Status == StatusError {
			writeJSON(w, http.StatusServiceUnavailable, readyPayload{
				Status:    "not_ready",
				Error:     fmt.Sprintf("%s: %s", probe.name, c.Message),
				Timestamp: requestID(r),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, readyPayload{
		Status:    "ready",
		Timestamp: requestID(r),
	})
}

// Liveness answers 200 whenever the process can serve a request. It must
// never probe dependencies: a database outage must not trigger process
// restarts.
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, readyPayload{
		Status:    "alive",
		Timestamp: requestID(r),
	})
}

type databaseMetrics struct {
	TotalConnections  int64 `json:"total_connections"`
	ActiveConnections int64 `json:"active_connections"`
}

type cacheMetrics struct {
	ConnectedClients int64   `json:"connected_clients"`
	UsedMemoryMB     float64 `json:"used_memory_mb"`
	UsedMemoryPeakMB float64 `json:"used_memory_peak_mb"`
}

type metricsPayload struct {
	Metrics struct {
		System   map[string]any  `json:"system"`
		Database databaseMetrics `json:"database"`
		Redis    cacheMetrics    `json:"redis"`
	} `json:"metrics"`
	Timestamp string `json:"timestamp"`
}

// Metrics reports a live counter snapshot. Every fetch is best-effort:
// failures degrade to zero or absent values and never fail the request.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.budget())
	defer cancel()

	var payload metricsPayload
	payload.Timestamp = requestID(r)
	payload.Metrics.System = map[string]any{}

	if !h.cfg.sampler.Available() {
		payload.Metrics.System["error"] = capabilityAbsentMsg
	} else if snap, err := h.cfg.sampler.Sample(ctx); err != nil {
		h.cfg.logger.WarnContext(ctx, "resource sampling failed",
			slog.String("error", err.Error()),
		)
		payload.Metrics.System["error"] = sanitize(err.Error())
	} else {
		payload.Metrics.System["cpu_usage_percent"] = snap.CPUPercent
		payload.Metrics.System["memory_usage_percent"] = snap.MemoryPercent
		payload.Metrics.System["memory_available_gb"] = roundGB(snap.MemoryAvailable)
		payload.Metrics.System["disk_usage_percent"] = snap.DiskPercent
		payload.Metrics.System["disk_free_gb"] = roundGB(snap.DiskFree)
	}

	if h.cfg.dbStats != nil {
		if stats, err := h.cfg.dbStats(ctx); err != nil {
			h.cfg.logger.WarnContext(ctx, "database stats fetch failed",
				slog.String("error", err.Error()),
			)
		} else {
			payload.Metrics.Database = databaseMetrics{
				TotalConnections:  stats.TotalConnections,
				ActiveConnections: stats.ActiveConnections,
			}
		}
	}

	if h.cfg.cacheStats != nil {
		if stats, err := h.cfg.cacheStats(ctx); err != nil {
			h.cfg.logger.WarnContext(ctx, "cache stats fetch failed",
				slog.String("error", err.Error()),
			)
		} else {
			payload.Metrics.Redis = cacheMetrics{
				ConnectedClients: stats.ConnectedClients,
				UsedMemoryMB:     roundMB(stats.UsedMemory),
				UsedMemoryPeakMB: roundMB(stats.UsedMemoryPeak),
			}
		}
	}

	writeJSON(w, http.StatusOK, payload)
}

// budget is the per-request deadline: the dependency timeout plus an
// allowance for the blocking CPU sample when a sampler is present.
func (h *Handler) budget() time.Duration {
	if h.cfg.sampler.Available() {
		return h.cfg.timeout + cpuSampleAllowance
	}
	return h.cfg.timeout
}

// runCheck executes one dependency probe and converts any failure,
// including a panic, into a Check. Probes never abort the request.
func (h *Handler) runCheck(ctx context.Context, name string, fn CheckFunc) (result Check) {
	if fn == nil {
		return Check{Status: StatusUnknown, Message: "check not configured"}
	}

	defer func() {
		if rec := recover(); rec != nil {
			h.cfg.logger.ErrorContext(ctx, "health check panicked",
				slog.String("check", name),
				slog.Any("panic", rec),
			)
			result = failure(fmt.Errorf("%v", rec))
		}
	}()

	start := time.Now()
	if err := fn(ctx); err != nil {
		h.cfg.logger.WarnContext(ctx, "health check failed",
			slog.String("check", name),
			slog.String("error", err.Error()),
			slog.Duration("took", time.Since(start)),
		)
		return failure(err)
	}
	return Check{Status: StatusOK}
}

func thresholdCheck(percent, warnAt float64) Check {
	if percent >= warnAt {
		return Check{Status: StatusWarning}
	}
	return Check{Status: StatusOK}
}

func requestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

func roundMB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1<<20)*100) / 100
}

func roundGB(bytes uint64) float64 {
	return math.Round(float64(bytes)/(1<<30)*100) / 100
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
