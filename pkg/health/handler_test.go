package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forumkit/pulse/pkg/sysinfo"
)

type stubSampler struct {
	available bool
	snap      sysinfo.Snapshot
	err       error
}

func (s stubSampler) Available() bool { return s.available }

func (s stubSampler) Sample(context.Context) (sysinfo.Snapshot, error) {
	return s.snap, s.err
}

func passing(ctx context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(ctx context.Context) error { return errors.New(msg) }
}

func doRequest(t *testing.T, fn http.HandlerFunc, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	fn(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	t.Run("answers alive without touching dependencies", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int64
		counting := func(ctx context.Context) error {
			calls.Add(1)
			return errors.New("database down")
		}

		h := NewHandler(
			WithDatabaseCheck(counting),
			WithCacheCheck(counting),
		)

		rec, body := doRequest(t, h.Liveness, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alive", body["status"])
		require.Equal(t, int64(0), calls.Load())
	})

	t.Run("echoes correlation id", func(t *testing.T) {
		t.Parallel()

		h := NewHandler()
		_, body := doRequest(t, h.Liveness, map[string]string{RequestIDHeader: "req-42"})
		require.Equal(t, "req-42", body["timestamp"])
	})
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("ready when both dependencies pass", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(passing),
			WithCacheCheck(passing),
		)

		rec, body := doRequest(t, h.Readiness, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ready", body["status"])
		require.NotContains(t, body, "error")
	})

	t.Run("not ready with error detail when database fails", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(failing("connection refused")),
			WithCacheCheck(passing),
		)

		rec, body := doRequest(t, h.Readiness, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "not_ready", body["status"])
		require.Contains(t, body["error"], "database")
		require.Contains(t, body["error"], "connection refused")
	})

	t.Run("not ready when cache fails", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(passing),
			WithCacheCheck(failing("read timeout")),
		)

		rec, body := doRequest(t, h.Readiness, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Contains(t, body["error"], "redis")
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("all ok without sampler reports unknown resources", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithServiceInfo("forum", "1.2.3"),
			WithDatabaseCheck(passing),
			WithCacheCheck(passing),
		)

		rec, body := doRequest(t, h.Health, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "ok", body["status"])
		require.Equal(t, "forum", body["service"])
		require.Equal(t, "1.2.3", body["version"])

		checks := body["checks"].(map[string]any)
		require.Equal(t, "ok", checks["database"])
		require.Equal(t, "ok", checks["redis"])
		require.Equal(t, "unknown (system metrics unavailable)", checks["disk"])
		require.Equal(t, "unknown (system metrics unavailable)", checks["memory"])
		require.Empty(t, body["system"])
	})

	t.Run("cache error with memory warning yields overall error", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(passing),
			WithCacheCheck(failing("connection refused")),
			WithSampler(stubSampler{
				available: true,
				snap:      sysinfo.Snapshot{DiskPercent: 50, MemoryPercent: 95},
			}),
		)

		rec, body := doRequest(t, h.Health, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "error", body["status"])

		checks := body["checks"].(map[string]any)
		require.Equal(t, "ok", checks["database"])
		require.Contains(t, checks["redis"], "error: ")
		require.Contains(t, checks["redis"], "connection refused")
		require.Equal(t, "ok", checks["disk"])
		require.Equal(t, "warning", checks["memory"])
	})

	t.Run("resource warning alone keeps 200", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(passing),
			WithCacheCheck(passing),
			WithSampler(stubSampler{
				available: true,
				snap:      sysinfo.Snapshot{DiskPercent: 91, MemoryPercent: 10, CPUPercent: 5},
			}),
		)

		rec, body := doRequest(t, h.Health, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "warning", body["status"])

		checks := body["checks"].(map[string]any)
		require.Equal(t, "warning", checks["disk"])
		require.Equal(t, "ok", checks["memory"])

		system := body["system"].(map[string]any)
		require.InDelta(t, 91.0, system["disk_percent"], 0.001)
		require.InDelta(t, 5.0, system["cpu_percent"], 0.001)
	})

	t.Run("custom thresholds respected", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(passing),
			WithCacheCheck(passing),
			WithThresholds(80, 70),
			WithSampler(stubSampler{
				available: true,
				snap:      sysinfo.Snapshot{DiskPercent: 85, MemoryPercent: 60},
			}),
		)

		_, body := doRequest(t, h.Health, nil)
		checks := body["checks"].(map[string]any)
		require.Equal(t, "warning", checks["disk"])
		require.Equal(t, "ok", checks["memory"])
	})

	t.Run("sampling failure escalates to error", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(passing),
			WithCacheCheck(passing),
			WithSampler(stubSampler{available: true, err: errors.New("proc not mounted")}),
		)

		rec, body := doRequest(t, h.Health, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "error", body["status"])

		system := body["system"].(map[string]any)
		require.Contains(t, system["error"], "proc not mounted")
	})

	t.Run("panicking check is contained", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseCheck(func(ctx context.Context) error { panic("driver bug") }),
			WithCacheCheck(passing),
		)

		rec, body := doRequest(t, h.Health, nil)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		checks := body["checks"].(map[string]any)
		require.Contains(t, checks["database"], "error: ")
		require.Contains(t, checks["database"], "driver bug")
	})

	t.Run("echoes correlation id byte for byte", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(WithDatabaseCheck(passing), WithCacheCheck(passing))
		_, body := doRequest(t, h.Health, map[string]string{RequestIDHeader: "trace-7f3a"})
		require.Equal(t, "trace-7f3a", body["timestamp"])
	})

	t.Run("missing header yields empty string not null", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(WithDatabaseCheck(passing), WithCacheCheck(passing))
		_, body := doRequest(t, h.Health, nil)
		ts, ok := body["timestamp"].(string)
		require.True(t, ok)
		require.Empty(t, ts)
	})
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	t.Run("reports consistent connection counters", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseStats(func(ctx context.Context) (DatabaseStats, error) {
				return DatabaseStats{TotalConnections: 12, ActiveConnections: 3}, nil
			}),
			WithCacheStats(func(ctx context.Context) (CacheStats, error) {
				return CacheStats{ConnectedClients: 7, UsedMemory: 3670016, UsedMemoryPeak: 5242880}, nil
			}),
		)

		rec, body := doRequest(t, h.Metrics, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		metrics := body["metrics"].(map[string]any)
		database := metrics["database"].(map[string]any)
		require.GreaterOrEqual(t, database["total_connections"], database["active_connections"])
		require.InDelta(t, 12.0, database["total_connections"], 0.001)

		cache := metrics["redis"].(map[string]any)
		require.InDelta(t, 7.0, cache["connected_clients"], 0.001)
		require.InDelta(t, 3.5, cache["used_memory_mb"], 0.001)
		require.InDelta(t, 5.0, cache["used_memory_peak_mb"], 0.001)
	})

	t.Run("counter fetch failure degrades to zeros", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithDatabaseStats(func(ctx context.Context) (DatabaseStats, error) {
				return DatabaseStats{}, errors.New("pg_stat_activity denied")
			}),
			WithCacheStats(func(ctx context.Context) (CacheStats, error) {
				return CacheStats{}, errors.New("INFO disabled")
			}),
		)

		rec, body := doRequest(t, h.Metrics, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		metrics := body["metrics"].(map[string]any)
		database := metrics["database"].(map[string]any)
		require.InDelta(t, 0.0, database["total_connections"], 0.001)
		require.InDelta(t, 0.0, database["active_connections"], 0.001)

		cache := metrics["redis"].(map[string]any)
		require.InDelta(t, 0.0, cache["connected_clients"], 0.001)
		require.InDelta(t, 0.0, cache["used_memory_mb"], 0.001)
	})

	t.Run("system metrics present when sampler available", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(
			WithSampler(stubSampler{
				available: true,
				snap: sysinfo.Snapshot{
					CPUPercent:      12.5,
					MemoryPercent:   40,
					MemoryAvailable: 2 << 30,
					DiskPercent:     55,
					DiskFree:        10 << 30,
				},
			}),
		)

		_, body := doRequest(t, h.Metrics, nil)
		system := body["metrics"].(map[string]any)["system"].(map[string]any)
		require.InDelta(t, 12.5, system["cpu_usage_percent"], 0.001)
		require.InDelta(t, 2.0, system["memory_available_gb"], 0.001)
		require.InDelta(t, 10.0, system["disk_free_gb"], 0.001)
		require.NotContains(t, system, "error")
	})

	t.Run("absent sampler reported in system block", func(t *testing.T) {
		t.Parallel()

		h := NewHandler()
		rec, body := doRequest(t, h.Metrics, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		system := body["metrics"].(map[string]any)["system"].(map[string]any)
		require.Equal(t, "system metrics unavailable", system["error"])
	})

	t.Run("echoes correlation id", func(t *testing.T) {
		t.Parallel()

		h := NewHandler()
		_, body := doRequest(t, h.Metrics, map[string]string{RequestIDHeader: "m-1"})
		require.Equal(t, "m-1", body["timestamp"])
	})
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	t.Run("converts panic into handler-fatal 500", func(t *testing.T) {
		t.Parallel()

		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("serialization bug")
		})
		wrapped := Recoverer(nil)(inner)

		req := httptest.NewRequest(http.MethodGet, "/metrics/", nil)
		req.Header.Set(RequestIDHeader, "fatal-1")
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)

		require.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "internal server error", body["error"])
		require.Equal(t, "fatal-1", body["timestamp"])
		require.NotContains(t, rec.Body.String(), "serialization bug")
	})

	t.Run("passes healthy requests through untouched", func(t *testing.T) {
		t.Parallel()

		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		wrapped := Recoverer(nil)(inner)

		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	})
}
