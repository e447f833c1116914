package health

import (
	"io"
	"log/slog"
	"time"

	"github.com/forumkit/pulse/pkg/sysinfo"
)

const (
	defaultTimeout            = 2 * time.Second
	defaultDiskWarnPercent    = 90
	defaultMemoryWarnPercent  = 90
	defaultServiceName        = "forum"
	defaultServiceVersion     = "unknown"
	// cpuSampleAllowance extends the request budget when a sampler is
	// available, since CPU measurement blocks for its sample window.
	cpuSampleAllowance = time.Second
)

type config struct {
	service           string
	version           string
	timeout           time.Duration
	diskWarnPercent   float64
	memoryWarnPercent float64
	dbCheck           CheckFunc
	cacheCheck        CheckFunc
	sampler           sysinfo.Sampler
	dbStats           DatabaseStatsFunc
	cacheStats        CacheStatsFunc
	logger            *slog.Logger
}

// Option configures the probe handler.
type Option func(*config)

// WithServiceInfo sets the service identity reported in health responses.
func WithServiceInfo(service, version string) Option {
	return func(c *config) {
		if service != "" {
			c.service = service
		}
		if version != "" {
			c.version = version
		}
	}
}

// WithTimeout bounds dependency checks per request. Default: 2s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithThresholds sets the utilization percentages at which disk and memory
// checks degrade to warning. Default: 90 for both.
func WithThresholds(diskWarnPercent, memoryWarnPercent float64) Option {
	return func(c *config) {
		if diskWarnPercent > 0 {
			c.diskWarnPercent = diskWarnPercent
		}
		if memoryWarnPercent > 0 {
			c.memoryWarnPercent = memoryWarnPercent
		}
	}
}

// WithDatabaseCheck sets the relational store liveness check.
func WithDatabaseCheck(fn CheckFunc) Option {
	return func(c *config) {
		c.dbCheck = fn
	}
}

// WithCacheCheck sets the cache/broker store liveness check.
func WithCacheCheck(fn CheckFunc) Option {
	return func(c *config) {
		c.cacheCheck = fn
	}
}

// WithSampler sets the host resource sampler. Default: unavailable, which
// reports disk and memory checks as unknown.
func WithSampler(s sysinfo.Sampler) Option {
	return func(c *config) {
		if s != nil {
			c.sampler = s
		}
	}
}

// WithDatabaseStats sets the connection-counter source for the metrics
// endpoint.
func WithDatabaseStats(fn DatabaseStatsFunc) Option {
	return func(c *config) {
		c.dbStats = fn
	}
}

// WithCacheStats sets the cache counter source for the metrics endpoint.
func WithCacheStats(fn CacheStatsFunc) Option {
	return func(c *config) {
		c.cacheStats = fn
	}
}

// WithLogger sets the logger for check failures and degraded fetches.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		service:           defaultServiceName,
		version:           defaultServiceVersion,
		timeout:           defaultTimeout,
		diskWarnPercent:   defaultDiskWarnPercent,
		memoryWarnPercent: defaultMemoryWarnPercent,
		sampler:           sysinfo.Unavailable(),
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
