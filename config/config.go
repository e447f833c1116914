package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/forumkit/pulse/pkg/db"
	"github.com/forumkit/pulse/pkg/logger"
)

// Config is the immutable deployment configuration, populated once at
// process start and injected into constructors. Nothing reads environment
// variables after Load returns.
type Config struct {
	Server  ServerConfig
	Service ServiceConfig
	Health  HealthConfig
	Sysinfo SysinfoConfig
	DB      db.Config
	Redis   RedisConfig
	Sentry  logger.SentryConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ServiceConfig identifies the deployment in health responses.
type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" envDefault:"forum"`
	Version string `env:"SERVICE_VERSION" envDefault:"unknown"`
}

// HealthConfig bounds the probes and sets degradation thresholds.
type HealthConfig struct {
	CheckTimeout      time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"2s"`
	DiskWarnPercent   float64       `env:"HEALTH_DISK_WARN_PERCENT" envDefault:"90"`
	MemoryWarnPercent float64       `env:"HEALTH_MEMORY_WARN_PERCENT" envDefault:"90"`
}

// SysinfoConfig controls host resource sampling.
type SysinfoConfig struct {
	Enabled         bool          `env:"SYSINFO_ENABLED" envDefault:"true"`
	CPUSampleWindow time.Duration `env:"SYSINFO_CPU_SAMPLE_WINDOW" envDefault:"500ms"`
	DiskPath        string        `env:"SYSINFO_DISK_PATH" envDefault:"/"`
}

// RedisConfig holds cache-store connection settings.
type RedisConfig struct {
	URL           string        `env:"REDIS_URL,required"`
	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"4"`
	MinIdleConns  int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
}

// Load parses the full configuration from environment variables.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}
