package share

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Presenter to use: auto, system, terminal or dialog
	Presenter string `env:"SHARE_PRESENTER,default:auto"`

	// Largest decoded payload accepted per file
	MaxPayloadSize int64 `env:"SHARE_MAX_PAYLOAD_SIZE,default:104857600"` // 100MB default

	// Files staged in parallel for a single share
	StagingConcurrency int `env:"SHARE_STAGING_CONCURRENCY,default:4"`

	// Remove leftovers from a previous run at startup
	CleanupOnStart bool `env:"SHARE_CLEANUP_ON_START,default:true"`

	// How long the system presenter keeps a file after handing it to an opener
	OpenHoldSeconds int `env:"SHARE_OPEN_HOLD_SECONDS,default:60"`

	LogLevel string `env:"SHARE_LOG_LEVEL,default:info"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenHold returns OpenHoldSeconds as a duration.
func (c *Config) OpenHold() time.Duration {
	if c.OpenHoldSeconds < 0 {
		return 0
	}
	return time.Duration(c.OpenHoldSeconds) * time.Second
}

// Level maps LogLevel to a slog level. Unknown values fall back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ManagerOptions returns the Manager options implied by c.
func (c *Config) ManagerOptions(logger *slog.Logger) []Option {
	return []Option{
		WithMaxSize(c.MaxPayloadSize),
		WithLogger(logger),
	}
}

// SharerOptions returns the Sharer options implied by c.
func (c *Config) SharerOptions(logger *slog.Logger) []SharerOption {
	return []SharerOption{
		WithConcurrency(c.StagingConcurrency),
		WithSharerLogger(logger),
	}
}
