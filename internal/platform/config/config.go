package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	platformstrings "webfinger/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	MetricsAddr     string
	AllowedOrigins  []string
	TrustProxy      bool
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
	IdentityFile    string
	RateLimit       RateLimitConfig
	Redis           RedisConfig
}

// RateLimitConfig bounds requests per client IP over a sliding window.
type RateLimitConfig struct {
	Max      int
	Window   time.Duration
	Disabled bool
}

// RedisConfig configures the optional shared rate-limit store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const (
	defaultPort            = "3000"
	defaultRateLimitMax    = 100
	defaultRateLimitWindow = 15 * time.Minute
	defaultShutdownTimeout = 10 * time.Second
)

// FromEnv builds a Server config from the process environment.
func FromEnv() (Server, error) {
	return Load(os.Getenv)
}

// Load builds a Server config from an arbitrary getenv function so tests do
// not have to touch the real environment.
func Load(getenv func(string) string) (Server, error) {
	port := getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	cfg := Server{
		Addr:            ":" + port,
		MetricsAddr:     getenv("METRICS_ADDR"),
		AllowedOrigins:  platformstrings.SplitList(getenv("ALLOWED_ORIGINS"), ","),
		IdentityFile:    getenv("IDENTITY_FILE"),
		ShutdownTimeout: defaultShutdownTimeout,
		RateLimit: RateLimitConfig{
			Max:    defaultRateLimitMax,
			Window: defaultRateLimitWindow,
		},
		Redis: RedisConfig{
			URL:          getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	var err error
	if cfg.TrustProxy, err = parseBool(getenv, "TRUST_PROXY"); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Disabled, err = parseBool(getenv, "RATE_LIMIT_DISABLED"); err != nil {
		return Server{}, err
	}
	if v := getenv("RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("RATE_LIMIT_MAX must be a positive integer, got %q", v)
		}
		cfg.RateLimit.Max = n
	}
	if cfg.RateLimit.Window, err = parseDuration(getenv, "RATE_LIMIT_WINDOW", defaultRateLimitWindow); err != nil {
		return Server{}, err
	}
	if cfg.ShutdownTimeout, err = parseDuration(getenv, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return Server{}, err
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Server{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func parseDuration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}
