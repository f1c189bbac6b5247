// Package config handles environment variable loading for ports, pool sizes, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration values for the service.
type Config struct {
	// HTTP server port
	HTTPPort int

	// Size of the shared document worker pool
	WorkerConcurrency int

	// Capacity of the pending-task queue feeding the pool
	QueueSize int

	// Upper bound on a single multipart upload, in bytes
	MaxUploadBytes int64

	// Requests per second allowed per client IP on the upload endpoint.
	// Zero disables rate limiting.
	RateLimit float64

	// Burst allowance for the upload rate limiter
	RateLimitBurst int

	// OTLP collector address for traces; empty disables tracing export
	OTELEndpoint string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:          8000,
		WorkerConcurrency: 4,
		QueueSize:         256,
		MaxUploadBytes:    32 << 20, // 32 MiB
		RateLimitBurst:    10,
		OTELEndpoint:      os.Getenv("OTEL_EXPORTER_ENDPOINT"),
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.HTTPPort = p
	}

	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %q", v)
		}
		cfg.WorkerConcurrency = c
	}

	if v := os.Getenv("QUEUE_SIZE"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil || q <= 0 {
			return nil, fmt.Errorf("invalid QUEUE_SIZE: %q", v)
		}
		cfg.QueueSize = q
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		b, err := strconv.ParseInt(v, 10, 64)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %q", v)
		}
		cfg.MaxUploadBytes = b
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %q", v)
		}
		cfg.RateLimit = r
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %q", v)
		}
		cfg.RateLimitBurst = b
	}

	return cfg, nil
}
