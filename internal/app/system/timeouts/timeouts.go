// Package timeouts provides the shared per-operation deadline values
// handlers and stores wrap around database and storage calls. Tiers:
// Ping for health probes, Short for single-document operations, Medium
// for listing and multi-query reads, Long for blob transfers and
// cascades, Batch for bulk document operations.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults, used unless Configure or ConfigureFromEnv overrides them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Ping returns the deadline for health probes.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the deadline for single-document operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the deadline for listing and multi-query reads.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the deadline for blob transfers and delete cascades.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the deadline for bulk document operations.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds a full set of deadline values. Zero fields are ignored
// by Configure.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure overrides the deadlines named by non-zero fields of cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// Reset restores every deadline to its default.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	batch = DefaultBatch
}

// ConfigureFromEnv reads DEALDOCS_TIMEOUT_* environment variables
// (PING, SHORT, MEDIUM, LONG, BATCH, as time.ParseDuration strings)
// and returns how many deadlines were overridden. Unset, malformed,
// and non-positive values are skipped.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	overridden := 0
	for _, tier := range []struct {
		env string
		dst *time.Duration
	}{
		{"DEALDOCS_TIMEOUT_PING", &ping},
		{"DEALDOCS_TIMEOUT_SHORT", &short},
		{"DEALDOCS_TIMEOUT_MEDIUM", &medium},
		{"DEALDOCS_TIMEOUT_LONG", &long},
		{"DEALDOCS_TIMEOUT_BATCH", &batch},
	} {
		v := os.Getenv(tier.env)
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*tier.dst = d
			overridden++
		}
	}
	return overridden
}

// Current returns a snapshot of every deadline.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:   ping,
		Short:  short,
		Medium: medium,
		Long:   long,
		Batch:  batch,
	}
}

// WithTimeout wraps parent with the given deadline. The returned
// cancel func logs a warning when the deadline was actually hit, so
// slow jobs surface in the logs with their name attached.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
