package flashkv

import (
	"log/slog"
	"time"
)

type config struct {
	logger      *slog.Logger
	lockTimeout time.Duration
	maxKeySize  uint16
}

// defaultLockTimeout bounds lock acquisition for every operation except
// Deinit, which waits indefinitely.
const defaultLockTimeout = 5 * time.Second

// Option configures a Store at construction, matching the teacher's
// segmentmanager With... functional-option pattern.
type Option func(*config)

// WithLogger sets the *slog.Logger the Store uses for GC and recovery
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithLockTimeout overrides the bounded acquisition timeout applied to
// every operation except Deinit.
func WithLockTimeout(d time.Duration) Option {
	return func(c *config) { c.lockTimeout = d }
}

// WithMaxKeySize overrides MAX_KEY_SIZE; keys must satisfy
// 1 <= len(key) < n. Defaults to record.DefaultMaxKeySize (256).
func WithMaxKeySize(n uint16) Option {
	return func(c *config) { c.maxKeySize = n }
}
