// Package flashkv is a power-fail-safe key-value store over a
// block-addressed non-volatile medium with asymmetric read/program/erase
// granularities (typically NOR flash): a two-area log-structured layout
// with an atomic-by-construction active/swap commit, a garbage collector
// that tolerates interruption at any step, and a RAM-resident index
// accelerating lookup.
package flashkv

import (
	"log/slog"

	"github.com/Priyanshu23/flashkv/internal/area"
	"github.com/Priyanshu23/flashkv/internal/blockdevice"
	"github.com/Priyanshu23/flashkv/internal/lock"
	"github.com/Priyanshu23/flashkv/internal/record"
)

// Store is the public handle to one key-value region. The zero value is
// not usable; construct one with New.
type Store struct {
	mgr    *area.Manager
	lock   *lock.Lock
	cfg    config
	closed bool
}

// New constructs a Store over bd. Call Init before any other operation.
func New(bd blockdevice.Device, opts ...Option) *Store {
	cfg := config{lockTimeout: defaultLockTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.maxKeySize == 0 {
		cfg.maxKeySize = record.DefaultMaxKeySize
	}

	return &Store{
		mgr:  area.New(bd, cfg.logger, cfg.maxKeySize),
		lock: lock.New(),
		cfg:  cfg,
	}
}

// withLock acquires the store's single mutual-exclusion token for the
// duration of fn, releasing it on every exit path.
func (s *Store) withLock(fn func() error) error {
	if err := s.lock.Acquire(s.cfg.lockTimeout); err != nil {
		return err
	}
	defer s.lock.Release()
	if s.closed {
		return ErrClosed
	}
	return fn()
}

func (s *Store) validKey(key []byte) bool {
	return len(key) > 0 && len(key) < int(s.cfg.maxKeySize)
}
