// Package lock implements a single mutual-exclusion token: acquired at
// the entry of every public store operation, released on every exit
// path, with a bounded acquisition timeout everywhere except deinit
// (which waits indefinitely). It is grounded on the teacher's WALWriter
// token-passing style (wal_writer.go's buffered channel plus
// select-on-done), generalized from "hand a request to a writer
// goroutine" to "take a reusable token and give it back".
package lock

import (
	"time"

	"github.com/Priyanshu23/flashkv/internal/errs"
)

// Lock is a single-holder token. The zero value is not usable; use New.
type Lock struct {
	token chan struct{}
}

// New returns an unheld Lock.
func New() *Lock {
	l := &Lock{token: make(chan struct{}, 1)}
	l.token <- struct{}{}
	return l
}

// Acquire blocks until the token is available or timeout elapses. A
// timeout of 0 or less waits indefinitely, matching deinit's contract of
// waiting indefinitely to shut down cleanly. On timeout it returns
// errs.Timeout.
func (l *Lock) Acquire(timeout time.Duration) error {
	if timeout <= 0 {
		<-l.token
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-l.token:
		return nil
	case <-timer.C:
		return errs.Timeout
	}
}

// Release returns the token. Calling Release without a held token panics;
// callers always pair it with a successful Acquire via defer.
func (l *Lock) Release() {
	select {
	case l.token <- struct{}{}:
	default:
		panic("lock: Release called without a held token")
	}
}
