package lock

import (
	"testing"
	"time"

	"github.com/Priyanshu23/flashkv/internal/errs"
)

func TestAcquireReleaseRoundTrip(t *testing.T) {
	l := New()
	if err := l.Acquire(time.Second); err != nil {
		t.Fatal(err)
	}
	l.Release()
	if err := l.Acquire(time.Second); err != nil {
		t.Fatal(err)
	}
	l.Release()
}

func TestAcquireTimesOutWhenHeld(t *testing.T) {
	l := New()
	if err := l.Acquire(time.Second); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	err := l.Acquire(20 * time.Millisecond)
	if err != errs.Timeout {
		t.Fatalf("Acquire while held = %v, want errs.Timeout", err)
	}
}

func TestAcquireZeroTimeoutWaitsIndefinitely(t *testing.T) {
	l := New()
	if err := l.Acquire(time.Second); err != nil {
		t.Fatal(err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		l.Release()
		close(released)
	}()

	if err := l.Acquire(0); err != nil {
		t.Fatal(err)
	}
	<-released
	l.Release()
}

func TestReleaseWithoutHeldTokenPanics(t *testing.T) {
	l := New()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic releasing a token that is not held")
		}
	}()
	l.Release()
}
