package flashkv

import (
	"os"

	"github.com/Priyanshu23/flashkv/internal/errs"
)

// Sentinel errors returned by Store's public operations, aliasing
// internal/errs so every internal package and this root package compare
// against the exact same error values.
var (
	ErrBadParam     = errs.BadParam
	ErrAlignment    = errs.Alignment
	ErrMemAlloc     = errs.MemAlloc
	ErrInvalidData  = errs.InvalidData
	ErrItemNotFound = errs.ItemNotFound
	ErrStorageFull  = errs.StorageFull
	ErrTimeout      = errs.Timeout

	// ErrClosed is returned by any operation after Deinit, mirroring the
	// teacher's own ErrWALClosed = os.ErrClosed convention.
	ErrClosed = os.ErrClosed
)
