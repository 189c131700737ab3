// Package errs collects the sentinel errors shared across flashkv's
// internal packages. The root flashkv package re-exports the
// caller-facing subset under its own names.
package errs

import "errors"

var (
	// BadParam is returned for invalid caller arguments.
	BadParam = errors.New("flashkv: bad parameter")
	// Alignment is returned when a region or address violates the medium's
	// erase/program alignment requirements.
	Alignment = errors.New("flashkv: alignment violation")
	// MemAlloc is returned when a growth or allocation failed.
	MemAlloc = errors.New("flashkv: allocation failed")
	// InvalidData is returned when a record fails header or CRC validation.
	InvalidData = errors.New("flashkv: invalid data")
	// ErasedData marks a read that landed on erased (free) space. It is an
	// internal sentinel only: callers of the public API never see it.
	ErasedData = errors.New("flashkv: erased data")
	// ItemNotFound is returned when a key has no live record.
	ItemNotFound = errors.New("flashkv: item not found")
	// StorageFull is returned when a mutation would exceed the area's
	// logical or physical capacity.
	StorageFull = errors.New("flashkv: storage full")
	// Timeout is returned when the mutual-exclusion token (internal/lock)
	// is not acquired within the configured bound.
	Timeout = errors.New("flashkv: lock acquisition timed out")
)
