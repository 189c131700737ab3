// Package simulator provides an in-RAM blockdevice.Device used by tests: it
// lets property tests inject torn writes (truncate the Nth Program call)
// and bit-rot (flip a byte at an arbitrary medium offset) deterministically,
// which is the only practical way to drive power-fail and corruption
// scenarios.
//
// Outside that one injected torn write (which lands half its bytes and
// returns success, after which every Program fails), a Program lands in
// full and an Erase is all-or-nothing, so that property tests exercising
// flashkv's prefix-consistency and recovery-GC invariants are actually
// testing flashkv, not a looser simulator.
package simulator

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// ErasedByte is the value every simulated sector reads back as after an
// Erase. Real NOR parts commonly erase to 0xFF; flashkv's record codec
// treats both 0x00 and 0xFF magic words as "erased", so either works.
// 0xFF is picked to match the common case.
const ErasedByte = 0xFF

// Device is a RAM-backed medium of fixed geometry.
type Device struct {
	mem         []byte
	readSize    uint32
	programSize uint32
	eraseSize   uint32

	// erased tracks, per byte, whether the byte has been erased since its
	// last program. Real NOR requires erase-before-reprogram; this bitset
	// lets tests assert callers honor that contract.
	erased *bitset.BitSet

	assertErasedContract bool
	programCalls         int
	// truncateAfter, when >0, makes the truncateAfter'th Program call only
	// partially land (simulating a power loss mid-burst): the first half of
	// the requested bytes are written, the rest are dropped, and every
	// subsequent call returns errTornWrite.
	truncateAfter int
	torn          bool
}

// New creates a simulated device of the given size, fully erased, with the
// given read/program/erase granularities (which may be equal, including 1,
// for degenerate unit-granularity media).
func New(size, readSize, programSize, eraseSize uint32) *Device {
	if eraseSize == 0 {
		eraseSize = 1
	}
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = ErasedByte
	}
	erased := bitset.New(uint(size))
	for i := uint(0); i < uint(size); i++ {
		erased.Set(i)
	}
	return &Device{
		mem:         mem,
		readSize:    readSize,
		programSize: programSize,
		eraseSize:   eraseSize,
		erased:      erased,
	}
}

// AssertErasedContract makes Program reject any call that targets a byte
// not erased since its last program, matching the BD contract real NOR
// imposes on its caller. Off by default because some tests deliberately
// probe flashkv's behavior on degenerate media.
func (d *Device) AssertErasedContract(enabled bool) {
	d.assertErasedContract = enabled
}

// TruncateNextProgram arranges for the n'th future Program call (1-indexed)
// to land only partially, modeling a power loss mid-burst. Every Program
// call after that one fails.
func (d *Device) TruncateNextProgram(n int) {
	d.truncateAfter = d.programCalls + n
}

// Corrupt flips one bit at addr, modeling bit-rot or a torn write that
// already committed garbage.
func (d *Device) Corrupt(addr uint32) {
	d.mem[addr] ^= 0x01
}

// Bytes exposes the raw medium, for test assertions only.
func (d *Device) Bytes() []byte { return d.mem }

func (d *Device) sectorOf(addr uint32) uint {
	return uint(addr / d.eraseSize)
}

func (d *Device) Read(addr uint32, buf []byte) error {
	if addr+uint32(len(buf)) > uint32(len(d.mem)) {
		return fmt.Errorf("simulator: read out of range at %d+%d", addr, len(buf))
	}
	copy(buf, d.mem[addr:addr+uint32(len(buf))])
	return nil
}

func (d *Device) Program(addr uint32, data []byte) error {
	if d.torn {
		return errTornWrite
	}
	if addr+uint32(len(data)) > uint32(len(d.mem)) {
		return fmt.Errorf("simulator: program out of range at %d+%d", addr, len(data))
	}
	if addr%d.programSize != 0 || uint32(len(data))%d.programSize != 0 {
		return fmt.Errorf("simulator: program not page-aligned at %d len %d", addr, len(data))
	}
	if d.assertErasedContract {
		for a := addr; a < addr+uint32(len(data)); a++ {
			if !d.erased.Test(uint(a)) {
				return fmt.Errorf("simulator: program at %d targets a byte not erased since its last program", a)
			}
		}
	}

	d.programCalls++
	n := len(data)
	if d.truncateAfter > 0 && d.programCalls == d.truncateAfter {
		n = len(data) / 2
		d.torn = true
	}
	copy(d.mem[addr:addr+uint32(n)], data[:n])

	for a := addr; a < addr+uint32(len(data)); a++ {
		d.erased.Clear(uint(a))
	}

	return nil
}

func (d *Device) Erase(addr uint32, length uint32) error {
	if addr+length > uint32(len(d.mem)) {
		return fmt.Errorf("simulator: erase out of range at %d+%d", addr, length)
	}
	if addr%d.eraseSize != 0 || length%d.eraseSize != 0 {
		return fmt.Errorf("simulator: erase not sector-aligned at %d len %d", addr, length)
	}

	for i := uint32(0); i < length; i++ {
		d.mem[addr+i] = ErasedByte
	}
	for a := addr; a < addr+length; a++ {
		d.erased.Set(uint(a))
	}
	return nil
}

func (d *Device) ReadSize(uint32) uint32    { return d.readSize }
func (d *Device) ProgramSize(uint32) uint32 { return d.programSize }
func (d *Device) EraseSize(uint32) uint32   { return d.eraseSize }

var errTornWrite = fmt.Errorf("simulator: medium stopped responding after a torn write")
