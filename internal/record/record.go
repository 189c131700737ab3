// Package record implements the on-medium record format: header, key,
// value, pad. Every area-header record and every live-data record
// (tombstone or not) shares this one layout.
//
// Layout, 18-byte header followed by key then value then pad:
//
//	+------+-----+-------+-------+-------+---+-----+-------+-----+
//	|magic |fmt  |flags  |hdrsz  |keysz  |dsz|crc  |key  |value|pad|
//	| 4B   | 1B  | 1B    | 2B    | 2B    |4B |4B   |keysz|dsz  |...|
//	+------+-----+-------+-------+-------+---+-----+-------+-----+
//
// crc covers every header field but itself, then the key bytes, then the
// value bytes, never the pad (pad content is unconstrained).
package record

import (
	"encoding/binary"
	"fmt"

	"github.com/Priyanshu23/flashkv/internal/blockdevice"
	"github.com/Priyanshu23/flashkv/internal/crc16"
	"github.com/Priyanshu23/flashkv/internal/errs"
	"github.com/Priyanshu23/flashkv/internal/ioburst"
)

const (
	// MagicValid identifies a live header.
	MagicValid uint32 = 0xFACEFACE
	// FormatVersion0 is the only header format defined so far.
	FormatVersion0 uint8 = 0
	// FlagTombstone marks a delete record; data_size is always 0 for one.
	FlagTombstone uint8 = 1 << 7

	// HeaderSize is the fixed size of the serialized header, before key,
	// value, and pad.
	HeaderSize uint16 = 18

	// DefaultMaxKeySize is the MAX_KEY_SIZE used unless a Store is
	// configured otherwise: key_size must satisfy 1 <= key_size < this.
	DefaultMaxKeySize uint16 = 256
)

var byteOrder = binary.LittleEndian

// Header is the decoded form of a record's fixed-size header.
type Header struct {
	Magic         uint32
	FormatVersion uint8
	Flags         uint8
	HeaderSize    uint16
	KeySize       uint16
	DataSize      uint32
	CRC           uint32
}

func (h Header) IsTombstone() bool { return h.Flags&FlagTombstone != 0 }

// erasedMagic reports whether magic is one of the two values a freshly
// erased medium reads back as: 0x00000000 or 0xFFFFFFFF.
func erasedMagic(m uint32) bool {
	return m == 0x00000000 || m == 0xFFFFFFFF
}

// encodeHeaderSansCRC writes every header field but crc, in declared order,
// returning the 14-byte prefix that the header CRC is computed over.
func encodeHeaderSansCRC(keySize uint16, dataSize uint32, tombstone bool) []byte {
	buf := make([]byte, HeaderSize-4)
	byteOrder.PutUint32(buf[0:4], MagicValid)
	buf[4] = FormatVersion0
	if tombstone {
		buf[5] = FlagTombstone
	}
	byteOrder.PutUint16(buf[6:8], HeaderSize)
	byteOrder.PutUint16(buf[8:10], keySize)
	byteOrder.PutUint32(buf[10:14], dataSize)
	return buf
}

func decodeHeaderSansCRC(buf []byte) Header {
	return Header{
		Magic:         byteOrder.Uint32(buf[0:4]),
		FormatVersion: buf[4],
		Flags:         buf[5],
		HeaderSize:    byteOrder.Uint16(buf[6:8]),
		KeySize:       byteOrder.Uint16(buf[8:10]),
		DataSize:      byteOrder.Uint32(buf[10:14]),
	}
}

// Size returns the on-medium size of a record with the given key/value
// lengths, aligned up to programSize at its starting address.
func Size(keySize uint16, dataSize uint32, programSize uint32) uint32 {
	total := uint32(HeaderSize) + uint32(keySize) + dataSize
	return blockdevice.AlignUp(total, programSize)
}

// Write serializes and appends one record (header, key, value) at addr
// through burst, requesting the final flush only on the last chunk. It
// returns the record's aligned on-medium size.
func Write(dev blockdevice.Device, burst *ioburst.Burst, addr uint32, key, value []byte, tombstone bool, programSize uint32) (uint32, error) {
	keySize := uint16(len(key))
	dataSize := uint32(len(value))

	headerSansCRC := encodeHeaderSansCRC(keySize, dataSize, tombstone)

	crc := crc16.Update(crc16.Init, headerSansCRC)
	crc = crc16.Update(crc, key)
	crc = crc16.Update(crc, value)

	header := make([]byte, HeaderSize)
	copy(header, headerSansCRC)
	byteOrder.PutUint32(header[14:18], uint32(crc))

	next, err := burst.Append(dev, addr, header, false)
	if err != nil {
		return 0, fmt.Errorf("record: writing header: %w", err)
	}
	next, err = burst.Append(dev, next, key, false)
	if err != nil {
		return 0, fmt.Errorf("record: writing key: %w", err)
	}
	if _, err := burst.Append(dev, next, value, true); err != nil {
		return 0, fmt.Errorf("record: writing value: %w", err)
	}

	return Size(keySize, dataSize, programSize), nil
}

// ReadOptions configures a Read call.
type ReadOptions struct {
	// ValidateKey, if non-nil, is compared against the on-medium key
	// chunk by chunk; a mismatch yields errs.ItemNotFound. This is how
	// same-hash key collisions are disambiguated.
	ValidateKey []byte
	// Data, if non-nil, receives the value bytes; its capacity must be
	// at least the record's data_size or Read fails with errs.InvalidData
	// and RequiredDataSize set, so the caller can retry with a larger
	// buffer.
	Data []byte
	// MaxKeySize bounds key_size the same way the writer was configured
	// (spec's MAX_KEY_SIZE); 0 means DefaultMaxKeySize.
	MaxKeySize uint16
}

// Result is what a successful or short-buffer Read reports back.
type Result struct {
	Header           Header
	RequiredDataSize uint32
}

// Read validates and optionally decodes the record at addr. Errors are
// errs.ErasedData, errs.InvalidData, or errs.ItemNotFound; ErasedData is
// never meant to escape flashkv's internal packages.
func Read(dev blockdevice.Device, burst *ioburst.Burst, addr uint32, keyBuf []byte, opts ReadOptions) (Result, error) {
	maxKeySize := opts.MaxKeySize
	if maxKeySize == 0 {
		maxKeySize = DefaultMaxKeySize
	}

	raw := make([]byte, HeaderSize)
	if err := dev.Read(addr, raw); err != nil {
		return Result{}, fmt.Errorf("record: reading header: %w", err)
	}

	magic := byteOrder.Uint32(raw[0:4])
	if erasedMagic(magic) {
		return Result{}, errs.ErasedData
	}
	if magic != MagicValid {
		return Result{}, errs.InvalidData
	}

	header := decodeHeaderSansCRC(raw)
	header.CRC = byteOrder.Uint32(raw[14:18])

	if header.KeySize == 0 || header.KeySize >= maxKeySize {
		return Result{}, errs.InvalidData
	}
	if opts.Data != nil && uint32(cap(opts.Data)) < header.DataSize {
		return Result{RequiredDataSize: header.DataSize}, errs.InvalidData
	}

	crc := crc16.Update(crc16.Init, raw[:14])

	if uint32(len(keyBuf)) < uint32(header.KeySize) {
		return Result{}, fmt.Errorf("record: key staging buffer too small for key_size %d", header.KeySize)
	}
	if opts.ValidateKey != nil && len(opts.ValidateKey) != int(header.KeySize) {
		return Result{}, errs.ItemNotFound
	}
	keyRes, err := burst.StreamRead(dev, addr+uint32(HeaderSize), uint32(header.KeySize), crc, opts.ValidateKey, keyBuf[:header.KeySize])
	if err != nil {
		return Result{}, fmt.Errorf("record: reading key: %w", err)
	}
	crc = keyRes.CRC
	if keyRes.Mismatch {
		return Result{}, errs.ItemNotFound
	}

	var dataOut []byte
	if opts.Data != nil {
		dataOut = opts.Data[:header.DataSize]
	}
	valRes, err := burst.StreamRead(dev, keyRes.NextAddr, header.DataSize, crc, nil, dataOut)
	if err != nil {
		return Result{}, fmt.Errorf("record: reading value: %w", err)
	}
	crc = valRes.CRC

	if uint32(header.CRC) != uint32(crc) {
		return Result{Header: header}, errs.InvalidData
	}

	return Result{Header: header, RequiredDataSize: header.DataSize}, nil
}

// PeekHeader reads and validates only the fixed header at addr, no key or
// value streaming, no CRC check. A record's size is recomputable from its
// header fields and program size alone, which is all replay and GC need
// for records already known to be live without re-verifying their full
// CRC.
func PeekHeader(dev blockdevice.Device, addr uint32, maxKeySize uint16) (Header, error) {
	if maxKeySize == 0 {
		maxKeySize = DefaultMaxKeySize
	}

	raw := make([]byte, HeaderSize)
	if err := dev.Read(addr, raw); err != nil {
		return Header{}, fmt.Errorf("record: reading header: %w", err)
	}

	magic := byteOrder.Uint32(raw[0:4])
	if erasedMagic(magic) {
		return Header{}, errs.ErasedData
	}
	if magic != MagicValid {
		return Header{}, errs.InvalidData
	}

	header := decodeHeaderSansCRC(raw)
	header.CRC = byteOrder.Uint32(raw[14:18])

	if header.KeySize == 0 || header.KeySize >= maxKeySize {
		return Header{}, errs.InvalidData
	}

	return header, nil
}
