// Package area owns the two equal halves of the storage region, the
// mutation pipeline that writes and deletes records against the active
// half, and the garbage collector that compacts it into the swap half.
// It is the store's runtime context minus the public API surface and the
// lock, which live one layer up in the root flashkv package.
//
// Grounded on the teacher's segmentmanager.DiskSegmentManager: that type
// discovers rotating log segments on disk and picks the latest as active
// by sorting a counter embedded in the filename; this package generalizes
// the same "discover, validate, pick latest" shape from N rotating
// segments on a filesystem to exactly two fixed halves on a block device,
// compared by an explicit version field read out of a record instead of a
// filename.
package area

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/Priyanshu23/flashkv/internal/blockdevice"
	"github.com/Priyanshu23/flashkv/internal/errs"
	"github.com/Priyanshu23/flashkv/internal/index"
	"github.com/Priyanshu23/flashkv/internal/ioburst"
	"github.com/Priyanshu23/flashkv/internal/record"
)

// areaHeaderKey is the fixed ASCII key of every area's leading record.
var areaHeaderKey = []byte("MTBAREAIDX")

const areaHeaderFormatVersion uint16 = 0

var byteOrder = binary.LittleEndian

// Manager owns one store's active/swap halves, its RAM index, and the
// shared transaction buffer.
type Manager struct {
	dev    blockdevice.Device
	burst  *ioburst.Burst
	index  *index.Index
	logger *slog.Logger

	maxKeySize  uint16
	keyBuf      []byte
	readSize    uint32
	programSize uint32
	eraseSize   uint32

	areaSize uint32
	baseA    uint32
	baseB    uint32

	activeBase      uint32
	gcBase          uint32
	version         uint16
	freeSpaceOffset uint32
	consumedSize    uint32
}

// New returns a Manager ready for Init. logger defaults to slog.Default()
// when nil; maxKeySize defaults to record.DefaultMaxKeySize when 0.
func New(dev blockdevice.Device, logger *slog.Logger, maxKeySize uint16) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if maxKeySize == 0 {
		maxKeySize = record.DefaultMaxKeySize
	}
	return &Manager{dev: dev, logger: logger, maxKeySize: maxKeySize}
}

func safeMake(n uint32) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.MemAlloc
		}
	}()
	return make([]byte, n), nil
}

// Init validates region alignment, allocates the transaction buffer, RAM
// index, and key staging area, identifies the active area, and replays
// its log.
func (m *Manager) Init(startAddr, length uint32) error {
	eraseSize := m.dev.EraseSize(startAddr)
	programSize := m.dev.ProgramSize(startAddr)
	readSize := m.dev.ReadSize(startAddr)
	if eraseSize == 0 || programSize == 0 || readSize == 0 {
		return errs.BadParam
	}

	// Invariant 1: start_addr and start_addr+length are multiples of
	// erase_size; length/erase_size is a positive even integer.
	if startAddr%eraseSize != 0 || length%eraseSize != 0 {
		return errs.Alignment
	}
	sectors := length / eraseSize
	if sectors == 0 || sectors%2 != 0 {
		return errs.Alignment
	}

	m.areaSize = length / 2
	m.baseA = startAddr
	m.baseB = startAddr + m.areaSize
	m.eraseSize = eraseSize
	m.programSize = programSize
	m.readSize = readSize

	bufSize := ioburst.BufferSize(programSize, readSize)
	buf, err := safeMake(bufSize)
	if err != nil {
		return err
	}
	m.burst = ioburst.New(buf, programSize)

	keyBuf, err := safeMake(uint32(m.maxKeySize) + 1)
	if err != nil {
		return err
	}
	m.keyBuf = keyBuf
	m.index = index.New()

	needsReplay, err := m.selectActiveArea()
	if err != nil {
		return err
	}
	if needsReplay {
		if err := m.replay(); err != nil {
			return err
		}
	}

	m.logger.Info("flashkv: init complete", "active_base", m.activeBase, "version", m.version, "free_space_offset", m.freeSpaceOffset)
	return nil
}

// Size returns the consumed-size counter.
func (m *Manager) Size() uint32 { return m.consumedSize }

// Remaining returns area_size - consumed_size.
func (m *Manager) Remaining() uint32 { return m.areaSize - m.consumedSize }

// Write implements the non-delete half of the mutation pipeline.
func (m *Manager) Write(key, value []byte) error {
	return m.mutate(key, value, false)
}

// Delete implements the delete half of the mutation pipeline.
func (m *Manager) Delete(key []byte) error {
	return m.mutate(key, nil, true)
}

// Read looks up key, then validates and optionally streams its value
// into data. data may be nil to probe existence without copying
// anything.
func (m *Manager) Read(key []byte, data []byte) (valueSize uint32, err error) {
	_, offset, found, err := m.index.Find(key, func(o uint32) (bool, error) { return m.verifyKeyAt(key, o) })
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errs.ItemNotFound
	}

	opts := record.ReadOptions{ValidateKey: key, MaxKeySize: m.maxKeySize}
	if data != nil {
		opts.Data = data
	}
	res, err := record.Read(m.dev, m.burst, m.activeBase+offset, m.keyBuf, opts)
	return res.RequiredDataSize, err
}

// Reset clears the index and GCs zero live records into a
// fresh-versioned area.
func (m *Manager) Reset() error {
	m.index.Reset()
	return m.runGC(nil)
}

// verifyKeyAt re-reads the record at offset (relative to the active
// area's base) and compares its on-medium key against key, the mechanism
// Find uses to disambiguate same-hash entries.
func (m *Manager) verifyKeyAt(key []byte, offset uint32) (bool, error) {
	_, err := record.Read(m.dev, m.burst, m.activeBase+offset, m.keyBuf, record.ReadOptions{
		ValidateKey: key,
		MaxKeySize:  m.maxKeySize,
	})
	switch {
	case err == nil:
		return true, nil
	case err == errs.ItemNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (m *Manager) headerRecordSize() uint32 {
	return record.Size(uint16(len(areaHeaderKey)), 4, m.programSize)
}

func encodeAreaHeaderValue(version uint16) []byte {
	v := make([]byte, 4)
	byteOrder.PutUint16(v[0:2], version)
	byteOrder.PutUint16(v[2:4], areaHeaderFormatVersion)
	return v
}

func decodeAreaHeaderValue(v []byte) (version uint16) {
	return byteOrder.Uint16(v[0:2])
}

func (m *Manager) writeAreaHeader(base uint32, version uint16) error {
	value := encodeAreaHeaderValue(version)
	if _, err := record.Write(m.dev, m.burst, base, areaHeaderKey, value, false, m.programSize); err != nil {
		return fmt.Errorf("area: writing area header: %w", err)
	}
	return nil
}

type halfStatus struct {
	valid   bool
	version uint16
}

// probeHalf reads base's area-header record and classifies the half as
// valid{version} or invalid. Any error besides
// ErasedData/InvalidData/ItemNotFound aborts init.
func (m *Manager) probeHalf(base uint32) (halfStatus, error) {
	raw := make([]byte, 4)
	_, err := record.Read(m.dev, m.burst, base, m.keyBuf, record.ReadOptions{
		ValidateKey: areaHeaderKey,
		Data:        raw,
		MaxKeySize:  m.maxKeySize,
	})
	switch {
	case err == nil:
		return halfStatus{valid: true, version: decodeAreaHeaderValue(raw)}, nil
	case err == errs.ErasedData, err == errs.InvalidData, err == errs.ItemNotFound:
		return halfStatus{}, nil
	default:
		return halfStatus{}, err
	}
}

// selectActiveArea runs the init-time identification and selection of
// which half is active. It returns whether the chosen area's log still
// needs replaying (false only for the fresh-format both-invalid path,
// which starts with a known-empty log).
func (m *Manager) selectActiveArea() (needsReplay bool, err error) {
	a, err := m.probeHalf(m.baseA)
	if err != nil {
		return false, err
	}
	b, err := m.probeHalf(m.baseB)
	if err != nil {
		return false, err
	}

	switch {
	case !a.valid && !b.valid:
		if err := m.dev.Erase(m.baseA, m.areaSize); err != nil {
			return false, fmt.Errorf("area: formatting initial active area: %w", err)
		}
		m.activeBase, m.gcBase = m.baseA, m.baseB
		m.version = 1
		if err := m.writeAreaHeader(m.activeBase, m.version); err != nil {
			return false, err
		}
		m.freeSpaceOffset = m.headerRecordSize()
		m.consumedSize = m.freeSpaceOffset
		return false, nil

	case a.valid && !b.valid:
		m.activeBase, m.gcBase = m.baseA, m.baseB
		m.version = a.version
		return true, nil

	case !a.valid && b.valid:
		m.activeBase, m.gcBase = m.baseB, m.baseA
		m.version = b.version
		return true, nil

	default:
		if a.version == b.version {
			return false, fmt.Errorf("area: both halves report version %d: %w", a.version, errs.InvalidData)
		}
		if versionIsNewer(a.version, b.version) {
			m.activeBase, m.gcBase = m.baseA, m.baseB
			m.version = a.version
		} else {
			m.activeBase, m.gcBase = m.baseB, m.baseA
			m.version = b.version
		}
		return true, nil
	}
}
