package area

import (
	"fmt"

	"github.com/Priyanshu23/flashkv/internal/errs"
	"github.com/Priyanshu23/flashkv/internal/index"
	"github.com/Priyanshu23/flashkv/internal/record"
)

// fold describes one mutation the garbage collector folds into a
// compaction pass. A nil *fold means pure compaction, always the case
// for Add: an Add that triggers GC gets no folded record, compaction
// runs alone, and the append is retried afterward.
type fold struct {
	op  index.Op // OpUpdate or OpDelete only
	pos int      // position in the pre-GC index, as returned by Find
	key []byte
	val []byte

	oldSize uint32
	newSize uint32
}

// runGC erases the inactive half, copies every live record across in
// index order (folding one mutation in if asked), commits by writing the
// new area header, then swaps which half is active.
func (m *Manager) runGC(f *fold) error {
	if f != nil && f.op == index.OpUpdate {
		projected := m.consumedSize - f.oldSize + f.newSize
		if projected > m.areaSize {
			return errs.StorageFull
		}
	}

	if err := m.eraseGCArea(); err != nil {
		return err
	}

	entries := m.index.Entries()
	newEntries := make([]index.Entry, 0, len(entries)+1)
	dstOffset := m.headerRecordSize()

	for i, e := range entries {
		if f != nil && f.pos == i && f.op == index.OpDelete {
			continue
		}

		dstAddr := m.gcBase + dstOffset
		var size uint32

		if f != nil && f.pos == i && f.op == index.OpUpdate {
			var err error
			size, err = record.Write(m.dev, m.burst, dstAddr, f.key, f.val, false, m.programSize)
			if err != nil {
				return fmt.Errorf("area: gc: writing folded update: %w", err)
			}
		} else {
			srcAddr := m.activeBase + e.Offset
			header, err := record.PeekHeader(m.dev, srcAddr, m.maxKeySize)
			if err != nil {
				return fmt.Errorf("area: gc: re-reading live record header: %w", err)
			}
			size = record.Size(header.KeySize, header.DataSize, m.programSize)
			if _, err := m.burst.Copy(m.dev, srcAddr, dstAddr, size); err != nil {
				return fmt.Errorf("area: gc: copying record: %w", err)
			}
		}

		newEntries = append(newEntries, index.Entry{Hash: e.Hash, Offset: dstOffset})
		dstOffset += size
	}

	consumed := dstOffset

	newVersion := m.version + 1 // wraps 0xFFFF -> 0 via uint16 arithmetic

	// Commit point: until this write lands, the old active area remains
	// authoritative.
	if err := m.writeAreaHeader(m.gcBase, newVersion); err != nil {
		return fmt.Errorf("area: gc: %w", err)
	}

	reclaimed := m.consumedSize - consumed

	m.index.ReplaceAll(newEntries)
	m.activeBase, m.gcBase = m.gcBase, m.activeBase
	m.version = newVersion
	m.freeSpaceOffset = dstOffset
	m.consumedSize = consumed

	m.logger.Info("flashkv: gc completed", "new_active_base", m.activeBase, "version", m.version, "reclaimed", reclaimed)
	return nil
}

// eraseGCArea erases the inactive half per the medium's atomic-sector
// contract: sectors after the first, then the first, so an interruption
// leaves the old active area's header record (which lives at the first
// sector of the *other* half) untouched either way, and never leaves the
// GC area's own first sector erased while later sectors still hold stale
// data that a half-finished compaction might be mistaken for.
func (m *Manager) eraseGCArea() error {
	sectors := m.areaSize / m.eraseSize
	if sectors > 1 {
		rest := m.eraseSize * (sectors - 1)
		if err := m.dev.Erase(m.gcBase+m.eraseSize, rest); err != nil {
			return fmt.Errorf("area: gc: erasing trailing sectors: %w", err)
		}
	}
	if err := m.dev.Erase(m.gcBase, m.eraseSize); err != nil {
		return fmt.Errorf("area: gc: erasing first sector: %w", err)
	}
	return nil
}
