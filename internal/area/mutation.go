package area

import (
	"github.com/Priyanshu23/flashkv/internal/errs"
	"github.com/Priyanshu23/flashkv/internal/index"
	"github.com/Priyanshu23/flashkv/internal/record"
)

// mutate is the shared write/delete pipeline. tombstone selects delete;
// value is ignored (and should be nil) when tombstone is true.
func (m *Manager) mutate(key, value []byte, tombstone bool) error {
	pos, oldOffset, found, err := m.index.Find(key, func(o uint32) (bool, error) { return m.verifyKeyAt(key, o) })
	if err != nil {
		return err
	}

	if tombstone && !found {
		return nil
	}

	op := index.OpAdd
	switch {
	case tombstone:
		op = index.OpDelete
	case found:
		op = index.OpUpdate
	}

	if op == index.OpAdd && m.index.Full() {
		if err := m.index.Grow(); err != nil {
			return err
		}
	}

	newRecordSize := record.Size(uint16(len(key)), uint32(len(value)), m.programSize)
	var oldRecordSize uint32
	if op == index.OpUpdate || op == index.OpDelete {
		oldHeader, err := record.PeekHeader(m.dev, m.activeBase+oldOffset, m.maxKeySize)
		if err != nil {
			return err
		}
		oldRecordSize = record.Size(oldHeader.KeySize, oldHeader.DataSize, m.programSize)
	}

	// Logical capacity check (Add/Update only).
	if op == index.OpAdd || op == index.OpUpdate {
		if m.consumedSize-oldRecordSize+newRecordSize > m.areaSize {
			return errs.StorageFull
		}
	}

	// Physical capacity check: does the record fit before the area's end.
	if m.freeSpaceOffset+newRecordSize > m.areaSize {
		var f *fold
		if op == index.OpUpdate || op == index.OpDelete {
			f = &fold{op: op, pos: pos, key: key, val: value, oldSize: oldRecordSize, newSize: newRecordSize}
		}
		if err := m.runGC(f); err != nil {
			return err
		}
		if op == index.OpUpdate || op == index.OpDelete {
			return nil // GC already applied the folded mutation.
		}

		// Add: compaction may have changed every offset; re-find before
		// appending. If there still isn't room even in a freshly
		// compacted area, the area is genuinely full of live data.
		if m.freeSpaceOffset+newRecordSize > m.areaSize {
			return errs.StorageFull
		}
		pos, _, _, err = m.index.Find(key, func(o uint32) (bool, error) { return m.verifyKeyAt(key, o) })
		if err != nil {
			return err
		}
	}

	addr := m.activeBase + m.freeSpaceOffset
	newOffset := m.freeSpaceOffset
	size, err := record.Write(m.dev, m.burst, addr, key, value, tombstone, m.programSize)
	if err != nil {
		return err
	}

	entry := index.Entry{Hash: index.Hash(key), Offset: newOffset}
	switch op {
	case index.OpAdd:
		if err := m.index.Apply(index.OpAdd, pos, entry); err != nil {
			return err
		}
		m.index.NoteKeyPresent(key)
		m.consumedSize += size
	case index.OpUpdate:
		if err := m.index.Apply(index.OpUpdate, pos, entry); err != nil {
			return err
		}
		m.index.NoteKeyPresent(key)
		m.consumedSize = m.consumedSize - oldRecordSize + size
	case index.OpDelete:
		if err := m.index.Apply(index.OpDelete, pos, index.Entry{}); err != nil {
			return err
		}
		m.consumedSize -= oldRecordSize
	}
	m.freeSpaceOffset += size

	return nil
}
