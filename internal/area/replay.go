package area

import (
	"fmt"

	"github.com/Priyanshu23/flashkv/internal/errs"
	"github.com/Priyanshu23/flashkv/internal/index"
	"github.com/Priyanshu23/flashkv/internal/record"
)

// replay walks the active area from just past its header record,
// rebuilding the RAM index and consumed-size counter.
func (m *Manager) replay() error {
	offset := m.headerRecordSize()
	m.consumedSize = offset

	for {
		full, err := record.Read(m.dev, m.burst, m.activeBase+offset, m.keyBuf, record.ReadOptions{MaxKeySize: m.maxKeySize})
		if err == errs.ErasedData {
			m.freeSpaceOffset = offset
			return nil
		}
		if err == errs.InvalidData {
			m.logger.Warn("flashkv: corrupt record during replay, recovering via gc", "offset", offset)
			return m.runGC(nil)
		}
		if err != nil {
			return fmt.Errorf("area: replay: %w", err)
		}

		header := full.Header
		recordSize := record.Size(header.KeySize, header.DataSize, m.programSize)
		key := append([]byte(nil), m.keyBuf[:header.KeySize]...)
		tombstone := header.IsTombstone()

		pos, oldOffset, found, verr := m.index.Find(key, func(o uint32) (bool, error) { return m.verifyKeyAt(key, o) })
		if verr != nil {
			return verr
		}

		var oldSize uint32
		if found {
			oldHeader, perr := record.PeekHeader(m.dev, m.activeBase+oldOffset, m.maxKeySize)
			if perr != nil {
				return fmt.Errorf("area: replay: re-reading superseded record: %w", perr)
			}
			oldSize = record.Size(oldHeader.KeySize, oldHeader.DataSize, m.programSize)
		}

		switch {
		case tombstone && !found:
			// no-op: deleting a key that was never added within this log

		case tombstone && found:
			if err := m.index.Apply(index.OpDelete, pos, index.Entry{}); err != nil {
				return err
			}
			m.consumedSize -= oldSize

		case !tombstone && found:
			if err := m.index.Apply(index.OpUpdate, pos, index.Entry{Hash: index.Hash(key), Offset: offset}); err != nil {
				return err
			}
			m.index.NoteKeyPresent(key)
			m.consumedSize = m.consumedSize - oldSize + recordSize

		default: // !tombstone && !found
			if err := m.index.Apply(index.OpAdd, pos, index.Entry{Hash: index.Hash(key), Offset: offset}); err != nil {
				return err
			}
			m.index.NoteKeyPresent(key)
			m.consumedSize += recordSize
		}

		offset += recordSize
	}
}
