package flashkv

// Init validates region alignment, allocates the store's buffers, scans
// the medium, and builds the RAM index. start and length address the
// caller-owned region within bd; length must be an even multiple of the
// medium's erase size.
func (s *Store) Init(start, length uint32) error {
	return s.withLock(func() error {
		return s.mgr.Init(start, length)
	})
}

// Write stores value under key, replacing any existing value. key must
// be 1 to MAX_KEY_SIZE-1 bytes; value may be empty.
func (s *Store) Write(key, value []byte) error {
	if !s.validKey(key) {
		return ErrBadParam
	}
	return s.withLock(func() error {
		return s.mgr.Write(key, value)
	})
}

// Read looks up key and, if data is non-nil, copies its value into
// data[:n]. If data is too short to hold the value, Read returns the
// required length as n alongside ErrInvalidData so the caller can retry
// with a larger buffer. Passing data=nil probes existence and size
// without copying; Has is built on this same probe form. Read returns
// ErrItemNotFound when key has no live record.
func (s *Store) Read(key []byte, data []byte) (n int, err error) {
	if !s.validKey(key) {
		return 0, ErrBadParam
	}
	err = s.withLock(func() error {
		size, rerr := s.mgr.Read(key, data)
		n = int(size)
		return rerr
	})
	return n, err
}

// Has reports whether key has a live record, without copying its value.
func (s *Store) Has(key []byte) (bool, error) {
	_, err := s.Read(key, nil)
	switch err {
	case nil:
		return true, nil
	case ErrItemNotFound:
		return false, nil
	default:
		return false, err
	}
}

// Delete removes key's record. Deleting an absent key succeeds as a
// no-op.
func (s *Store) Delete(key []byte) error {
	if !s.validKey(key) {
		return ErrBadParam
	}
	return s.withLock(func() error {
		return s.mgr.Delete(key)
	})
}

// Reset erases all logical content; the next write begins in a fresh
// area.
func (s *Store) Reset() error {
	return s.withLock(func() error {
		return s.mgr.Reset()
	})
}

// Size returns the active area's consumed-size counter.
func (s *Store) Size() (uint32, error) {
	var n uint32
	err := s.withLock(func() error {
		n = s.mgr.Size()
		return nil
	})
	return n, err
}

// Remaining returns area_size - consumed_size.
func (s *Store) Remaining() (uint32, error) {
	var n uint32
	err := s.withLock(func() error {
		n = s.mgr.Remaining()
		return nil
	})
	return n, err
}

// Deinit releases the store; it is idempotent and, unlike every other
// operation, waits indefinitely for the lock.
func (s *Store) Deinit() error {
	if err := s.lock.Acquire(0); err != nil {
		return err
	}
	defer s.lock.Release()
	s.closed = true
	s.mgr = nil
	return nil
}
