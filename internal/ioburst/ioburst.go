// Package ioburst reconciles arbitrary-sized key+data transfers with the
// medium's program-size/read-size granularity using one shared transaction
// buffer. It is the only place flashkv calls blockdevice.Device.Program
// directly for record payloads, and the only place it streams a read
// through crc16.
package ioburst

import (
	"bytes"

	"github.com/Priyanshu23/flashkv/internal/blockdevice"
	"github.com/Priyanshu23/flashkv/internal/crc16"
)

// BufferSize computes the transaction buffer size required for a medium of
// the given read/program sizes: max(programSize, readSize), at least 128
// bytes, aligned up to programSize.
func BufferSize(programSize, readSize uint32) uint32 {
	b := programSize
	if readSize > b {
		b = readSize
	}
	if b < 128 {
		b = 128
	}
	return blockdevice.AlignUp(b, programSize)
}

// Burst is the shared transaction buffer. It is not safe for concurrent
// use; flashkv serializes all access under its single lock.
type Burst struct {
	buf         []byte
	fill        int
	programSize uint32
}

// New wraps buf (whose length must be BufferSize(programSize, readSize) and
// a multiple of programSize) as a Burst.
func New(buf []byte, programSize uint32) *Burst {
	return &Burst{buf: buf, programSize: programSize}
}

// Append buffers data for writing at the logical position addr (the
// position of the next byte not yet committed to dev, which the caller
// threads through successive Append calls for one record). When the
// buffer fills it is programmed and drained. When final is true, any
// partial fill left over is padded up to a program-size boundary (with
// whatever bytes remain in the buffer from prior use, since that padding
// is never covered by a CRC) and programmed.
//
// Append returns the address past the last byte actually committed to
// dev during this call; after a final flush that includes the padding up
// to the program-size boundary. Callers take the end of a record from its
// aligned size (record.Size), not from this return value.
func (b *Burst) Append(dev blockdevice.Device, addr uint32, data []byte, final bool) (uint32, error) {
	for len(data) > 0 {
		room := len(b.buf) - b.fill
		n := room
		if n > len(data) {
			n = len(data)
		}
		copy(b.buf[b.fill:b.fill+n], data[:n])
		b.fill += n
		data = data[n:]

		if b.fill == len(b.buf) {
			if err := dev.Program(addr, b.buf); err != nil {
				return addr, err
			}
			addr += uint32(len(b.buf))
			b.fill = 0
		}
	}

	if final && b.fill > 0 {
		padded := blockdevice.AlignUp(uint32(b.fill), b.programSize)
		if err := dev.Program(addr, b.buf[:padded]); err != nil {
			return addr, err
		}
		addr += padded
		b.fill = 0
	}

	return addr, nil
}

// StreamResult is the outcome of a StreamRead call.
type StreamResult struct {
	NextAddr uint32
	CRC      uint16
	Mismatch bool
}

// StreamRead reads n bytes starting at addr through the shared buffer,
// folding each chunk into crc as it arrives. If compare is non-nil, each
// chunk is byte-compared against the corresponding slice of compare and
// the read stops early (Mismatch=true) at the first difference: this is
// how the record codec disambiguates hash collisions one buffer's worth
// of key bytes at a time without holding the whole key on the medium side
// in memory twice. If out is non-nil (and long enough), each chunk is also
// copied into it.
func (b *Burst) StreamRead(dev blockdevice.Device, addr uint32, n uint32, crc uint16, compare []byte, out []byte) (StreamResult, error) {
	chunkCap := uint32(len(b.buf))
	var consumed uint32

	for consumed < n {
		remaining := n - consumed
		sz := chunkCap
		if sz > remaining {
			sz = remaining
		}
		chunk := b.buf[:sz]
		if err := dev.Read(addr, chunk); err != nil {
			return StreamResult{NextAddr: addr, CRC: crc}, err
		}
		crc = crc16.Update(crc, chunk)

		if compare != nil {
			want := compare[consumed : consumed+sz]
			if !bytes.Equal(chunk, want) {
				return StreamResult{NextAddr: addr + sz, CRC: crc, Mismatch: true}, nil
			}
		}
		if out != nil {
			copy(out[consumed:consumed+sz], chunk)
		}

		addr += sz
		consumed += sz
	}

	return StreamResult{NextAddr: addr, CRC: crc}, nil
}

// Copy moves n bytes from srcAddr to dstAddr through the shared buffer
// with no CRC recomputation: the garbage collector's plain byte move of
// an already-validated record, where the record bytes carried over are
// bit-identical and the CRC covering them doesn't need to change. The
// final chunk is always flushed, since record sizes are already
// program-size aligned and the caller never has a reason to leave a
// partial buffer pending after a Copy.
func (b *Burst) Copy(dev blockdevice.Device, srcAddr, dstAddr uint32, n uint32) (uint32, error) {
	chunkCap := uint32(len(b.buf))
	temp := make([]byte, chunkCap)
	var consumed uint32

	for consumed < n {
		remaining := n - consumed
		sz := chunkCap
		if sz > remaining {
			sz = remaining
		}
		chunk := temp[:sz]
		if err := dev.Read(srcAddr+consumed, chunk); err != nil {
			return dstAddr, err
		}

		isLast := consumed+sz >= n
		newDst, err := b.Append(dev, dstAddr, chunk, isLast)
		if err != nil {
			return newDst, err
		}
		dstAddr = newDst
		consumed += sz
	}

	return dstAddr, nil
}
