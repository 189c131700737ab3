package ioburst

import (
	"bytes"
	"testing"

	"github.com/Priyanshu23/flashkv/internal/blockdevice/simulator"
	"github.com/Priyanshu23/flashkv/internal/crc16"
)

func TestBufferSize(t *testing.T) {
	cases := []struct {
		program, read, want uint32
	}{
		{16, 16, 128},
		{256, 16, 256},
		{16, 256, 256},
		{1, 1, 128},
		{200, 50, 200}, // max(200,50) is already at least 128 and a multiple of 200
	}
	for _, c := range cases {
		if got := BufferSize(c.program, c.read); got != c.want {
			t.Errorf("BufferSize(%d,%d) = %d, want %d", c.program, c.read, got, c.want)
		}
	}
}

func TestAppendSpansMultiplePagesAndFlushesPartial(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)

	buf := make([]byte, BufferSize(16, 16))
	b := New(buf, 16)

	payload := bytes.Repeat([]byte{0xAB}, 40) // spans more than one 16-byte page
	addr, err := b.Append(dev, 0, payload, true)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if addr != 48 { // 40 rounded up to a multiple of 16
		t.Fatalf("final addr = %d, want 48", addr)
	}

	got := make([]byte, 40)
	dev.Read(0, got)
	if !bytes.Equal(got, payload) {
		t.Fatalf("readback = %x, want %x", got, payload)
	}
}

func TestAppendChainedCallsShareBuffering(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)

	buf := make([]byte, BufferSize(16, 16))
	b := New(buf, 16)

	header := []byte{1, 2, 3}
	key := []byte("alpha")
	value := []byte("the-value-bytes")

	addr := uint32(0)
	var err error
	addr, err = b.Append(dev, addr, header, false)
	if err != nil {
		t.Fatal(err)
	}
	addr, err = b.Append(dev, addr, key, false)
	if err != nil {
		t.Fatal(err)
	}
	addr, err = b.Append(dev, addr, value, true)
	if err != nil {
		t.Fatal(err)
	}

	total := len(header) + len(key) + len(value)
	got := make([]byte, total)
	dev.Read(0, got)

	var want bytes.Buffer
	want.Write(header)
	want.Write(key)
	want.Write(value)
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatalf("readback = %x, want %x", got, want.Bytes())
	}
}

func TestStreamReadFeedsCRCAndCopiesOut(t *testing.T) {
	dev := simulator.New(4096, 8, 8, 4096)
	dev.Erase(0, 4096)

	payload := []byte("0123456789abcdef0123") // 20 bytes, read back through one 128-byte buffer chunk
	buf := make([]byte, BufferSize(8, 8))
	b := New(buf, 8)
	if _, err := b.Append(dev, 0, payload, true); err != nil {
		t.Fatal(err)
	}

	out := make([]byte, len(payload))
	res, err := b.StreamRead(dev, 0, uint32(len(payload)), crc16.Init, nil, out)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mismatch {
		t.Fatal("unexpected mismatch with nil compare")
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("StreamRead out = %q, want %q", out, payload)
	}
	if want := crc16.Checksum(payload); res.CRC != want {
		t.Fatalf("StreamRead crc = %#04x, want %#04x", res.CRC, want)
	}
}

func TestStreamReadDetectsMismatch(t *testing.T) {
	dev := simulator.New(4096, 8, 8, 4096)
	dev.Erase(0, 4096)

	payload := []byte("same-prefix-then-DIFF")
	buf := make([]byte, BufferSize(8, 8))
	b := New(buf, 8)
	b.Append(dev, 0, payload, true)

	compare := []byte("same-prefix-then-XXXX")
	res, err := b.StreamRead(dev, 0, uint32(len(payload)), crc16.Init, compare, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Mismatch {
		t.Fatal("expected mismatch")
	}
}
