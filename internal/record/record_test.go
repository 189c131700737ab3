package record

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Priyanshu23/flashkv/internal/blockdevice/simulator"
	"github.com/Priyanshu23/flashkv/internal/errs"
	"github.com/Priyanshu23/flashkv/internal/ioburst"
)

func newBurst(dev *simulator.Device, programSize, readSize uint32) *ioburst.Burst {
	buf := make([]byte, ioburst.BufferSize(programSize, readSize))
	return ioburst.New(buf, programSize)
}

func TestWriteReadRoundTrip(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)
	burst := newBurst(dev, 16, 16)

	key := []byte("alpha")
	value := []byte{0x01, 0x02, 0x03}

	size, err := Write(dev, burst, 0, key, value, false, 16)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if size != Size(uint16(len(key)), uint32(len(value)), 16) {
		t.Fatalf("Write returned size %d, want %d", size, Size(uint16(len(key)), uint32(len(value)), 16))
	}

	keyBuf := make([]byte, DefaultMaxKeySize+1)
	dataOut := make([]byte, 8)
	res, err := Read(dev, burst, 0, keyBuf, ReadOptions{ValidateKey: key, Data: dataOut})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Header.DataSize != uint32(len(value)) {
		t.Fatalf("DataSize = %d, want %d", res.Header.DataSize, len(value))
	}
	if !bytes.Equal(dataOut[:res.Header.DataSize], value) {
		t.Fatalf("value = %x, want %x", dataOut[:res.Header.DataSize], value)
	}
}

func TestReadDetectsCorruption(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)
	burst := newBurst(dev, 16, 16)

	if _, err := Write(dev, burst, 0, []byte("k"), []byte("value-bytes"), false, 16); err != nil {
		t.Fatal(err)
	}

	dev.Corrupt(uint32(HeaderSize) + 1 + 4) // flip a bit inside the value region

	keyBuf := make([]byte, DefaultMaxKeySize+1)
	_, err := Read(dev, burst, 0, keyBuf, ReadOptions{})
	if !errors.Is(err, errs.InvalidData) {
		t.Fatalf("Read after corruption = %v, want InvalidData", err)
	}
}

func TestReadErasedSpace(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)
	burst := newBurst(dev, 16, 16)

	keyBuf := make([]byte, DefaultMaxKeySize+1)
	_, err := Read(dev, burst, 0, keyBuf, ReadOptions{})
	if !errors.Is(err, errs.ErasedData) {
		t.Fatalf("Read of erased space = %v, want ErasedData", err)
	}
}

func TestReadKeyMismatchIsItemNotFound(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)
	burst := newBurst(dev, 16, 16)

	if _, err := Write(dev, burst, 0, []byte("the-real-key"), []byte("v"), false, 16); err != nil {
		t.Fatal(err)
	}

	keyBuf := make([]byte, DefaultMaxKeySize+1)
	_, err := Read(dev, burst, 0, keyBuf, ReadOptions{ValidateKey: []byte("a-different-key")})
	if !errors.Is(err, errs.ItemNotFound) {
		t.Fatalf("Read with wrong key = %v, want ItemNotFound", err)
	}
}

func TestReadShortBufferReportsRequiredSize(t *testing.T) {
	dev := simulator.New(4096, 16, 16, 4096)
	dev.Erase(0, 4096)
	burst := newBurst(dev, 16, 16)

	value := bytes.Repeat([]byte{0x7}, 20)
	if _, err := Write(dev, burst, 0, []byte("k"), value, false, 16); err != nil {
		t.Fatal(err)
	}

	keyBuf := make([]byte, DefaultMaxKeySize+1)
	small := make([]byte, 4)
	res, err := Read(dev, burst, 0, keyBuf, ReadOptions{Data: small})
	if !errors.Is(err, errs.InvalidData) {
		t.Fatalf("Read with short buffer = %v, want InvalidData", err)
	}
	if res.RequiredDataSize != uint32(len(value)) {
		t.Fatalf("RequiredDataSize = %d, want %d", res.RequiredDataSize, len(value))
	}
}

func TestSizeAlignsUpToProgramSize(t *testing.T) {
	got := Size(5, 3, 16)
	if got%16 != 0 {
		t.Fatalf("Size() = %d is not program-size aligned", got)
	}
	if got < uint32(HeaderSize)+5+3 {
		t.Fatalf("Size() = %d is smaller than the unaligned total", got)
	}
}
