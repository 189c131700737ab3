package fileblockdevice

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestOpenCreatesFullyErasedRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")

	d, err := Open(path, 256, 4, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	buf := make([]byte, 256)
	if err := d.Read(0, buf); err != nil {
		t.Fatal(err)
	}
	for i, b := range buf {
		if b != 0xFF {
			t.Fatalf("byte %d = %#x, want 0xFF (erased)", i, b)
		}
	}
}

func TestProgramReadErase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	d, err := Open(path, 256, 4, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	data := []byte{1, 2, 3, 4}
	if err := d.Program(64, data); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 4)
	if err := d.Read(64, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatalf("Read after Program = %v, want %v", buf, data)
	}

	if err := d.Erase(64, 64); err != nil {
		t.Fatal(err)
	}
	if err := d.Read(64, buf); err != nil {
		t.Fatal(err)
	}
	for i, b := range buf {
		if b != 0xFF {
			t.Fatalf("byte %d after erase = %#x, want 0xFF", i, b)
		}
	}
}

func TestReopenReusesSidecarGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	d1, err := Open(path, 256, 4, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	if err := d1.Program(0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	d1.Close()

	d2, err := Open(path, 256, 4, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	defer d2.Close()

	buf := make([]byte, 4)
	if err := d2.Read(0, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4}) {
		t.Fatalf("reopened region lost data: %v", buf)
	}
}

func TestReopenWithMismatchedGeometryFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "region.bin")
	d1, err := Open(path, 256, 4, 4, 64)
	if err != nil {
		t.Fatal(err)
	}
	d1.Close()

	if _, err := Open(path, 512, 4, 4, 64); err == nil {
		t.Fatal("expected geometry mismatch to fail Open")
	}
}
