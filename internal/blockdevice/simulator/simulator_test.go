package simulator

import (
	"bytes"
	"testing"
)

func TestEraseThenProgramRoundTrip(t *testing.T) {
	d := New(4096, 16, 16, 4096)

	if err := d.Erase(0, 4096); err != nil {
		t.Fatalf("Erase: %v", err)
	}

	data := bytes.Repeat([]byte{0x42}, 16)
	if err := d.Program(0, data); err != nil {
		t.Fatalf("Program: %v", err)
	}

	got := make([]byte, 16)
	if err := d.Read(0, got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Read after Program = %x, want %x", got, data)
	}
}

func TestAssertErasedContractRejectsDoubleProgram(t *testing.T) {
	d := New(4096, 16, 16, 4096)
	d.AssertErasedContract(true)

	data := bytes.Repeat([]byte{0x01}, 16)
	if err := d.Program(0, data); err != nil {
		t.Fatalf("first Program: %v", err)
	}
	if err := d.Program(0, data); err == nil {
		t.Fatal("expected second Program over the same un-erased bytes to fail")
	}
}

func TestTruncateNextProgramModelsPowerLoss(t *testing.T) {
	d := New(4096, 16, 16, 4096)
	d.Erase(0, 4096)
	d.TruncateNextProgram(1)

	data := bytes.Repeat([]byte{0x77}, 16)
	if err := d.Program(0, data); err != nil {
		t.Fatalf("Program: %v", err)
	}

	if err := d.Program(16, data); err == nil {
		t.Fatal("expected every Program after a truncation to fail")
	}

	got := make([]byte, 16)
	d.Read(0, got)
	if bytes.Equal(got, data) {
		t.Fatal("truncated program should not have landed in full")
	}
}

func TestMismatchedSizesAllowedDownToOne(t *testing.T) {
	d := New(8, 1, 1, 1)
	if err := d.Erase(0, 8); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if err := d.Program(3, []byte{0x9}); err != nil {
		t.Fatalf("Program: %v", err)
	}
	got := make([]byte, 1)
	d.Read(3, got)
	if got[0] != 0x9 {
		t.Fatalf("Read = %x, want 09", got)
	}
}
