package persist

import (
	"bytes"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.WriteMagic64(MagicTop)
	w.WriteUint8(7)
	w.WriteBool(true)
	w.WriteUint16(1234)
	w.WriteUint32(0xdeadbeef)
	w.WriteUint64(0x0102030405060708)
	w.WriteInt64(-42)
	w.WriteSymbol("elem_a")
	w.WriteVec64([]int64{1, 2, 3})
	w.WriteRing32(4, 1, 3, []uint32{10, 20, 30, 40})

	if err := w.Err(); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewReader(&buf)
	r.ReadMagic64(MagicTop)
	if got := r.ReadUint8(); got != 7 {
		t.Errorf("ReadUint8 = %d, want 7", got)
	}
	if got := r.ReadBool(); got != true {
		t.Errorf("ReadBool = %v, want true", got)
	}
	if got := r.ReadUint16(); got != 1234 {
		t.Errorf("ReadUint16 = %d, want 1234", got)
	}
	if got := r.ReadUint32(); got != 0xdeadbeef {
		t.Errorf("ReadUint32 = %#x, want 0xdeadbeef", got)
	}
	if got := r.ReadUint64(); got != 0x0102030405060708 {
		t.Errorf("ReadUint64 = %#x, want 0x0102030405060708", got)
	}
	if got := r.ReadInt64(); got != -42 {
		t.Errorf("ReadInt64 = %d, want -42", got)
	}
	if got := r.ReadSymbol(); got != "elem_a" {
		t.Errorf("ReadSymbol = %q, want elem_a", got)
	}
	if got := r.ReadVec64(); !equalInt64(got, []int64{1, 2, 3}) {
		t.Errorf("ReadVec64 = %v, want [1 2 3]", got)
	}
	cap, head, tail, vals := r.ReadRing32()
	if cap != 4 || head != 1 || tail != 3 {
		t.Errorf("ReadRing32 cursors = %d,%d,%d, want 4,1,3", cap, head, tail)
	}
	if !equalUint32(vals, []uint32{10, 20, 30, 40}) {
		t.Errorf("ReadRing32 vals = %v, want [10 20 30 40]", vals)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestMagic64RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteMagic64(MagicTop)
	w.WriteMagic64(MagicSeal)

	r := NewReader(&buf)
	r.ReadMagic64(MagicTop)
	r.ReadMagic64(MagicSeal)
	if err := r.Err(); err != nil {
		t.Fatalf("round trip: %v", err)
	}
}

func TestReadMagic64MismatchAborts(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteMagic64(MagicSeal)

	r := NewReader(&buf)
	r.ReadMagic64(MagicTop)
	if r.Err() == nil {
		t.Fatal("expected magic mismatch error, got nil")
	}
}

func TestReadMagicMismatchAborts(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteMagic(MagicSymbol)

	r := NewReader(&buf)
	r.ReadMagic(MagicVec64)
	if r.Err() == nil {
		t.Fatal("expected magic mismatch error, got nil")
	}
}

func TestWriteSymbolTooLongFails(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.WriteSymbol(string(make([]byte, MaxSymbolLen+1)))
	if w.Err() == nil {
		t.Fatal("expected error for oversized symbol, got nil")
	}
}

func equalInt64(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
