package hlpbin

import "testing"

// TestFetchUShortFormSelection checks the low-bit convention: a clear low
// bit is the 1-byte form (raw/2), a set low bit is the 2-byte form
// (raw/2), matching FetchULong/FetchLong's own convention in this file.
func TestFetchUShortFormSelection(t *testing.T) {
	// 1-byte form: value 5 encodes as raw=10 (0x0A), low bit clear.
	c := &FetchCursor{Buf: []byte{0x0A}}
	v, err := c.FetchUShort()
	if err != nil {
		t.Fatalf("FetchUShort (1-byte): %v", err)
	}
	if v != 5 || c.Pos != 1 {
		t.Fatalf("FetchUShort (1-byte) = (%d, pos=%d), want (5, pos=1)", v, c.Pos)
	}

	// 2-byte form: value 300 encodes as raw=601 (0x0259), low bit set.
	c2 := &FetchCursor{Buf: []byte{0x59, 0x02}}
	v2, err := c2.FetchUShort()
	if err != nil {
		t.Fatalf("FetchUShort (2-byte): %v", err)
	}
	if v2 != 300 || c2.Pos != 2 {
		t.Fatalf("FetchUShort (2-byte) = (%d, pos=%d), want (300, pos=2)", v2, c2.Pos)
	}
}

// TestFetchShortFormSelection is FetchUShort's signed counterpart: the
// 1-byte form is biased by 0x80, the 2-byte form by 0x8000.
func TestFetchShortFormSelection(t *testing.T) {
	// 1-byte form: value 3 encodes as raw = 3*2+0x80 = 0x86, low bit clear.
	c := &FetchCursor{Buf: []byte{0x86}}
	v, err := c.FetchShort()
	if err != nil {
		t.Fatalf("FetchShort (1-byte): %v", err)
	}
	if v != 3 || c.Pos != 1 {
		t.Fatalf("FetchShort (1-byte) = (%d, pos=%d), want (3, pos=1)", v, c.Pos)
	}

	// 2-byte form: raw 0x87D1 (low byte bit 0 set) decodes to
	// (0x87D1-0x8000)/2 = 1000.
	c2 := &FetchCursor{Buf: []byte{0xD1, 0x87}}
	v2, err := c2.FetchShort()
	if err != nil {
		t.Fatalf("FetchShort (2-byte): %v", err)
	}
	if v2 != 1000 || c2.Pos != 2 {
		t.Fatalf("FetchShort (2-byte) = (%d, pos=%d), want (1000, pos=2)", v2, c2.Pos)
	}
}

// TestFetchULongFormSelection pins down the already-correct Long
// convention as a baseline, so a future edit to FetchUShort/FetchShort
// can't silently re-invert them to match a wrongly "fixed" Long.
func TestFetchULongFormSelection(t *testing.T) {
	// 2-byte form: value 7 encodes as raw=14, low bit clear.
	c := &FetchCursor{Buf: []byte{14, 0}}
	v, err := c.FetchULong()
	if err != nil {
		t.Fatalf("FetchULong (2-byte): %v", err)
	}
	if v != 7 || c.Pos != 2 {
		t.Fatalf("FetchULong (2-byte) = (%d, pos=%d), want (7, pos=2)", v, c.Pos)
	}

	// 4-byte form: value 100000 encodes as raw=200001 (odd), low bit set.
	raw := uint32(200001)
	c2 := &FetchCursor{Buf: []byte{byte(raw), byte(raw >> 8), byte(raw >> 16), byte(raw >> 24)}}
	v2, err := c2.FetchULong()
	if err != nil {
		t.Fatalf("FetchULong (4-byte): %v", err)
	}
	if v2 != 100000 || c2.Pos != 4 {
		t.Fatalf("FetchULong (4-byte) = (%d, pos=%d), want (100000, pos=4)", v2, c2.Pos)
	}
}
