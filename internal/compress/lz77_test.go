package compress

import "testing"

// TestLZ77RoundTrip confirms a literal-only stream (every mask bit clear)
// decodes back to itself; back-reference runs are covered by
// TestLZ77BackReference below.
func TestLZ77RoundTrip(t *testing.T) {
	want := []byte("hello")
	// One mask byte (all literal bits clear) followed by the literal bytes.
	src := append([]byte{0x00}, want...)

	if n := LZ77Size(src); n != len(want) {
		t.Fatalf("LZ77Size = %d, want %d", n, len(want))
	}
	dst := make([]byte, LZ77Size(src))
	got := LZ77Decode(src, dst)
	if string(got) != string(want) {
		t.Fatalf("LZ77Decode = %q, want %q", got, want)
	}
}

// TestLZ77BackReference checks a single back-reference code expands to a
// repeated run of the preceding literal, covering the overlap case where
// source and destination windows alias (offset 0 repeats the last byte).
func TestLZ77BackReference(t *testing.T) {
	// mask bit0 clear (literal 'A'), bit1 set (back-reference).
	// Code word: length field in top nibble of the high byte, offset in
	// the low 12 bits. length = 3 + (code>>12); offset = code & 0x0FFF.
	// offset=0, length=3+2=5 copies the previous byte five times.
	code := uint16(2)<<12 | 0x0000
	src := []byte{0x02, 'A', byte(code), byte(code >> 8)}

	size := LZ77Size(src)
	if size != 1+5 {
		t.Fatalf("LZ77Size = %d, want 6", size)
	}
	dst := make([]byte, size)
	got := LZ77Decode(src, dst)
	want := "AAAAAA"
	if string(got) != want {
		t.Fatalf("LZ77Decode = %q, want %q", got, want)
	}
}
