package compress

import "testing"

func twoPhraseTable() *PhraseTable {
	// Two phrases: "foo" (index 0) and "bar" (index 1).
	return &PhraseTable{
		Offsets: []int{0, 3, 6},
		Buffer:  []byte("foobar"),
	}
}

// TestPhraseV2InBoundsSubstitution checks that an even code (no trailing
// space) and an odd code (trailing space appended) both substitute the
// referenced phrase correctly.
func TestPhraseV2InBoundsSubstitution(t *testing.T) {
	t2 := twoPhraseTable()
	// idx = (code-0x100)/2. For idx=0 (phrase "foo"), code=0x100 (even,
	// no space). For idx=1 (phrase "bar"), code=0x103 (odd, trailing space).
	src := []byte{
		byte(0x100 >> 8), byte(0x100 & 0xFF), // -> "foo"
		byte(0x103 >> 8), byte(0x103 & 0xFF), // -> "bar "
		'!',
	}
	got := UncompressPhrasesV2(t2, src)
	want := "foobar !"
	if string(got) != want {
		t.Fatalf("UncompressPhrasesV2 = %q, want %q", got, want)
	}
}

// TestPhraseV2OutOfBoundsIndexIsSkipped confirms a code referencing a
// phrase index past the end of the table is dropped rather than panicking
// or corrupting the rest of the decode.
func TestPhraseV2OutOfBoundsIndexIsSkipped(t *testing.T) {
	t2 := twoPhraseTable()
	// idx = (code-0x100)/2 = 5, well past the 2-phrase table.
	badCode := 0x100 + 5*2
	src := []byte{byte(badCode >> 8), byte(badCode), 'x'}
	got := UncompressPhrasesV2(t2, src)
	if string(got) != "x" {
		t.Fatalf("UncompressPhrasesV2 = %q, want %q (bad phrase dropped)", got, "x")
	}
}

// TestPhraseV4LowBitDispatch exercises the s&1==0 branch: a direct
// phrase-index reference with no following byte consumed.
func TestPhraseV4LowBitDispatch(t *testing.T) {
	t4 := twoPhraseTable()
	s := byte(0) // idx = 0/2 = 0 -> "foo"
	got := UncompressPhrasesV4(t4, []byte{s})
	if string(got) != "foo" {
		t.Fatalf("UncompressPhrasesV4(s&1==0) = %q, want %q", got, "foo")
	}
}

// TestPhraseV4RawCopyDispatch exercises the s&7==3 branch: a literal byte
// run of (s/8)+1 bytes copied straight from the source.
func TestPhraseV4RawCopyDispatch(t *testing.T) {
	t4 := twoPhraseTable()
	// s&7==3 with s/8==1 copies 2 raw bytes. s=0x0B satisfies s&7==3
	// (0x0B = 0b1011) and s/8==1.
	s := byte(0x0B)
	src := append([]byte{s}, []byte("XY")...)
	got := UncompressPhrasesV4(t4, src)
	if string(got) != "XY" {
		t.Fatalf("UncompressPhrasesV4(s&7==3) = %q, want %q", got, "XY")
	}
}

// TestPhraseV4FillRunDispatch exercises the default branch: a run of
// (s/16)+1 fill bytes, space when the low nibble is 0x07, NUL otherwise.
func TestPhraseV4FillRunDispatch(t *testing.T) {
	t4 := twoPhraseTable()
	// s&1!=0, s&7!=3, low nibble 0x07 -> space fill. s/16+1 = run length.
	// s = 0x17: binary 00010111 -> s&1=1, s&3=3 (not 1), s&7=7(not3),
	// low nibble 0x07 -> space; run = 0x17/16+1 = 1+1 = 2.
	s := byte(0x17)
	got := UncompressPhrasesV4(t4, []byte{s})
	if string(got) != "  " {
		t.Fatalf("UncompressPhrasesV4(fill) = %q, want 2 spaces", got)
	}
}
