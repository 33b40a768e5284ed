package rtf

import "testing"

// TestEscapeTextControlCharacters checks that RTF's three control
// characters are backslash-escaped and left-over bytes pass through
// unchanged.
func TestEscapeTextControlCharacters(t *testing.T) {
	in := `a{b}c\d`
	want := `a\{b\}c\\d`
	if got := EscapeText(in); got != want {
		t.Fatalf("EscapeText(%q) = %q, want %q", in, got, want)
	}
}

// TestEscapeTextHighBytes checks that bytes >= 0x80 become \'xx hex
// escapes, needed for any non-ASCII codepage text in a topic block.
func TestEscapeTextHighBytes(t *testing.T) {
	in := string([]byte{0x41, 0xE9, 0x42}) // 'A', e-acute (cp1252), 'B'
	want := `A\'e9B`
	if got := EscapeText(in); got != want {
		t.Fatalf("EscapeText(%q) = %q, want %q", in, got, want)
	}
}

// TestEscapeTextPlainASCIIIsUnchanged is a baseline: text with nothing to
// escape round-trips identically.
func TestEscapeTextPlainASCIIIsUnchanged(t *testing.T) {
	in := "plain text 123"
	if got := EscapeText(in); got != in {
		t.Fatalf("EscapeText(%q) = %q, want unchanged", in, got)
	}
}
