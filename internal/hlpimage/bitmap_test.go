package hlpimage

import (
	"encoding/binary"
	"strings"
	"testing"
)

// fetch2 encodes v using the WinHelp 2-byte fetch_ulong form (raw = v*2,
// low bit of the first byte clear), for the decodeBitmap fields read via
// cur.FetchULong().
func fetch2(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v*2)
	return b
}

// fetchU2 encodes v using the WinHelp 2-byte fetch_ushort form (raw =
// v*2+1, low bit of the first byte set), for the decodeBitmap fields read
// via cur.FetchUShort() (planes, bitCount). FetchUShort's 1-byte form
// would otherwise desync every offset after it.
func fetchU2(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v*2+1)
	return b
}

func le32b(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// buildDIBWithTransparency assembles a minimal type-6 (DIB) picture record
// with ClrImportant==1, the on-disk signal that the last palette entry is
// the transparent color.
func buildDIBWithTransparency() []byte {
	var beg []byte
	beg = append(beg, 6, 0)           // typ, pack
	beg = append(beg, fetch2(0)...)   // xPPM
	beg = append(beg, fetch2(0)...)   // yPPM
	beg = append(beg, fetchU2(1)...)  // planes
	beg = append(beg, fetchU2(8)...)  // bitCount
	beg = append(beg, fetch2(4)...)   // width
	beg = append(beg, fetch2(4)...)   // height
	beg = append(beg, fetch2(2)...)   // clrUsed
	beg = append(beg, fetch2(1)...)   // clrImportant
	beg = append(beg, fetch2(16)...)  // csz
	beg = append(beg, fetch2(0)...)   // hsSize
	beg = append(beg, le32b(38)...)   // off
	beg = append(beg, le32b(0)...)    // hsOffset
	beg = append(beg, 10, 20, 30, 0)  // palette[0]
	beg = append(beg, 40, 50, 60, 0)  // palette[1]
	beg = append(beg, make([]byte, 16)...) // pict data
	return beg
}

// TestBitmapTransparencyAnnotation checks that a DIB whose ClrImportant
// field is exactly 1 is surfaced as a structured transparency annotation
// (palette index = last color) rather than composited pixels.
func TestBitmapTransparencyAnnotation(t *testing.T) {
	beg := buildDIBWithTransparency()
	res, err := decodeBitmap(nil, beg, 6, 0)
	if err != nil {
		t.Fatalf("decodeBitmap: %v", err)
	}
	if res.Bitmap == nil || !res.Bitmap.Transparent {
		t.Fatalf("expected Bitmap.Transparent = true, got %+v", res.Bitmap)
	}
	if res.Bitmap.TransparentIndex != 1 {
		t.Fatalf("TransparentIndex = %d, want 1 (nc-1 with nc=2)", res.Bitmap.TransparentIndex)
	}
	if !strings.Contains(string(res.RTF), "transparent via palette index 1") {
		t.Fatalf("RTF = %q, want transparency annotation", res.RTF)
	}
}

// TestBitmapNoTransparencyWhenClrImportantNotOne confirms the annotation
// only fires for ClrImportant==1, not for other values of the field.
func TestBitmapNoTransparencyWhenClrImportantNotOne(t *testing.T) {
	beg := buildDIBWithTransparency()
	// clrImportant lives at byte offset 16-17 in the layout above.
	copy(beg[16:18], fetch2(0))
	res, err := decodeBitmap(nil, beg, 6, 0)
	if err != nil {
		t.Fatalf("decodeBitmap: %v", err)
	}
	if res.Bitmap.Transparent {
		t.Fatalf("expected no transparency annotation when ClrImportant=0")
	}
}
