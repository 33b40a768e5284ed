// Package hlpimage decodes the DIB/DDB/WMF graphics embedded in a .HLP
// file's |bmN sub-files (or inline in a topic paragraph), applies the
// configured packing (none, RLE, LZ77, LZ77+RLE), and renders the result
// as an RTF \pict control word with its hotspot table attached.
package hlpimage

import (
	"bytes"
	"fmt"

	"hlpcat/internal/compress"
	"hlpcat/internal/hlperr"
	"hlpcat/internal/hlpfile"
)

// Bitmap is the decoded form of a DIB/DDB picture record: header fields,
// an optional palette, and the raw (unpacked) pixel bytes. Rasterizing
// this into a host bitmap object is a caller concern (see spec
// Out-of-scope); this package's contract ends at a structured image plus
// a transparency annotation.
type Bitmap struct {
	Width, Height int
	Planes        int
	BitCount      int
	ClrUsed       int
	ClrImportant  int
	Palette       []RGB // BGR order on disk, stored here as RGB
	Bits          []byte
	SizeImage     int

	// Transparent is true when ClrImportant selected exactly one
	// palette entry as the transparent color; TransparentIndex names it.
	Transparent      bool
	TransparentIndex int
}

// RGB is one palette entry.
type RGB struct{ R, G, B byte }

// Result is one rendered picture: the RTF control-word blob to splice
// into the page body, and the hotspots that were attached to it.
type Result struct {
	RTF      []byte
	Hotspots []*hlpfile.HotspotLink
	Bitmap   *Bitmap // nil for WMF pictures

	// BMP is a standard Windows BMP encoding of Bitmap (via
	// golang.org/x/image/bmp), for callers that want a portable bitmap
	// rather than the raw RTF \dibitmap0 hex blob. Left nil when the
	// source pixel depth isn't one this package converts (see
	// toStdImage).
	BMP []byte
}

// ByIndex decodes the picture referenced by a format-stream "indirect"
// image opcode: the |bmN sub-file, picture 0 of its (usually singleton)
// offset table.
func ByIndex(f *hlpfile.File, index int) (*Result, error) {
	name := fmt.Sprintf("|bm%d", index)
	start, end, err := f.FindSubFile(name)
	if err != nil {
		return nil, fmt.Errorf("hlpimage: %s: %w", name, err)
	}
	body, bodyEnd := f.SubFileBody(start, end)
	ref := f.Buf[body:bodyEnd]
	return ByAddr(f, ref)
}

// ByAddr decodes a picture given the raw bytes of its |bmN-style
// container: a 16-bit magic, a picture count, and a per-picture u32
// offset table, each entry pointing to a (type, pack, ...) record.
func ByAddr(f *hlpfile.File, ref []byte) (*Result, error) {
	if len(ref) < 6 {
		return nil, fmt.Errorf("hlpimage: picture directory: %w", hlperr.ErrTruncated)
	}
	numpict := int(le16(ref, 2))
	if numpict < 1 {
		return nil, fmt.Errorf("hlpimage: numpict=%d: %w", numpict, hlperr.ErrIntegrityViolation)
	}
	off := int(le32(ref, 4))
	if off < 0 || off >= len(ref) {
		return nil, fmt.Errorf("hlpimage: picture offset out of range: %w", hlperr.ErrIntegrityViolation)
	}
	beg := ref[off:]
	if len(beg) < 2 {
		return nil, fmt.Errorf("hlpimage: picture record: %w", hlperr.ErrTruncated)
	}
	typ, pack := beg[0], beg[1]
	if pack > 3 {
		return nil, fmt.Errorf("hlpimage: packing %d: %w", pack, hlperr.ErrUnsupportedPacking)
	}
	switch typ {
	case 5, 6:
		return decodeBitmap(f, beg, typ, pack)
	case 8:
		return decodeMetafile(f, beg, pack)
	default:
		return nil, fmt.Errorf("hlpimage: picture type %d: %w", typ, hlperr.ErrUnsupportedFormat)
	}
}

// decompressGfx applies the compressed-graphic packer: 0 none, 1 RLE,
// 2 LZ77, 3 LZ77 then RLE.
func decompressGfx(src []byte, sz int, pack byte) []byte {
	switch pack {
	case 0:
		if len(src) > sz {
			src = src[:sz]
		}
		return src
	case 1:
		return compress.RLEDecode(src, sz)
	case 2:
		out := make([]byte, compress.LZ77Size(src))
		compress.LZ77Decode(src, out)
		if len(out) > sz {
			out = out[:sz]
		}
		return out
	case 3:
		mid := make([]byte, compress.LZ77Size(src))
		compress.LZ77Decode(src, mid)
		return compress.RLEDecode(mid, sz)
	default:
		return src
	}
}

func rtfEscapeHex(buf []byte) []byte {
	var b bytes.Buffer
	for i, c := range buf {
		if i > 0 && i%32 == 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.Bytes()
}

func le16(b []byte, off int) uint16 { return uint16(b[off]) | uint16(b[off+1])<<8 }
func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
