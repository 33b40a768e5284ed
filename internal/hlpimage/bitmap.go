package hlpimage

import (
	"fmt"

	"hlpcat/internal/hlperr"
	"hlpcat/internal/hlpbin"
	"hlpcat/internal/hlpfile"
)

// decodeBitmap handles picture types 5 (DDB) and 6 (DIB): a variable-long
// encoded header, an optional palette (type 6 only), then a packed pixel
// stream at an absolute offset from the picture record's start.
func decodeBitmap(f *hlpfile.File, beg []byte, typ, pack byte) (*Result, error) {
	cur := &hlpbin.FetchCursor{Buf: beg, Pos: 2}

	xPPM, err := cur.FetchULong()
	if err != nil {
		return nil, fmt.Errorf("hlpimage: bitmap header: %w", err)
	}
	yPPM, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	_ = xPPM
	_ = yPPM
	planes, err := cur.FetchUShort()
	if err != nil {
		return nil, err
	}
	bitCount, err := cur.FetchUShort()
	if err != nil {
		return nil, err
	}
	width, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	height, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	clrUsed, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	clrImportant, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}

	bm := &Bitmap{
		Width:    int(width),
		Height:   int(height),
		Planes:   int(planes),
		BitCount: int(bitCount),
		ClrUsed:  int(clrUsed),
	}
	if clrImportant > 1 {
		bm.ClrImportant = int(clrImportant)
	}
	rowBytes := ((bm.Width*bm.BitCount + 31) &^ 31) / 8
	bm.SizeImage = rowBytes * bm.Height

	csz, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	hsSize, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	if cur.Pos+8 > len(beg) {
		return nil, fmt.Errorf("hlpimage: bitmap offsets: %w", hlperr.ErrTruncated)
	}
	off := int(le32(beg, cur.Pos))
	hsOffset := int(le32(beg, cur.Pos+4))
	cur.Pos += 8

	hotspots := addHotspotLinks(f, beg, uint32(hsSize), uint32(hsOffset), 1)

	var nc int
	if typ == 6 {
		nc = bm.ClrUsed
		if nc == 0 && bm.BitCount <= 8 {
			nc = 1 << uint(bm.BitCount)
		}
		bm.Palette = make([]RGB, nc)
		palOff := cur.Pos
		for i := 0; i < nc && palOff+4 <= len(beg); i++ {
			bm.Palette[i] = RGB{R: beg[palOff+2], G: beg[palOff+1], B: beg[palOff]}
			palOff += 4
		}
	}

	if off < 0 || off >= len(beg) {
		return nil, fmt.Errorf("hlpimage: bitmap data offset: %w", hlperr.ErrIntegrityViolation)
	}
	pictSrc := beg[off:]
	if int(csz) <= len(pictSrc) {
		pictSrc = pictSrc[:csz]
	}
	bm.Bits = decompressGfx(pictSrc, bm.SizeImage, pack)

	if clrImportant == 1 && nc > 0 {
		bm.Transparent = true
		bm.TransparentIndex = nc - 1
		bm.ClrImportant = 1
		return &Result{
			RTF:      []byte(fmt.Sprintf(`{\pict\*\brdrnil transparent via palette index %d}`, bm.TransparentIndex)),
			Hotspots: hotspots,
			Bitmap:   bm,
		}, nil
	}

	var rtf []byte
	var stdBMP []byte
	if typ == 6 {
		header := dibHeader(bm)
		payload := append(header, paletteBytes(bm.Palette)...)
		rtf = []byte(fmt.Sprintf(`{\pict\dibitmap0\picw%d\pich%d\picwgoal%d\pichgoal%d %s%s}`,
			bm.Width, bm.Height, bm.Width*15, bm.Height*15,
			rtfEscapeHex(payload), rtfEscapeHex(bm.Bits)))
		stdBMP = toStdBMP(bm)
	} else {
		rtf = []byte(fmt.Sprintf(`{\pict\wbitmap0\wbmbitspixel%d\wbmplanes%d\picw%d\pich%d\picwgoal%d\pichgoal%d %s}`,
			bm.BitCount, bm.Planes, bm.Width, bm.Height, bm.Width*15, bm.Height*15,
			rtfEscapeHex(bm.Bits)))
	}
	return &Result{RTF: rtf, Hotspots: hotspots, Bitmap: bm, BMP: stdBMP}, nil
}

// decodeMetafile handles picture type 8 (WMF), whose mapping-mode word and
// width/height precede its size fields and whose hotspot rectangles are in HIMETRIC units
// when the mapping mode is 8 (MM_ANISOTROPIC-ish, coorddiv 26.2).
func decodeMetafile(f *hlpfile.File, beg []byte, pack byte) (*Result, error) {
	if len(beg) < 2+4 {
		return nil, fmt.Errorf("hlpimage: metafile header: %w", hlperr.ErrTruncated)
	}
	mm := int(le16(beg, 2))
	picw := int(le16(beg, 4))
	pich := int(le16(beg, 6))

	cur := &hlpbin.FetchCursor{Buf: beg, Pos: 8}
	size, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	csize, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	hsSize, err := cur.FetchULong()
	if err != nil {
		return nil, err
	}
	if cur.Pos+8 > len(beg) {
		return nil, fmt.Errorf("hlpimage: metafile offsets: %w", hlperr.ErrTruncated)
	}
	off := int(le32(beg, cur.Pos))
	hsOffset := int(le32(beg, cur.Pos+4))

	coorddiv := float64(1)
	if mm == 8 {
		coorddiv = 26.2
	}
	hotspots := addHotspotLinks(f, beg, uint32(hsSize), uint32(hsOffset), coorddiv)

	if off < 0 || off >= len(beg) {
		return nil, fmt.Errorf("hlpimage: metafile data offset: %w", hlperr.ErrIntegrityViolation)
	}
	src := beg[off:]
	if int(csize) <= len(src) {
		src = src[:csize]
	}
	bits := decompressGfx(src, int(size), pack)

	rtf := []byte(fmt.Sprintf(`\sl0{\pict\wmetafile%d\picw%d\pich%d %s}`, mm, picw, pich, rtfEscapeHex(bits)))
	return &Result{RTF: rtf, Hotspots: hotspots}, nil
}

func dibHeader(bm *Bitmap) []byte {
	h := make([]byte, 40)
	putLE32(h, 0, 40)
	putLE32(h, 4, uint32(int32(bm.Width)))
	putLE32(h, 8, uint32(int32(bm.Height)))
	putLE16(h, 12, 1)
	putLE16(h, 14, uint16(bm.BitCount))
	putLE32(h, 16, 0)
	putLE32(h, 20, uint32(bm.SizeImage))
	putLE32(h, 24, 0)
	putLE32(h, 28, 0)
	putLE32(h, 32, uint32(bm.ClrUsed))
	putLE32(h, 36, uint32(bm.ClrImportant))
	return h
}

func paletteBytes(pal []RGB) []byte {
	out := make([]byte, 0, len(pal)*4)
	for _, c := range pal {
		out = append(out, c.B, c.G, c.R, 0)
	}
	return out
}

func putLE16(b []byte, off int, v uint16) { b[off] = byte(v); b[off+1] = byte(v >> 8) }
func putLE32(b []byte, off int, v uint32) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}
