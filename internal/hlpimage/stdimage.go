package hlpimage

import (
	"bytes"
	"image"
	"image/color"

	"golang.org/x/image/bmp"
)

// toStdBMP materializes bm as a standard library image.Image (row order
// flipped from the on-disk bottom-up DIB convention) and round-trips it
// through golang.org/x/image/bmp, for callers that want a portable bitmap
// instead of the raw \dibitmap0 hex blob. Only 8-bit indexed and 24-bit
// RGB sources are converted; anything else (1/4-bit indexed, 32-bit with
// alpha) is left for the RTF hex path alone.
func toStdBMP(bm *Bitmap) []byte {
	img := toStdImage(bm)
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func toStdImage(bm *Bitmap) image.Image {
	if bm.Width <= 0 || bm.Height <= 0 {
		return nil
	}
	rowBytes := ((bm.Width*bm.BitCount + 31) &^ 31) / 8

	switch bm.BitCount {
	case 8:
		if len(bm.Palette) == 0 {
			return nil
		}
		pal := make(color.Palette, len(bm.Palette))
		for i, c := range bm.Palette {
			pal[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
		}
		out := image.NewPaletted(image.Rect(0, 0, bm.Width, bm.Height), pal)
		for y := 0; y < bm.Height; y++ {
			srcRow := (bm.Height - 1 - y) * rowBytes
			if srcRow+bm.Width > len(bm.Bits) {
				break
			}
			copy(out.Pix[y*out.Stride:y*out.Stride+bm.Width], bm.Bits[srcRow:srcRow+bm.Width])
		}
		return out

	case 24:
		out := image.NewRGBA(image.Rect(0, 0, bm.Width, bm.Height))
		for y := 0; y < bm.Height; y++ {
			srcRow := (bm.Height - 1 - y) * rowBytes
			for x := 0; x < bm.Width; x++ {
				off := srcRow + x*3
				if off+3 > len(bm.Bits) {
					return out
				}
				b, g, r := bm.Bits[off], bm.Bits[off+1], bm.Bits[off+2]
				out.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
			}
		}
		return out

	default:
		return nil
	}
}
