package rtf

import (
	"fmt"
	"log"
	"strings"

	"hlpcat/internal/hlpfile"
	"hlpcat/internal/hlpimage"
)

// dispatchOpcode interprets one inline format opcode (format[0]) and
// returns the updated lastfont/lastcol bookkeeping plus the number of
// format bytes consumed.
func dispatchOpcode(page *hlpfile.Page, rd *RtfData, recType byte, format []byte, lastfont, lastcol, nc int) (int, int, int) {
	f := page.File
	op := format[0]

	switch op {
	case 0x20:
		return lastfont, lastcol, 5
	case 0x21:
		return lastfont, lastcol, 3

	case 0x80:
		if len(format) < 3 {
			return lastfont, lastcol, len(format)
		}
		font := int(le16(format, 1))
		emitFontChange(rd, f, font)
		return font, lastcol, 3

	case 0x81:
		rd.control(`\line`)
		rd.CharPos++
		return lastfont, lastcol, 1

	case 0x82:
		if recType == hlpTable && len(format) >= 4 {
			if format[1] != 0xFF {
				rd.control(`\par\intbl`)
			} else if int(int16(le16(format, 2))) == -1 {
				rd.control(`\cell\intbl\row`)
				rd.CharPos += 2
			} else if int(int16(le16(format, 2))) == lastcol {
				rd.control(`\par\pard`)
			} else {
				rd.control(`\cell\pard`)
			}
		} else {
			rd.control(`\par`)
		}
		rd.CharPos++
		return lastfont, lastcol, 1

	case 0x83:
		rd.control(`\tab`)
		rd.CharPos++
		return lastfont, lastcol, 1

	case 0x86, 0x87, 0x88:
		return lastfont, lastcol, emitImage(page, rd, format)

	case 0x89:
		rd.control(`}}}`)
		if rd.CurrentLink != nil {
			rd.CurrentLink.CPMax = rd.CharPos
		}
		rd.CurrentLink = nil
		rd.ForceColor = false
		emitFontChange(rd, f, lastfont)
		return lastfont, lastcol, 1

	case 0x8B:
		rd.control(`\~`)
		rd.CharPos++
		return lastfont, lastcol, 1

	case 0x8C:
		rd.control(`\_`)
		rd.CharPos++
		return lastfont, lastcol, 1

	case 0xC8, 0xCC:
		if len(format) < 3 {
			return lastfont, lastcol, len(format)
		}
		length := int(le16(format, 1))
		end := 3 + length
		if end > len(format) {
			end = len(format)
		}
		macro := string(format[3:end])
		link := &hlpfile.Link{Cookie: hlpfile.LinkMacro, Target: macro, Hash: 0, ColorChange: op&4 == 0}
		allocLink(rd, page, link)
		return lastfont, lastcol, end

	case 0xE0, 0xE1:
		if len(format) < 5 {
			return lastfont, lastcol, len(format)
		}
		cookie := hlpfile.LinkPopup
		if op&1 != 0 {
			cookie = hlpfile.LinkJump
		}
		link := &hlpfile.Link{Cookie: cookie, Target: f.Path, Hash: le32(format, 1), ColorChange: true}
		allocLink(rd, page, link)
		return lastfont, lastcol, 5

	case 0xE2, 0xE3, 0xE6, 0xE7:
		if len(format) < 5 {
			return lastfont, lastcol, len(format)
		}
		cookie := hlpfile.LinkPopup
		if op&1 != 0 {
			cookie = hlpfile.LinkJump
		}
		link := &hlpfile.Link{Cookie: cookie, Target: f.Path, Hash: le32(format, 1), ColorChange: op&4 == 0}
		allocLink(rd, page, link)
		return lastfont, lastcol, 5

	case 0xEA, 0xEB, 0xEE, 0xEF:
		if len(format) < 8 {
			return lastfont, lastcol, len(format)
		}
		typ := format[3]
		target := f.Path
		wnd := -1
		ptr := format[8:]
		switch typ {
		case 1:
			if len(ptr) > 0 {
				wnd = int(ptr[0])
			}
		case 6:
			name, _, ok := cstring(ptr)
			if ok {
				for i, w := range f.Windows {
					if strings.EqualFold(w.Name, name) {
						wnd = i
						break
					}
				}
			}
		}
		cookie := hlpfile.LinkPopup
		if op&1 != 0 {
			cookie = hlpfile.LinkJump
		}
		link := &hlpfile.Link{Cookie: cookie, Target: target, Hash: le32(format, 4), ColorChange: op&4 == 0, Window: wnd}
		allocLink(rd, page, link)
		n := 3 + int(le16(format, 1))
		if n > len(format) {
			n = len(format)
		}
		return lastfont, lastcol, n

	default:
		log.Printf("rtf: opcode %#x not understood, skipping", op)
		return lastfont, lastcol, 1
	}
}

func emitFontChange(rd *RtfData, f *hlpfile.File, font int) {
	if font < 0 || font >= len(f.Fonts) {
		return
	}
	fnt := f.Fonts[font]
	fs := f.HalfPointsScale(fnt.HeightHalfPoints)
	switch rd.FontScale {
	case 0:
		fs -= 4
	case 2:
		fs += 4
	}
	b, i, u, s := "\\b0", "\\i0", "\\ul0", "\\strike0"
	if fnt.Bold {
		b = "\\b"
	}
	if fnt.Italic {
		i = "\\i"
	}
	if fnt.Underline {
		u = "\\ul"
	}
	if fnt.Strikeout {
		s = "\\strike"
	}
	fmt.Fprintf(rd, `\f%d\cf%d\fs%d%s%s%s%s`, font+1, font+3, fs, b, i, u, s)
}

func allocLink(rd *RtfData, page *hlpfile.Page, link *hlpfile.Link) {
	link.CPMin = rd.CharPos
	rd.ForceColor = link.ColorChange
	rd.CurrentLink = link
	rd.FirstLink = append(rd.FirstLink, link)
	fmt.Fprintf(rd, `{\field{\*\fldinst{ HYPERLINK "%p" }}{\fldrslt{`, link)
}

func addGfxByIndex(rd *RtfData, page *hlpfile.Page, index int) {
	res, err := hlpimage.ByIndex(page.File, index)
	if err != nil {
		log.Printf("rtf: image #%d: %v", index, err)
		return
	}
	emitGfxResult(rd, res)
}

func addGfxByAddr(rd *RtfData, page *hlpfile.Page, ref []byte, size int) {
	if size > 0 && size <= len(ref) {
		ref = ref[:size]
	}
	res, err := hlpimage.ByAddr(page.File, ref)
	if err != nil {
		log.Printf("rtf: inline image: %v", err)
		return
	}
	emitGfxResult(rd, res)
}

func emitGfxResult(rd *RtfData, res *hlpimage.Result) {
	rd.buf.Write(res.RTF)
	for _, hs := range res.Hotspots {
		hs.ImageIndex = rd.ImageCount
		rd.FirstHS = append(rd.FirstHS, hs)
	}
	rd.ImageCount++
}

func emitImage(page *hlpfile.Page, rd *RtfData, format []byte) int {
	if len(format) < 2 {
		return len(format)
	}
	token := format[0]
	typ := format[1]
	rest := format[2:]
	size, n := fetchLong(rest)
	rest = rest[n:]
	consumed := 2 + n
	extra := 0

	switch typ {
	case 0x22, 0x03:
		if typ == 0x22 {
			_, hn := fetchUShort(rest)
			rest = rest[hn:]
			extra = hn
		}
		if len(rest) >= 4 {
			switch int(int16(le16(rest, 0))) {
			case 0:
				addGfxByIndex(rd, page, int(int16(le16(rest, 2))))
				rd.CharPos++
			case 1:
				addGfxByAddr(rd, page, rest[2:], int(size)-4)
				rd.CharPos++
			}
		}
	case 0x05:
		if len(rest) > 6 && rest[6] == '!' {
			curr := rest[7:]
			comma := indexByte(curr, ',')
			if comma >= 0 {
				link := &hlpfile.Link{Cookie: hlpfile.LinkMacro, Target: string(curr[comma+1:]), Hotspot: true}
				allocLink(rd, page, link)
				if comma > 0 {
					rd.addText(string(curr[:comma]))
				}
				rd.control(`}}}`)
			}
		}
	}

	consumed += extra + int(size)
	if token == 0x88 {
		rd.control(`\qr\par\pard`)
	}
	return consumed
}
