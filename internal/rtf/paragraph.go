package rtf

import (
	"fmt"

	"hlpcat/internal/hlpfile"
)

const (
	hlpDisplay   = 0x20
	hlpDisplay30 = 0x23
	hlpTable     = 0x24
)

// browseParagraph interprets one DISPLAY/DISPLAY30/TABLE record: a
// compressed text run paired with a format-byte stream, emitting RTF
// controls for the paragraph's attributes and inline opcodes in lockstep
// with the plain text.
func browseParagraph(page *hlpfile.Page, rd *RtfData, buf []byte) (int, error) {
	f := page.File
	if len(buf) < 0x19 {
		return 0, fmt.Errorf("rtf: paragraph header too small")
	}
	recType := buf[0x14]
	blockSize := int(le32(buf, 0))
	textSize := int(le32(buf, 4))
	dataLen := int(le32(buf, 0x10))

	var text []byte
	if textSize > blockSize-dataLen {
		text = f.UncompressText(buf[dataLen:], textSize)
	} else {
		src := buf[dataLen:]
		n := textSize
		if n > len(src) {
			n = len(src)
		}
		text = append([]byte(nil), src[:n]...)
	}

	format := buf[0x15:]
	formatEnd := blockSize
	if formatEnd > len(buf) {
		formatEnd = len(buf)
	}
	format = buf[0x15:formatEnd]

	parlen := 0
	if recType == hlpDisplay || recType == hlpTable {
		var n1 int
		_, n1 = fetchLong(format)
		format = format[n1:]
		var plen uint16
		plen, n1 = fetchUShort(format)
		format = format[n1:]
		parlen = int(plen)
	}

	ncol := 1
	lastcol := -1
	lastfont := 0

	if recType == hlpTable {
		if len(format) < 2 {
			return parlen, fmt.Errorf("rtf: truncated table header")
		}
		ncol = int(format[0])
		tableType := format[1]
		format = format[2:]
		tableWidth := 32767
		if tableType == 0 || tableType == 2 {
			tableWidth = int(int16(le16(format, 0)))
			format = format[2:]
			row := &hlpfile.Row{Widths: make([]int, ncol)}
			page.VarRows = append(page.VarRows, row)
			rd.control(`{\v\pard var_wid_row}`)
			defer func() {}()
			emitTableColumns(rd, page, format, ncol, tableWidth, row)
		} else {
			emitTableColumns(rd, page, format, ncol, tableWidth, nil)
		}
		format = format[ncol*4:]
	}

	for nc := 0; nc < ncol; {
		rd.control(`\pard`)
		if recType == hlpTable {
			col := int(int16(le16(format, 0)))
			lastcol = col
			nc = col
			if col == -1 {
				rd.control(`\row`)
				rd.CharPos += 2
				break
			}
			format = format[5:]
			rd.control(`\intbl`)
		} else {
			nc++
		}

		if recType == hlpDisplay30 {
			format = format[6:]
		} else {
			format = format[4:]
		}
		bits := le16(format, 0)
		format = format[2:]

		if bits&0x0001 != 0 {
			_, n := fetchLong(format)
			format = format[n:]
		}
		if bits&0x0002 != 0 {
			var v int32
			var n int
			v, n = fetchShort(format)
			format = format[n:]
			fmt.Fprintf(rd, `\sb%d`, f.HalfPointsScale(int(v)))
		}
		if bits&0x0004 != 0 {
			v, n := fetchShort(format)
			format = format[n:]
			fmt.Fprintf(rd, `\sa%d`, f.HalfPointsScale(int(v)))
		}
		if bits&0x0008 != 0 {
			v, n := fetchShort(format)
			format = format[n:]
			fmt.Fprintf(rd, `\sl%d`, f.HalfPointsScale(int(v)))
		}
		if bits&0x0010 != 0 {
			v, n := fetchShort(format)
			format = format[n:]
			fmt.Fprintf(rd, `\li%d`, f.HalfPointsScale(int(v)))
		}
		if bits&0x0020 != 0 {
			v, n := fetchShort(format)
			format = format[n:]
			fmt.Fprintf(rd, `\ri%d`, f.HalfPointsScale(int(v)))
		}
		if bits&0x0040 != 0 {
			v, n := fetchShort(format)
			format = format[n:]
			fmt.Fprintf(rd, `\fi%d`, f.HalfPointsScale(int(v)))
		}
		rd.control(`\slmult1`)

		if bits&0x0100 != 0 {
			brdr := format[0]
			format = format[1:]
			if brdr&0x03 != 0 && recType != hlpTable {
				rd.control(`{\pard\trowd\clbrdrl\brdrw1\brdrcf2\clbrdrt\brdrw1\brdrcf2\clbrdrr\brdrw1\brdrcf2\clbrdrb\brdrw1\cellx100000\intbl\f0\fs0\cell\row\pard}`)
			}
			format = format[2:] // border width, unused (richedit can't render it outside a table)
		}

		if bits&0x0200 != 0 {
			ntab, n := fetchShort(format)
			format = format[n:]
			for i := 0; i < int(ntab); i++ {
				var tab uint16
				tab, n = fetchUShort(format)
				format = format[n:]
				kind := ""
				if tab&0x4000 != 0 {
					var ts uint16
					ts, n = fetchUShort(format)
					format = format[n:]
					switch ts {
					case 1:
						kind = `\tqr`
					case 2:
						kind = `\tqc`
					}
				}
				fmt.Fprintf(rd, `%s\tx%d`, kind, f.HalfPointsScale(int(tab&0x3FFF)))
			}
		}

		switch bits & 0xc00 {
		case 0:
			rd.control(`\ql`)
		case 0x400:
			rd.control(`\qr`)
		case 0x800:
			rd.control(`\qc`)
		}
		if bits&0x1000 != 0 {
			rd.control(`\keep`)
		}

		for len(text) > 0 && len(format) > 0 {
			n := indexByte(text, 0)
			if n < 0 {
				n = len(text)
			}
			run := text[:n]
			if len(run) > 0 {
				if rd.ForceColor {
					if rd.CurrentLink != nil && rd.CurrentLink.Cookie == hlpfile.LinkPopup {
						rd.control(`{\uld\cf1`)
					} else {
						rd.control(`{\ul\cf1`)
					}
				}
				rd.addText(decodeForCount(f, run))
				if rd.ForceColor {
					rd.control("}")
				}
				rd.CharPos += utf16Len(f, run)
			}
			text = text[n:]
			if len(text) > 0 {
				text = text[1:]
			}

			if format[0] == 0xFF {
				format = format[1:]
				break
			}

			var consumed int
			lastfont, lastcol, consumed = dispatchOpcode(page, rd, recType, format, lastfont, lastcol, nc)
			if consumed <= 0 {
				consumed = 1
			}
			format = format[consumed:]
		}
	}

	return parlen, nil
}

func emitTableColumns(rd *RtfData, page *hlpfile.Page, format []byte, ncol, tableWidth int, row *hlpfile.Row) {
	f := page.File
	if ncol > 1 {
		gap := f.HalfPointsScale(int(int16(le16(format, 6))))
		left := f.HalfPointsScale(int(int16(le16(format, 2)))-int(int16(le16(format, 6))))
		fmt.Fprintf(rd, `\trgaph%d\trleft%d`, mulDiv(gap, tableWidth, 32767), mulDiv(left, tableWidth, 32767)-1)
		pos := int(int16(le16(format, 6))) / 2
		for nc := 0; nc < ncol; nc++ {
			pos += int(int16(le16(format, nc*4))) + int(int16(le16(format, nc*4+2)))
			width := mulDiv(f.HalfPointsScale(pos), tableWidth, 32767)
			fmt.Fprintf(rd, `\clbrdrl\brdrw1\brdrcf2\clbrdrt\brdrw1\brdrcf2\clbrdrr\brdrw1\brdrcf2\clbrdrb\brdrw1\brdrcf2\cellx%d`, width)
			if row != nil {
				row.Widths[nc] = width
			}
		}
	} else {
		twidth := mulDiv(f.HalfPointsScale(int(int16(le16(format, 2)))), tableWidth, 32767) - 1
		cwidth := mulDiv(f.HalfPointsScale(int(int16(le16(format, 0)))), tableWidth, 32767)
		fmt.Fprintf(rd, `\trleft%d\clbrdrl\brdrw1\brdrcf2\clbrdrt\brdrw1\brdrcf2\clbrdrr\brdrw1\brdrcf2\clbrdrb\brdrw1\brdrcf2\cellx%d `, twidth, cwidth)
		if row != nil {
			row.Widths[0] = cwidth
		}
	}
	rd.control(`\trowd`)
}

func mulDiv(a, b, c int) int {
	if c == 0 {
		return 0
	}
	return a * b / c
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

func decodeForCount(f *hlpfile.File, raw []byte) string {
	return f.DecodeText(raw)
}

// utf16Len returns the number of UTF-16 code units the decoded text
// occupies, matching MultiByteToWideChar's count in the reference so that
// Link.cpMin/cpMax index consistently into the rendered text.
func utf16Len(f *hlpfile.File, raw []byte) int {
	s := f.DecodeText(raw)
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
