package hlpfile

import (
	"fmt"
	"log"
	"path/filepath"

	"hlpcat/internal/hlperr"
)

const systemMagic = 0x036C

// readSystem loads the |SYSTEM| sub-file: the version/flags header that
// everything downstream (tbsize, dsize, compression, charset) depends on,
// plus the newer-format record stream (title, copyright, windows, macros,
// contents-start, icon, charset, LCID).
func (f *File) readSystem() error {
	start, end, err := f.findSubFile("|SYSTEM")
	if err != nil {
		return fmt.Errorf("hlpfile: |SYSTEM|: %w", err)
	}
	body, bodyEnd := subFileBody(start, end)
	buf := f.Buf

	if body+12 > bodyEnd {
		return fmt.Errorf("hlpfile: |SYSTEM| header: %w", hlperr.ErrTruncated)
	}
	magic := le16(buf, body)
	minor := int(le16(buf, body+2))
	major := int(le16(buf, body+4))
	genDate := le32(buf, body+6)
	flags := le16(buf, body+10)

	if magic != systemMagic {
		return fmt.Errorf("hlpfile: |SYSTEM| magic %#x: %w", magic, hlperr.ErrBadMagic)
	}
	if major != 1 {
		return fmt.Errorf("hlpfile: |SYSTEM| major %d: %w", major, hlperr.ErrUnsupportedVersion)
	}

	f.Minor = minor
	f.Major = major
	f.Flags = uint32(flags)
	f.GenerationDate = genDate
	f.ContentsStart = 0xFFFFFFFF

	switch {
	case minor <= 16:
		f.TBSize, f.Compressed = 0x800, false
	case flags == 0:
		f.TBSize, f.Compressed = 0x1000, false
	case flags == 4:
		f.TBSize, f.Compressed = 0x1000, true
	default:
		f.TBSize, f.Compressed = 0x800, true
	}
	if f.Compressed {
		f.DSize = 0x4000
	} else {
		f.DSize = f.TBSize - 0x0C
	}

	f.Charset = -1 // DEFAULT_CHARSET sentinel
	f.CodePage = 1252

	if minor <= 16 {
		str, _, _ := cstringAt(buf, body+0x15, bodyEnd)
		if str == "" {
			str = filepath.Base(f.Path)
		}
		f.Title = str
	} else {
		for ptr := body + 0x15; ptr+4 <= bodyEnd; {
			kind := le16(buf, ptr)
			reclen := int(le16(buf, ptr+2))
			strOff := ptr + 4
			if strOff+reclen > bodyEnd {
				break
			}
			f.applySystemRecord(int(kind), buf[strOff:strOff+reclen])
			ptr += 4 + reclen
		}
	}

	if f.LCID == 0 && f.Charset < 0 {
		f.resolveCharsetFallback()
	}
	if f.Charset >= 0 {
		f.CodePage = codePageForCharset(f.Charset)
	}
	return nil
}

// applySystemRecord handles one (kind, bytes) |SYSTEM| record for v>16
// files, per the record-kind table in the component design.
func (f *File) applySystemRecord(kind int, data []byte) {
	str := func() string { return cstringFromBytes(data) }
	switch kind {
	case 1:
		if f.Title == "" {
			f.Title = str()
		}
	case 2:
		if f.Copyright == "" {
			f.Copyright = str()
		}
	case 3:
		if len(data) >= 4 {
			f.ContentsStart = le32(data, 0)
		}
	case 4:
		f.Macros = append(f.Macros, str())
	case 5:
		f.Icon = append([]byte(nil), data...)
	case 6:
		f.applyWindowRecord(data)
	case 8:
		f.Citation = str()
	case 9:
		if len(data) >= 14 {
			// LCID sits 12 bytes into the record per the original layout.
			f.LCID = uint32(le16(data, 12))
		}
	case 10:
		if f.CntPathOverride == "" {
			f.CntPathOverride = str()
		}
	case 11:
		if len(data) >= 1 {
			f.Charset = int(data[0])
		}
	default:
		log.Printf("hlpfile: |SYSTEM| record kind %d not understood, skipped", kind)
	}
}

// applyWindowRecord decodes the 90-byte window-descriptor bitmap-of-
// present-fields record: each field sits at a fixed offset and is used
// only when its corresponding flag bit is set, per the original's case 6
// handling.
func (f *File) applyWindowRecord(data []byte) {
	if len(data) < 4 {
		return
	}
	flags := le16(data, 0)
	w := Window{Flags: flags}
	str := func(off int) string { s, _, _ := cstringFromOffset(data, off); return s }
	if flags&0x0001 != 0 {
		w.Type = 0
		w.Name = str(2) // loosely: "type" is a name string in the original layout
	}
	if flags&0x0002 != 0 {
		w.Name = str(12)
	}
	if flags&0x0004 != 0 {
		w.Caption = str(21)
	} else {
		w.Caption = f.Title
	}
	if flags&0x0008 != 0 && len(data) >= 78 {
		w.OriginX = int16(le16(data, 76))
	}
	if flags&0x0010 != 0 && len(data) >= 80 {
		w.OriginY = int16(le16(data, 78))
	}
	if flags&0x0020 != 0 && len(data) >= 82 {
		w.Width = int16(le16(data, 80))
	}
	if flags&0x0040 != 0 && len(data) >= 84 {
		w.Height = int16(le16(data, 82))
	}
	if flags&0x0100 != 0 && len(data) >= 90 {
		w.SelColor = [3]byte{data[86], data[87], data[88]}
	} else {
		w.SelColor = [3]byte{0xFF, 0xFF, 0xFF}
	}
	if flags&0x0200 != 0 && len(data) >= 94 {
		w.UnselColor = [3]byte{data[90], data[91], data[92]}
	} else {
		w.UnselColor = [3]byte{0xFF, 0xFF, 0xFF}
	}
	f.Windows = append(f.Windows, w)
}

// resolveCharsetFallback consults |CHARSET| and then heuristically scans
// |FONT| face names, matching the original's cascading charset detection
// when no record-11 charset and no LCID were present.
func (f *File) resolveCharsetFallback() {
	if start, end, err := f.findSubFile("|CHARSET"); err == nil {
		body, bodyEnd := subFileBody(start, end)
		if body+11 <= bodyEnd {
			f.Charset = int(le16(f.Buf, body+2))
		}
	}
	if f.Charset >= 0 && f.Charset != 0 {
		return
	}
	start, end, err := f.findSubFile("|FONT")
	if err != nil {
		return
	}
	body, bodyEnd := subFileBody(start, end)
	if body+8 > bodyEnd {
		return
	}
	faceNum := int(le16(f.Buf, body))
	faceOff := int(le16(f.Buf, body+4))
	dscrOff := int(le16(f.Buf, body+6))
	if faceNum <= 0 || dscrOff <= faceOff {
		return
	}
	stride := (dscrOff - faceOff) / faceNum
	for i := 0; i < faceNum; i++ {
		off := body + faceOff + i*stride
		if off+stride > bodyEnd {
			break
		}
		name := cstringFromBytes(f.Buf[off : off+stride])
		switch {
		case containsAny(name, "MingLiU"):
			f.Charset = charsetChineseBig5
			return
		case name == "CFShouSung":
			f.Charset = charsetGB2312
		case containsAny(name, "Gothic", "Mincho"):
			f.Charset = charsetShiftJIS
			return
		case containsAny(name, "Myeongjo", "Batang"):
			f.Charset = charsetHangeul
			return
		case containsAny(name, "Arabic"):
			f.Charset = charsetArabic
			return
		case name == "Arial Cyr":
			f.Charset = charsetRussian
			return
		case containsAny(name, "Thai") || name == "CordiaUPC":
			f.Charset = charsetThai
			return
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if len(sub) <= len(s) {
			for i := 0; i+len(sub) <= len(s); i++ {
				if s[i:i+len(sub)] == sub {
					return true
				}
			}
		}
	}
	return false
}

const (
	charsetGB2312       = 134
	charsetChineseBig5  = 136
	charsetShiftJIS      = 128
	charsetHangeul       = 129
	charsetArabic        = 178
	charsetRussian       = 204
	charsetThai          = 222
)

func codePageForCharset(charset int) int {
	switch charset {
	case charsetGB2312:
		return 936
	case charsetChineseBig5:
		return 950
	case charsetShiftJIS:
		return 932
	case charsetHangeul:
		return 949
	case charsetArabic:
		return 1256
	case charsetRussian:
		return 1251
	case charsetThai:
		return 874
	default:
		return 1252
	}
}

func cstringAt(buf []byte, off, limit int) (string, int, error) {
	i := off
	for i < limit && i < len(buf) && buf[i] != 0 {
		i++
	}
	if i >= len(buf) {
		return "", i, hlperr.ErrTruncated
	}
	return string(buf[off:i]), i + 1, nil
}

func cstringFromOffset(data []byte, off int) (string, int, error) {
	if off > len(data) {
		return "", off, hlperr.ErrTruncated
	}
	return cstringAt(data, off, len(data))
}

func cstringFromBytes(data []byte) string {
	i := 0
	for i < len(data) && data[i] != 0 {
		i++
	}
	return string(data[:i])
}
