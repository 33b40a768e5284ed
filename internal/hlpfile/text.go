package hlpfile

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// decodeText converts raw 8-bit topic/title bytes to a UTF-8 Go string
// using the file's negotiated code page, completing the §4.6 charset
// derivation with an actual text codec (golang.org/x/text/encoding)
// rather than leaving code_page as an opaque number callers must decode
// themselves.
func (f *File) decodeText(raw []byte) string {
	enc := encodingForCodePage(f.CodePage)
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// DecodeText is the exported form of decodeText, used by the paragraph
// interpreter to render topic text runs and compute UTF-16 code unit
// counts for link character-position bookkeeping.
func (f *File) DecodeText(raw []byte) string { return f.decodeText(raw) }

// encodingForCodePage maps a negotiated Windows code page to its
// golang.org/x/text encoding, covering the CJK/Cyrillic/Thai charsets the
// |FONT| face-name heuristic in system.go can select.
func encodingForCodePage(cp int) encoding.Encoding {
	switch cp {
	case 1251:
		return charmap.Windows1251
	case 936:
		return simplifiedchinese.GBK
	case 950:
		return traditionalchinese.Big5
	case 932:
		return japanese.ShiftJIS
	case 949:
		return korean.EUCKR
	case 874:
		return charmap.Windows874
	default:
		return charmap.Windows1252
	}
}
