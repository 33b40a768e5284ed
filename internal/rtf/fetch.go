package rtf

import "hlpcat/internal/hlpbin"

// fetchLong/fetchShort/fetchUShort replicate WinHelp's variable-length
// integer encoding over a format-byte cursor: the low bit of the first
// byte selects the narrow or wide encoding (1 or 2 bytes for the short
// forms, 2 or 4 bytes for the long form), and the
// signed variants subtract a bias before halving. These delegate to
// hlpbin.FetchCursor (the single implementation of the encoding) rather
// than keeping their own copy of the branch logic, but still return
// (value, bytesConsumed) over a plain []byte, matching the paragraph
// interpreter's style of advancing format by reslicing rather than
// holding a cursor position.

func fetchLong(buf []byte) (int32, int) {
	return hlpbin.FetchLongAt(buf)
}

func fetchShort(buf []byte) (int32, int) {
	return hlpbin.FetchShortAt(buf)
}

func fetchUShort(buf []byte) (uint16, int) {
	return hlpbin.FetchUShortAt(buf)
}
