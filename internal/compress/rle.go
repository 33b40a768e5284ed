package compress

import "log"

// RLEDecode implements the run-length layer applied on top of LZ77 for
// compressed graphics packing mode 1 (and the second stage of mode 3).
// A byte with the high bit set names a run of that many (masked to 7
// bits) literal bytes that follow; otherwise the byte is a count and the
// single byte following it is replicated that many times. Every write is
// bounded by dstLen; a result shorter than dstLen is not treated as an
// error, only logged, since the reference decoder is permissive here.
func RLEDecode(src []byte, dstLen int) []byte {
	dst := make([]byte, 0, dstLen)
	i := 0
	for i < len(src) && len(dst) < dstLen {
		ch := src[i]
		i++
		if ch&0x80 != 0 {
			n := int(ch & 0x7F)
			end := i + n
			if end > len(src) {
				end = len(src)
			}
			for ; i < end && len(dst) < dstLen; i++ {
				dst = append(dst, src[i])
			}
		} else {
			if i >= len(src) {
				break
			}
			v := src[i]
			i++
			for n := int(ch); n > 0 && len(dst) < dstLen; n-- {
				dst = append(dst, v)
			}
		}
	}
	if len(dst) != dstLen {
		log.Printf("compress: RLE produced %d bytes, expected %d", len(dst), dstLen)
	}
	return dst
}
