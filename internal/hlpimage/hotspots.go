package hlpimage

import (
	"hlpcat/internal/hlpfile"
)

// addHotspotLinks decodes a picture's hotspot table: hs_num 15-byte
// records each followed (after the whole table) by a pair of
// NUL-terminated strings (hotspot name, link target), per hotspot in
// table order. coorddiv scales raw pixel rectangles down (WMF in
// HIMETRIC units uses 26.2).
func addHotspotLinks(f *hlpfile.File, beg []byte, hsSize, hsOffset uint32, coorddiv float64) []*hlpfile.HotspotLink {
	if hsSize == 0 || hsOffset == 0 || int(hsOffset) >= len(beg) {
		return nil
	}
	start := beg[hsOffset:]
	if len(start) < 7 {
		return nil
	}
	hsNum := int(le16(start, 1))
	hsMacro := int(le32(start, 3))

	strOff := 7 + 15*hsNum + hsMacro
	if strOff < 0 || strOff > len(start) {
		return nil
	}
	str := start[strOff:]

	var out []*hlpfile.HotspotLink
	for i := 0; i < hsNum; i++ {
		recOff := 7 + 15*i
		if recOff+15 > len(start) {
			break
		}
		kind := start[recOff]
		name, rest, ok := cstring(str)
		if !ok {
			break
		}
		target, rest2, ok := cstring(rest)
		if !ok {
			break
		}
		str = rest2
		_ = name

		var link hlpfile.Link
		switch kind {
		case 0xC8, 0xCC:
			link = hlpfile.Link{Cookie: hlpfile.LinkMacro, Target: target}
		case 0xE2, 0xE3, 0xE6, 0xE7:
			cookie := hlpfile.LinkPopup
			if kind&1 != 0 {
				cookie = hlpfile.LinkJump
			}
			link = hlpfile.Link{Cookie: cookie, Target: f.Path, Hash: hlpfile.Hash(target)}
		case 0xEE, 0xEF:
			cookie := hlpfile.LinkPopup
			if kind&1 != 0 {
				cookie = hlpfile.LinkJump
			}
			link = hlpfile.Link{Cookie: cookie, Target: f.Path, Hash: hlpfile.Hash(target)}
		default:
			continue
		}

		x := float64(le16(start, recOff+3)) / coorddiv
		y := float64(le16(start, recOff+5)) / coorddiv
		w := float64(le16(start, recOff+7)) / coorddiv
		h := float64(le16(start, recOff+9)) / coorddiv

		out = append(out, &hlpfile.HotspotLink{
			Link: link,
			X:    int(x), Y: int(y), W: int(w), H: int(h),
		})
	}
	return out
}

// cstring splits buf at its first NUL, returning the string before it and
// the remainder after it.
func cstring(buf []byte) (string, []byte, bool) {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), buf[i+1:], true
		}
	}
	return "", nil, false
}
