package hlpfile

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readCntFile loads the .CNT sidecar (table-of-contents outline) that
// normally sits next to a .HLP file with the same base name, building a
// small RTF outline document with HYPERLINK fields, exactly as the
// reference reader synthesizes a fake "Contents" topic from it.
func (f *File) readCntFile() {
	path := f.CntPathOverride
	if path == "" {
		path = cntPathFor(f.Path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var rtf bytes.Buffer
	rtf.WriteString(`{\rtf1\ansi\urtf0\deff0{\fonttbl{\f0\fcharset0 Times New Roman;}}`)
	rtf.WriteString(`{\stylesheet{ Normal;}{\s1 heading 1;}{\s2 heading 2;}{\s3 heading 3;}{\s4 heading 4;}{\s5 heading 5;}{\s6 heading 6;}{\s7 heading 7;}{\s8 heading 8;}{\s9 heading 9;}}`)
	rtf.WriteString(`\viewkind2`)

	page := &Page{File: f}
	curl := 1
	found := false
	title := ""

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		start := strings.TrimLeft(line, " \t")
		if start == "" {
			continue
		}
		if start[0] == ':' {
			if strings.HasPrefix(start, ":Title ") {
				title = strings.TrimSpace(start[len(":Title "):])
			}
			continue
		}

		digits := 0
		for digits < len(start) && start[digits] >= '0' && start[digits] <= '9' {
			digits++
		}
		if digits == 0 {
			continue
		}
		level, err := strconv.Atoi(start[:digits])
		if err != nil || level <= 0 || level > 9 {
			continue
		}
		found = true

		rest := strings.TrimLeft(start[digits:], " \t")
		eq := findUnescapedEqual(rest)
		if eq < 0 {
			if level > curl {
				curl++
			} else {
				curl = level
			}
		} else if level < curl {
			curl = level + 1
		}

		if curl == 1 {
			fmt.Fprintf(&rtf, `\pard\s%d `, curl)
		} else {
			fmt.Fprintf(&rtf, `\pard\collapsed\s%d `, curl)
		}

		label := rest
		var link *Link
		if eq >= 0 {
			label = rest[:eq]
			tail := rest[eq+1:]
			target := f.Path
			wndName := ""
			if at := strings.IndexByte(tail, '@'); at >= 0 {
				target = tail[at+1:]
				tail = tail[:at]
			}
			if gt := strings.IndexByte(tail, '>'); gt >= 0 {
				wndName = tail[gt+1:]
				tail = tail[:gt]
			}
			link = &Link{
				Cookie:     LinkJump,
				Target:     target,
				Hash:       Hash(tail),
				WindowName: wndName,
			}
			page.FirstLink = append(page.FirstLink, link)
			rtf.WriteString(fmt.Sprintf(`{\field{\*\fldinst{ HYPERLINK "%s" }}{\fldrslt{`, tail))
		} else {
			curl++
		}

		rtf.WriteString(rtfEscape(label))
		if eq >= 0 {
			rtf.WriteString("}}}")
		}
		rtf.WriteString(`\par`)
	}

	if !found {
		return
	}
	rtf.WriteByte('}')

	if title == "" {
		title = "Contents"
	}
	page.Title = title
	f.ContentsRTF = rtf.Bytes()
	// Offset doubles as the length of the pre-built RTF blob for the
	// contents page, mirroring the reference's reuse of HLPFILE_PAGE.offset
	// for cnt_page (BrowsePage special-cases page == file.ContentsPage).
	page.Offset = uint32(len(f.ContentsRTF))
	f.ContentsPage = page
}

// findUnescapedEqual finds the first '=' in s not preceded by a backslash.
func findUnescapedEqual(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

// cntPathFor derives the .CNT sidecar path by swapping a .HLP-style
// extension for .CNT, matching the reference's lpszCntPath default.
func cntPathFor(hlpPath string) string {
	dot := strings.LastIndexByte(hlpPath, '.')
	slash := strings.LastIndexAny(hlpPath, `/\`)
	if dot < 0 || dot < slash {
		return hlpPath + ".CNT"
	}
	return hlpPath[:dot] + ".CNT"
}

// rtfEscape escapes RTF control characters and maps non-ASCII bytes to
// \'xx hex escapes, matching the reference's per-character RTF encoder.
func rtfEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' || c == '{' || c == '}':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c >= 0x80:
			fmt.Fprintf(&b, `\'%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
