package hlpfile

import (
	"encoding/binary"
	"fmt"
	"strings"

	"hlpcat/internal/bptree"
	"hlpcat/internal/hlperr"
)

// findSubFile locates the named sub-file and returns its body bounds
// [start, end) where start points at the 4-byte length prefix (i.e. the
// 9-byte sub-file header) and end is the first byte past the declared
// extent. Per the reference implementation, a lookup for a name without a
// leading '|' is retried with one prepended and vice versa, since both
// conventions occur in the wild.
func (f *File) findSubFile(name string) (start, end int, err error) {
	start, end, err = f.findSubFileExact(name)
	if err == nil {
		return start, end, nil
	}
	alt := name
	if strings.HasPrefix(name, "|") {
		alt = name[1:]
	} else {
		alt = "|" + name
	}
	return f.findSubFileExact(alt)
}

func (f *File) findSubFileExact(name string) (int, int, error) {
	dirOff := int(le32(f.Buf, 4))
	tree, err := bptree.Open(f.Buf, dirOff)
	if err != nil {
		return 0, 0, fmt.Errorf("hlpfile: directory: %w", err)
	}
	entry, err := tree.Search(bptree.NameComparator{Name: name})
	if err != nil {
		return 0, 0, fmt.Errorf("hlpfile: sub-file %q: %w", name, err)
	}
	i := 0
	for i < len(entry) && entry[i] != 0 {
		i++
	}
	if i+1+4 > len(entry) {
		return 0, 0, fmt.Errorf("hlpfile: sub-file %q directory entry: %w", name, hlperr.ErrTruncated)
	}
	off := int(binary.LittleEndian.Uint32(entry[i+1:]))
	if off < 0 || off+9 > len(f.Buf) {
		return 0, 0, fmt.Errorf("hlpfile: sub-file %q offset %d: %w", name, off, hlperr.ErrIntegrityViolation)
	}
	length := int(le32(f.Buf, off))
	reserved := int(le32(f.Buf, off+4))
	if length < reserved+9 || off+length > len(f.Buf) {
		return 0, 0, fmt.Errorf("hlpfile: sub-file %q declared length %d: %w", name, length, hlperr.ErrIntegrityViolation)
	}
	return off, off + length, nil
}

// subFileBody returns the usable payload of a sub-file (after its 9-byte
// header) given the bounds returned by findSubFile.
func subFileBody(start, end int) (int, int) {
	return start + 9, end
}

// FindSubFile is the exported form of findSubFile, for callers outside the
// package (the image decoder) that need to locate a named sub-file, such
// as a |bmN picture container, directly.
func (f *File) FindSubFile(name string) (start, end int, err error) {
	return f.findSubFile(name)
}

// SubFileBody is the exported form of subFileBody.
func (f *File) SubFileBody(start, end int) (int, int) {
	return subFileBody(start, end)
}
