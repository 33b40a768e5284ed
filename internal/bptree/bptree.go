// Package bptree implements the generic B+ tree engine used for every
// embedded tree inside a .HLP container: the sub-file directory, the
// |CONTEXT| hash index, and the keyword trees. Entry layout is owned by
// the caller through the Comparator interface so the engine itself never
// has to know whether it is walking fixed-size numeric keys or
// NUL-terminated ASCII names.
package bptree

import (
	"encoding/binary"
	"fmt"

	"hlpcat/internal/hlperr"
)

const treeMagic = 0x293B

// Comparator knows how to compare one entry against a search key and how
// large an entry is, so the engine can advance without leaking byte
// offsets back to its caller (the reference C implementation threads a
// next-entry pointer through the comparator callback instead).
type Comparator interface {
	// Compare returns <0 if entry sorts before the key, 0 if equal, >0 if
	// entry sorts after the key.
	Compare(entry []byte) int
	// EntrySize returns the length in bytes of entry. isLeaf distinguishes
	// leaf entries (which carry a value) from internal entries (which are
	// often just the key).
	EntrySize(entry []byte, isLeaf bool) int
}

// Tree is an embedded B+ tree sub-file: a 9-byte sub-file header followed
// by a tree header, followed by a flat array of fixed-size pages.
type Tree struct {
	buf      []byte
	pageSize int
	nPages   int
	depth    int
	pagesOff int
}

const (
	internalHeaderSize = 2 // entry count
	leafHeaderSize     = 8 // entry count + unused + next-leaf pointer at +6
	nextLeafOffset     = 6
)

// Open parses the B+ tree whose sub-file body begins at subfileStart
// within buf (i.e. buf[subfileStart:subfileStart+9] is the sub-file
// header, and the tree header follows immediately at +9).
func Open(buf []byte, subfileStart int) (*Tree, error) {
	hdr := subfileStart + 9
	if hdr+38+2 > len(buf) {
		return nil, fmt.Errorf("bptree: header at %d: %w", hdr, hlperr.ErrTruncated)
	}
	magic := binary.LittleEndian.Uint16(buf[hdr:])
	if magic != treeMagic {
		return nil, fmt.Errorf("bptree: magic %#x, want %#x: %w", magic, treeMagic, hlperr.ErrIntegrityViolation)
	}
	pageSize := int(binary.LittleEndian.Uint16(buf[hdr+4:]))
	nPages := int(binary.LittleEndian.Uint16(buf[hdr+26:]))
	depth := int(binary.LittleEndian.Uint16(buf[hdr+32:]))
	pagesOff := hdr + 38
	if pageSize <= 0 || pagesOff+pageSize*nPages > len(buf) {
		return nil, fmt.Errorf("bptree: %d pages of %d bytes from %d exceeds buffer: %w", nPages, pageSize, pagesOff, hlperr.ErrIntegrityViolation)
	}
	return &Tree{buf: buf, pageSize: pageSize, nPages: nPages, depth: depth, pagesOff: pagesOff}, nil
}

func (t *Tree) page(n int) []byte {
	off := t.pagesOff + n*t.pageSize
	return t.buf[off : off+t.pageSize]
}

// Search walks the tree from the root looking for an entry matching cmp.
// It returns the matching leaf entry, or hlperr.ErrNotFound.
func (t *Tree) Search(cmp Comparator) ([]byte, error) {
	pageNum := 0
	for level := 1; level < t.depth; level++ {
		entry, ok, err := t.searchInternal(t.page(pageNum), cmp)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, hlperr.ErrNotFound
		}
		pageNum = int(binary.LittleEndian.Uint16(entry))
	}
	return t.searchLeaf(t.page(pageNum), cmp)
}

// searchInternal scans one internal page and returns the two bytes
// (a little-endian page number) to descend into.
func (t *Tree) searchInternal(page []byte, cmp Comparator) ([]byte, bool, error) {
	if len(page) < internalHeaderSize {
		return nil, false, fmt.Errorf("bptree: internal page too small: %w", hlperr.ErrTruncated)
	}
	count := int(binary.LittleEndian.Uint16(page))
	pos := internalHeaderSize
	var lastPtr []byte
	for i := 0; i < count; i++ {
		if pos+2 > len(page) {
			return nil, false, fmt.Errorf("bptree: internal pointer at %d: %w", pos, hlperr.ErrTruncated)
		}
		ptr := page[pos : pos+2]
		pos += 2
		if pos > len(page) {
			return nil, false, fmt.Errorf("bptree: internal entry at %d: %w", pos, hlperr.ErrTruncated)
		}
		entry := page[pos:]
		size := cmp.EntrySize(entry, false)
		if pos+size > len(page) {
			size = len(page) - pos
		}
		entry = page[pos : pos+size]
		if cmp.Compare(entry) > 0 {
			return ptr, true, nil
		}
		pos += size
		lastPtr = ptr
	}
	if lastPtr != nil {
		return lastPtr, true, nil
	}
	return nil, false, nil
}

func (t *Tree) searchLeaf(page []byte, cmp Comparator) ([]byte, error) {
	if len(page) < leafHeaderSize {
		return nil, fmt.Errorf("bptree: leaf page too small: %w", hlperr.ErrTruncated)
	}
	count := int(binary.LittleEndian.Uint16(page))
	pos := leafHeaderSize
	for i := 0; i < count; i++ {
		if pos >= len(page) {
			break
		}
		entry := page[pos:]
		size := cmp.EntrySize(entry, true)
		if pos+size > len(page) {
			size = len(page) - pos
		}
		entry = page[pos : pos+size]
		switch c := cmp.Compare(entry); {
		case c == 0:
			return entry, nil
		case c > 0:
			return nil, hlperr.ErrNotFound
		}
		pos += size
	}
	return nil, hlperr.ErrNotFound
}

// Enumerate descends the leftmost spine to the first leaf, then walks the
// leaf chain via each page's next-leaf pointer (terminated by 0xFFFF),
// invoking cb with every entry in order.
func (t *Tree) Enumerate(cmp Comparator, cb func(entry []byte) error) error {
	pageNum := 0
	for level := 1; level < t.depth; level++ {
		page := t.page(pageNum)
		if len(page) < internalHeaderSize+2 {
			return fmt.Errorf("bptree: internal page too small: %w", hlperr.ErrTruncated)
		}
		pageNum = int(binary.LittleEndian.Uint16(page[internalHeaderSize:]))
	}
	for pageNum != 0xFFFF {
		if pageNum < 0 || pageNum >= t.nPages {
			return fmt.Errorf("bptree: leaf page %d out of range: %w", pageNum, hlperr.ErrIntegrityViolation)
		}
		page := t.page(pageNum)
		if len(page) < leafHeaderSize {
			return fmt.Errorf("bptree: leaf page too small: %w", hlperr.ErrTruncated)
		}
		count := int(binary.LittleEndian.Uint16(page))
		pos := leafHeaderSize
		for i := 0; i < count && pos < len(page); i++ {
			entry := page[pos:]
			size := cmp.EntrySize(entry, true)
			if pos+size > len(page) {
				size = len(page) - pos
			}
			entry = page[pos : pos+size]
			if err := cb(entry); err != nil {
				return err
			}
			pos += size
		}
		next := binary.LittleEndian.Uint16(page[nextLeafOffset:])
		pageNum = int(next)
	}
	return nil
}

// NumericComparator matches |CONTEXT|-style trees whose entries are a
// fixed 4-byte key possibly followed by a value.
type NumericComparator struct {
	Key uint32
}

func (n NumericComparator) Compare(entry []byte) int {
	if len(entry) < 4 {
		return 1
	}
	v := binary.LittleEndian.Uint32(entry)
	switch {
	case v < n.Key:
		return -1
	case v > n.Key:
		return 1
	default:
		return 0
	}
}

func (n NumericComparator) EntrySize(entry []byte, isLeaf bool) int {
	if isLeaf {
		return 8
	}
	return 4
}

// NameComparator matches the sub-file directory, whose entries are
// NUL-terminated ASCII names followed (on leaf pages) by a 4-byte
// sub-file offset.
type NameComparator struct {
	Name string
}

func (c NameComparator) Compare(entry []byte) int {
	i := 0
	for i < len(entry) && entry[i] != 0 {
		i++
	}
	name := string(entry[:i])
	switch {
	case name < c.Name:
		return -1
	case name > c.Name:
		return 1
	default:
		return 0
	}
}

func (c NameComparator) EntrySize(entry []byte, isLeaf bool) int {
	strlen := 0
	for strlen < len(entry) && entry[strlen] != 0 {
		strlen++
	}
	// strlen + NUL terminator, plus a 4-byte sub-file offset on a leaf. An
	// internal entry is the name alone: its 2-byte child-page number
	// precedes it and is consumed by searchInternal.
	if isLeaf {
		return strlen + 5
	}
	return strlen + 1
}
