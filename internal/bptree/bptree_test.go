package bptree

import (
	"encoding/binary"
	"testing"
)

// buildTieBreakTree assembles a one-level tree (root internal page + three
// leaf pages) where the root holds three keys, two of them tied at 5 and
// the third at 10. Only the rightmost leaf reachable past the tied pair
// contains the actual entry for key 5; the other two candidate leaves are
// deliberately empty, so the test fails if Search lands anywhere else.
func buildTieBreakTree() []byte {
	const pageSize = 32
	const nPages = 4
	const hdr = 9
	const pagesOff = hdr + 38

	buf := make([]byte, pagesOff+pageSize*nPages)
	binary.LittleEndian.PutUint16(buf[hdr:], treeMagic)
	binary.LittleEndian.PutUint16(buf[hdr+4:], pageSize)
	binary.LittleEndian.PutUint16(buf[hdr+26:], nPages)
	binary.LittleEndian.PutUint16(buf[hdr+32:], 2) // depth: one internal hop, then a leaf

	root := buf[pagesOff : pagesOff+pageSize]
	binary.LittleEndian.PutUint16(root[0:], 3) // 3 entries
	pos := internalHeaderSize
	writeEntry := func(ptr uint16, key uint32) {
		binary.LittleEndian.PutUint16(root[pos:], ptr)
		pos += 2
		binary.LittleEndian.PutUint32(root[pos:], key)
		pos += 4
	}
	writeEntry(1, 5)  // tied
	writeEntry(2, 5)  // tied
	writeEntry(3, 10) // first strictly-greater key

	// Leaves 1 and 2 (pages at index 1, 2) stay empty: count=0.
	// Leaf 3 (page index 3) holds the real entry for key 5.
	leaf3 := buf[pagesOff+pageSize*3 : pagesOff+pageSize*4]
	binary.LittleEndian.PutUint16(leaf3[0:], 1) // 1 entry
	epos := leafHeaderSize
	binary.LittleEndian.PutUint32(leaf3[epos:], 5)
	binary.LittleEndian.PutUint32(leaf3[epos+4:], 1234)

	return buf
}

// TestBPlusTreeDuplicateKeyTieBreak verifies that when an internal page
// holds several entries with the same key, Search skips past all of them
// and descends via the pointer guarding the first strictly-greater key,
// rather than the pointer attached to either tied entry.
func TestBPlusTreeDuplicateKeyTieBreak(t *testing.T) {
	buf := buildTieBreakTree()
	tree, err := Open(buf, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry, err := tree.Search(NumericComparator{Key: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	got := binary.LittleEndian.Uint32(entry[4:])
	if got != 1234 {
		t.Fatalf("Search returned value %d, want 1234 (from the post-tie leaf)", got)
	}
}

// TestBPlusTreeDepthOneIsLeafOnly checks the common small-tree case: a
// depth of 1 means the root page IS the leaf page, with zero internal
// hops, rather than being walked as an internal page whose "leaf" is
// never reached.
func TestBPlusTreeDepthOneIsLeafOnly(t *testing.T) {
	const pageSize = 32
	const nPages = 1
	const hdr = 9
	const pagesOff = hdr + 38

	buf := make([]byte, pagesOff+pageSize*nPages)
	binary.LittleEndian.PutUint16(buf[hdr:], treeMagic)
	binary.LittleEndian.PutUint16(buf[hdr+4:], pageSize)
	binary.LittleEndian.PutUint16(buf[hdr+26:], nPages)
	binary.LittleEndian.PutUint16(buf[hdr+32:], 1) // depth: root is the leaf

	root := buf[pagesOff : pagesOff+pageSize]
	binary.LittleEndian.PutUint16(root[0:], 1) // 1 entry
	epos := leafHeaderSize
	binary.LittleEndian.PutUint32(root[epos:], 7)
	binary.LittleEndian.PutUint32(root[epos+4:], 4321)

	tree, err := Open(buf, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	entry, err := tree.Search(NumericComparator{Key: 7})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := binary.LittleEndian.Uint32(entry[4:]); got != 4321 {
		t.Fatalf("Search returned value %d, want 4321", got)
	}
}
