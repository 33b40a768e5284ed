package hlpfile

import (
	"hlpcat/internal/bptree"
)

// PageByOffset returns the page whose Offset is the largest value
// <= offset, matching the reference's "closest preceding page" semantics.
// Offset 0xFFFFFFFF is a sentinel meaning "no page".
func (f *File) PageByOffset(offset uint32) (*Page, uint32) {
	if offset == 0xFFFFFFFF {
		return nil, 0
	}
	var found *Page
	for _, p := range f.Pages {
		if p.Offset <= offset && (found == nil || found.Offset < p.Offset) {
			found = p
		}
	}
	if found == nil {
		return nil, 0
	}
	return found, offset
}

// contextComparator implements bptree.Comparator for the |CONTEXT| tree,
// whose leaf entries are (u32 hash, u32 topic-offset) pairs.
type contextComparator struct {
	hash uint32
}

func (c contextComparator) Compare(entry []byte) int {
	if len(entry) < 4 {
		return 1
	}
	v := le32(entry, 0)
	switch {
	case v < c.hash:
		return -1
	case v > c.hash:
		return 1
	default:
		return 0
	}
}

func (c contextComparator) EntrySize(entry []byte, isLeaf bool) int {
	if isLeaf {
		return 8
	}
	return 4
}

// PageByHash resolves a context hash to a page. hash==0 means "contents
// page". For v<=16 files the hash is really a TOMap index; for v>=17
// files it is looked up in the |CONTEXT| B+ tree.
func (f *File) PageByHash(hash uint32) (*Page, uint32) {
	if hash == 0 {
		return f.contentsPage()
	}
	if f.Minor <= 16 {
		if int(hash) >= len(f.TOMap) {
			return nil, 0
		}
		return f.PageByOffset(f.TOMap[hash])
	}

	start, end, err := f.findSubFile("|CONTEXT")
	if err != nil {
		return nil, 0
	}
	tree, err := bptree.Open(f.Buf, start)
	if err != nil {
		return nil, 0
	}
	entry, err := tree.Search(contextComparator{hash: hash})
	if err != nil {
		return nil, 0
	}
	_ = end
	return f.PageByOffset(le32(entry, 4))
}

// PageByMap resolves a 32-bit numeric map key (|CTXOMAP|) to a page via
// a linear scan, matching the reference's small, unindexed Map[] table.
func (f *File) PageByMap(m uint32) (*Page, uint32) {
	for _, e := range f.Map {
		if e.Map == m {
			return f.PageByOffset(e.Offset)
		}
	}
	return nil, 0
}

// contentsPage picks the file's designated starting page: a .CNT sidecar
// page if one was built, else TOMap[0] (v<=16) or ContentsStart (v>=17),
// falling back to the first page in the file.
func (f *File) contentsPage() (*Page, uint32) {
	if f.ContentsPage != nil {
		return f.ContentsPage, 0
	}
	var page *Page
	var rel uint32
	if f.Minor <= 16 {
		if len(f.TOMap) > 0 {
			page, rel = f.PageByOffset(f.TOMap[0])
		}
	} else {
		page, rel = f.PageByOffset(f.ContentsStart)
	}
	if page == nil && len(f.Pages) > 0 {
		page = f.Pages[0]
	}
	return page, rel
}
