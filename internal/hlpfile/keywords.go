package hlpfile

import (
	"log"

	"hlpcat/internal/bptree"
)

// readKeywordTree loads the generalized |xWBTREE|/|xWDATA| keyword index
// for letter (e.g. 'K' for the standard keyword index, 'A' or 'S' for the
// alternate classes some files carry). |xWBTREE| leaf entries are a
// NUL-terminated keyword followed by a u16 count and a u32 offset into the
// companion |xWDATA| sub-file, where that many u32 topic offsets start.
func (f *File) readKeywordTree(letter byte) {
	kt, err := f.loadKeywordTree(letter)
	if err != nil {
		log.Printf("hlpfile: keyword tree %q: %v", string(letter), err)
		return
	}
	if kt == nil {
		return
	}
	if f.KeywordTrees == nil {
		f.KeywordTrees = map[byte]*KeywordTree{}
	}
	f.KeywordTrees[letter] = kt
}

func (f *File) loadKeywordTree(letter byte) (*KeywordTree, error) {
	treeName := "|" + string(letter) + "WBTREE"
	dataName := "|" + string(letter) + "WDATA"

	treeStart, _, err := f.findSubFile(treeName)
	if err != nil {
		return nil, nil
	}
	dataStart, dataEnd, err := f.findSubFile(dataName)
	if err != nil {
		log.Printf("hlpfile: %s present but %s absent", treeName, dataName)
		return nil, err
	}
	dataBody, dataBodyEnd := subFileBody(dataStart, dataEnd)

	tree, err := bptree.Open(f.Buf, treeStart)
	if err != nil {
		return nil, err
	}

	kt := &KeywordTree{Topics: map[string][]uint32{}}
	err = tree.Enumerate(keywordEnumComparator{}, func(entry []byte) error {
		i := 0
		for i < len(entry) && entry[i] != 0 {
			i++
		}
		kw := string(entry[:i])
		var count int
		cursor := dataBodyEnd
		if i+1+2+4 <= len(entry) {
			count = int(le16(entry, i+1))
			cursor = dataBody + int(le32(entry, i+3))
		}
		var offsets []uint32
		for n := 0; n < count && cursor+4 <= dataBodyEnd; n++ {
			offsets = append(offsets, le32(f.Buf, cursor))
			cursor += 4
		}
		kt.Keywords = append(kt.Keywords, kw)
		kt.Topics[kw] = offsets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kt, nil
}

// keywordEnumComparator never matches (Compare always returns -1) because
// Enumerate never calls Compare for ordering decisions; it exists only to
// supply EntrySize for a NUL-terminated-keyword-plus-u16-count-plus-u32-
// offset leaf entry.
type keywordEnumComparator struct{}

func (keywordEnumComparator) Compare([]byte) int { return -1 }

func (keywordEnumComparator) EntrySize(entry []byte, isLeaf bool) int {
	i := 0
	for i < len(entry) && entry[i] != 0 {
		i++
	}
	if isLeaf {
		return i + 1 + 2 + 4
	}
	return i + 1 + 2
}

// readMap loads the |CTXOMAP| sub-file: a flat array of (lMap, offset)
// pairs used by PageByMap.
func (f *File) readMap() {
	start, end, err := f.findSubFile("|CTXOMAP")
	if err != nil {
		return
	}
	body, bodyEnd := subFileBody(start, end)
	if body+2 > bodyEnd {
		return
	}
	entries := int(le16(f.Buf, body))
	base := body + 2
	f.Map = make([]MapEntry, 0, entries)
	for i := 0; i < entries; i++ {
		off := base + i*8
		if off+8 > bodyEnd {
			break
		}
		f.Map = append(f.Map, MapEntry{
			Map:    le32(f.Buf, off),
			Offset: le32(f.Buf, off+4),
		})
	}
}

// readNamedTree loads one of the three fixed auxiliary trees (|TTLBTREE|,
// |Viola|, |Rose|) as a flat keyword list: these trees have no companion
// data file, so only their key strings are meaningful here.
func (f *File) readNamedTree(name string) (*KeywordTree, error) {
	start, _, err := f.findSubFile(name)
	if err != nil {
		return nil, err
	}
	tree, err := bptree.Open(f.Buf, start)
	if err != nil {
		return nil, err
	}
	kt := &KeywordTree{Topics: map[string][]uint32{}}
	err = tree.Enumerate(asciiEnumComparator{}, func(entry []byte) error {
		i := 0
		for i < len(entry) && entry[i] != 0 {
			i++
		}
		kt.Keywords = append(kt.Keywords, string(entry[:i]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return kt, nil
}

type asciiEnumComparator struct{}

func (asciiEnumComparator) Compare([]byte) int { return -1 }

func (asciiEnumComparator) EntrySize(entry []byte, isLeaf bool) int {
	i := 0
	for i < len(entry) && entry[i] != 0 {
		i++
	}
	if isLeaf {
		return i + 1 + 4
	}
	return i + 1 + 2
}
