// Package hlpfile implements the .HLP container: the sub-file directory,
// the |SYSTEM|, |FONT|, |CONTEXT|, |TOMAP|, |CTXOMAP| and keyword-tree
// loaders, the topic decompressor, the page builder, and the page-lookup
// family (PageByHash / PageByOffset / PageByMap).
package hlpfile

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/metakeule/fmtdate"
	"golang.org/x/sys/unix"

	"hlpcat/internal/compress"
	"hlpcat/internal/hlperr"
)

const fileMagic = 0x00035F3F

// Window describes one |SYSTEM| window-descriptor record.
type Window struct {
	Type          byte
	Name          string
	Caption       string
	OriginX       int16
	OriginY       int16
	Width         int16
	Height        int16
	Style         uint32
	SelColor      [3]byte
	UnselColor    [3]byte
	Flags         uint16
}

// Font is a decoded |FONT| descriptor.
type Font struct {
	Bold, Italic, Underline, Strikeout bool
	HeightHalfPoints                   int
	Family                             byte
	FaceName                           string
	Color                              [3]byte
}

// MapEntry is one |CTXOMAP| record.
type MapEntry struct {
	Map    uint32
	Offset uint32
}

// File is a fully loaded .HLP archive. It owns the raw file buffer and
// every structure decoded from it; Page, Font, Window, MapEntry etc. are
// all views or small value types backed by this single allocation.
type File struct {
	Path string
	Buf  []byte

	mmapped bool
	osFile  *os.File

	Minor      int
	Major      int
	Flags      uint32
	Compressed bool
	TBSize     int
	DSize      int

	Charset  int
	CodePage int
	LCID     uint32

	FontScaleUnit int // "scale" in HalfPointsScale
	RoundError    int

	Title          string
	Copyright      string
	ContentsStart  uint32
	GenerationDate uint32
	Icon           []byte
	Citation       string
	CntPathOverride string

	Windows []Window
	Fonts   []Font
	Macros  []string

	PhraseTable   *compress.PhraseTable
	PhraseVariant int // 0 none, 2, 4

	topicMap    [][]byte
	topicArena  []byte
	topicMapLen int

	Pages []*Page

	Map   []MapEntry
	TOMap []uint32

	KeywordTrees map[byte]*KeywordTree
	TitleTree    *KeywordTree // |TTLBTREE|
	MacroTree    *KeywordTree // |Viola|
	FootnoteTree *KeywordTree // |Rose|

	ContentsRTF  []byte
	ContentsPage *Page

	refCount int
}

// GenerationDateString renders GenerationDate (a Unix timestamp read from
// the |SYSTEM| header at +6) as a human-readable string, for callers such
// as the CLI's info subcommand that don't want to print a raw uint32.
func (f *File) GenerationDateString() string {
	if f.GenerationDate == 0 {
		return ""
	}
	return fmtdate.Format("YYYY-MM-DD HH:mm:ss", time.Unix(int64(f.GenerationDate), 0).UTC())
}

var (
	openerMu    sync.Mutex
	openedFiles = map[string]*File{}
)

// OpenFile opens path, sharing an already-open File for the same path (by
// incrementing its reference count) rather than re-reading it. This is the
// handle-table redesign of the reference implementation's process-wide
// linked list: callers never walk a global list, they just call OpenFile
// and CloseFile.
func OpenFile(path string) (*File, error) {
	openerMu.Lock()
	if f, ok := openedFiles[path]; ok {
		f.refCount++
		openerMu.Unlock()
		return f, nil
	}
	openerMu.Unlock()

	f, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	f.refCount = 1

	openerMu.Lock()
	openedFiles[path] = f
	openerMu.Unlock()
	return f, nil
}

// CloseFile releases one reference to f. The underlying buffer is
// unmapped/freed only once the reference count reaches zero; closing an
// already-closed handle is a harmless no-op.
func CloseFile(f *File) error {
	if f == nil {
		return nil
	}
	openerMu.Lock()
	defer openerMu.Unlock()
	f.refCount--
	if f.refCount > 0 {
		return nil
	}
	if openedFiles[f.Path] == f {
		delete(openedFiles, f.Path)
	}
	if f.mmapped {
		f.mmapped = false
		err := unix.Munmap(f.Buf)
		f.osFile.Close()
		return err
	}
	return nil
}

func loadFile(path string) (*File, error) {
	osf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := osf.Stat()
	if err != nil {
		osf.Close()
		return nil, err
	}

	f := &File{Path: path, osFile: osf}
	if buf, err := unix.Mmap(int(osf.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED); err == nil {
		f.Buf = buf
		f.mmapped = true
	} else {
		osf.Close()
		buf, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, fmt.Errorf("hlpfile: open %s: %w", path, rerr)
		}
		f.Buf = buf
		f.osFile = nil
	}

	if err := f.readHeader(); err != nil {
		CloseFile(f)
		return nil, err
	}
	if err := f.readSystem(); err != nil {
		CloseFile(f)
		return nil, err
	}
	if f.Minor <= 16 {
		if err := f.readTOMap(); err != nil {
			CloseFile(f)
			return nil, err
		}
	}
	if !f.readPhrasesV2() {
		f.readPhrasesV4()
	}
	if err := f.uncompressTopic(); err != nil {
		CloseFile(f)
		return nil, err
	}
	if err := f.readFont(); err != nil {
		CloseFile(f)
		return nil, err
	}
	if err := f.walkTopics(); err != nil {
		CloseFile(f)
		return nil, err
	}

	f.readKeywordTree('K')
	f.readMap()
	f.TitleTree, _ = f.readNamedTree("|TTLBTREE")
	f.MacroTree, _ = f.readNamedTree("|Viola")
	f.FootnoteTree, _ = f.readNamedTree("|Rose")
	f.readCntFile()
	if f.Minor > 16 {
		// A v>=17 file without |CONTEXT| is part of the load-time fatal set.
		if _, _, err := f.findSubFile("|CONTEXT"); err != nil {
			CloseFile(f)
			return nil, fmt.Errorf("hlpfile: %s: |CONTEXT| missing on v%d file: %w", path, f.Minor, err)
		}
	}

	return f, nil
}

func (f *File) readHeader() error {
	if len(f.Buf) < 16 {
		return fmt.Errorf("hlpfile: file too small: %w", hlperr.ErrTruncated)
	}
	magic := le32(f.Buf, 0)
	if magic != fileMagic {
		return fmt.Errorf("hlpfile: magic %#x: %w", magic, hlperr.ErrBadMagic)
	}
	return nil
}

func le16(b []byte, off int) uint16 { return uint16(b[off]) | uint16(b[off+1])<<8 }
func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
