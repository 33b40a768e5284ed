package hlpfile

// Page is one topic-header record materialized by the page builder. Pages
// are kept as a flat slice on File rather than the reference design's
// doubly-linked list with raw prev/next pointers (see SPEC_FULL.md §9: arena of
// indices eliminates back-pointers and makes reference-counted sharing
// trivial).
type Page struct {
	File *File

	Title string

	// Offset is this page's absolute position in the topic arena; it is
	// the key PageByOffset/PageByHash/PageByMap all resolve to.
	Offset uint32
	// Reference is the raw next-record pointer the page was found at;
	// rtf.BrowsePage starts its record walk from it.
	Reference uint32
	WNumber   uint32

	// BrowseBwd/BrowseFwd are resolved to absolute topic offsets for
	// v<=16 files at load time (via TOMap); for v>=17 files they are
	// already absolute in the source record.
	BrowseBwd uint32
	BrowseFwd uint32

	Macros []string

	FirstLink []*Link
	FirstHS   []*HotspotLink
	VarRows   []*Row

	// arenaOffset is not set or read anywhere; the paragraph interpreter
	// locates the page's first record from Reference and Offset.
	arenaOffset int
}

// Link is a navigation annotation: either a macro invocation, a topic
// jump, or a pop-up. cpMin/cpMax bound the run of emitted RTF text (in
// UTF-16 code units) the link applies to.
type Link struct {
	Cookie      LinkCookie
	Target      string
	Hash        uint32
	ColorChange bool
	Hotspot     bool
	Window      int
	WindowName  string
	CPMin       int
	CPMax       int
}

// LinkCookie distinguishes the three link kinds the opcode table can
// produce.
type LinkCookie int

const (
	LinkMacro LinkCookie = iota
	LinkJump
	LinkPopup
)

// HotspotLink augments a Link with the rectangular hit region of an image
// hotspot, in twips, relative to the image that carries it.
type HotspotLink struct {
	Link
	X, Y, W, H int
	ImageIndex int
}

// Row records one variable-width table row's column widths, in twips,
// after the page's first pass through the paragraph interpreter -
// rendering widgets track user resizes against this baseline.
type Row struct {
	Widths []int
}

// KeywordTree is a generalized |xWBTREE|/|xWDATA| keyword index: the
// B+ tree maps a keyword to an offset/count pair inside the companion
// |xWDATA| sub-file, which in turn holds topic offsets.
type KeywordTree struct {
	Keywords []string
	Topics   map[string][]uint32
}
