// Package hlperr defines the sentinel error kinds used across the hlpfile
// reader. Call sites wrap a sentinel with fmt.Errorf("...: %w", ...) so
// callers can still errors.Is against the kind.
package hlperr

import "errors"

var (
	// ErrBadMagic is returned when a file or sub-file header's magic number
	// does not match the expected constant.
	ErrBadMagic = errors.New("bad magic number")

	// ErrTruncated is returned when a read would run past the end of the
	// buffer it is bounded to.
	ErrTruncated = errors.New("truncated data")

	// ErrUnsupportedVersion is returned for |SYSTEM major versions this
	// reader does not understand.
	ErrUnsupportedVersion = errors.New("unsupported file version")

	// ErrUnsupportedPacking is returned for an unrecognized graphic packing
	// mode.
	ErrUnsupportedPacking = errors.New("unsupported packing mode")

	// ErrUnsupportedFormat is returned for detected-but-undecoded record
	// layouts (MVB fonts, "new font" descriptors).
	ErrUnsupportedFormat = errors.New("unsupported format variant")

	// ErrIndexOutOfRange names a phrase, font, or topic-block index that
	// falls outside its table. No function returns it: the decoders log
	// such an index and continue.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrIntegrityViolation is returned when a sub-file's declared extent
	// falls outside the file buffer, or a B+ tree's magic is wrong.
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrNotFound is returned by a B+ tree search when no entry matches;
	// the page-lookup family reports a miss as a nil page instead.
	ErrNotFound = errors.New("not found")
)
