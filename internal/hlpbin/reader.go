// Package hlpbin provides bounds-checked little-endian integer accessors
// over a byte slice, plus WinHelp's variable-length integer encoding used
// throughout the .HLP container format.
package hlpbin

import (
	"encoding/binary"
	"fmt"

	"hlpcat/internal/hlperr"
)

// Reader is a thin, bounds-checked view over a byte slice. It never panics:
// every accessor returns an error wrapping hlperr.ErrTruncated when the read
// would run past the end of the buffer.
type Reader struct {
	Buf []byte
}

// New wraps buf for bounds-checked access.
func New(buf []byte) Reader { return Reader{Buf: buf} }

func (r Reader) need(off, n int) error {
	if off < 0 || n < 0 || off+n > len(r.Buf) {
		return fmt.Errorf("read [%d:%d] of %d bytes: %w", off, off+n, len(r.Buf), hlperr.ErrTruncated)
	}
	return nil
}

// UShort reads an unsigned 16-bit little-endian integer at off.
func (r Reader) UShort(off int) (uint16, error) {
	if err := r.need(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.Buf[off:]), nil
}

// Short reads a signed 16-bit little-endian integer at off.
func (r Reader) Short(off int) (int16, error) {
	v, err := r.UShort(off)
	return int16(v), err
}

// ULong reads an unsigned 32-bit little-endian integer at off.
func (r Reader) ULong(off int) (uint32, error) {
	if err := r.need(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.Buf[off:]), nil
}

// Long reads a signed 32-bit little-endian integer at off.
func (r Reader) Long(off int) (int32, error) {
	v, err := r.ULong(off)
	return int32(v), err
}

// Byte reads a single byte at off.
func (r Reader) Byte(off int) (byte, error) {
	if err := r.need(off, 1); err != nil {
		return 0, err
	}
	return r.Buf[off], nil
}

// Slice returns a bounds-checked sub-slice [off:off+n).
func (r Reader) Slice(off, n int) ([]byte, error) {
	if err := r.need(off, n); err != nil {
		return nil, err
	}
	return r.Buf[off : off+n], nil
}

// CString reads a NUL-terminated ASCII string starting at off and returns
// it along with the offset immediately after the terminator.
func (r Reader) CString(off int) (string, int, error) {
	i := off
	for {
		b, err := r.Byte(i)
		if err != nil {
			return "", 0, err
		}
		if b == 0 {
			return string(r.Buf[off:i]), i + 1, nil
		}
		i++
	}
}

// FetchCursor walks a byte slice with WinHelp's shifted variable-length
// integer encoding. It is used for the format-byte stream, where "short"
// and "long" values are packed 1-or-2 and 2-or-4 bytes respectively.
type FetchCursor struct {
	Buf []byte
	Pos int
}

func NewFetchCursor(buf []byte, pos int) *FetchCursor {
	return &FetchCursor{Buf: buf, Pos: pos}
}

func (c *FetchCursor) byteAt(off int) (byte, error) {
	if off < 0 || off >= len(c.Buf) {
		return 0, fmt.Errorf("fetch cursor at %d of %d: %w", off, len(c.Buf), hlperr.ErrTruncated)
	}
	return c.Buf[off], nil
}

// FetchUShort reads WinHelp's unsigned short encoding: if the low bit of
// the first byte is clear, it is a 1-byte value (raw/2); otherwise it
// spans two bytes and the stored value is raw/2 with no bias (the
// unsigned variant never subtracts one).
func (c *FetchCursor) FetchUShort() (uint16, error) {
	b0, err := c.byteAt(c.Pos)
	if err != nil {
		return 0, err
	}
	if b0&1 == 0 {
		c.Pos++
		return uint16(b0) / 2, nil
	}
	b1, err := c.byteAt(c.Pos + 1)
	if err != nil {
		return 0, err
	}
	raw := uint16(b0) | uint16(b1)<<8
	c.Pos += 2
	return raw / 2, nil
}

// FetchShort is the signed counterpart: the 1-byte form is biased by 0x80,
// the 2-byte form by 0x8000, each then divided by two.
func (c *FetchCursor) FetchShort() (int16, error) {
	b0, err := c.byteAt(c.Pos)
	if err != nil {
		return 0, err
	}
	if b0&1 == 0 {
		c.Pos++
		return int16(int(b0)-0x80) / 2, nil
	}
	b1, err := c.byteAt(c.Pos + 1)
	if err != nil {
		return 0, err
	}
	raw := int(uint16(b0) | uint16(b1)<<8)
	c.Pos += 2
	return int16((raw - 0x8000) / 2), nil
}

// FetchULong reads WinHelp's unsigned long encoding: low bit of the first
// byte set -> 4-byte value (raw/2); otherwise a 2-byte value (raw/2).
func (c *FetchCursor) FetchULong() (uint32, error) {
	b0, err := c.byteAt(c.Pos)
	if err != nil {
		return 0, err
	}
	if b0&1 != 0 {
		if err := need4(c, c.Pos); err != nil {
			return 0, err
		}
		raw := binary.LittleEndian.Uint32(c.Buf[c.Pos:])
		c.Pos += 4
		return raw / 2, nil
	}
	b1, err := c.byteAt(c.Pos + 1)
	if err != nil {
		return 0, err
	}
	raw := uint32(b0) | uint32(b1)<<8
	c.Pos += 2
	return raw / 2, nil
}

// FetchLong is the signed counterpart: the 4-byte form is biased by
// 0x80000000, the 2-byte form by 0x8000, each then divided by two.
func (c *FetchCursor) FetchLong() (int32, error) {
	b0, err := c.byteAt(c.Pos)
	if err != nil {
		return 0, err
	}
	if b0&1 != 0 {
		if err := need4(c, c.Pos); err != nil {
			return 0, err
		}
		raw := int64(binary.LittleEndian.Uint32(c.Buf[c.Pos:]))
		c.Pos += 4
		return int32((raw - 0x80000000) / 2), nil
	}
	b1, err := c.byteAt(c.Pos + 1)
	if err != nil {
		return 0, err
	}
	raw := int64(uint16(b0) | uint16(b1)<<8)
	c.Pos += 2
	return int32((raw - 0x8000) / 2), nil
}

func need4(c *FetchCursor, off int) error {
	if off < 0 || off+4 > len(c.Buf) {
		return fmt.Errorf("fetch cursor long at %d of %d: %w", off, len(c.Buf), hlperr.ErrTruncated)
	}
	return nil
}

// FetchLongAt, FetchShortAt and FetchUShortAt decode one value at the
// start of buf and return it along with the number of bytes consumed.
// They give callers that re-slice a []byte as they walk it (the topic
// walker, the paragraph interpreter) a single place to get WinHelp's
// variable-length encoding right, instead of each keeping its own copy of
// FetchCursor's branch logic. A buffer too short to hold a complete
// encoding reports the whole buffer as consumed, so callers that advance
// by the returned count land on an empty slice rather than looping.
func FetchLongAt(buf []byte) (int32, int) {
	if len(buf) == 0 {
		return 0, 0
	}
	c := &FetchCursor{Buf: buf}
	v, err := c.FetchLong()
	if err != nil {
		return 0, len(buf)
	}
	return v, c.Pos
}

func FetchShortAt(buf []byte) (int32, int) {
	if len(buf) == 0 {
		return 0, 0
	}
	c := &FetchCursor{Buf: buf}
	v, err := c.FetchShort()
	if err != nil {
		return 0, len(buf)
	}
	return int32(v), c.Pos
}

func FetchUShortAt(buf []byte) (uint16, int) {
	if len(buf) == 0 {
		return 0, 0
	}
	c := &FetchCursor{Buf: buf}
	v, err := c.FetchUShort()
	if err != nil {
		return 0, len(buf)
	}
	return v, c.Pos
}
