package hlpfile

import (
	"fmt"
	"log"

	"hlpcat/internal/hlperr"
)

// readFont loads the |FONT| sub-file: the face-name table and the
// dscr_num descriptor records. Only the "old" dialect (face_offset < 12)
// is implemented; MVB and "new font" dialects are detected and reported
// as unsupported rather than guessed at (see Non-goals and DESIGN.md's
// Open Question resolution).
func (f *File) readFont() error {
	start, end, err := f.findSubFile("|FONT")
	if err != nil {
		return fmt.Errorf("hlpfile: |FONT|: %w", err)
	}
	body, bodyEnd := subFileBody(start, end)
	buf := f.Buf
	if body+8 > bodyEnd {
		return fmt.Errorf("hlpfile: |FONT| header: %w", hlperr.ErrTruncated)
	}

	faceNum := int(le16(buf, body))
	dscrNum := int(le16(buf, body+2))
	faceOff := int(le16(buf, body+4))
	dscrOff := int(le16(buf, body+6))

	if faceOff >= 12 {
		return fmt.Errorf("hlpfile: |FONT| mvb/new-font dialect (face_offset=%d): %w", faceOff, hlperr.ErrUnsupportedFormat)
	}
	if faceNum <= 0 {
		return fmt.Errorf("hlpfile: |FONT| face_num=%d: %w", faceNum, hlperr.ErrIntegrityViolation)
	}

	f.FontScaleUnit = 10
	f.RoundError = 5

	stride := (dscrOff - faceOff) / faceNum
	if stride <= 0 {
		return fmt.Errorf("hlpfile: |FONT| degenerate face stride: %w", hlperr.ErrIntegrityViolation)
	}

	f.Fonts = make([]Font, 0, dscrNum)
	for i := 0; i < dscrNum; i++ {
		recOff := body + dscrOff + i*11
		if recOff+11 > bodyEnd {
			log.Printf("hlpfile: |FONT| descriptor %d out of range, stopping", i)
			break
		}
		flag := buf[recOff]
		height := int(buf[recOff+1])
		family := buf[recOff+2]
		faceIdx := int(le16(buf, recOff+3))
		color := [3]byte{buf[recOff+5], buf[recOff+6], buf[recOff+7]}

		faceName := "Helv"
		if faceIdx < faceNum {
			faceStart := body + faceOff + faceIdx*stride
			if faceStart+stride <= bodyEnd {
				faceName = cstringFromBytes(buf[faceStart : faceStart+stride])
				if len(faceName) > 31 {
					faceName = faceName[:31]
				}
			}
		} else {
			log.Printf("hlpfile: |FONT| descriptor %d face index %d out of %d faces", i, faceIdx, faceNum)
		}

		if height == 0 {
			// No host DPI/graphics context is available to this core (see
			// Non-goals: font object creation is a caller concern); fall
			// back to a conservative default half-point size instead of
			// querying a device context that doesn't exist here.
			height = 20
		}

		fnt := Font{
			Bold:              flag&0x01 != 0,
			Italic:            flag&0x02 != 0,
			Underline:         flag&0x04 != 0,
			Strikeout:         flag&0x08 != 0,
			HeightHalfPoints:  height,
			Family:            family,
			FaceName:          faceName,
			Color:             color,
		}
		f.Fonts = append(f.Fonts, fnt)
	}
	return nil
}

// HalfPointsScale converts a topic-encoded half-point value into an RTF
// half-point value: pts*scale - round_error.
func (f *File) HalfPointsScale(pts int) int {
	return pts*f.FontScaleUnit - f.RoundError
}

// Weight returns the RTF font weight (400/700) for a font descriptor.
func (fnt Font) Weight() int {
	if fnt.Bold {
		return 700
	}
	return 400
}

// FamilyKeyword maps the WinHelp family byte to an RTF \f family keyword.
func (fnt Font) FamilyKeyword() string {
	switch fnt.Family {
	case 1:
		return "modern"
	case 2:
		return "roman"
	case 3:
		return "swiss"
	case 4:
		return "script"
	case 5:
		return "decor"
	default:
		return "nil"
	}
}
