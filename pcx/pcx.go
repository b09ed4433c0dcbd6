/*
Package pcx implements a decoder and encoder for 256 color PCX images.

Only one variant of the format is supported: version 5, RLE encoded, 8 bits
per pixel in a single plane with the 256 color palette appended after the
image data. The file starts with a 128 byte little-endian header:

	0      manufacturer, always 10
	1      version, always 5
	2      encoding, always 1
	3      bits per pixel, always 8
	4-11   xmin, ymin, xmax, ymax
	12-15  horizontal and vertical dpi
	16-63  16 color palette, unused
	64     reserved, always 0
	65     number of planes, always 1
	66-67  bytes per line and plane
	68-73  palette info and screen size, deprecated
	74-127 padding

Each scanline is then RLE encoded; a byte with both high bits set is a repeat
count in the low 6 bits for the byte that follows it. The image data is
terminated by a 12 followed by 256 RGB triplets.
*/
package pcx

import (
	"errors"
	"image"
)

const (
	headerSize   = 128
	manufacturer = 10
	version      = 5
	encoding     = 1
	bitsPerPixel = 8
	numPlanes    = 1
	paletteMagic = 12
	paletteSize  = 256 * 3
	runMask      = 0xc0
	maxRun       = 0x3f
	dpi          = 96

	// Largest raster accepted, in bytes, to keep allocation bounded
	maxPixels = 1 << 26
)

// FormatError reports that the input is not a valid 256 color PCX. Header is
// set when the input was rejected before any image data was read.
type FormatError struct {
	Header bool
	Reason string
}

func (e *FormatError) Error() string {
	if e.Header {
		return "pcx: invalid header: " + e.Reason
	}
	return "pcx: invalid format: " + e.Reason
}

func headerError(reason string) error {
	return &FormatError{Header: true, Reason: reason}
}

func formatError(reason string) error {
	return &FormatError{Reason: reason}
}

// IsHeaderError reports whether err rejected the input at the header, in
// which case the input is most likely some other image format.
func IsHeaderError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe) && fe.Header
}

func init() {
	image.RegisterFormat("pcx", "\x0a\x05\x01\x08", Decode, DecodeConfig)
}
