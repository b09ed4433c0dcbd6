package pcx

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Header holds the fields of a PCX header that matter once it has been
// validated.
type Header struct {
	XMin, YMin   int
	XMax, YMax   int
	BytesPerLine int
}

// Width returns the image width derived from the bounding box.
func (h Header) Width() int {
	return h.XMax - h.XMin + 1
}

// Height returns the image height derived from the bounding box.
func (h Header) Height() int {
	return h.YMax - h.YMin + 1
}

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// ReadHeader reads and validates the 128 byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var b [headerSize]byte
	if err := readFull(r, b[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Header{}, headerError("truncated header")
		}
		return Header{}, err
	}

	switch {
	case b[0] != manufacturer:
		return Header{}, headerError("not a PCX file")
	case b[1] != version:
		return Header{}, headerError(fmt.Sprintf("unsupported version %d", b[1]))
	case b[2] != encoding:
		return Header{}, headerError(fmt.Sprintf("unsupported encoding %d", b[2]))
	case b[3] != bitsPerPixel:
		return Header{}, headerError(fmt.Sprintf("unsupported bits per pixel %d", b[3]))
	case b[64] != 0:
		return Header{}, headerError("reserved byte is not zero")
	case b[65] != numPlanes:
		return Header{}, headerError(fmt.Sprintf("unsupported number of planes %d", b[65]))
	}

	le := binary.LittleEndian
	h := Header{
		XMin:         int(le.Uint16(b[4:])),
		YMin:         int(le.Uint16(b[6:])),
		XMax:         int(le.Uint16(b[8:])),
		YMax:         int(le.Uint16(b[10:])),
		BytesPerLine: int(le.Uint16(b[66:])),
	}

	width, height := h.Width(), h.Height()
	switch {
	case width <= 0 || height <= 0:
		return Header{}, headerError(fmt.Sprintf("invalid dimensions %dx%d", width, height))
	case width > h.BytesPerLine:
		return Header{}, headerError(fmt.Sprintf("width %d exceeds %d bytes per line", width, h.BytesPerLine))
	case h.BytesPerLine*height > maxPixels:
		return Header{}, headerError(fmt.Sprintf("image too large (%d bytes per line, %d lines)", h.BytesPerLine, height))
	}

	return h, nil
}

type decoder struct {
	r      *bufio.Reader
	header Header

	image   *image.Paletted
	palette color.Palette

	scanline []byte
}

func (d *decoder) readScanline() error {
	for x := 0; x < len(d.scanline); {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if b&runMask != runMask {
			d.scanline[x] = b
			x++
			continue
		}

		count := int(b & maxRun)
		v, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if x+count > len(d.scanline) {
			return formatError(fmt.Sprintf("run of %d overflows scanline at %d", count, x))
		}
		for i := 0; i < count; i++ {
			d.scanline[x] = v
			x++
		}
	}
	return nil
}

func (d *decoder) readPalette() error {
	b, err := d.r.ReadByte()
	if err != nil {
		return err
	}
	if b != paletteMagic {
		return formatError(fmt.Sprintf("palette marker is %d, expected %d", b, paletteMagic))
	}

	var tmp [paletteSize]byte
	if err := readFull(d.r, tmp[:]); err != nil {
		return err
	}
	d.palette = make(color.Palette, paletteSize/3)
	for i := range d.palette {
		d.palette[i] = color.RGBA{tmp[i*3], tmp[i*3+1], tmp[i*3+2], 0xff}
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	var err error
	if d.header, err = ReadHeader(r); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	d.r = bufio.NewReader(r)
	d.scanline = make([]byte, d.header.BytesPerLine)
	m := image.NewPaletted(image.Rect(0, 0, d.header.Width(), d.header.Height()), nil)

	for y := 0; y < d.header.Height(); y++ {
		if err := d.readScanline(); err != nil {
			return bodyError(err)
		}
		copy(m.Pix[y*m.Stride:], d.scanline[:d.header.Width()])
	}

	if err := d.readPalette(); err != nil {
		return bodyError(err)
	}

	m.Palette = d.palette
	d.image = m

	return nil
}

// Any short read after a valid header means the file is truncated
func bodyError(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return formatError("truncated image data")
	}
	return err
}

// Decode reads a PCX image from r and returns it as an image.Image. The
// underlying type is always *image.Paletted with a 256 entry palette.
func Decode(r io.Reader) (image.Image, error) {
	m, err := DecodePaletted(r)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodePaletted is like Decode but returns the concrete *image.Paletted.
func DecodePaletted(r io.Reader) (*image.Paletted, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a PCX image without
// decoding the entire image. The palette is at the end of the file so the
// color model is always color.RGBAModel.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      d.header.Width(),
		Height:     d.header.Height(),
	}, nil
}
