package pcx

import (
	"bufio"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
)

type encoder struct {
	w *bufio.Writer
}

// BytesPerLine returns the padded scanline length for an image width; PCX
// scanlines are always an even number of bytes.
func BytesPerLine(width int) int {
	return (width + 1) &^ 1
}

func (e *encoder) writeHeader(width, height int) error {
	var b [headerSize]byte

	le := binary.LittleEndian
	b[0] = manufacturer
	b[1] = version
	b[2] = encoding
	b[3] = bitsPerPixel
	le.PutUint16(b[8:], uint16(width-1))
	le.PutUint16(b[10:], uint16(height-1))
	le.PutUint16(b[12:], dpi)
	le.PutUint16(b[14:], dpi)
	b[65] = numPlanes
	le.PutUint16(b[66:], uint16(BytesPerLine(width)))
	le.PutUint16(b[68:], 1)

	_, err := e.w.Write(b[:])
	return err
}

// Runs of two or more use the marker form, as does any single byte that
// would otherwise be read back as a marker
func (e *encoder) writeScanline(line []byte) error {
	for x := 0; x < len(line); {
		v := line[x]
		n := 1
		for x+n < len(line) && line[x+n] == v && n < maxRun {
			n++
		}
		if n > 1 || v&runMask == runMask {
			if err := e.w.WriteByte(runMask | byte(n)); err != nil {
				return err
			}
		}
		if err := e.w.WriteByte(v); err != nil {
			return err
		}
		x += n
	}
	return nil
}

func (e *encoder) writePalette(m *image.Paletted) error {
	var tmp [paletteSize + 1]byte
	tmp[0] = paletteMagic
	for i, c := range m.Palette {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		tmp[1+i*3] = n.R
		tmp[2+i*3] = n.G
		tmp[3+i*3] = n.B
	}
	_, err := e.w.Write(tmp[:])
	return err
}

func (e *encoder) encode(m *image.Paletted) error {
	b := m.Bounds()
	if err := e.writeHeader(b.Dx(), b.Dy()); err != nil {
		return err
	}

	line := make([]byte, BytesPerLine(b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		copy(line, m.Pix[m.PixOffset(b.Min.X, y):m.PixOffset(b.Max.X, y)])
		if err := e.writeScanline(line); err != nil {
			return err
		}
	}

	if err := e.writePalette(m); err != nil {
		return err
	}

	return e.w.Flush()
}

// Encode writes the paletted image m to w in PCX format. Palette entries
// beyond those present in m.Palette are written as black; alpha is dropped.
func Encode(w io.Writer, m *image.Paletted) error {
	b := m.Bounds()
	switch {
	case b.Empty():
		return errors.New("pcx: image is empty")
	case b.Dx() > 0xfffe || b.Dy() > 0x10000 || BytesPerLine(b.Dx())*b.Dy() > maxPixels:
		return errors.New("pcx: image is too large")
	case len(m.Palette) > paletteSize/3:
		return errors.New("pcx: palette has more than 256 colors")
	}

	e := encoder{w: bufio.NewWriter(w)}

	return e.encode(m)
}
