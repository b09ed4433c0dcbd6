package ttdviewer

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"io"
	"io/ioutil"
	"os"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/pcx"
	_ "golang.org/x/image/bmp"
)

// ErrFormat is returned for files that are neither PCX nor any other
// decodable image format.
var ErrFormat = errors.New("ttdviewer: unsupported image")

// Sprite is an imported image with its raster converted to DOS palette
// indices.
type Sprite struct {
	// Image holds the normalized raster with the DOS base palette
	Image *image.Paletted

	// Origin is the base palette the file was authored against
	Origin palette.Origin

	// Format is the image format the file was decoded as
	Format string

	// SHA1 is the upper case hex digest of the file contents
	SHA1 string
}

// Decode reads a sprite from r. PCX is tried first, anything rejected at the
// PCX header is handed to the registered image decoders. The image must be
// paletted and its palette must be recognizably one of the base palettes.
func Decode(r io.Reader) (*Sprite, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s := &Sprite{
		Format: "pcx",
		SHA1:   fmt.Sprintf("%X", sha1.Sum(b)),
	}

	m, err := pcx.DecodePaletted(bytes.NewReader(b))
	if err != nil {
		if !pcx.IsHeaderError(err) {
			return nil, err
		}

		// Everything is in memory so any error is a format error
		var i image.Image
		if i, s.Format, err = image.Decode(bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFormat, err)
		}

		var ok bool
		if m, ok = i.(*image.Paletted); !ok {
			return nil, palette.ErrNotIndexed
		}
	}

	if s.Origin, err = palette.Detect(m.Palette); err != nil {
		return nil, err
	}

	// Decoders may hand back shared or sub-images, work on a private copy
	s.Image = image.NewPaletted(m.Bounds(), palette.Base().ColorPalette())
	copy(s.Image.Pix, paletted(m).Pix)

	if err := palette.Normalize(s.Image, s.Origin); err != nil {
		return nil, err
	}

	return s, nil
}

// Returns m with its origin at (0, 0) and Stride equal to its width
func paletted(m *image.Paletted) *image.Paletted {
	b := m.Bounds()
	if m.Stride == b.Dx() && len(m.Pix) == b.Dx()*b.Dy() {
		return m
	}
	out := image.NewPaletted(b, m.Palette)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := m.PixOffset(b.Min.X, y)
		copy(out.Pix[out.PixOffset(b.Min.X, y):], m.Pix[i:i+b.Dx()])
	}
	return out
}

// ReadFile decodes the sprite in file.
func ReadFile(file string) (*Sprite, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Clone returns a deep copy of s.
func (s *Sprite) Clone() *Sprite {
	c := *s
	c.Image = image.NewPaletted(s.Image.Bounds(), s.Image.Palette)
	copy(c.Image.Pix, s.Image.Pix)
	return &c
}
