package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/bodgit/ttdviewer/remap"
)

const __ = remap.Keep

// FromWin converts WIN palette indices to DOS palette indices. It is
// lossless for normal colors but the pink indices 03-06 all become D7 and
// the magic text colors 01-02 are preserved.
var FromWin = remap.Must(remap.FromPartial([]int{
	__, 0x01, 0x02, 0xd7, 0xd7, 0xd7, 0xd7, 0xd7, 0xd8, 0xd9, __, __, __, __, __, __, // 00 - 0f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 10 - 1f
	0x06, 0x07, __, __, __, __, __, __, 0x08, __, __, __, __, __, __, __, // 20 - 2f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 30 - 3f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 40 - 4f
	__, __, __, __, __, __, __, __, 0x04, __, __, __, __, __, __, __, // 50 - 5f
	__, __, __, __, __, __, __, __, __, __, 0x05, __, __, __, __, __, // 60 - 6f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 70 - 7f
	__, __, __, __, __, __, __, __, 0x03, __, __, __, __, __, __, __, // 80 - 8f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 90 - 9f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // a0 - af
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // b0 - bf
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // c0 - cf
	__, __, __, __, __, __, __, 0x01, 0x02, 0xf5, 0xf6, 0xf7, 0xf8, 0xf9, 0xfa, 0xfb, // d0 - df
	0xfc, 0xfd, 0xfe, __, __, __, __, __, __, __, __, __, __, __, __, __, // e0 - ef
	__, __, __, __, __, 0x09, 0xda, 0xdb, 0xdc, 0xdd, 0xde, 0xdf, 0xe0, 0xe1, 0xe2, __, // f0 - ff
}, 0))

// ToWin converts DOS palette indices to WIN palette indices. It is lossy:
// DOS only colors are mapped to close WIN colors, the magic text colors are
// lost and index ff stays pure white.
var ToWin = remap.Must(remap.FromPartial([]int{
	__, 0xd7, 0xd8, 0x88, 0x58, 0x6a, 0x20, 0x21, 0x28, 0xf5, __, __, __, __, __, __, // 00 - 0f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 10 - 1f
	0x35, 0x36, __, __, __, __, __, __, 0xb2, __, __, __, __, __, __, __, // 20 - 2f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 30 - 3f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 40 - 4f
	__, __, __, __, __, __, __, __, 0x60, __, __, __, __, __, __, __, // 50 - 5f
	__, __, __, __, __, __, __, __, __, __, 0x35, __, __, __, __, __, // 60 - 6f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 70 - 7f
	__, __, __, __, __, __, __, __, 0xaa, __, __, __, __, __, __, __, // 80 - 8f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // 90 - 9f
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // a0 - af
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // b0 - bf
	__, __, __, __, __, __, __, __, __, __, __, __, __, __, __, __, // c0 - cf
	__, __, __, __, __, __, __, 0x07, 0x08, 0x09, 0xf6, 0xf7, 0xf8, 0xf9, 0xfa, 0xfb, // d0 - df
	0xfc, 0xfd, 0xfe, __, __, __, __, __, __, __, __, __, __, __, __, __, // e0 - ef
	__, __, __, __, __, 0xd9, 0xda, 0xdb, 0xdc, 0xdd, 0xde, 0xdf, 0xe0, 0xe1, 0xe2, __, // f0 - ff
}, 0))

// Origin is the base palette an image was authored against.
type Origin int

// The known base palettes
const (
	DOS Origin = iota
	WIN
)

func (o Origin) String() string {
	switch o {
	case DOS:
		return "DOS"
	case WIN:
		return "WIN"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

var (
	// ErrAmbiguous is returned when an image palette matches both or
	// neither base palette.
	ErrAmbiguous = errors.New("palette: base palette not detected")

	// ErrNotIndexed is returned for images without a palette.
	ErrNotIndexed = errors.New("palette: not an indexed image")
)

const tolerance = 7

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func mayBeEqual(c1, c2 color.NRGBA) bool {
	return absDiff(c1.R, c2.R) < tolerance && absDiff(c1.G, c2.G) < tolerance && absDiff(c1.B, c2.B) < tolerance
}

func entry(p color.Palette, i uint8) (color.NRGBA, bool) {
	if int(i) >= len(p) || p[i] == nil {
		return color.NRGBA{}, false
	}
	return color.NRGBAModel.Convert(p[i]).(color.NRGBA), true
}

// Detect decides which base palette p was authored against by comparing
// the gray ramp. Exactly one of the candidates must match, otherwise
// ErrAmbiguous is returned.
func Detect(p color.Palette) (Origin, error) {
	if len(p) == 0 {
		return DOS, ErrNotIndexed
	}

	maybeDOS, maybeWIN := true, true
	for _, g := range Grayscale {
		want := RGB(dos[g])

		c, ok := entry(p, uint8(g))
		maybeDOS = maybeDOS && ok && mayBeEqual(want, c)

		c, ok = entry(p, ToWin[g])
		maybeWIN = maybeWIN && ok && mayBeEqual(want, c)
	}

	switch {
	case maybeDOS && !maybeWIN:
		return DOS, nil
	case maybeWIN && !maybeDOS:
		return WIN, nil
	default:
		return DOS, ErrAmbiguous
	}
}

// Normalize converts the raster m in place to DOS palette indices if it was
// authored against the WIN palette. The palette of m is left untouched.
func Normalize(m *image.Paletted, o Origin) error {
	if o != WIN {
		return nil
	}
	return FromWin.ApplyRaster(m, m)
}
