/*
Package palette holds the fixed Transport Tycoon base palettes and builds the
256 color palettes sprites are displayed with.

Sprites store palette indices against either the DOS or the WIN base
palette. Everything in this module works in DOS index space; images authored
against the WIN palette are converted on import.
*/
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/bodgit/ttdviewer/remap"
)

// Palette is a full 256 entry palette with non-premultiplied alpha.
type Palette [remap.Size]color.NRGBA

// Well known palette indices
const (
	Transparent = 0x00
	PureWhite   = 0xff
)

var (
	// Grayscale are the indices of the gray ramp. There is no black, index
	// 0 being transparent.
	Grayscale = []int{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}

	// MagicPink are the unused pink indices.
	MagicPink = []int{0xd7, 0xd8, 0xd9, 0xda, 0xdb, 0xdc, 0xdd, 0xde, 0xdf, 0xe0, 0xe1, 0xe2}
)

// Climate selects the climate specific variants of animations and
// recolorings.
type Climate int

// The climates, in the order the game numbers them
const (
	Temperate Climate = iota
	Arctic
	Tropic
	Toyland
	NumClimates
)

var climateNames = [NumClimates]string{"temperate", "arctic", "tropic", "toyland"}

func (c Climate) String() string {
	if c < 0 || c >= NumClimates {
		return fmt.Sprintf("climate(%d)", int(c))
	}
	return climateNames[c]
}

// ParseClimate returns the Climate named s, ignoring case.
func ParseClimate(s string) (Climate, error) {
	for i, name := range climateNames {
		if strings.EqualFold(s, name) {
			return Climate(i), nil
		}
	}
	return Temperate, fmt.Errorf("palette: unknown climate %q", s)
}

// RGB returns the opaque color for a packed 0xRRGGBB value.
func RGB(v uint32) color.NRGBA {
	return color.NRGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

// Base returns the DOS base palette; index 0 is fully transparent, every
// other index is opaque.
func Base() Palette {
	var p Palette
	for i, v := range dos {
		p[i] = RGB(v)
	}
	p[Transparent].A = 0
	return p
}

// Win returns the WIN base palette expressed with the DOS colors it maps
// onto. Indices the WIN palette has no DOS equivalent for keep the color of
// the DOS index they are converted to.
func Win() Palette {
	return remap.ApplyPalette(FromWin, Base())
}

// Build returns the palette to draw DOS index rasters with once the global
// recoloring t has been applied to p. With transparentAsBlue every entry
// that ends up on the transparent index is opaque blue instead, as used by
// sprite editing tools.
func Build(p Palette, t remap.Table, transparentAsBlue bool) Palette {
	out := remap.ApplyPalette(t, p)
	if transparentAsBlue {
		for i, r := range t {
			if r == Transparent {
				out[i] = RGB(0x0000ff)
			}
		}
	}
	return out
}

// ColorPalette converts p to a color.Palette usable with image.Paletted.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// FromColorPalette converts cp into a Palette. Missing entries are
// transparent black.
func FromColorPalette(cp color.Palette) Palette {
	var p Palette
	for i := 0; i < len(p) && i < len(cp); i++ {
		if cp[i] != nil {
			p[i] = color.NRGBAModel.Convert(cp[i]).(color.NRGBA)
		}
	}
	return p
}
