package ttdviewer

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/pcx"
	"github.com/bodgit/ttdviewer/remap"
)

// Frame selects the animation state an export is rendered at.
type Frame int

// The animation states
const (
	// FrameCurrent uses the current animation counter
	FrameCurrent Frame = iota
	// FrameFrozen uses every animation at counter zero
	FrameFrozen
	// FrameCounter uses ExportOptions.Counter
	FrameCounter
)

// ExportOptions control how a sprite is written back to a file.
type ExportOptions struct {
	Frame   Frame
	Counter uint16

	// Bake applies the recoloring to the raster and embeds the plain
	// palette instead of embedding the recolored palette
	Bake bool

	// TransparentAsBlue writes every entry that ends up transparent as
	// opaque blue
	TransparentAsBlue bool
}

var errNoSprite = errors.New("no sprite loaded")

// Render returns a copy of m drawn with p and the recoloring t.
func Render(m *image.Paletted, p palette.Palette, t remap.Table, bake, transparentAsBlue bool) (*image.Paletted, error) {
	out := image.NewPaletted(m.Bounds(), nil)
	if bake {
		if err := t.ApplyRaster(out, m); err != nil {
			return nil, err
		}
		t = remap.Identity()
	} else {
		copy(out.Pix, paletted(m).Pix)
	}
	out.Palette = palette.Build(p, t, transparentAsBlue).ColorPalette()
	return out, nil
}

// Snapshot renders the current sprite as described by opts.
func (v *Viewer) Snapshot(opts ExportOptions) (*image.Paletted, error) {
	s := v.Sprite()
	if s == nil {
		return nil, errNoSprite
	}

	var p palette.Palette
	switch opts.Frame {
	case FrameCurrent:
		p = v.engine.Palette()
	case FrameFrozen:
		p = v.engine.Unanimated()
	case FrameCounter:
		p = v.engine.Render(opts.Counter)
	default:
		return nil, fmt.Errorf("unknown frame %d", opts.Frame)
	}

	return Render(s.Image, p, v.composer.Effective(), opts.Bake, opts.TransparentAsBlue)
}

// Export writes the current sprite to w as a PCX as described by opts.
func (v *Viewer) Export(w io.Writer, opts ExportOptions) error {
	m, err := v.Snapshot(opts)
	if err != nil {
		return err
	}
	return pcx.Encode(w, m)
}

// ExportFile is like Export but writes to file.
func (v *Viewer) ExportFile(file string, opts ExportOptions) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := v.Export(f, opts); err != nil {
		return err
	}

	return f.Close()
}

// Convert returns the raster of s expressed against the base palette o,
// with that palette embedded.
func Convert(s *Sprite, o palette.Origin) (*image.Paletted, error) {
	out := image.NewPaletted(s.Image.Bounds(), nil)
	switch o {
	case palette.DOS:
		copy(out.Pix, paletted(s.Image).Pix)
		out.Palette = palette.Base().ColorPalette()
	case palette.WIN:
		if err := palette.ToWin.ApplyRaster(out, s.Image); err != nil {
			return nil, err
		}
		out.Palette = palette.Win().ColorPalette()
	default:
		return nil, fmt.Errorf("unknown base palette %s", o)
	}
	return out, nil
}
