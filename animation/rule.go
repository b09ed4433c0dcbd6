/*
Package animation implements Transport Tycoon palette animation.

A handful of palette indices are not fixed colors; their color is derived
from a 16-bit animation counter which the game advances by 8 every 30 ms.
Each Rule owns a fixed set of indices and writes only those. An Engine
rebuilds the whole palette from the base palette and every rule on each
tick.
*/
package animation

import (
	"errors"
	"fmt"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/remap"
)

// Rule is one of Cycle, WaterCycle or RadioTower. The set is closed; Apply
// dispatches on the concrete type.
type Rule interface {
	// Name returns the human readable name of the rule
	Name() string
	// Indices returns the palette indices the rule writes
	Indices() []int

	rule()
}

type indices struct {
	name  string
	first int
	n     int
}

func (r indices) Name() string {
	return r.name
}

func (r indices) Indices() []int {
	idx := make([]int, r.n)
	for i := range idx {
		idx[i] = r.first + i
	}
	return idx
}

func (indices) rule() {}

func newIndices(name string, first, n int) (indices, error) {
	if n <= 0 || first < 0 || first+n > remap.Size {
		return indices{}, fmt.Errorf("animation: %s: %d colors at index %d out of range", name, n, first)
	}
	return indices{name: name, first: first, n: n}, nil
}

// Cycle rotates a list of colors through consecutive indices.
type Cycle struct {
	indices
	colors []uint32
	invert bool
	speed  uint32
}

// NewCycle returns a Cycle writing colors from index first. With invert the
// counter is bitwise negated before use.
func NewCycle(name string, first int, colors []uint32, invert bool, speed uint32) (*Cycle, error) {
	idx, err := newIndices(name, first, len(colors))
	if err != nil {
		return nil, err
	}
	return &Cycle{
		indices: idx,
		colors:  append([]uint32(nil), colors...),
		invert:  invert,
		speed:   speed,
	}, nil
}

// Position returns the rotation applied at counter, in [0, len(colors)).
func (c *Cycle) Position(counter uint16) int {
	return position(counter, c.invert, c.speed, len(c.colors))
}

// WaterCycle is two cascaded cycles: the pages are stepped through quickly
// while the colors within a page rotate slowly. Toyland has its own set of
// pages.
type WaterCycle struct {
	indices
	pages  [2][][]uint32
	invert bool
	speed  uint32
}

// NewWaterCycle returns a WaterCycle writing from index first. normal and
// toyland must have the same number of pages and every page the same number
// of colors.
func NewWaterCycle(name string, first int, normal, toyland [][]uint32, invert bool, speed uint32) (*WaterCycle, error) {
	if len(normal) == 0 || len(normal) != len(toyland) {
		return nil, fmt.Errorf("animation: %s: %d normal and %d toyland pages", name, len(normal), len(toyland))
	}
	n := len(normal[0])
	w := &WaterCycle{invert: invert, speed: speed}
	for i, set := range [2][][]uint32{normal, toyland} {
		for _, page := range set {
			if len(page) != n {
				return nil, fmt.Errorf("animation: %s: page of %d colors, expected %d", name, len(page), n)
			}
			w.pages[i] = append(w.pages[i], append([]uint32(nil), page...))
		}
	}
	var err error
	if w.indices, err = newIndices(name, first, n); err != nil {
		return nil, err
	}
	return w, nil
}

// Position returns the page and the rotation within it used at counter.
func (w *WaterCycle) Position(counter uint16) (page, rotation int) {
	pages := len(w.pages[0])
	p := position(counter, w.invert, w.speed, pages*w.n)
	return p % pages, p / pages
}

// RadioTower blinks two indices through a bright, intermediate and dark
// color, half a cycle apart.
type RadioTower struct {
	indices
	colors [3]uint32
}

// NewRadioTower returns a RadioTower writing indices first and first+1.
func NewRadioTower(name string, first int, bright, intermediate, dark uint32) (*RadioTower, error) {
	idx, err := newIndices(name, first, 2)
	if err != nil {
		return nil, err
	}
	return &RadioTower{
		indices: idx,
		colors:  [3]uint32{bright, intermediate, dark},
	}, nil
}

// State returns which color, 0 bright, 1 intermediate or 2 dark, the
// indices show at counter.
func (r *RadioTower) State(counter uint16) (first, second int) {
	sub := int(counter>>1) & 0x7f
	return blink(sub), blink(sub ^ 0x40)
}

func blink(sub int) int {
	switch {
	case sub < 0x40:
		return 0
	case sub < 0x4a || sub >= 0x75:
		return 1
	default:
		return 2
	}
}

// Scales counter*speed mod 2^16 into [0, n)
func position(counter uint16, invert bool, speed uint32, n int) int {
	if invert {
		counter = ^counter
	}
	return int((uint32(counter)*speed&0xffff)*uint32(n)) >> 16
}

var errUnknownRule = errors.New("animation: unknown rule")

// Apply writes the colors of r at counter and climate into p. Indices not
// owned by r are left untouched.
func Apply(r Rule, p *palette.Palette, counter uint16, climate palette.Climate) error {
	switch r := r.(type) {
	case *Cycle:
		pos := r.Position(counter)
		for i := 0; i < r.n; i++ {
			p[r.first+i] = palette.RGB(r.colors[(pos+i)%r.n])
		}
	case *WaterCycle:
		set := 0
		if climate == palette.Toyland {
			set = 1
		}
		page, pos := r.Position(counter)
		colors := r.pages[set][page]
		for i := 0; i < r.n; i++ {
			p[r.first+i] = palette.RGB(colors[(pos+i)%r.n])
		}
	case *RadioTower:
		first, second := r.State(counter)
		p[r.first] = palette.RGB(r.colors[first])
		p[r.first+1] = palette.RGB(r.colors[second])
	default:
		return errUnknownRule
	}
	return nil
}
