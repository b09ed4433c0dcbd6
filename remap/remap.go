/*
Package remap implements recolorings of 256 color indexed images.

A recoloring is a total function over the palette indices 0 to 255. Indices
that are not explicitly remapped map to themselves so a Table is never
partially defined. Tables are plain values; copying one copies the whole
mapping.
*/
package remap

import (
	"fmt"
	"image"
	"runtime"
	"sync"
)

const (
	// Size is the number of palette indices covered by a Table
	Size = 256

	// Keep can be used in place of a target index to keep the identity
	Keep = -1
)

// Table maps every palette index to another palette index.
type Table [Size]uint8

// IndexError reports a target palette index outside of 0 to 255.
type IndexError struct {
	Index  int
	Target int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("remap: target %d for index %d out of range", e.Target, e.Index)
}

// Identity returns the Table mapping every index to itself.
func Identity() Table {
	var t Table
	for i := range t {
		t[i] = uint8(i)
	}
	return t
}

// FromPartial returns a Table from a contiguous run of mappings, entries[0]
// mapping index first. Keep entries, and every index outside of the run,
// map to themselves.
func FromPartial(entries []int, first int) (Table, error) {
	t := Identity()
	if first < 0 || first+len(entries) > Size {
		return t, &IndexError{Index: first, Target: first + len(entries) - 1}
	}
	for i, e := range entries {
		switch {
		case e == Keep:
			continue
		case e < 0 || e >= Size:
			return Identity(), &IndexError{Index: first + i, Target: e}
		}
		t[first+i] = uint8(e)
	}
	return t, nil
}

// FromIndices returns a Table where indices[i] maps to targets[i]. Both
// slices must have the same length, a Keep target leaves the index alone.
func FromIndices(indices, targets []int) (Table, error) {
	t := Identity()
	if len(indices) != len(targets) {
		return t, fmt.Errorf("remap: %d indices but %d targets", len(indices), len(targets))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= Size {
			return Identity(), &IndexError{Index: idx, Target: targets[i]}
		}
		switch target := targets[i]; {
		case target == Keep:
			continue
		case target < 0 || target >= Size:
			return Identity(), &IndexError{Index: idx, Target: target}
		default:
			t[idx] = uint8(target)
		}
	}
	return t, nil
}

// Must is a helper that wraps a call returning (Table, error) and panics if
// the error is non-nil. It is intended for tables built from constants.
func Must(t Table, err error) Table {
	if err != nil {
		panic(err)
	}
	return t
}

// Merge overlays the tables in order. For every index the last table that
// does not map it to itself wins; an empty list yields the identity.
func Merge(tables ...Table) Table {
	m := Identity()
	for _, t := range tables {
		for i, r := range t {
			if int(r) != i {
				m[i] = r
			}
		}
	}
	return m
}

// IsIdentity reports whether t maps every index to itself.
func (t Table) IsIdentity() bool {
	for i, r := range t {
		if int(r) != i {
			return false
		}
	}
	return true
}

// Changed returns the indices that t does not map to themselves.
func (t Table) Changed() []int {
	var changed []int
	for i, r := range t {
		if int(r) != i {
			changed = append(changed, i)
		}
	}
	return changed
}

// Index returns the index i is remapped to.
func (t Table) Index(i uint8) uint8 {
	return t[i]
}

// Transform re-expresses in in terms of t, returning c with
// c[t[i]] = t[in[i]] for every i. Recolorings are rarely reversible so
// any index not hit by t maps to 0, the transparent index.
func (t Table) Transform(in Table) Table {
	var c Table
	for i := range t {
		c[t[i]] = t[in[i]]
	}
	return c
}

// ApplyPalette returns the palette where entry i is p[t[i]]. Drawing a raster
// with the result looks the same as drawing the remapped raster with p.
func ApplyPalette[E any](t Table, p [Size]E) [Size]E {
	var out [Size]E
	for i, r := range t {
		out[i] = p[r]
	}
	return out
}

// ApplyRaster remaps every pixel of src into dst, which may be the same
// image. Rows are independent and are processed concurrently.
func (t Table) ApplyRaster(dst, src *image.Paletted) error {
	db, sb := dst.Bounds(), src.Bounds()
	if db.Dx() != sb.Dx() || db.Dy() != sb.Dy() {
		return fmt.Errorf("remap: source %v and destination %v differ in size", sb.Size(), db.Size())
	}
	if db.Empty() {
		return nil
	}

	rows := make(chan int)
	workers := runtime.GOMAXPROCS(0)
	if workers > db.Dy() {
		workers = db.Dy()
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				so := src.PixOffset(sb.Min.X, sb.Min.Y+y)
				do := dst.PixOffset(db.Min.X, db.Min.Y+y)
				for x := 0; x < db.Dx(); x++ {
					dst.Pix[do+x] = t[src.Pix[so+x]]
				}
			}
		}()
	}
	for y := 0; y < db.Dy(); y++ {
		rows <- y
	}
	close(rows)
	wg.Wait()

	return nil
}
