package remap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	t.Parallel()
	id := Identity()
	for i := 0; i < Size; i++ {
		assert.Equal(t, uint8(i), id.Index(uint8(i)))
	}
	assert.True(t, id.IsIdentity())
	assert.Empty(t, id.Changed())
}

func TestFromPartial(t *testing.T) {
	t.Parallel()
	tab, err := FromPartial([]int{0x10, Keep, 0x12}, 0xC6)
	require.Nil(t, err)
	assert.Equal(t, uint8(0x10), tab[0xC6])
	assert.Equal(t, uint8(0xC7), tab[0xC7])
	assert.Equal(t, uint8(0x12), tab[0xC8])
	assert.Equal(t, uint8(0xC9), tab[0xC9])
	assert.Equal(t, []int{0xC6, 0xC8}, tab.Changed())

	_, err = FromPartial([]int{256}, 0)
	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 0, ie.Index)
	assert.Equal(t, 256, ie.Target)

	_, err = FromPartial([]int{-2}, 3)
	assert.ErrorAs(t, err, &ie)

	_, err = FromPartial([]int{1, 2}, 255)
	assert.ErrorAs(t, err, &ie)
}

func TestFromIndices(t *testing.T) {
	t.Parallel()
	tab, err := FromIndices([]int{0x01, 0xFE}, []int{0x02, Keep})
	require.Nil(t, err)
	assert.Equal(t, uint8(0x02), tab[0x01])
	assert.Equal(t, uint8(0xFE), tab[0xFE])

	_, err = FromIndices([]int{1}, []int{1, 2})
	assert.NotNil(t, err)

	_, err = FromIndices([]int{300}, []int{1})
	var ie *IndexError
	assert.ErrorAs(t, err, &ie)
}

func TestMust(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { Must(FromPartial([]int{999}, 0)) })
	assert.NotPanics(t, func() { Must(FromPartial([]int{1}, 0)) })
}

func TestMerge(t *testing.T) {
	t.Parallel()
	t1 := Must(FromPartial([]int{5, 6, 7}, 10))
	t2 := Must(FromPartial([]int{Keep, 20, 21}, 11))

	assert.Equal(t, Identity(), Merge())
	assert.Equal(t, t1, Merge(t1))
	assert.Equal(t, t1, Merge(t1, Identity()))
	assert.Equal(t, t1, Merge(Identity(), t1))

	m := Merge(t1, t2)
	for i := 0; i < Size; i++ {
		if int(t2[i]) != i {
			assert.Equal(t, t2[i], m[i], "index %d", i)
		} else {
			assert.Equal(t, t1[i], m[i], "index %d", i)
		}
	}
	assert.Equal(t, uint8(5), m[10])
	assert.Equal(t, uint8(20), m[12])
	assert.Equal(t, uint8(21), m[13])

	// Order matters
	assert.NotEqual(t, Merge(t1, t2), Merge(t2, t1))
}

func TestTransform(t *testing.T) {
	t.Parallel()
	a := Must(FromPartial([]int{3, 2}, 2)) // swap 2 and 3
	b := Must(FromPartial([]int{9}, 2))    // 2 -> 9

	c := a.Transform(b)
	for i := 0; i < Size; i++ {
		assert.Equal(t, a[b[i]], c[a[i]], "index %d", i)
	}
	assert.Equal(t, uint8(9), c[3])
	assert.Equal(t, uint8(2), c[2])

	// Indices not hit by a collapse to transparent
	n := Must(FromPartial([]int{1}, 2)) // 2 -> 1, nothing maps to 2
	assert.Equal(t, uint8(0), n.Transform(Identity())[2])
}

func TestApplyPalette(t *testing.T) {
	t.Parallel()
	var p [Size]color.RGBA
	for i := range p {
		p[i] = color.RGBA{uint8(i), 0, 0, 0xff}
	}
	tab := Must(FromPartial([]int{0x80}, 0x10))
	out := ApplyPalette(tab, p)
	assert.Equal(t, p[0x80], out[0x10])
	assert.Equal(t, p[0x11], out[0x11])
	assert.Equal(t, p, ApplyPalette(Identity(), p))
}

func TestApplyRaster(t *testing.T) {
	t.Parallel()
	src := image.NewPaletted(image.Rect(0, 0, 7, 5), nil)
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	tab := Must(FromPartial([]int{0xAA, 0xBB}, 3))

	dst := image.NewPaletted(src.Rect, nil)
	require.Nil(t, tab.ApplyRaster(dst, src))
	for i, v := range src.Pix {
		assert.Equal(t, tab[v], dst.Pix[i])
	}

	// In place
	require.Nil(t, tab.ApplyRaster(src, src))
	assert.Equal(t, dst.Pix, src.Pix)

	// Offset bounds
	sub := src.SubImage(image.Rect(2, 1, 5, 3)).(*image.Paletted)
	out := image.NewPaletted(image.Rect(0, 0, 3, 2), nil)
	require.Nil(t, Identity().ApplyRaster(out, sub))
	assert.Equal(t, sub.ColorIndexAt(2, 1), out.ColorIndexAt(0, 0))
	assert.Equal(t, sub.ColorIndexAt(4, 2), out.ColorIndexAt(2, 1))

	assert.NotNil(t, tab.ApplyRaster(image.NewPaletted(image.Rect(0, 0, 1, 1), nil), src))
	assert.Nil(t, tab.ApplyRaster(image.NewPaletted(image.Rect(0, 0, 0, 0), nil), image.NewPaletted(image.Rect(0, 0, 0, 0), nil)))
}
