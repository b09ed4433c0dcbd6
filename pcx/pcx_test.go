package pcx

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPalette() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.RGBA{uint8(i), uint8(255 - i), uint8(i * 7), 0xff}
	}
	return p
}

func testImage(w, h int, fill func(x, y int) uint8) *image.Paletted {
	m := image.NewPaletted(image.Rect(0, 0, w, h), testPalette())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetColorIndex(x, y, fill(x, y))
		}
	}
	return m
}

func encode(t *testing.T, m *image.Paletted) []byte {
	b := new(bytes.Buffer)
	require.Nil(t, Encode(b, m))
	return b.Bytes()
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	runs := func(x, y int) uint8 {
		// Runs of 1 and 2 then a 64 run that must be split
		switch {
		case x < 1:
			return 1
		case x < 3:
			return 2
		case x < 67:
			return 0xc3
		default:
			return uint8(y)
		}
	}

	tables := map[string]*image.Paletted{
		"1x1":        testImage(1, 1, func(int, int) uint8 { return 0xff }),
		"odd width":  testImage(5, 3, func(x, y int) uint8 { return uint8(x*16 + y) }),
		"runs":       testImage(130, 4, runs),
		"all values": testImage(256, 2, func(x, y int) uint8 { return uint8(x + y) }),
		"markers":    testImage(9, 9, func(x, y int) uint8 { return 0xc0 | uint8(x) }),
	}

	for name, m := range tables {
		m := m
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodePaletted(bytes.NewReader(encode(t, m)))
			require.Nil(t, err)
			assert.Equal(t, m.Rect, got.Rect)
			assert.Equal(t, m.Pix, got.Pix)
			assert.Equal(t, m.Palette, got.Palette)
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	t.Parallel()
	b := encode(t, testImage(3, 1, func(x, _ int) uint8 { return []uint8{0x05, 0xc1, 0xc1}[x] }))

	require.Len(t, b, headerSize+4+1+paletteSize)
	assert.Equal(t, []byte{10, 5, 1, 8}, b[:4])
	le := binary.LittleEndian
	assert.Equal(t, uint16(2), le.Uint16(b[8:]))
	assert.Equal(t, uint16(0), le.Uint16(b[10:]))
	assert.Equal(t, uint16(96), le.Uint16(b[12:]))
	assert.Equal(t, uint16(96), le.Uint16(b[14:]))
	assert.Equal(t, make([]byte, 48), b[16:64])
	assert.Equal(t, []byte{0, 1}, b[64:66])
	assert.Equal(t, uint16(4), le.Uint16(b[66:]))
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0}, b[68:74])
	assert.Equal(t, make([]byte, 54), b[74:128])

	// Literal, run of two markers, padding literal
	assert.Equal(t, []byte{0x05, 0xc2, 0xc1, 0x00}, b[128:132])
	assert.Equal(t, byte(paletteMagic), b[132])
}

func TestEncodeSingleMarkerValue(t *testing.T) {
	t.Parallel()
	b := encode(t, testImage(2, 1, func(x, _ int) uint8 { return []uint8{0xc0, 0x3f}[x] }))
	assert.Equal(t, []byte{0xc1, 0xc0, 0x3f}, b[128:131])
}

func TestEncodeLongRun(t *testing.T) {
	t.Parallel()
	b := encode(t, testImage(70, 1, func(int, int) uint8 { return 0x07 }))
	assert.Equal(t, []byte{0xff, 0x07, 0xc7, 0x07, paletteMagic}, b[128:133])

	got, err := DecodePaletted(bytes.NewReader(b))
	require.Nil(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x07}, 70), got.Pix)
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, Encode(io.Discard, image.NewPaletted(image.Rect(0, 0, 0, 4), nil)))

	m := image.NewPaletted(image.Rect(0, 0, 1, 1), make(color.Palette, 257))
	assert.NotNil(t, Encode(io.Discard, m))
}

func TestDecodeShortPalette(t *testing.T) {
	t.Parallel()
	m := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.RGBA{1, 2, 3, 0xff}})
	got, err := DecodePaletted(bytes.NewReader(encode(t, m)))
	require.Nil(t, err)
	assert.Len(t, got.Palette, 256)
	assert.Equal(t, color.RGBA{1, 2, 3, 0xff}, got.Palette[0])
	assert.Equal(t, color.RGBA{0, 0, 0, 0xff}, got.Palette[255])
}

func TestDecodeSubImage(t *testing.T) {
	t.Parallel()
	m := testImage(6, 6, func(x, y int) uint8 { return uint8(x + 10*y) })
	sub := m.SubImage(image.Rect(1, 2, 4, 5)).(*image.Paletted)
	got, err := DecodePaletted(bytes.NewReader(encode(t, sub)))
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), got.Rect)
	assert.Equal(t, uint8(21), got.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(43), got.ColorIndexAt(2, 2))
}

func TestReadHeader(t *testing.T) {
	t.Parallel()
	valid := encode(t, testImage(5, 3, func(int, int) uint8 { return 0 }))

	h, err := ReadHeader(bytes.NewReader(valid))
	require.Nil(t, err)
	assert.Equal(t, 5, h.Width())
	assert.Equal(t, 3, h.Height())
	assert.Equal(t, 6, h.BytesPerLine)

	tables := []struct {
		name   string
		offset int
		value  byte
	}{
		{"magic", 0, 11},
		{"version", 1, 3},
		{"encoding", 2, 0},
		{"bpp", 3, 4},
		{"reserved", 64, 1},
		{"planes", 65, 3},
		{"width exceeds bytes per line", 66, 4},
		{"negative width", 8, 0},
	}
	for _, table := range tables {
		table := table
		t.Run(table.name, func(t *testing.T) {
			t.Parallel()
			b := append([]byte(nil), valid...)
			b[table.offset] = table.value
			if table.name == "negative width" {
				b[4] = 2 // xmin > xmax
			}
			_, err := ReadHeader(bytes.NewReader(b))
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.True(t, fe.Header)
			assert.True(t, IsHeaderError(err))

			_, err = DecodePaletted(bytes.NewReader(b))
			assert.True(t, IsHeaderError(err))
		})
	}

	_, err = ReadHeader(bytes.NewReader(valid[:100]))
	assert.True(t, IsHeaderError(err))
}

func TestReadHeaderTooLarge(t *testing.T) {
	t.Parallel()
	b := encode(t, testImage(1, 1, func(int, int) uint8 { return 0 }))
	le := binary.LittleEndian
	le.PutUint16(b[8:], 0xfffe)
	le.PutUint16(b[10:], 0xffff)
	le.PutUint16(b[66:], 0xffff)
	_, err := ReadHeader(bytes.NewReader(b))
	assert.True(t, IsHeaderError(err))
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	valid := encode(t, testImage(4, 2, func(x, _ int) uint8 { return uint8(x) }))
	body := headerSize

	t.Run("run overflow", func(t *testing.T) {
		b := append([]byte(nil), valid[:body]...)
		b = append(b, 0xc5, 0x01) // five pixels into a four byte scanline
		b = append(b, valid[body:]...)
		m, err := DecodePaletted(bytes.NewReader(b))
		assert.Nil(t, m)
		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		assert.False(t, fe.Header)
		assert.False(t, IsHeaderError(err))
	})

	t.Run("bad palette marker", func(t *testing.T) {
		b := append([]byte(nil), valid...)
		b[len(b)-paletteSize-1] = 13
		m, err := DecodePaletted(bytes.NewReader(b))
		assert.Nil(t, m)
		var fe *FormatError
		assert.ErrorAs(t, err, &fe)
	})

	for _, n := range []int{body + 1, len(valid) - paletteSize - 1, len(valid) - 1} {
		m, err := DecodePaletted(bytes.NewReader(valid[:n]))
		assert.Nil(t, m)
		var fe *FormatError
		if assert.ErrorAs(t, err, &fe, "truncated at %d", n) {
			assert.False(t, fe.Header)
		}
	}
}

func TestImageDecode(t *testing.T) {
	t.Parallel()
	m := testImage(3, 2, func(x, y int) uint8 { return uint8(x * y) })
	got, format, err := image.Decode(bytes.NewReader(encode(t, m)))
	require.Nil(t, err)
	assert.Equal(t, "pcx", format)
	assert.IsType(t, &image.Paletted{}, got)

	cfg, err := DecodeConfig(bytes.NewReader(encode(t, m)))
	require.Nil(t, err)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}
