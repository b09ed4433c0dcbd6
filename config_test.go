package ttdviewer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissing(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Nil(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 30*time.Millisecond, cfg.Interval.Duration)
	assert.Equal(t, uint16(8), cfg.Step)
	assert.Equal(t, palette.Temperate, cfg.ClimateValue())
	assert.True(t, cfg.Hide.Recolored)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	file := writeFile(t, t.TempDir(), "ttdviewer.toml", []byte(`
climate = "Toyland"
interval = "50ms"
step = 16
transparent_as_blue = true
database = "sprites.db"

[animation]
"Radio Tower" = false

[hide]
magic_pink = false

[selection]
"Company Colour" = "Red"
`))

	cfg, err := LoadConfig(file)
	require.Nil(t, err)
	assert.Equal(t, palette.Toyland, cfg.ClimateValue())
	assert.Equal(t, 50*time.Millisecond, cfg.Interval.Duration)
	assert.Equal(t, uint16(16), cfg.Step)
	assert.True(t, cfg.TransparentAsBlue)
	assert.Equal(t, "sprites.db", cfg.Database)
	assert.Equal(t, "", cfg.RecolorFile)
	assert.Equal(t, map[string]bool{"Radio Tower": false}, cfg.Animation)
	assert.False(t, cfg.Hide.MagicPink)
	assert.True(t, cfg.Hide.PureWhite)
	assert.Equal(t, "Red", cfg.Selection["Company Colour"])
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tables := map[string]string{
		"syntax":   `climate = `,
		"climate":  `climate = "lunar"`,
		"interval": `interval = "soon"`,
		"negative": `interval = "-1s"`,
		"step":     `step = 0`,
	}
	for name, content := range tables {
		_, err := LoadConfig(writeFile(t, dir, name+".toml", []byte(content)))
		assert.NotNil(t, err, name)
	}
}

func TestDurationText(t *testing.T) {
	t.Parallel()
	var d Duration
	require.Nil(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)
	b, err := d.MarshalText()
	require.Nil(t, err)
	assert.Equal(t, "1m30s", string(b))
}
