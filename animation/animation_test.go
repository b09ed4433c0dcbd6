package animation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColors = []uint32{0x000001, 0x000002, 0x000003, 0x000004, 0x000005}

func TestCyclePosition(t *testing.T) {
	t.Parallel()
	c, err := NewCycle("test", 0x10, testColors, false, 512)
	require.Nil(t, err)

	tables := []struct {
		counter uint16
		want    int
	}{
		{0, 0},
		{8, 0},
		{26, 1},
		{52, 2},
		{100, 3},
		{120, 4},
		{128, 0},
		{0xffff, 4},
	}
	for _, table := range tables {
		assert.Equal(t, table.want, c.Position(table.counter), "counter %d", table.counter)
	}

	inv, err := NewCycle("test", 0x10, testColors, true, 512)
	require.Nil(t, err)
	assert.Equal(t, 4, inv.Position(0))
	assert.Equal(t, c.Position(^uint16(100)), inv.Position(100))
}

func TestCycleApply(t *testing.T) {
	t.Parallel()
	c, err := NewCycle("test", 0x10, testColors, false, 512)
	require.Nil(t, err)
	assert.Equal(t, []int{0x10, 0x11, 0x12, 0x13, 0x14}, c.Indices())

	var p palette.Palette
	require.Nil(t, Apply(c, &p, 52, palette.Temperate))
	for i := range p {
		switch {
		case i >= 0x10 && i < 0x15:
			assert.Equal(t, palette.RGB(testColors[(i-0x10+2)%5]), p[i], "index %#x", i)
		default:
			assert.Zero(t, p[i], "index %#x", i)
		}
	}

	again := p
	require.Nil(t, Apply(c, &again, 52, palette.Temperate))
	assert.Equal(t, p, again)
}

func TestNewRuleErrors(t *testing.T) {
	t.Parallel()
	_, err := NewCycle("test", 0xfe, testColors, false, 1)
	assert.NotNil(t, err)
	_, err = NewCycle("test", 0, nil, false, 1)
	assert.NotNil(t, err)
	_, err = NewRadioTower("test", 0xff, 0, 0, 0)
	assert.NotNil(t, err)
	_, err = NewWaterCycle("test", 0, [][]uint32{{1, 2}}, [][]uint32{{1, 2}, {3, 4}}, false, 1)
	assert.NotNil(t, err)
	_, err = NewWaterCycle("test", 0, [][]uint32{{1, 2}}, [][]uint32{{1}}, false, 1)
	assert.NotNil(t, err)
	_, err = NewWaterCycle("test", 0, nil, nil, false, 1)
	assert.NotNil(t, err)
}

func glittery(t *testing.T) *WaterCycle {
	t.Helper()
	for _, r := range Default() {
		if w, ok := r.(*WaterCycle); ok && r.Name() == "Glittery Water" {
			return w
		}
	}
	t.Fatal("no glittery water")
	return nil
}

func TestWaterCycle(t *testing.T) {
	t.Parallel()
	w := glittery(t)

	page, rot := w.Position(100)
	assert.Equal(t, 2, page)
	assert.Equal(t, 0, rot)
	page, rot = w.Position(200)
	assert.Equal(t, 2, page)
	assert.Equal(t, 1, rot)

	var p palette.Palette
	require.Nil(t, Apply(w, &p, 0, palette.Temperate))
	assert.Equal(t, palette.RGB(0xd8f4fc), p[0xfa])
	require.Nil(t, Apply(w, &p, 100, palette.Temperate))
	assert.Equal(t, palette.RGB(0x84acc4), p[0xfa])
	require.Nil(t, Apply(w, &p, 100, palette.Toyland))
	assert.Equal(t, palette.RGB(0x94c8d8), p[0xfa])
	require.Nil(t, Apply(w, &p, 200, palette.Arctic))
	assert.Equal(t, palette.RGB(0x486490), p[0xfa])
	assert.Equal(t, palette.RGB(0x84acc4), p[0xfe])
	assert.Zero(t, p[0xf9])
}

func TestRadioTower(t *testing.T) {
	t.Parallel()
	r, err := NewRadioTower("test", 0xef, 0xff0000, 0x800000, 0x140000)
	require.Nil(t, err)

	tables := []struct {
		counter       uint16
		first, second int
	}{
		{0x00, 0, 1},
		{0x7e, 0, 1},
		{0x80, 1, 0},
		{0x92, 1, 0},
		{0x94, 2, 0},
		{0xe8, 2, 0},
		{0xea, 1, 0},
		{0x100, 0, 1},
		{0x114, 0, 2},
	}
	for _, table := range tables {
		first, second := r.State(table.counter)
		assert.Equal(t, table.first, first, "counter %#x", table.counter)
		assert.Equal(t, table.second, second, "counter %#x", table.counter)
	}

	var p palette.Palette
	require.Nil(t, Apply(r, &p, 0x94, palette.Temperate))
	assert.Equal(t, palette.RGB(0x140000), p[0xef])
	assert.Equal(t, palette.RGB(0xff0000), p[0xf0])
}

func TestApplyUnknown(t *testing.T) {
	t.Parallel()
	var p palette.Palette
	assert.NotNil(t, Apply(nil, &p, 0, palette.Temperate))
}

func newEngine(t *testing.T, rules []Rule, options ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(palette.Base(), rules, options...)
	require.Nil(t, err)
	return e
}

type embeddedCycle struct {
	*Cycle
}

func TestNewEngineUnknownRule(t *testing.T) {
	t.Parallel()
	c := Default()[0].(*Cycle)

	_, err := NewEngine(palette.Base(), []Rule{c})
	assert.Nil(t, err)

	for _, rules := range [][]Rule{
		{embeddedCycle{c}},
		{c, nil},
	} {
		e, err := NewEngine(palette.Base(), rules)
		assert.True(t, errors.Is(err, errUnknownRule))
		assert.Nil(t, e)
	}
}

func TestDefaultIndices(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Default())
	seen := make(map[int]bool)
	for _, i := range e.Indices() {
		assert.False(t, seen[i], "index %#x owned twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 0xff-0xe3)
}

func TestEngineWraparound(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Default())
	for i := 0; i < 0x10000; i++ {
		e.Tick()
	}
	assert.Equal(t, uint16(0), e.Counter())

	e.Tick()
	assert.Equal(t, uint16(8), e.Counter())

	s := newEngine(t, nil, WithStep(0x7000))
	s.Tick()
	s.Tick()
	s.Tick()
	assert.Equal(t, uint16(0x5000), s.Counter())
}

func TestEngine(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Default(), WithClimate(palette.Arctic))
	assert.Equal(t, palette.Arctic, e.Climate())

	p := e.Palette()
	assert.Equal(t, uint8(0), p[palette.Transparent].A)
	assert.Equal(t, palette.Base()[0x10], p[0x10])
	assert.Equal(t, e.Render(0), p)

	changes := 0
	cancel := e.OnChange(func() { changes++ })

	e.Tick()
	e.Tick()
	assert.Equal(t, uint16(16), e.Counter())
	assert.Equal(t, e.Render(16), e.Palette())
	assert.Equal(t, 2, changes)

	// Snapshots never touch the engine
	frozen := e.Unanimated()
	assert.Equal(t, uint16(16), e.Counter())
	assert.Equal(t, e.Render(0), frozen)

	e.Start()
	assert.True(t, e.Running())
	e.Pause()
	assert.False(t, e.Running())
	assert.Equal(t, uint16(16), e.Counter())

	e.SetClimate(palette.Toyland)
	assert.Equal(t, uint16(16), e.Counter())
	assert.Equal(t, 3, changes)

	e.Start()
	e.Stop()
	assert.False(t, e.Running())
	assert.Equal(t, uint16(0), e.Counter())
	assert.Equal(t, frozen[0xe3], e.Palette()[0xe3])
	assert.Equal(t, 4, changes)

	cancel()
	e.Tick()
	assert.Equal(t, 4, changes)
}

func TestEngineDisabledRule(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Default(), WithClimate(palette.Toyland))
	require.Nil(t, e.SetEnabled("Radio Tower", false))
	enabled, err := e.Enabled("Radio Tower")
	require.Nil(t, err)
	assert.False(t, enabled)

	for i := 0; i < 0x100; i++ {
		p := e.Palette()
		assert.Equal(t, palette.RGB(0xff0000), p[0xef], "counter %#x", e.Counter())
		assert.Equal(t, palette.RGB(0x800000), p[0xf0], "counter %#x", e.Counter())
		e.Tick()
	}

	// Other rules keep animating
	assert.NotEqual(t, e.Render(0)[0xe8], e.Render(26)[0xe8])

	assert.NotNil(t, e.SetEnabled("Nope", true))
	_, err = e.Enabled("Nope")
	assert.NotNil(t, err)
}

func TestEngineRun(t *testing.T) {
	t.Parallel()
	e := newEngine(t, Default())
	ticked := make(chan struct{}, 1)
	e.OnChange(func() {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- e.Run(ctx, time.Millisecond)
	}()

	e.Start()
	select {
	case <-ticked:
	case <-time.After(5 * time.Second):
		t.Fatal("engine never ticked")
	}
	cancel()
	assert.Equal(t, context.Canceled, <-done)
	assert.NotEqual(t, uint16(0), e.Counter())
}
