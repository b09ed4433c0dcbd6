package animation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bodgit/ttdviewer/palette"
)

const (
	// DefaultStep is how far the counter advances on each tick
	DefaultStep = 8

	// DefaultInterval is how often the game ticks the counter
	DefaultInterval = 30 * time.Millisecond
)

// Engine owns the animation state and the palette built from it. It is safe
// for concurrent use; readers always get a copy of a fully built palette.
type Engine struct {
	mu sync.Mutex

	base    palette.Palette
	rules   []Rule
	enabled []bool
	climate palette.Climate
	counter uint16
	step    uint16
	running bool

	current palette.Palette

	observers map[int]func()
	nextID    int
}

// An Option configures an Engine.
type Option func(*Engine)

// WithStep sets the counter increment per tick.
func WithStep(step uint16) Option {
	return func(e *Engine) {
		e.step = step
	}
}

// WithClimate sets the initial climate.
func WithClimate(c palette.Climate) Option {
	return func(e *Engine) {
		e.climate = c
	}
}

// NewEngine returns an Engine animating base with rules, applied in order.
// All rules start enabled and the counter at zero. Only the rule types of
// this package are accepted, including via embedding.
func NewEngine(base palette.Palette, rules []Rule, options ...Option) (*Engine, error) {
	var scratch palette.Palette
	for i, r := range rules {
		if err := Apply(r, &scratch, 0, palette.Temperate); err != nil {
			return nil, fmt.Errorf("%w: rule %d is %T", err, i, r)
		}
	}

	e := &Engine{
		base:      base,
		rules:     rules,
		enabled:   make([]bool, len(rules)),
		step:      DefaultStep,
		observers: make(map[int]func()),
	}
	for i := range e.enabled {
		e.enabled[i] = true
	}
	for _, o := range options {
		o(e)
	}
	e.current = e.build(e.counter)
	return e, nil
}

func (e *Engine) build(counter uint16) palette.Palette {
	p := e.base
	for i := range p {
		p[i].A = 0xff
	}
	p[palette.Transparent].A = 0

	for i, r := range e.rules {
		c := counter
		if !e.enabled[i] {
			c = 0
		}
		// Checked by NewEngine
		_ = Apply(r, &p, c, e.climate)
	}
	return p
}

// Must be called with the lock held, returns the observers to notify once
// it has been released
func (e *Engine) rebuild() []func() {
	e.current = e.build(e.counter)

	fns := make([]func(), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// Tick advances the counter by one step, wrapping at 16 bits, and rebuilds
// the palette.
func (e *Engine) Tick() {
	e.mu.Lock()
	e.counter += e.step
	fns := e.rebuild()
	e.mu.Unlock()
	notify(fns)
}

// Counter returns the current animation counter.
func (e *Engine) Counter() uint16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter
}

// Climate returns the current climate.
func (e *Engine) Climate() palette.Climate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.climate
}

// SetClimate changes the climate and rebuilds the palette without advancing
// the counter.
func (e *Engine) SetClimate(c palette.Climate) {
	e.mu.Lock()
	e.climate = c
	fns := e.rebuild()
	e.mu.Unlock()
	notify(fns)
}

// Rules returns the rules in the order they are applied.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

func (e *Engine) find(name string) (int, error) {
	for i, r := range e.rules {
		if r.Name() == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("animation: no rule named %q", name)
}

// Enabled reports whether the named rule is animated.
func (e *Engine) Enabled(name string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, err := e.find(name)
	if err != nil {
		return false, err
	}
	return e.enabled[i], nil
}

// SetEnabled enables or disables the named rule. A disabled rule shows its
// colors at counter zero.
func (e *Engine) SetEnabled(name string, enabled bool) error {
	e.mu.Lock()
	i, err := e.find(name)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.enabled[i] = enabled
	fns := e.rebuild()
	e.mu.Unlock()
	notify(fns)
	return nil
}

// Indices returns every palette index written by any rule.
func (e *Engine) Indices() []int {
	var idx []int
	for _, r := range e.rules {
		idx = append(idx, r.Indices()...)
	}
	return idx
}

// Start lets Run drive the counter.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
}

// Pause stops Run from driving the counter, keeping its value.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Stop pauses the animation, resets the counter and rebuilds the palette.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.running = false
	e.counter = 0
	fns := e.rebuild()
	e.mu.Unlock()
	notify(fns)
}

// Running reports whether Run is currently driving the counter.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Palette returns a copy of the current palette.
func (e *Engine) Palette() palette.Palette {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Render returns the palette at an arbitrary counter value using the
// current climate and rule states. The engine is not modified.
func (e *Engine) Render(counter uint16) palette.Palette {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.build(counter)
}

// Unanimated returns the palette with every rule at counter zero, as used
// when freezing an image for export. The engine is not modified.
func (e *Engine) Unanimated() palette.Palette {
	return e.Render(0)
}

// OnChange registers fn to be called after every rebuild of the palette. fn
// is called without any lock held, on the goroutine that caused the
// rebuild. The returned function unregisters it.
func (e *Engine) OnChange(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// Run ticks the engine every interval while it is started, until ctx is
// cancelled.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if e.Running() {
				e.Tick()
			}
		}
	}
}
