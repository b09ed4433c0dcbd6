/*
Package ttdviewer is a library for viewing Transport Tycoon sprites with
their palette animations and recolorings applied.

A Viewer ties together a sprite, the animation engine and the recoloring
composer. Sprites are normalized to DOS palette indices on import so the
raster itself is never touched by animation or recoloring; only the palette
it is drawn with changes.
*/
package ttdviewer

import (
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	"github.com/bodgit/ttdviewer/animation"
	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/recolor"
	"github.com/bodgit/ttdviewer/remap"
)

// Viewer holds the sprite being viewed and the state used to draw it. It is
// safe for concurrent use.
type Viewer struct {
	cfg      *Config
	engine   *animation.Engine
	composer *recolor.Composer
	logger   *log.Logger

	mu        sync.Mutex
	sprite    *Sprite
	path      string
	observers map[int]func()
	nextID    int
}

func loadRules(cfg *Config) (*recolor.Node, error) {
	if cfg.RecolorFile == "" {
		return recolor.Default(), nil
	}

	f, err := os.Open(cfg.RecolorFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return recolor.Load(f)
}

// New returns a Viewer configured by cfg. A broken recolor rule document is
// returned as an error.
func New(cfg *Config, logger *log.Logger) (*Viewer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := loadRules(cfg)
	if err != nil {
		return nil, err
	}

	climate := cfg.ClimateValue()

	engine, err := animation.NewEngine(palette.Base(), animation.Default(),
		animation.WithStep(cfg.Step),
		animation.WithClimate(climate))
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:       cfg,
		engine:    engine,
		composer:  recolor.NewComposer(root, climate),
		logger:    logger,
		observers: make(map[int]func()),
	}

	for name, enabled := range cfg.Animation {
		if err := v.engine.SetEnabled(name, enabled); err != nil {
			v.logger.Println(err)
		}
	}

	for choice, child := range cfg.Selection {
		if err := v.composer.Select(choice, child); err != nil {
			v.logger.Println(err)
		}
	}

	return v, nil
}

// Config returns the configuration the viewer was created with.
func (v *Viewer) Config() *Config {
	return v.cfg
}

// Engine returns the animation engine.
func (v *Viewer) Engine() *animation.Engine {
	return v.engine
}

// Composer returns the recoloring composer.
func (v *Viewer) Composer() *recolor.Composer {
	return v.composer
}

// SetClimate changes the climate of both the animation and the recolorings.
func (v *Viewer) SetClimate(c palette.Climate) {
	v.engine.SetClimate(c)
	v.composer.SetClimate(c)
}

// Open decodes the sprite in file and makes it the current one. On failure
// the current sprite is kept.
func (v *Viewer) Open(file string) error {
	s, err := ReadFile(file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if s.Origin == palette.WIN {
		v.logger.Printf("WIN palette detected in \"%s\", converting\n", file)
	}

	v.mu.Lock()
	v.sprite = s
	v.path = file
	fns := v.observerList()
	v.mu.Unlock()
	notify(fns)

	return nil
}

// SetSprite makes s the current sprite.
func (v *Viewer) SetSprite(s *Sprite) {
	v.mu.Lock()
	v.sprite = s
	v.path = ""
	fns := v.observerList()
	v.mu.Unlock()
	notify(fns)
}

// Sprite returns the current sprite, or nil.
func (v *Viewer) Sprite() *Sprite {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sprite
}

// Path returns the file the current sprite was opened from.
func (v *Viewer) Path() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.path
}

// Palette returns the palette the sprite is currently drawn with: the
// animated palette with the global recoloring applied, transparent colors
// shown as blue if configured.
func (v *Viewer) Palette() palette.Palette {
	return palette.Build(v.engine.Palette(), v.composer.Effective(), v.cfg.TransparentAsBlue)
}

// Image returns the current sprite drawn with the current palette, or nil if
// there is no sprite. The raster is shared with the sprite.
func (v *Viewer) Image() *image.Paletted {
	s := v.Sprite()
	if s == nil {
		return nil
	}
	m := *s.Image
	m.Palette = v.Palette().ColorPalette()
	return &m
}

// Hidden returns the palette indices filtered out of palette views by the
// hide settings.
func (v *Viewer) Hidden() [remap.Size]bool {
	var hidden [remap.Size]bool
	if v.cfg.Hide.Animation {
		for _, i := range v.engine.Indices() {
			hidden[i] = true
		}
	}
	if v.cfg.Hide.MagicPink {
		for _, i := range palette.MagicPink {
			hidden[i] = true
		}
	}
	if v.cfg.Hide.PureWhite {
		hidden[palette.PureWhite] = true
	}
	if v.cfg.Hide.Recolored {
		claimed := v.composer.Claimed()
		for i, c := range claimed {
			hidden[i] = hidden[i] || c
		}
	}
	return hidden
}

// Must be called with the lock held
func (v *Viewer) observerList() []func() {
	fns := make([]func(), 0, len(v.observers))
	for _, fn := range v.observers {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

// OnChange registers fn to be called whenever anything affecting the drawn
// image changes: the sprite, the animated palette or the recolorings. The
// returned function unregisters it.
func (v *Viewer) OnChange(fn func()) func() {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.observers[id] = fn
	v.mu.Unlock()

	engine := v.engine.OnChange(fn)
	composer := v.composer.OnChange(fn)

	return func() {
		engine()
		composer()
		v.mu.Lock()
		delete(v.observers, id)
		v.mu.Unlock()
	}
}
