package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/bodgit/ttdviewer"
	"github.com/bodgit/ttdviewer/palette"
	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v2"
)

type viewer struct {
	screen tcell.Screen
	v      *ttdviewer.Viewer
	status string
}

func toColor(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Two pixels per cell, the top one in the foreground of an upper half block
func (w *viewer) draw() {
	w.screen.Clear()

	width, height := w.screen.Size()
	if m := w.v.Image(); m != nil {
		b := m.Bounds()
		p := palette.FromColorPalette(m.Palette)
		for y := 0; y < b.Dy() && y/2 < height-1; y += 2 {
			for x := 0; x < b.Dx() && x < width; x++ {
				top := p[m.ColorIndexAt(b.Min.X+x, b.Min.Y+y)]
				bottom := color.NRGBA{}
				if y+1 < b.Dy() {
					bottom = p[m.ColorIndexAt(b.Min.X+x, b.Min.Y+y+1)]
				}

				style := tcell.StyleDefault
				r := '▀'
				switch {
				case top.A == 0 && bottom.A == 0:
					r = ' '
				case top.A == 0:
					r = '▄'
					style = style.Foreground(toColor(bottom))
				case bottom.A == 0:
					style = style.Foreground(toColor(top))
				default:
					style = style.Foreground(toColor(top)).Background(toColor(bottom))
				}
				w.screen.SetContent(x, y/2, r, nil, style)
			}
		}
	}

	e := w.v.Engine()
	state := "paused"
	if e.Running() {
		state = "running"
	}
	status := fmt.Sprintf("%s %s counter %04x %s", w.v.Path(), e.Climate(), e.Counter(), state)
	if w.status != "" {
		status += " | " + w.status
	}
	for i, r := range []rune(status) {
		if i >= width {
			break
		}
		w.screen.SetContent(i, height-1, r, nil, tcell.StyleDefault.Reverse(true))
	}

	w.screen.Show()
}

// Returns false when the viewer should exit
func (w *viewer) handleKey(ev *tcell.EventKey) bool {
	e := w.v.Engine()
	w.status = ""

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch r := ev.Rune(); {
	case r == 'q':
		return false
	case r == ' ':
		if e.Running() {
			e.Pause()
		} else {
			e.Start()
		}
	case r == 's':
		e.Stop()
	case r == 'c':
		w.v.SetClimate((e.Climate() + 1) % palette.NumClimates)
	case r == '.':
		e.Tick()
	case r >= '1' && r <= '9':
		rules := e.Rules()
		i := int(r - '1')
		if i >= len(rules) {
			break
		}
		enabled, _ := e.Enabled(rules[i].Name())
		if err := e.SetEnabled(rules[i].Name(), !enabled); err != nil {
			w.status = err.Error()
			break
		}
		if enabled {
			w.status = rules[i].Name() + " off"
		} else {
			w.status = rules[i].Name() + " on"
		}
	}

	return true
}

func view(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	v, err := newViewer(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := v.Open(c.Args().First()); err != nil {
		return cli.NewExitError(err, 1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := screen.Init(); err != nil {
		return cli.NewExitError(err, 1)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redraw := make(chan struct{}, 1)
	unsubscribe := v.OnChange(func() {
		select {
		case redraw <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	go v.Engine().Run(ctx, v.Config().Interval.Duration)
	v.Engine().Start()

	watchErr := make(chan error, 1)
	if c.Bool("reload") {
		go func() {
			if err := v.Watch(ctx, ttdviewer.DefaultDebounce); err != nil && !errors.Is(err, context.Canceled) {
				watchErr <- err
			}
		}()
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	w := &viewer{screen: screen, v: v}
	w.draw()

	for {
		select {
		case <-redraw:
			w.draw()
		case err := <-watchErr:
			w.status = fmt.Sprintf("reload disabled: %s", err)
			w.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !w.handleKey(ev) {
					return nil
				}
				w.draw()
			case *tcell.EventResize:
				screen.Sync()
				w.draw()
			}
		}
	}
}
