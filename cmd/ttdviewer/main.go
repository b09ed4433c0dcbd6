package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bodgit/ttdviewer"
	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/pcx"
	"github.com/bodgit/ttdviewer/recolor"
	"github.com/urfave/cli/v2"
)

const defaultConfig = "ttdviewer.toml"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func loadConfig(c *cli.Context) (*ttdviewer.Config, error) {
	cfg, err := ttdviewer.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("db") {
		cfg.Database = c.String("db")
	}
	if c.IsSet("climate") {
		cfg.Climate = c.String("climate")
	}
	if c.IsSet("recolor") {
		cfg.RecolorFile = c.String("recolor")
	}
	if c.IsSet("transparent-as-blue") {
		cfg.TransparentAsBlue = c.Bool("transparent-as-blue")
	}

	for _, s := range c.StringSlice("select") {
		choice := strings.SplitN(s, "=", 2)
		if len(choice) != 2 {
			return nil, fmt.Errorf("bad selection %q, expected CHOICE=CHILD", s)
		}
		cfg.Selection[choice[0]] = choice[1]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newViewer(c *cli.Context) (*ttdviewer.Viewer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	return ttdviewer.New(cfg, newLogger(c))
}

func newCatalog(c *cli.Context) (*ttdviewer.Catalog, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	return ttdviewer.NewCatalog(cfg.Database, newLogger(c))
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func exportOptions(c *cli.Context) ttdviewer.ExportOptions {
	opts := ttdviewer.ExportOptions{
		Bake: c.Bool("bake"),
	}
	switch {
	case c.IsSet("counter"):
		opts.Frame = ttdviewer.FrameCounter
		opts.Counter = uint16(c.Uint("counter"))
	default:
		opts.Frame = ttdviewer.FrameFrozen
	}
	return opts
}

func info(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	for _, file := range c.Args().Slice() {
		s, err := ttdviewer.ReadFile(file)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
		}
		b := s.Image.Bounds()
		fmt.Printf("%s: %s, %dx%d, %s palette, sha1 %s\n", file, strings.ToUpper(s.Format), b.Dx(), b.Dy(), s.Origin, s.SHA1)
	}

	return nil
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	var to palette.Origin
	switch strings.ToLower(c.String("to")) {
	case "dos":
		to = palette.DOS
	case "win":
		to = palette.WIN
	default:
		return cli.NewExitError(fmt.Errorf("unknown palette %q", c.String("to")), 1)
	}

	s, err := ttdviewer.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := ttdviewer.Convert(s, to)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	f, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	if err := pcx.Encode(f, m); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func export(c *cli.Context) error {
	if c.NArg() < 1 || (c.NArg() < 2 && !c.IsSet("sha1")) {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	v, err := newViewer(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	out := c.Args().Get(0)
	if c.IsSet("sha1") {
		db, err := newCatalog(c)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer db.Close()

		s, err := db.Lookup(strings.ToUpper(c.String("sha1")))
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if s == nil {
			return cli.NewExitError(fmt.Errorf("no sprite with sha1 %s", c.String("sha1")), 1)
		}
		v.SetSprite(s)
	} else {
		if err := v.Open(c.Args().Get(0)); err != nil {
			return cli.NewExitError(err, 1)
		}
		out = c.Args().Get(1)
	}

	opts := exportOptions(c)
	opts.TransparentAsBlue = v.Config().TransparentAsBlue

	if err := v.ExportFile(out, opts); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func dumpPalette(c *cli.Context) error {
	v, err := newViewer(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	p := v.Engine().Unanimated()
	if c.IsSet("counter") {
		p = v.Engine().Render(uint16(c.Uint("counter")))
	}
	p = palette.Build(p, v.Composer().Effective(), v.Config().TransparentAsBlue)

	hidden := v.Hidden()
	fmt.Print("   ")
	for x := 0; x < 16; x++ {
		fmt.Printf("      %x", x)
	}
	fmt.Println()
	for y := 0; y < 16; y++ {
		fmt.Printf("%x0:", y)
		for x := 0; x < 16; x++ {
			i := y*16 + x
			if c.Bool("filter") && hidden[i] {
				fmt.Print(" ------")
				continue
			}
			fmt.Printf(" %02x%02x%02x", p[i].R, p[i].G, p[i].B)
		}
		fmt.Println()
	}

	return nil
}

func rules(c *cli.Context) error {
	v, err := newViewer(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	climate := v.Composer().Climate()
	parents := make(map[*recolor.Node]*recolor.Node)
	v.Composer().Root().Walk(func(n *recolor.Node, depth int) bool {
		for _, child := range n.Children {
			parents[child] = n
		}

		mark := " "
		switch {
		case !n.Enabled(climate):
			mark = "-"
		case parents[n] != nil && parents[n].Kind == recolor.Choice && v.Composer().IsSelected(parents[n], n):
			mark = "*"
		}

		fmt.Printf("%s%s %s %s", strings.Repeat("  ", depth), mark, n.Kind, n.Name)
		if n.Description != "" {
			fmt.Printf(" (%s)", n.Description)
		}
		fmt.Println()
		return true
	})

	fmt.Println("animation")
	for _, r := range v.Engine().Rules() {
		enabled, _ := v.Engine().Enabled(r.Name())
		mark := "-"
		if enabled {
			mark = "*"
		}
		fmt.Printf("  %s %s\n", mark, r.Name())
	}

	return nil
}

func importFiles(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	db, err := newCatalog(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	for _, file := range c.Args().Slice() {
		sha, err := db.Import(file)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Printf("%s %s\n", sha, file)
	}

	return nil
}

func scan(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	db, err := newCatalog(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := db.Scan(ctx, c.Args().First()); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func list(c *cli.Context) error {
	db, err := newCatalog(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	entries, err := db.List()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	for _, e := range entries {
		fmt.Printf("%s %s %4s %dx%d\n", e.SHA1, e.Origin, e.Format, e.Width, e.Height)
		for _, p := range e.Paths {
			fmt.Printf("  %s\n", p)
		}
	}

	return nil
}

func watch(c *cli.Context) error {
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

	out := c.String("output")
	if out == "" {
		out = strings.TrimSuffix(c.Args().First(), filepath.Ext(c.Args().First())) + ".export.pcx"
	}

	opts := exportOptions(c)
	opts.TransparentAsBlue = v.Config().TransparentAsBlue

	var last string
	write := func() {
		s := v.Sprite()
		if s.SHA1 == last {
			return
		}
		last = s.SHA1
		if err := v.ExportFile(out, opts); err != nil {
			log.Println(err)
			return
		}
		fmt.Printf("Exported \"%s\"\n", out)
	}
	write()

	// Only sprite changes matter here, the engine is never ticked
	unsubscribe := v.OnChange(write)
	defer unsubscribe()

	ctx, cancel := signalContext()
	defer cancel()

	if err := v.Watch(ctx, ttdviewer.DefaultDebounce); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "ttdviewer"
	app.Usage = "Transport Tycoon sprite viewer and palette tool"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"TTDVIEWER_CONFIG"},
			Value:   filepath.Join(cwd, defaultConfig),
			Usage:   "path to configuration file",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"TTDVIEWER_DB"},
			Usage:   "path to database",
		},
		&cli.StringFlag{
			Name:  "climate",
			Usage: "temperate, arctic, tropic or toyland",
		},
		&cli.StringFlag{
			Name:  "recolor",
			Usage: "path to recolor rule document",
		},
		&cli.StringSliceFlag{
			Name:  "select",
			Usage: "select a recoloring, as CHOICE=CHILD",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	frameFlags := []cli.Flag{
		&cli.UintFlag{
			Name:  "counter",
			Usage: "render the animation at this counter value instead of frozen",
		},
		&cli.BoolFlag{
			Name:  "bake",
			Usage: "apply the recoloring to the image data rather than the palette",
		},
		&cli.BoolFlag{
			Name:  "transparent-as-blue",
			Usage: "write transparent colors as opaque blue",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "info",
			Usage:       "Show format and detected base palette of images",
			Description: "",
			ArgsUsage:   "FILE...",
			Action:      info,
		},
		{
			Name:        "convert",
			Usage:       "Convert an image between the DOS and WIN palettes",
			Description: "",
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "to",
					Value: "dos",
					Usage: "target palette, dos or win",
				},
			},
			Action: convert,
		},
		{
			Name:        "export",
			Usage:       "Write a recolored snapshot of an image as PCX",
			Description: "",
			ArgsUsage:   "[INPUT] OUTPUT",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:  "sha1",
					Usage: "read the image from the database",
				},
			}, frameFlags...),
			Action: export,
		},
		{
			Name:        "palette",
			Usage:       "Print the current palette",
			Description: "",
			Flags: []cli.Flag{
				&cli.UintFlag{
					Name:  "counter",
					Usage: "render the animation at this counter value",
				},
				&cli.BoolFlag{
					Name:  "filter",
					Usage: "hide indices according to the hide settings",
				},
				&cli.BoolFlag{
					Name:  "transparent-as-blue",
					Usage: "show transparent colors as opaque blue",
				},
			},
			Action: dumpPalette,
		},
		{
			Name:        "rules",
			Usage:       "Print the recolor rules and animations",
			Description: "",
			Action:      rules,
		},
		{
			Name:        "import",
			Usage:       "Import images into the database",
			Description: "",
			ArgsUsage:   "FILE...",
			Action:      importFiles,
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and import every image found",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action:      scan,
		},
		{
			Name:        "list",
			Usage:       "List the images in the database",
			Description: "",
			Action:      list,
		},
		{
			Name:        "watch",
			Usage:       "Export an image again whenever it changes",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "path to write to",
				},
			}, frameFlags...),
			Action: watch,
		},
		{
			Name:        "view",
			Usage:       "View an animated image in the terminal",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "reload",
					Usage: "reload the image when it changes",
				},
			},
			Action: view,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
