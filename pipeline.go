package ttdviewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/pcx"
)

const scanWorkers = 10

func isSpriteFile(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".pcx", ".png", ".gif", ".bmp":
		return true
	}
	return false
}

func (c *Catalog) findFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || !isSpriteFile(file) {
				return nil
			}

			// Ignore any file greater than 64 MB
			if info.Size() > 64<<(10*2) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// Files that are not sprites are logged and skipped, anything else stops
// the scan
func skippable(err error) bool {
	var fe *pcx.FormatError
	return errors.As(err, &fe) || errors.Is(err, palette.ErrAmbiguous) || errors.Is(err, palette.ErrNotIndexed) || errors.Is(err, ErrFormat)
}

func (c *Catalog) fileWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			s, err := ReadFile(file)
			if err != nil {
				if skippable(err) {
					c.logger.Printf("Skipping \"%s\": %s\n", file, err)
					continue
				}
				errc <- err
				return
			}

			if s.Origin == palette.WIN {
				c.logger.Printf("WIN palette detected in \"%s\", converting\n", file)
			}

			if _, err := c.Add(file, s); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks path and adds every sprite found to the catalog. Files that
// cannot be decoded as a sprite are logged and skipped.
func (c *Catalog) Scan(ctx context.Context, path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findFiles(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := c.fileWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
