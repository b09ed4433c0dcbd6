package ttdviewer

import (
	"bytes"
	"database/sql"
	"fmt"
	"log"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/pcx"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog is a sqlite database of imported sprites. Sprites are stored
// normalized, keyed by the SHA1 of the file they were imported from.
type Catalog struct {
	db     *sql.DB
	logger *log.Logger
}

// CatalogEntry describes a sprite in the catalog.
type CatalogEntry struct {
	SHA1   string
	Origin palette.Origin
	Format string
	Width  int
	Height int
	Paths  []string
}

// NewCatalog opens or creates the catalog in file.
func NewCatalog(file string, logger *log.Logger) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sprite (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, origin INTEGER NOT NULL, format TEXT NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, pcx BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS path (sprite_id INTEGER NOT NULL, path TEXT NOT NULL UNIQUE, FOREIGN KEY(sprite_id) REFERENCES sprite(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Import decodes file and adds it to the catalog, returning its SHA1.
func (c *Catalog) Import(file string) (string, error) {
	s, err := ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}

	if _, err := c.Add(file, s); err != nil {
		return "", err
	}

	return s.SHA1, nil
}

// Add stores s, imported from path, unless a sprite with the same SHA1 is
// already present. The path is always recorded.
func (c *Catalog) Add(path string, s *Sprite) (int64, error) {
	id, err := c.addSprite(s)
	if err != nil {
		return 0, err
	}

	if _, err = c.db.Exec("INSERT OR REPLACE INTO path (sprite_id, path) VALUES (?, ?)", id, path); err != nil {
		return 0, err
	}

	return id, nil
}

func (c *Catalog) addSprite(s *Sprite) (int64, error) {
	var id int64
	switch err := c.db.QueryRow("SELECT id FROM sprite WHERE sha1 = ?", s.SHA1).Scan(&id); err {
	case sql.ErrNoRows:
		b := new(bytes.Buffer)
		if err := pcx.Encode(b, s.Image); err != nil {
			return 0, err
		}
		bounds := s.Image.Bounds()
		// Another worker may have added the same sprite in the meantime
		if _, err := c.db.Exec("INSERT OR IGNORE INTO sprite (sha1, origin, format, width, height, pcx) VALUES (?, ?, ?, ?, ?, ?)", s.SHA1, int(s.Origin), s.Format, bounds.Dx(), bounds.Dy(), b.Bytes()); err != nil {
			return 0, err
		}
		if err := c.db.QueryRow("SELECT id FROM sprite WHERE sha1 = ?", s.SHA1).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// Lookup returns the sprite with the given SHA1, or nil if there isn't one.
func (c *Catalog) Lookup(sha string) (*Sprite, error) {
	var origin int
	var format string
	var blob []byte
	switch err := c.db.QueryRow("SELECT origin, format, pcx FROM sprite WHERE sha1 = ?", sha).Scan(&origin, &format, &blob); err {
	case sql.ErrNoRows:
		c.logger.Printf("No sprite with SHA1 \"%s\"\n", sha)
		return nil, nil
	case nil:
		m, err := pcx.DecodePaletted(bytes.NewReader(blob))
		if err != nil {
			return nil, err
		}
		return &Sprite{
			Image:  m,
			Origin: palette.Origin(origin),
			Format: format,
			SHA1:   sha,
		}, nil
	default:
		return nil, err
	}
}

// Paths returns every path the sprite with the given SHA1 was imported
// from.
func (c *Catalog) Paths(sha string) ([]string, error) {
	rows, err := c.db.Query("SELECT p.path FROM path AS p JOIN sprite AS s ON p.sprite_id = s.id WHERE s.sha1 = ? ORDER BY p.path", sha)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// List returns every sprite in the catalog, ordered by SHA1.
func (c *Catalog) List() ([]CatalogEntry, error) {
	rows, err := c.db.Query("SELECT sha1, origin, format, width, height FROM sprite ORDER BY sha1")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var e CatalogEntry
		var origin int
		if err := rows.Scan(&e.SHA1, &origin, &e.Format, &e.Width, &e.Height); err != nil {
			return nil, err
		}
		e.Origin = palette.Origin(origin)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range entries {
		if entries[i].Paths, err = c.Paths(entries[i].SHA1); err != nil {
			return nil, err
		}
	}

	return entries, nil
}
