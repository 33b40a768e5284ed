// Package pagecache is an on-disk SQLite index for a .HLP file's page list
// plus a content-addressed cache of rendered RTF, built the way the
// teacher's internal/db builds its schema: one InitDB-style opener, plain
// CREATE TABLE IF NOT EXISTS, WAL journal mode.
package pagecache

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	_ "github.com/mattn/go-sqlite3"

	"hlpcat/internal/hlpfile"
)

// Cache wraps one SQLite database alongside an opened .HLP file.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the <name>.hlpcache database next to hlpPath (or
// inside dir, when dir is non-empty), enables WAL mode, and creates the
// pages/rendered tables idempotently.
func Open(hlpPath, dir string) (*Cache, error) {
	base := filepath.Base(hlpPath)
	if dot := strings.LastIndexByte(base, '.'); dot >= 0 {
		base = base[:dot]
	}
	path := base + ".hlpcache"
	if dir != "" {
		path = filepath.Join(dir, path)
	} else {
		path = filepath.Join(filepath.Dir(hlpPath), path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("pagecache: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pagecache: ping %s: %w", path, err)
	}
	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

func configurePragmas(db *sql.DB) error {
	for _, p := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pagecache: %s: %w", p, err)
		}
	}
	return nil
}

func createTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			hash     INTEGER NOT NULL,
			title    TEXT NOT NULL,
			offset   INTEGER NOT NULL,
			wnumber  INTEGER NOT NULL,
			PRIMARY KEY (hash, offset)
		)`,
		`CREATE TABLE IF NOT EXISTS rendered (
			cache_key BLOB PRIMARY KEY,
			rtf       BLOB NOT NULL
		)`,
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("pagecache: begin: %w", err)
	}
	for _, ddl := range tables {
		if _, err := tx.Exec(ddl); err != nil {
			tx.Rollback()
			return fmt.Errorf("pagecache: create table: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// IndexEntry is one row of the pages table.
type IndexEntry struct {
	Hash    uint32
	Title   string
	Offset  uint32
	WNumber uint32
}

// RebuildIndex replaces the pages table's contents with f's in-memory
// page list (built once by the page builder, never itself a B+ tree).
func (c *Cache) RebuildIndex(f *hlpfile.File) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("pagecache: begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pages`); err != nil {
		tx.Rollback()
		return fmt.Errorf("pagecache: clear pages: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO pages (hash, title, offset, wnumber) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("pagecache: prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, p := range f.Pages {
		if _, err := stmt.Exec(hlpfile.Hash(p.Title), p.Title, p.Offset, p.WNumber); err != nil {
			tx.Rollback()
			return fmt.Errorf("pagecache: insert page %q: %w", p.Title, err)
		}
	}
	return tx.Commit()
}

// ListPages returns every indexed page, ordered by offset.
func (c *Cache) ListPages() ([]IndexEntry, error) {
	rows, err := c.db.Query(`SELECT hash, title, offset, wnumber FROM pages ORDER BY offset`)
	if err != nil {
		return nil, fmt.Errorf("pagecache: query pages: %w", err)
	}
	defer rows.Close()
	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		if err := rows.Scan(&e.Hash, &e.Title, &e.Offset, &e.WNumber); err != nil {
			return nil, fmt.Errorf("pagecache: scan page: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RenderKey derives the content-addressed cache key for one rendered page:
// a blake2b digest of the owning file's path, the page's topic-arena
// offset and reference (its identity within that file's byte stream), and
// the font scale, so a page whose underlying bytes and render parameters
// are unchanged is served from cache without re-running the paragraph
// interpreter.
func RenderKey(f *hlpfile.File, page *hlpfile.Page, fontScale int) []byte {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s|%d|%d|%d", f.Path, page.Offset, page.Reference, fontScale)
	return h.Sum(nil)
}

// GetRendered returns a previously cached RTF blob for key, if present.
func (c *Cache) GetRendered(key []byte) ([]byte, bool, error) {
	var rtf []byte
	err := c.db.QueryRow(`SELECT rtf FROM rendered WHERE cache_key = ?`, key).Scan(&rtf)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pagecache: get rendered: %w", err)
	}
	return rtf, true, nil
}

// PutRendered stores a rendered RTF blob under key, overwriting any prior
// entry.
func (c *Cache) PutRendered(key, rtf []byte) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO rendered (cache_key, rtf) VALUES (?, ?)`, key, rtf)
	if err != nil {
		return fmt.Errorf("pagecache: put rendered: %w", err)
	}
	return nil
}
