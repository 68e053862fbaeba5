// Package cache provides a durable key-value store mapping file path to
// its last-known (size, modified, partial_hash, full_hash), so repeat
// scans of an unchanged tree never rehash.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ivoronin/dupedog/internal/types"
)

// legacyName is the cache file name used by an older version of this
// tool. Open migrates it into place by rename if the requested path
// does not yet exist.
const legacyName = "hashes.db"

// Cache is a durable, WAL-mode SQLite-backed store of scan_cache rows.
type Cache struct {
	db      *sql.DB
	enabled bool
}

// Open creates the scan_cache table if missing, enables WAL mode, and
// creates an index on (path, size, modified). Passing an empty path
// returns a disabled cache whose operations are all no-ops - callers
// that want caching off entirely use this.
func Open(path string) (*Cache, error) {
	if path == "" {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	if err := migrateLegacy(path); err != nil {
		return nil, fmt.Errorf("migrate legacy cache: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_cache (
			path TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			modified INTEGER NOT NULL,
			partial_hash TEXT NULL,
			full_hash TEXT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_path_size_mod
			ON scan_cache(path, size, modified)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Cache{db: db, enabled: true}, nil
}

// migrateLegacy renames an old-named database file into place if path
// does not yet exist.
func migrateLegacy(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // already present, nothing to migrate
	}

	legacy := filepath.Join(filepath.Dir(path), legacyName)
	if _, err := os.Stat(legacy); err != nil {
		return nil // no legacy file to migrate
	}

	return os.Rename(legacy, path)
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	if !c.enabled || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Snapshot bulk-reads every row into an in-memory map, keyed by path.
// This single read replaces per-file lookups during a scan, avoiding
// lock contention and per-row roundtrips. Returns an empty map when the
// cache is disabled.
func (c *Cache) Snapshot() (map[string]types.CacheEntry, error) {
	result := make(map[string]types.CacheEntry)
	if !c.enabled {
		return result, nil
	}

	rows, err := c.db.Query(`SELECT path, size, modified, partial_hash, full_hash FROM scan_cache`)
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			e           types.CacheEntry
			partialHash sql.NullString
			fullHash    sql.NullString
		)
		if err := rows.Scan(&e.Path, &e.Size, &e.Modified, &partialHash, &fullHash); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		e.PartialHash = partialHash.String
		e.FullHash = fullHash.String
		result[e.Path] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows: %w", err)
	}

	return result, nil
}

// BatchUpsert atomically inserts or updates every entry in one
// transaction. On conflict by path, size and modified are overwritten
// unconditionally. While the stored (size, modified) equals the
// incoming one, each hash column is overwritten only when the incoming
// value is non-empty, so a known hash is never erased by an update that
// didn't compute it. When (size, modified) differs, both stored hashes
// are invalid and each hash column takes the incoming value, NULL when
// it is empty. No-op when the cache is disabled or entries is empty.
func (c *Cache) BatchUpsert(entries []types.CacheEntry) error {
	if !c.enabled || len(entries) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO scan_cache (path, size, modified, partial_hash, full_hash)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			modified = excluded.modified,
			partial_hash = CASE
				WHEN scan_cache.size = excluded.size AND scan_cache.modified = excluded.modified
				THEN COALESCE(excluded.partial_hash, scan_cache.partial_hash)
				ELSE excluded.partial_hash END,
			full_hash = CASE
				WHEN scan_cache.size = excluded.size AND scan_cache.modified = excluded.modified
				THEN COALESCE(excluded.full_hash, scan_cache.full_hash)
				ELSE excluded.full_hash END
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Path, e.Size, e.Modified, e.PartialHash, e.FullHash); err != nil {
			return fmt.Errorf("upsert %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// Clear deletes all rows. Only an explicit reset operation should call
// this - normal scans never clear the cache.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	if _, err := c.db.Exec(`DELETE FROM scan_cache`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Enabled reports whether this cache is backed by a real database file.
func (c *Cache) Enabled() bool { return c.enabled }
