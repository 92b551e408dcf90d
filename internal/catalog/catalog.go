// Package catalog is the single source of persistent truth for the photo
// deduplication core: an embedded, WAL-mode SQL store holding photos,
// sources, duplicate groups, and configuration. The connection is explicitly
// not shared across goroutines — parallel scan phases produce owned result
// vectors and a later single-threaded section persists them in one
// transaction (spec.md §4.1, §5).
package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/adewale/olsen/pkg/models"
)

// Catalog wraps the SQLite connection and enforces the single-writer
// discipline described in the package doc.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog at path, enables WAL mode, runs any
// pending schema migrations, and reconciles the persisted phash_version
// against the code's PhashVersion (clearing stale perceptual hashes if they
// differ).
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	c := &Catalog{db: db}

	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	if err := c.reconcilePhashVersion(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Close releases the underlying connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) migrate() error {
	var versionStr string
	err := c.db.QueryRow("SELECT value FROM config WHERE key = 'schema_version'").Scan(&versionStr)
	if err == sql.ErrNoRows || isNoSuchTable(err) {
		// Fresh database: base schema has never been created.
		if _, execErr := c.db.Exec(schemaV1); execErr != nil {
			return fmt.Errorf("failed to create schema: %w", execErr)
		}
		if _, execErr := c.db.Exec(
			"INSERT OR REPLACE INTO config (key, value) VALUES ('schema_version', ?)",
			fmt.Sprintf("%d", SchemaVersion),
		); execErr != nil {
			return fmt.Errorf("failed to record schema_version: %w", execErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read schema_version: %w", err)
	}

	var current int
	if _, scanErr := fmt.Sscanf(versionStr, "%d", &current); scanErr != nil {
		return fmt.Errorf("invalid schema_version %q: %w", versionStr, scanErr)
	}

	if current > SchemaVersion {
		return &SchemaTooNewError{Found: current, Wanted: SchemaVersion}
	}

	if current < SchemaVersion {
		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}
		defer tx.Rollback()

		for i := current; i < SchemaVersion && i < len(migrations); i++ {
			if err := migrations[i](tx); err != nil {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}

		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO config (key, value) VALUES ('schema_version', ?)",
			fmt.Sprintf("%d", SchemaVersion),
		); err != nil {
			return fmt.Errorf("failed to bump schema_version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration: %w", err)
		}
	}

	return nil
}

// isNoSuchTable reports whether err is sqlite3's "no such table" error,
// which occurs when opening a brand-new database file before any schema
// exists.
func isNoSuchTable(err error) bool {
	if err == nil {
		return false
	}
	// sqlite3 surfaces this as a plain *errors.errorString from the driver;
	// match on message rather than importing the driver's error type.
	msg := err.Error()
	return len(msg) >= len("no such table") && contains(msg, "no such table")
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// reconcilePhashVersion is the only correct lever for evolving the
// perceptual-hash algorithm (spec.md §4.1, §9): when the persisted
// phash_version differs from the code's, every photo's phash/dhash is
// cleared and its mtime reset to 0 so the next scan re-hashes it.
func (c *Catalog) reconcilePhashVersion() error {
	var versionStr string
	err := c.db.QueryRow("SELECT value FROM config WHERE key = 'phash_version'").Scan(&versionStr)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read phash_version: %w", err)
	}

	current := 0
	if err == nil {
		fmt.Sscanf(versionStr, "%d", &current)
	}

	if current == PhashVersion {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin phash invalidation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE photos SET phash = NULL, dhash = NULL, mtime = 0"); err != nil {
		return fmt.Errorf("failed to invalidate perceptual hashes: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO config (key, value) VALUES ('phash_version', ?)",
		fmt.Sprintf("%d", PhashVersion),
	); err != nil {
		return fmt.Errorf("failed to record phash_version: %w", err)
	}

	return tx.Commit()
}

// Config reads the catalog's configuration row set.
func (c *Catalog) Config() (models.CatalogConfig, error) {
	rows, err := c.db.Query("SELECT key, value FROM config")
	if err != nil {
		return models.CatalogConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	defer rows.Close()

	cfg := models.CatalogConfig{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return models.CatalogConfig{}, err
		}
		switch key {
		case "schema_version":
			fmt.Sscanf(value, "%d", &cfg.SchemaVersion)
		case "phash_version":
			fmt.Sscanf(value, "%d", &cfg.PhashVersion)
		case "pack_path":
			cfg.PackPath = value
		case "export_path":
			cfg.ExportPath = value
		}
	}
	return cfg, rows.Err()
}

// SetConfigValue upserts a single config key. Used for pack_path/export_path;
// schema_version/phash_version are owned by migrate/reconcilePhashVersion.
func (c *Catalog) SetConfigValue(key, value string) error {
	_, err := c.db.Exec("INSERT OR REPLACE INTO config (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("failed to set config %s: %w", key, err)
	}
	return nil
}

// timeToSQL renders a time.Time for storage, or nil for the zero value.
func timeToSQL(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// timeFromSQL parses a nullable stored timestamp back into a time.Time.
func timeFromSQL(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
