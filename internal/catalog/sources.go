package catalog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/adewale/olsen/pkg/models"
)

// AddSource registers path as a scan source, idempotently: re-adding an
// already-registered path is a no-op that returns the existing id.
func (c *Catalog) AddSource(path string) (int64, error) {
	if id, err := c.SourceByPath(path); err == nil {
		return id, nil
	}

	result, err := c.db.Exec("INSERT INTO sources (path) VALUES (?)", path)
	if err != nil {
		return 0, fmt.Errorf("failed to add source %s: %w", path, err)
	}
	return result.LastInsertId()
}

// SourceByPath looks up a registered source's id by its path.
func (c *Catalog) SourceByPath(path string) (int64, error) {
	var id int64
	err := c.db.QueryRow("SELECT id FROM sources WHERE path = ?", path).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveSource deletes a source and, via ON DELETE CASCADE, every photo
// record it owns. Duplicate groups referencing those photos are left to be
// rebuilt on the next scan (spec.md §3 "removal cascades").
func (c *Catalog) RemoveSource(path string) error {
	_, err := c.db.Exec("DELETE FROM sources WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("failed to remove source %s: %w", path, err)
	}
	return nil
}

// ListSources returns every registered source directory.
func (c *Catalog) ListSources() ([]models.SourceDirectory, error) {
	rows, err := c.db.Query("SELECT id, path, last_scanned FROM sources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []models.SourceDirectory
	for rows.Next() {
		var s models.SourceDirectory
		var lastScanned sql.NullString
		if err := rows.Scan(&s.ID, &s.Path, &lastScanned); err != nil {
			return nil, err
		}
		s.LastScanned = timeFromSQL(lastScanned)
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// TouchSource records the time a source finished being scanned.
func (c *Catalog) TouchSource(sourceID int64, when time.Time) error {
	_, err := c.db.Exec("UPDATE sources SET last_scanned = ? WHERE id = ?", timeToSQL(when), sourceID)
	if err != nil {
		return fmt.Errorf("failed to touch source %d: %w", sourceID, err)
	}
	return nil
}
