// Package pack materializes the elected source-of-truth photos into a
// content-addressable directory tree with an embedded SQL manifest,
// grounded on bleemesser-photosort's Library: an embedded go-sqlite3
// database alongside plain file copies, generalized from a filename-based
// library into a SHA-addressed, incremental, quality-upgrading pack.
package pack

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const manifestRelPath = ".photopack/manifest.sqlite"

// ManifestEntry mirrors one row of the manifest: everything needed to
// recognize a packed file without touching its bytes.
type ManifestEntry struct {
	SHA256Hex        string
	OriginalFilename string
	Format           string
	Size             int64
	CapturedAt       time.Time
	CameraModel      string
}

// Manifest is the authoritative record of what a pack contains.
type Manifest struct {
	db *sql.DB
}

// OpenManifest opens or creates the manifest database under packRoot.
func OpenManifest(packRoot string) (*Manifest, error) {
	path := filepath.Join(packRoot, manifestRelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS manifest (
			sha256            TEXT PRIMARY KEY,
			original_filename TEXT NOT NULL,
			format            TEXT NOT NULL,
			size              INTEGER NOT NULL,
			captured_at       DATETIME,
			camera_model      TEXT
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create manifest table: %w", err)
	}

	return &Manifest{db: db}, nil
}

// Close releases the manifest's connection.
func (m *Manifest) Close() error {
	return m.db.Close()
}

// Has reports whether sha256Hex already has a manifest row.
func (m *Manifest) Has(sha256Hex string) (bool, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM manifest WHERE sha256 = ?", sha256Hex).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check manifest for %s: %w", sha256Hex, err)
	}
	return count > 0, nil
}

// Upsert inserts or replaces a manifest row.
func (m *Manifest) Upsert(entry ManifestEntry) error {
	var capturedAt interface{}
	if !entry.CapturedAt.IsZero() {
		capturedAt = entry.CapturedAt.UTC().Format(time.RFC3339)
	}

	_, err := m.db.Exec(`
		INSERT INTO manifest (sha256, original_filename, format, size, captured_at, camera_model)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sha256) DO UPDATE SET
			original_filename = excluded.original_filename,
			format = excluded.format,
			size = excluded.size,
			captured_at = excluded.captured_at,
			camera_model = excluded.camera_model
	`, entry.SHA256Hex, entry.OriginalFilename, entry.Format, entry.Size, capturedAt, entry.CameraModel)
	if err != nil {
		return fmt.Errorf("failed to upsert manifest entry %s: %w", entry.SHA256Hex, err)
	}
	return nil
}

// Remove deletes a manifest row.
func (m *Manifest) Remove(sha256Hex string) error {
	_, err := m.db.Exec("DELETE FROM manifest WHERE sha256 = ?", sha256Hex)
	if err != nil {
		return fmt.Errorf("failed to remove manifest entry %s: %w", sha256Hex, err)
	}
	return nil
}

// All returns every SHA the manifest currently tracks.
func (m *Manifest) All() ([]string, error) {
	rows, err := m.db.Query("SELECT sha256 FROM manifest")
	if err != nil {
		return nil, fmt.Errorf("failed to list manifest entries: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sha string
		if err := rows.Scan(&sha); err != nil {
			return nil, err
		}
		out = append(out, sha)
	}
	return out, rows.Err()
}
