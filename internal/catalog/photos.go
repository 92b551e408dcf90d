package catalog

import (
	"database/sql"
	"fmt"

	"github.com/adewale/olsen/pkg/models"
)

// PathMtimes batch-fetches (path, mtime) pairs for every photo owned by a
// source, driving the orchestrator's mtime-gated reuse decision (spec.md
// §4.5 step 1).
func (c *Catalog) PathMtimes(sourceID int64) (map[string]int64, error) {
	rows, err := c.db.Query("SELECT path, mtime FROM photos WHERE source_id = ?", sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch path/mtime pairs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		out[path] = mtime
	}
	return out, rows.Err()
}

// PhotosMissingFrom returns the catalog paths owned by sourceID that are not
// present in the given set, i.e. files the scanner no longer sees on disk.
func (c *Catalog) PhotosMissingFrom(sourceID int64, present map[string]bool) ([]string, error) {
	known, err := c.PathMtimes(sourceID)
	if err != nil {
		return nil, err
	}
	var missing []string
	for path := range known {
		if !present[path] {
			missing = append(missing, path)
		}
	}
	return missing, nil
}

// RemovePhotosByPath deletes photo rows for the given paths. The scan uses
// it for disk-absence cleanup; a modified file is upserted in place instead.
func (c *Catalog) RemovePhotosByPath(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM photos WHERE path = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, p := range paths {
		if _, err := stmt.Exec(p); err != nil {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}
	return tx.Commit()
}

// UpsertPhoto inserts or updates a photo row keyed by path (spec.md §4.1
// "Insert/update photo (upsert by path)").
func (c *Catalog) UpsertPhoto(tx *sql.Tx, sourceID int64, rec models.PhotoRecord) error {
	var phash, dhash interface{}
	if rec.HasPerceptualHash {
		phash, dhash = int64(rec.AHash), int64(rec.DHash)
	}

	var capturedAt interface{}
	if rec.Exif.HasCapturedAt() {
		capturedAt = timeToSQL(rec.Exif.CapturedAt)
	}
	var cameraModel interface{}
	if rec.Exif.CameraModel != "" {
		cameraModel = rec.Exif.CameraModel
	}
	var orientation interface{}
	if rec.Exif.Orientation != 0 {
		orientation = rec.Exif.Orientation
	}

	var sha interface{}
	if rec.HasSHA256() {
		sha = rec.SHA256Hex()
	}

	_, err := tx.Exec(`
		INSERT INTO photos (source_id, path, sha256, size, mtime, format, phash, dhash, captured_at, camera_model, orientation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			source_id = excluded.source_id,
			sha256 = excluded.sha256,
			size = excluded.size,
			mtime = excluded.mtime,
			format = excluded.format,
			phash = excluded.phash,
			dhash = excluded.dhash,
			captured_at = excluded.captured_at,
			camera_model = excluded.camera_model,
			orientation = excluded.orientation
	`, sourceID, rec.Path, sha, rec.Size, rec.Mtime, rec.Format.String(), phash, dhash, capturedAt, cameraModel, orientation)
	if err != nil {
		return fmt.Errorf("failed to upsert photo %s: %w", rec.Path, err)
	}
	return nil
}

// UpdatePerceptualHash writes the phash/dhash for every photo sharing a
// SHA-256, the Phase-B "propagate to all records sharing its SHA" step
// (spec.md §4.5 step 4).
func (c *Catalog) UpdatePerceptualHash(tx *sql.Tx, sha256Hex string, aHash, dHash uint64) error {
	_, err := tx.Exec("UPDATE photos SET phash = ?, dhash = ? WHERE sha256 = ?", int64(aHash), int64(dHash), sha256Hex)
	if err != nil {
		return fmt.Errorf("failed to update perceptual hash for %s: %w", sha256Hex, err)
	}
	return nil
}

// PerceptualHashForSHA returns a previously-computed (aHash, dHash) pair for
// any photo already holding non-null hashes for the given SHA, so Phase-B
// can skip recomputation (spec.md §4.5 step 3).
func (c *Catalog) PerceptualHashForSHA(sha256Hex string) (aHash, dHash uint64, ok bool, err error) {
	var a, d sql.NullInt64
	err = c.db.QueryRow("SELECT phash, dhash FROM photos WHERE sha256 = ? AND phash IS NOT NULL AND dhash IS NOT NULL LIMIT 1", sha256Hex).Scan(&a, &d)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to look up perceptual hash for %s: %w", sha256Hex, err)
	}
	return uint64(a.Int64), uint64(d.Int64), true, nil
}

// Begin starts a transaction for callers that need to batch multiple catalog
// writes (Phase-A/B persist, group replacement) atomically.
func (c *Catalog) Begin() (*sql.Tx, error) {
	return c.db.Begin()
}

func scanPhotoRow(rows *sql.Rows) (models.PhotoRecord, error) {
	var rec models.PhotoRecord
	var sha sql.NullString
	var formatStr string
	var phash, dhash sql.NullInt64
	var capturedAt sql.NullString
	var cameraModel sql.NullString
	var orientation sql.NullInt64
	var groupID sql.NullInt64

	if err := rows.Scan(&rec.ID, &rec.SourceID, &rec.Path, &sha, &rec.Size, &rec.Mtime, &formatStr,
		&phash, &dhash, &capturedAt, &cameraModel, &orientation, &groupID); err != nil {
		return rec, err
	}

	rec.Format = models.FormatFromString(formatStr)
	if sha.Valid {
		decodeHexSHA(sha.String, &rec.SHA256)
	}
	if phash.Valid && dhash.Valid {
		rec.HasPerceptualHash = true
		rec.AHash = uint64(phash.Int64)
		rec.DHash = uint64(dhash.Int64)
	}
	rec.Exif.CapturedAt = timeFromSQL(capturedAt)
	if cameraModel.Valid {
		rec.Exif.CameraModel = cameraModel.String
	}
	if orientation.Valid {
		rec.Exif.Orientation = int(orientation.Int64)
	}
	if groupID.Valid {
		rec.HasGroup = true
		rec.GroupID = groupID.Int64
	}
	return rec, nil
}

func decodeHexSHA(hexStr string, out *[32]byte) {
	if len(hexStr) != 64 {
		return
	}
	for i := 0; i < 32; i++ {
		hi := hexDigit(hexStr[i*2])
		lo := hexDigit(hexStr[i*2+1])
		out[i] = hi<<4 | lo
	}
}

func hexDigit(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

const photoColumns = "id, source_id, path, sha256, size, mtime, format, phash, dhash, captured_at, camera_model, orientation, group_id"

// AllPhotos returns every photo record, the full input the matcher needs
// (spec.md §4.6).
func (c *Catalog) AllPhotos() ([]models.PhotoRecord, error) {
	rows, err := c.db.Query("SELECT " + photoColumns + " FROM photos")
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()
	return scanPhotoRows(rows)
}

// PhotosBySource returns every photo owned by a source.
func (c *Catalog) PhotosBySource(sourceID int64) ([]models.PhotoRecord, error) {
	rows, err := c.db.Query("SELECT "+photoColumns+" FROM photos WHERE source_id = ?", sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for source %d: %w", sourceID, err)
	}
	defer rows.Close()
	return scanPhotoRows(rows)
}

// PhotosByGroup returns every photo belonging to a duplicate group.
func (c *Catalog) PhotosByGroup(groupID int64) ([]models.PhotoRecord, error) {
	rows, err := c.db.Query("SELECT "+photoColumns+" FROM photos WHERE group_id = ?", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for group %d: %w", groupID, err)
	}
	defer rows.Close()
	return scanPhotoRows(rows)
}

func scanPhotoRows(rows *sql.Rows) ([]models.PhotoRecord, error) {
	var out []models.PhotoRecord
	for rows.Next() {
		rec, err := scanPhotoRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
