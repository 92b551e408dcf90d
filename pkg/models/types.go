// Package models defines the core value types shared across the photo
// deduplication core: photo records, formats, EXIF snapshots, duplicate
// groups, and the catalog's own configuration rows.
package models

import "time"

// ExifData is the EXIF snapshot pulled from a photo. Missing fields are left
// absent rather than synthesized; a photo with no parseable EXIF block yields
// a zero-value ExifData rather than an error.
type ExifData struct {
	CapturedAt  time.Time // zero if absent
	CameraModel string    // empty if absent
	Orientation int       // 0 if absent, otherwise 1-8
}

// HasCapturedAt reports whether a capture datetime was present in EXIF.
func (e ExifData) HasCapturedAt() bool {
	return !e.CapturedAt.IsZero()
}

// PhotoRecord is one file on disk observed by a scan, with whatever has been
// computed about it so far: identity, content hash, optional perceptual
// hashes, EXIF snapshot, and group assignment.
type PhotoRecord struct {
	ID       int64
	Path     string // canonicalized absolute path, unique
	SourceID int64

	SHA256 [32]byte // zero value means "not yet computed" (Phase-A pending)
	Size   int64
	Mtime  int64 // seconds since epoch, non-negative

	Format PhotoFormat

	HasPerceptualHash bool // both-or-neither with AHash/DHash
	AHash             uint64
	DHash             uint64

	Exif ExifData

	GroupID  int64 // 0 means ungrouped
	HasGroup bool
}

// SHA256Hex returns the lowercase hex encoding used for persistence and for
// the pack's content-addressable filenames.
func (p PhotoRecord) SHA256Hex() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 64)
	for i, b := range p.SHA256 {
		buf[i*2] = hextable[b>>4]
		buf[i*2+1] = hextable[b&0x0f]
	}
	return string(buf)
}

// HasSHA256 reports whether Phase-A has completed for this record.
func (p PhotoRecord) HasSHA256() bool {
	return p.SHA256 != [32]byte{}
}

// SourceDirectory is a registered scan root.
type SourceDirectory struct {
	ID          int64
	Path        string
	LastScanned time.Time
}

// DuplicateGroup is a set of photo records the matcher has judged to be
// duplicates of one another, with one elected source-of-truth. Groups are
// rebuilt from scratch every scan; IDs are not stable across runs.
type DuplicateGroup struct {
	ID            int64
	Confidence    Confidence
	Members       []int64 // photo IDs
	SourceOfTruth int64   // photo ID, must be a member
}

// CatalogConfig is the catalog's key/value configuration row set.
type CatalogConfig struct {
	SchemaVersion int
	PhashVersion  int
	PackPath      string // empty if unset
	ExportPath    string // empty if unset
}
