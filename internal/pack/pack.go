package pack

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/adewale/olsen/pkg/models"
)

// ProgressSink receives pack lifecycle events, mirroring orchestrator's
// scan sink so the CLI collaborator drives both with the same shape.
type ProgressSink struct {
	PackStarted func(total int)
	FilePacked  func(n int)
	PackDone    func()
}

func (s ProgressSink) started(total int) {
	if s.PackStarted != nil {
		s.PackStarted(total)
	}
}

func (s ProgressSink) packed(n int) {
	if s.FilePacked != nil {
		s.FilePacked(n)
	}
}

func (s ProgressSink) done() {
	if s.PackDone != nil {
		s.PackDone()
	}
}

// TargetPath returns the content-addressable destination for a SHA: the
// two-character prefix shards the directory so a single pack root never
// holds an unbounded number of siblings in one directory.
func TargetPath(packRoot, sha256Hex string, format models.PhotoFormat) string {
	return filepath.Join(packRoot, sha256Hex[:2], sha256Hex+"."+format.Extension())
}

// Write materializes desired — one record per duplicate group's
// source-of-truth plus every ungrouped record — into packRoot, skipping
// anything already present in both the filesystem and the manifest, and
// removes any previously packed SHA no longer in the desired set.
func Write(packRoot string, desired []models.PhotoRecord, sink ProgressSink) error {
	manifest, err := OpenManifest(packRoot)
	if err != nil {
		return err
	}
	defer manifest.Close()

	sink.started(len(desired))

	desiredSHAs := make(map[string]bool, len(desired))
	n := 0
	for _, rec := range desired {
		shaHex := rec.SHA256Hex()
		desiredSHAs[shaHex] = true

		if err := reconcileOne(manifest, packRoot, rec, shaHex); err != nil {
			log.Printf("pack: failed to reconcile %s: %v", rec.Path, err)
			continue
		}
		n++
		sink.packed(n)
	}

	if err := cleanup(manifest, packRoot, desiredSHAs); err != nil {
		return err
	}

	sink.done()
	return nil
}

func reconcileOne(manifest *Manifest, packRoot string, rec models.PhotoRecord, shaHex string) error {
	target := TargetPath(packRoot, shaHex, rec.Format)

	_, statErr := os.Stat(target)
	fileExists := statErr == nil

	inManifest, err := manifest.Has(shaHex)
	if err != nil {
		return err
	}

	if fileExists && inManifest {
		return nil
	}

	if !fileExists {
		if err := copyFile(rec.Path, target); err != nil {
			return fmt.Errorf("failed to copy %s to pack: %w", rec.Path, err)
		}
	}

	if !inManifest {
		if err := manifest.Upsert(ManifestEntry{
			SHA256Hex:        shaHex,
			OriginalFilename: filepath.Base(rec.Path),
			Format:           rec.Format.String(),
			Size:             rec.Size,
			CapturedAt:       rec.Exif.CapturedAt,
			CameraModel:      rec.Exif.CameraModel,
		}); err != nil {
			return err
		}
	}

	return nil
}

// cleanup removes every manifest entry (and its backing file) whose SHA is
// no longer in the desired set — the mechanism that makes a quality
// upgrade (e.g. JPEG superseded by its RAW sibling) actually shrink the pack.
func cleanup(manifest *Manifest, packRoot string, desiredSHAs map[string]bool) error {
	tracked, err := manifest.All()
	if err != nil {
		return err
	}

	for _, shaHex := range tracked {
		if desiredSHAs[shaHex] {
			continue
		}

		prefix := filepath.Join(packRoot, shaHex[:2])
		entries, err := os.ReadDir(prefix)
		if err == nil {
			for _, entry := range entries {
				if len(entry.Name()) >= len(shaHex) && entry.Name()[:len(shaHex)] == shaHex {
					if rmErr := os.Remove(filepath.Join(prefix, entry.Name())); rmErr != nil {
						log.Printf("pack: failed to remove stale file for %s: %v", shaHex, rmErr)
					}
				}
			}
		}

		if err := manifest.Remove(shaHex); err != nil {
			return fmt.Errorf("failed to remove stale manifest entry %s: %w", shaHex, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}

// DesiredSet builds the pack's desired record set from the catalog's
// current groups and photos: the source-of-truth from every group, plus
// every ungrouped photo.
func DesiredSet(allPhotos []models.PhotoRecord, groups []models.DuplicateGroup) []models.PhotoRecord {
	byID := make(map[int64]models.PhotoRecord, len(allPhotos))
	for _, p := range allPhotos {
		byID[p.ID] = p
	}

	inGroup := map[int64]bool{}
	var desired []models.PhotoRecord
	for _, g := range groups {
		for _, id := range g.Members {
			inGroup[id] = true
		}
		if sot, ok := byID[g.SourceOfTruth]; ok {
			desired = append(desired, sot)
		}
	}

	for _, p := range allPhotos {
		if !inGroup[p.ID] {
			desired = append(desired, p)
		}
	}
	return desired
}
