// Package orchestrator drives the two-phase incremental scan: discovery and
// mtime-gated reuse, parallel SHA-256 + EXIF extraction, SHA-deduplicated
// perceptual hashing, single-threaded persistence, and a full group rebuild.
// The worker-pool shape is the same channel-plus-WaitGroup pattern
// internal/indexer used in the teacher codebase, generalized into two
// bounded phases instead of one monolithic per-file pipeline.
package orchestrator

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adewale/olsen/internal/catalog"
	"github.com/adewale/olsen/internal/exif"
	"github.com/adewale/olsen/internal/hasher"
	"github.com/adewale/olsen/internal/matcher"
	"github.com/adewale/olsen/internal/ranking"
	"github.com/adewale/olsen/internal/scanner"
	"github.com/adewale/olsen/pkg/models"
)

// ProgressSink receives scan lifecycle events. Any or all callbacks may be
// nil; non-nil callbacks are called synchronously on the goroutine running
// Scan.
type ProgressSink struct {
	ScanStarted func(total int)
	FileHashed  func(n int)
	ScanDone    func()
}

func (s ProgressSink) started(total int) {
	if s.ScanStarted != nil {
		s.ScanStarted(total)
	}
}

func (s ProgressSink) hashed(n int) {
	if s.FileHashed != nil {
		s.FileHashed(n)
	}
}

func (s ProgressSink) done() {
	if s.ScanDone != nil {
		s.ScanDone()
	}
}

// WorkerCount controls Phase-A/Phase-B parallelism. Exported so the CLI
// collaborator can tune it; defaults to 4 to match the teacher engine.
var WorkerCount = 4

// candidate is a discovered file paired with the source that owns it,
// carried from discovery through Phase-A.
type candidate struct {
	sourceID int64
	path     string
	size     int64
	mtime    int64
	format   models.PhotoFormat
}

type phaseAResult struct {
	sourceID int64
	path     string
	size     int64
	mtime    int64
	format   models.PhotoFormat
	sha      [32]byte
	exifData models.ExifData
}

// Scan runs one full incremental scan across every registered source and
// rebuilds duplicate groups from the persisted result.
func Scan(cat *catalog.Catalog, sink ProgressSink) error {
	sources, err := cat.ListSources()
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	dirty, err := discoverAndReconcile(cat, sources)
	if err != nil {
		return err
	}

	sink.started(len(dirty))

	aResults := runPhaseA(dirty, sink)

	representatives, shaGroups := partitionBySHA(aResults)

	reuse := map[[32]byte][2]uint64{}
	var toHash []phaseAResult
	for sha, rep := range representatives {
		if !rep.format.SupportsPerceptualHash() {
			continue
		}
		shaHex := models.PhotoRecord{SHA256: sha}.SHA256Hex()
		if a, d, ok, lookupErr := cat.PerceptualHashForSHA(shaHex); lookupErr == nil && ok {
			reuse[sha] = [2]uint64{a, d}
			continue
		}
		toHash = append(toHash, rep)
	}

	computed := runPhaseB(toHash)
	for sha, hashes := range computed {
		reuse[sha] = hashes
	}

	if err := persist(cat, shaGroups, reuse); err != nil {
		return err
	}

	for _, s := range sources {
		if err := cat.TouchSource(s.ID, time.Now()); err != nil {
			log.Printf("orchestrator: failed to touch source %s: %v", s.Path, err)
		}
	}

	if err := rebuildGroups(cat); err != nil {
		return err
	}

	sink.done()
	return nil
}

// discoverAndReconcile walks every source, partitions its files into
// unchanged (skip) and dirty (needs Phase-A), and deletes catalog rows for
// files no longer present on disk.
func discoverAndReconcile(cat *catalog.Catalog, sources []models.SourceDirectory) ([]candidate, error) {
	var dirty []candidate

	for _, source := range sources {
		discovered, err := scanner.Discover(source.Path)
		if err != nil {
			log.Printf("orchestrator: failed to scan source %s: %v", source.Path, err)
			continue
		}
		recognized := scanner.Recognized(discovered)

		known, err := cat.PathMtimes(source.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch known mtimes for %s: %w", source.Path, err)
		}

		present := make(map[string]bool, len(recognized))
		for _, f := range recognized {
			present[f.Path] = true
			if knownMtime, ok := known[f.Path]; ok && knownMtime == f.Mtime {
				continue
			}
			dirty = append(dirty, candidate{
				sourceID: source.ID,
				path:     f.Path,
				size:     f.Size,
				mtime:    f.Mtime,
				format:   f.Format,
			})
		}

		missing, err := cat.PhotosMissingFrom(source.ID, present)
		if err != nil {
			return nil, fmt.Errorf("failed to compute missing photos for %s: %w", source.Path, err)
		}
		if err := cat.RemovePhotosByPath(missing); err != nil {
			return nil, fmt.Errorf("failed to remove missing photos for %s: %w", source.Path, err)
		}
	}

	return dirty, nil
}

// runPhaseA computes SHA-256 and EXIF for every dirty candidate, in
// parallel, via the same channel-plus-WaitGroup worker pool the teacher
// engine uses for its per-file pipeline.
func runPhaseA(dirty []candidate, sink ProgressSink) []phaseAResult {
	if len(dirty) == 0 {
		return nil
	}

	work := make(chan candidate, len(dirty))
	results := make(chan phaseAResult, len(dirty))
	var wg sync.WaitGroup

	for i := 0; i < WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				sha, err := hasher.SHA256File(c.path)
				if err != nil {
					log.Printf("orchestrator: failed to hash %s: %v", c.path, err)
					continue
				}
				exifData, err := exif.Extract(c.path)
				if err != nil {
					log.Printf("orchestrator: failed to extract EXIF from %s: %v", c.path, err)
				}
				results <- phaseAResult{
					sourceID: c.sourceID,
					path:     c.path,
					size:     c.size,
					mtime:    c.mtime,
					format:   c.format,
					sha:      sha,
					exifData: exifData,
				}
			}
		}()
	}

	for _, c := range dirty {
		work <- c
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []phaseAResult
	n := 0
	for r := range results {
		out = append(out, r)
		n++
		sink.hashed(n)
	}
	return out
}

// partitionBySHA groups Phase-A results by SHA-256 and, for each SHA,
// chooses the lexicographically smallest path as the Phase-B representative.
func partitionBySHA(results []phaseAResult) (map[[32]byte]phaseAResult, map[[32]byte][]phaseAResult) {
	groups := map[[32]byte][]phaseAResult{}
	for _, r := range results {
		groups[r.sha] = append(groups[r.sha], r)
	}

	reps := make(map[[32]byte]phaseAResult, len(groups))
	for sha, group := range groups {
		best := group[0]
		for _, r := range group[1:] {
			if r.path < best.path {
				best = r
			}
		}
		reps[sha] = best
	}
	return reps, groups
}

// runPhaseB computes the perceptual hash for each Phase-B representative,
// in parallel, using the same worker-pool shape as Phase-A.
func runPhaseB(reps []phaseAResult) map[[32]byte][2]uint64 {
	if len(reps) == 0 {
		return nil
	}

	work := make(chan phaseAResult, len(reps))
	type hashResult struct {
		sha   [32]byte
		aHash uint64
		dHash uint64
	}
	results := make(chan hashResult, len(reps))
	var wg sync.WaitGroup

	for i := 0; i < WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range work {
				a, d, err := hasher.PerceptualHash(r.path, r.exifData.Orientation)
				if err != nil {
					log.Printf("orchestrator: failed to compute perceptual hash for %s: %v", r.path, err)
					continue
				}
				results <- hashResult{sha: r.sha, aHash: a, dHash: d}
			}
		}()
	}

	for _, r := range reps {
		work <- r
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := map[[32]byte][2]uint64{}
	for r := range results {
		out[r.sha] = [2]uint64{r.aHash, r.dHash}
	}
	return out
}

// persist writes every Phase-A result into the catalog in a single
// transaction, filling in perceptual hashes for any SHA group that has one
// (either reused from the catalog or freshly computed in Phase-B).
func persist(cat *catalog.Catalog, shaGroups map[[32]byte][]phaseAResult, hashes map[[32]byte][2]uint64) error {
	if len(shaGroups) == 0 {
		return nil
	}

	tx, err := cat.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin persist transaction: %w", err)
	}
	defer tx.Rollback()

	for sha, group := range shaGroups {
		pair, hasHashes := hashes[sha]
		for _, r := range group {
			rec := models.PhotoRecord{
				Path:   r.path,
				Size:   r.size,
				Mtime:  r.mtime,
				Format: r.format,
				SHA256: r.sha,
				Exif:   r.exifData,
			}
			if hasHashes {
				rec.HasPerceptualHash = true
				rec.AHash = pair[0]
				rec.DHash = pair[1]
			}
			if err := cat.UpsertPhoto(tx, r.sourceID, rec); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// rebuildGroups re-runs the matcher over every cataloged photo and replaces
// the prior group assignments wholesale.
func rebuildGroups(cat *catalog.Catalog) error {
	records, err := cat.AllPhotos()
	if err != nil {
		return fmt.Errorf("failed to load photos for matching: %w", err)
	}

	groups := matcher.Match(records)

	byID := make(map[int64]models.PhotoRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	for i, g := range groups {
		members := make([]models.PhotoRecord, 0, len(g.Members))
		for _, id := range g.Members {
			members = append(members, byID[id])
		}
		groups[i].SourceOfTruth = ranking.SourceOfTruth(members)
	}

	return cat.ReplaceGroups(groups)
}
