// Package ranking elects the source-of-truth photo within a duplicate
// group, adapting the tuple-comparator idiom bleemesser-photosort uses to
// pick a winning filename across re-imported copies.
package ranking

import "github.com/adewale/olsen/pkg/models"

// Better reports whether candidate should replace current as a duplicate
// group's source of truth. The comparison runs a strict priority tuple:
// format quality tier, then file size, then older mtime, then
// lexicographically smaller path as the final, fully deterministic
// tie-breaker.
func Better(candidate, current models.PhotoRecord) bool {
	if candidate.Format.QualityTier() != current.Format.QualityTier() {
		return candidate.Format.QualityTier() > current.Format.QualityTier()
	}
	if candidate.Size != current.Size {
		return candidate.Size > current.Size
	}
	if candidate.Mtime != current.Mtime {
		return candidate.Mtime < current.Mtime
	}
	return candidate.Path < current.Path
}

// SourceOfTruth returns the id of the best-ranked photo among members.
// Members must be non-empty.
func SourceOfTruth(members []models.PhotoRecord) int64 {
	best := members[0]
	for _, m := range members[1:] {
		if Better(m, best) {
			best = m
		}
	}
	return best.ID
}
