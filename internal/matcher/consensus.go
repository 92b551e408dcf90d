package matcher

import (
	"github.com/adewale/olsen/internal/hasher"
	"github.com/adewale/olsen/pkg/models"
)

const (
	thresholdNearCertain = 0
	thresholdHigh        = 2
	thresholdProbable    = 3
	sequentialShotMaxSec = 60
)

// confidenceFromAHashDistance maps a Phase 3 aHash distance onto the
// confidence scale: exact match is NearCertain, 1-2 bits is High, 3 bits is
// the broadest accepted Probable.
func confidenceFromAHashDistance(d int) models.Confidence {
	switch {
	case d <= thresholdNearCertain:
		return models.ConfidenceNearCertain
	case d <= thresholdHigh:
		return models.ConfidenceHigh
	default:
		return models.ConfidenceProbable
	}
}

// dualHashConsensus decides whether a and b are the same photo under
// Phase 3's rules and, if so, at what confidence. Both aHash and dHash are
// computed together (models.PhotoRecord's both-or-neither invariant), so
// once HasPerceptualHash holds for both sides, DHash is present even when
// its value happens to be zero (a flat image, or one whose rows never
// brighten from left to right, hashes to all-zero bits) — there is no
// "missing dHash" case to special-case.
func dualHashConsensus(a, b models.PhotoRecord) (ok bool, confidence models.Confidence) {
	if !a.HasPerceptualHash || !b.HasPerceptualHash {
		return false, 0
	}

	aDist := hasher.HammingDistance(a.AHash, b.AHash)
	if aDist > thresholdProbable {
		return false, 0
	}

	dDist := hasher.HammingDistance(a.DHash, b.DHash)
	if dDist > thresholdProbable {
		return false, 0
	}

	return true, confidenceFromAHashDistance(aDist)
}

// sequentialShotFilter rejects a pair that looks like consecutive burst
// shots rather than true duplicates: same camera, both timestamped, and a
// few seconds apart. An identical timestamp is not a burst signature and
// passes.
func sequentialShotFilter(a, b models.PhotoRecord) bool {
	if a.Exif.CameraModel == "" || b.Exif.CameraModel == "" || a.Exif.CameraModel != b.Exif.CameraModel {
		return true
	}
	if !a.Exif.HasCapturedAt() || !b.Exif.HasCapturedAt() {
		return true
	}

	delta := a.Exif.CapturedAt.Sub(b.Exif.CapturedAt)
	if delta < 0 {
		delta = -delta
	}
	seconds := delta.Seconds()
	if seconds > 0 && seconds <= sequentialShotMaxSec {
		return false
	}
	return true
}
