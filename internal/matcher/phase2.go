package matcher

import (
	"fmt"

	"github.com/adewale/olsen/internal/hasher"
	"github.com/adewale/olsen/pkg/models"
)

// exifNearCertainThreshold is the strict aHash agreement distance Phase 2
// requires before trusting an EXIF-triangulated cluster; it is a separate,
// tighter constant from the aHash-distance-to-confidence mapping Phase 3 uses.
const exifNearCertainThreshold = 2

// exifTriangulation clusters records not grouped by Phase 1 by exact
// (captured_at, camera_model), then applies a strict perceptual filter:
// a hash-bearing member survives only if it agrees with at least one other
// member of the cluster, within the NearCertain threshold.
func exifTriangulation(records []models.PhotoRecord, byID map[int64]models.PhotoRecord, grouped map[int64]bool) []candidateGroup {
	clusters := map[string][]int64{}
	for _, r := range records {
		if grouped[r.ID] {
			continue
		}
		if !r.Exif.HasCapturedAt() || r.Exif.CameraModel == "" {
			continue
		}
		key := fmt.Sprintf("%d|%s", r.Exif.CapturedAt.Unix(), r.Exif.CameraModel)
		clusters[key] = append(clusters[key], r.ID)
	}

	var groups []candidateGroup
	for _, ids := range clusters {
		if len(ids) < 2 {
			continue
		}

		retained := retainByPerceptualAgreement(ids, byID)
		if len(retained) < 2 {
			continue
		}

		hasHashless := false
		for _, id := range retained {
			if !byID[id].HasPerceptualHash {
				hasHashless = true
				break
			}
		}

		confidence := models.ConfidenceHigh
		if hasHashless {
			confidence = models.ConfidenceNearCertain
		}
		groups = append(groups, newCandidateGroup(confidence, retained...))
	}
	sortCandidateGroups(groups)
	return groups
}

// retainByPerceptualAgreement keeps a candidate iff it has no aHash (kept
// on EXIF evidence alone) or its aHash is within the NearCertain threshold
// of at least one other member of the same candidate cluster.
func retainByPerceptualAgreement(ids []int64, byID map[int64]models.PhotoRecord) []int64 {
	var retained []int64
	for _, id := range ids {
		r := byID[id]
		if !r.HasPerceptualHash {
			retained = append(retained, id)
			continue
		}
		agrees := false
		for _, otherID := range ids {
			if otherID == id {
				continue
			}
			other := byID[otherID]
			if !other.HasPerceptualHash {
				continue
			}
			if hasher.HammingDistance(r.AHash, other.AHash) <= exifNearCertainThreshold {
				agrees = true
				break
			}
		}
		if agrees {
			retained = append(retained, id)
		}
	}
	return retained
}
