package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewale/olsen/pkg/models"
)

func TestMatchExactDuplicateAcrossDirectories(t *testing.T) {
	sha := [32]byte{1, 2, 3}
	records := []models.PhotoRecord{
		{ID: 1, Path: "/a/photo.jpg", SHA256: sha, Format: models.FormatJPEG},
		{ID: 2, Path: "/b/copy.jpg", SHA256: sha, Format: models.FormatJPEG},
	}

	groups := Match(records)
	require.Len(t, groups, 1)
	assert.Equal(t, models.ConfidenceCertain, groups[0].Confidence)
	assert.ElementsMatch(t, []int64{1, 2}, groups[0].Members)
}

func TestMatchCrossFormatTriangulatesHashlessSiblingsOnEXIF(t *testing.T) {
	// HEIC and RAW never carry a perceptual hash (SupportsPerceptualHash is
	// false for both), so Phase 2's EXIF cluster trusts them on
	// (captured_at, camera_model) alone.
	capturedAt := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	heic := models.PhotoRecord{
		ID: 2, Format: models.FormatHEIC, HasPerceptualHash: false,
		Exif: models.ExifData{CapturedAt: capturedAt, CameraModel: "Canon EOS R5"},
	}
	raw := models.PhotoRecord{
		ID: 3, Format: models.FormatCR2, HasPerceptualHash: false,
		Exif: models.ExifData{CapturedAt: capturedAt, CameraModel: "Canon EOS R5"},
	}

	groups := Match([]models.PhotoRecord{heic, raw})
	require.Len(t, groups, 1)
	assert.Equal(t, models.ConfidenceNearCertain, groups[0].Confidence)
	assert.ElementsMatch(t, []int64{2, 3}, groups[0].Members)
}

func TestMatchCrossFormatDropsUnvalidatedHashBearingMember(t *testing.T) {
	// A JPEG sharing the same EXIF cluster as two hash-less siblings has no
	// other hash-bearing peer to validate against, so Phase 2's strict
	// filter excludes it even though it shares the cluster key.
	capturedAt := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	jpeg := models.PhotoRecord{
		ID: 1, Format: models.FormatJPEG, HasPerceptualHash: true, AHash: 0b1010, DHash: 0b0101,
		Exif: models.ExifData{CapturedAt: capturedAt, CameraModel: "Canon EOS R5"},
	}
	heic := models.PhotoRecord{
		ID: 2, Format: models.FormatHEIC, HasPerceptualHash: false,
		Exif: models.ExifData{CapturedAt: capturedAt, CameraModel: "Canon EOS R5"},
	}
	raw := models.PhotoRecord{
		ID: 3, Format: models.FormatCR2, HasPerceptualHash: false,
		Exif: models.ExifData{CapturedAt: capturedAt, CameraModel: "Canon EOS R5"},
	}

	groups := Match([]models.PhotoRecord{jpeg, heic, raw})
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []int64{2, 3}, groups[0].Members)
}

func TestMatchRejectsSequentialBurstShots(t *testing.T) {
	base := time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)
	a := models.PhotoRecord{
		ID: 1, Format: models.FormatJPEG, HasPerceptualHash: true, AHash: 0b1010, DHash: 0b0011,
		Exif: models.ExifData{CapturedAt: base, CameraModel: "Sony A7IV"},
	}
	b := models.PhotoRecord{
		ID: 2, Format: models.FormatJPEG, HasPerceptualHash: true, AHash: 0b1010, DHash: 0b0011,
		Exif: models.ExifData{CapturedAt: base.Add(3 * time.Second), CameraModel: "Sony A7IV"},
	}

	groups := Match([]models.PhotoRecord{a, b})
	assert.Empty(t, groups, "near-identical consecutive burst shots must not be grouped")
}

func TestTransitiveMergeJoinsOnValidatedBridge(t *testing.T) {
	// Group {1,2} and group {2,3} share photo 2. Photos 1 and 3 are the
	// exclusive members on each side; they must themselves clear the High
	// dual-hash threshold for the two groups to merge into one.
	byID := map[int64]models.PhotoRecord{
		1: photoWithHash(1, 0b0000, 0b0000),
		2: photoWithHash(2, 0b0000, 0b0000),
		3: photoWithHash(3, 0b0001, 0b0001),
	}
	groups := []candidateGroup{
		newCandidateGroup(models.ConfidenceCertain, 1, 2),
		newCandidateGroup(models.ConfidenceCertain, 2, 3),
	}

	merged := transitiveMerge(groups, byID)
	require.Len(t, merged, 1)
	assert.ElementsMatch(t, []int64{1, 2, 3}, merged[0].sortedMembers())
}

func TestTransitiveMergeBreaksUnvalidatedBridge(t *testing.T) {
	// Photos 1 and 3 are far apart perceptually (distance > High), so the
	// bridge through photo 2 must not merge the two groups; instead the
	// weaker-confidence side loses the shared member.
	byID := map[int64]models.PhotoRecord{
		1: photoWithHash(1, 0b0000000, 0b0000000),
		2: photoWithHash(2, 0b0000000, 0b0000000),
		3: photoWithHash(3, 0b1111111, 0b1111111),
	}
	groups := []candidateGroup{
		newCandidateGroup(models.ConfidenceCertain, 1, 2),
		newCandidateGroup(models.ConfidenceProbable, 2, 3),
	}

	merged := transitiveMerge(groups, byID)
	require.Len(t, merged, 1, "the weaker group loses its member and the stronger one survives intact")
	assert.ElementsMatch(t, []int64{1, 2}, merged[0].sortedMembers())
}

func TestTransitiveMergeIsDeterministicAcrossRuns(t *testing.T) {
	// A chain of three overlapping candidate groups (1,2)-(2,3)-(3,4): the
	// 2-3 bridge fails validation and group (2,3) loses its weaker member,
	// which in turn breaks its remaining overlap with (3,4). Map iteration
	// order (Components, adjacency traversal, group build order) must never
	// change this outcome across runs on identical input.
	byID := map[int64]models.PhotoRecord{
		1: photoWithHash(1, 0b0000000, 0b0000000),
		2: photoWithHash(2, 0b0000001, 0b0000001),
		3: photoWithHash(3, 0b1111110, 0b1111110),
		4: photoWithHash(4, 0b1111111, 0b1111111),
	}

	var first []int64
	for i := 0; i < 25; i++ {
		groups := []candidateGroup{
			newCandidateGroup(models.ConfidenceHigh, 1, 2),
			newCandidateGroup(models.ConfidenceProbable, 2, 3),
			newCandidateGroup(models.ConfidenceHigh, 3, 4),
		}
		merged := transitiveMerge(groups, byID)

		var ids []int64
		for _, g := range merged {
			ids = append(ids, g.sortedMembers()...)
		}
		sortInt64s(ids)

		if i == 0 {
			first = ids
		} else {
			assert.Equal(t, first, ids, "run %d diverged from run 0", i)
		}
	}
}

func TestMatchIgnoresSingletons(t *testing.T) {
	records := []models.PhotoRecord{
		{ID: 1, SHA256: [32]byte{1}, Format: models.FormatJPEG},
		{ID: 2, SHA256: [32]byte{2}, Format: models.FormatJPEG},
	}
	assert.Empty(t, Match(records))
}
