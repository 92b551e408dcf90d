package matcher

import "github.com/adewale/olsen/pkg/models"

// exactMatch groups records sharing a SHA-256. Singletons are not groups.
func exactMatch(records []models.PhotoRecord) []candidateGroup {
	bySHA := map[[32]byte][]int64{}
	for _, r := range records {
		if !r.HasSHA256() {
			continue
		}
		bySHA[r.SHA256] = append(bySHA[r.SHA256], r.ID)
	}

	var groups []candidateGroup
	for _, ids := range bySHA {
		if len(ids) < 2 {
			continue
		}
		groups = append(groups, newCandidateGroup(models.ConfidenceCertain, ids...))
	}
	sortCandidateGroups(groups)
	return groups
}
