package matcher

import "github.com/adewale/olsen/pkg/models"

const phase3Radius = thresholdProbable

// perceptualSimilarity builds a BK-tree over every record carrying an
// aHash (grouped or not) and, for each still-ungrouped record, queries it
// for neighbors within the broadest accepted radius. Accepted pairs —
// those passing dual-hash consensus and the sequential-shot filter — form
// edges; their connected components are this phase's candidate groups.
// A component may reach into an already-grouped record; resolving that
// overlap safely is Phase 4's job, not this one's.
func perceptualSimilarity(records []models.PhotoRecord, byID map[int64]models.PhotoRecord, grouped map[int64]bool) []candidateGroup {
	tree := newBKTree()
	for _, r := range records {
		if r.HasPerceptualHash {
			tree.Insert(r.AHash, r.ID)
		}
	}

	uf := newUnionFind()

	for _, r := range records {
		if grouped[r.ID] || !r.HasPerceptualHash {
			continue
		}

		candidates := tree.Query(r.AHash, phase3Radius, r.ID)
		for _, candidateID := range candidates {
			other := byID[candidateID]
			if other.ID == r.ID {
				continue
			}

			ok, confidence := dualHashConsensus(r, other)
			if !ok {
				continue
			}
			if !sequentialShotFilter(r, other) {
				continue
			}

			uf.unionWithConfidence(r.ID, other.ID, confidence)
		}
	}

	var groups []candidateGroup
	for _, members := range uf.Components() {
		groups = append(groups, newCandidateGroup(uf.componentConfidence(members[0]), members...))
	}
	sortCandidateGroups(groups)
	return groups
}
