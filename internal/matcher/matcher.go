// Package matcher implements the four-phase duplicate-detection pipeline:
// exact SHA match, EXIF triangulation with a strict perceptual filter,
// BK-tree perceptual similarity with dual-hash consensus and a
// sequential-shot filter, and a transitive merge that cross-validates
// overlapping groups before combining them.
package matcher

import (
	"sort"

	"github.com/adewale/olsen/pkg/models"
)

// candidateGroup is an in-flight group before ids are minted: a member set
// plus the confidence the phase that produced it assigned.
type candidateGroup struct {
	members    map[int64]bool
	confidence models.Confidence
}

func newCandidateGroup(confidence models.Confidence, ids ...int64) candidateGroup {
	g := candidateGroup{members: map[int64]bool{}, confidence: confidence}
	for _, id := range ids {
		g.members[id] = true
	}
	return g
}

func (g candidateGroup) sortedMembers() []int64 {
	out := make([]int64, 0, len(g.members))
	for id := range g.members {
		out = append(out, id)
	}
	sortInt64s(out)
	return out
}

func sortInt64s(ids []int64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// sortCandidateGroups orders groups by their smallest member id, so the
// sequence fed into transitiveMerge never depends on the map iteration
// order a phase used internally to build its output.
func sortCandidateGroups(groups []candidateGroup) {
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].sortedMembers()[0] < groups[j].sortedMembers()[0]
	})
}

// Match runs the full pipeline over every photo record the orchestrator has
// persisted and returns the final, non-overlapping duplicate groups with
// their elected confidence. Source-of-truth election (§4.7) happens
// separately, in internal/ranking, once the caller has the full
// models.PhotoRecord for each member.
func Match(records []models.PhotoRecord) []models.DuplicateGroup {
	byID := make(map[int64]models.PhotoRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	grouped := map[int64]bool{}

	phase1Groups := exactMatch(records)
	markGrouped(grouped, phase1Groups)

	phase2Groups := exifTriangulation(records, byID, grouped)
	markGrouped(grouped, phase2Groups)

	phase3Groups := perceptualSimilarity(records, byID, grouped)

	all := append(append(phase1Groups, phase2Groups...), phase3Groups...)

	merged := transitiveMerge(all, byID)

	var out []models.DuplicateGroup
	for _, g := range merged {
		if len(g.members) < 2 {
			continue
		}
		out = append(out, models.DuplicateGroup{
			Confidence: g.confidence,
			Members:    g.sortedMembers(),
		})
	}
	return out
}

func markGrouped(grouped map[int64]bool, groups []candidateGroup) {
	for _, g := range groups {
		for id := range g.members {
			grouped[id] = true
		}
	}
}
