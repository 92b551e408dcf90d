package matcher

import (
	"sort"

	"github.com/adewale/olsen/pkg/models"
)

// transitiveMerge resolves overlap between the groups produced by Phases
// 1-3. Two groups sharing a member are adjacent in an overlap graph; a
// connected component of that graph is merged only if at least one
// exclusive pair across it clears the High threshold under dual-hash
// consensus. Components that fail validation are not merged — instead the
// bridging member is dropped from whichever side has the weaker
// confidence, so one false-positive edge does not collapse two unrelated
// groups into one.
func transitiveMerge(groups []candidateGroup, byID map[int64]models.PhotoRecord) []candidateGroup {
	active := make([]*candidateGroup, len(groups))
	for i := range groups {
		g := groups[i]
		active[i] = &g
	}

	for {
		adjacency := buildOverlapGraph(active)
		component := firstNonTrivialComponent(adjacency, len(active))
		if component == nil {
			break
		}
		resolveComponent(active, component, byID)
	}

	var out []candidateGroup
	for _, g := range active {
		if g != nil && len(g.members) >= 2 {
			out = append(out, *g)
		}
	}
	return out
}

// resolveComponent walks every pair of groups in the component. A pair that
// clears cross-group validation is merged in place; one that does not loses
// its bridging member from the weaker-confidence side.
func resolveComponent(active []*candidateGroup, component []int, byID map[int64]models.PhotoRecord) {
	for _, i := range component {
		for _, j := range component {
			if i >= j {
				continue
			}
			g, h := active[i], active[j]
			if g == nil || h == nil || !sharesMember(g, h) {
				continue
			}

			if validateBridge(g, h, byID) {
				mergeInto(g, h)
				active[j] = nil
				return
			}

			breakWeakerMembership(g, h)
			return
		}
	}
}

// validateBridge requires at least one exclusive pair (one member unique to
// each side) to clear the High dual-hash threshold.
func validateBridge(g, h *candidateGroup, byID map[int64]models.PhotoRecord) bool {
	for gID := range g.members {
		if h.members[gID] {
			continue
		}
		for hID := range h.members {
			if g.members[hID] {
				continue
			}
			a, b := byID[gID], byID[hID]
			if !a.HasPerceptualHash || !b.HasPerceptualHash {
				continue
			}
			if ok, confidence := dualHashConsensus(a, b); ok && confidence >= models.ConfidenceHigh {
				return true
			}
		}
	}
	return false
}

func mergeInto(g, h *candidateGroup) {
	for id := range h.members {
		g.members[id] = true
	}
	g.confidence = models.Min(g.confidence, h.confidence)
}

// breakWeakerMembership removes the shared member from whichever group has
// the lower (weaker) confidence, so the unresolved bridge stops producing
// an overlap on the next iteration.
func breakWeakerMembership(g, h *candidateGroup) {
	var shared int64
	for id := range g.members {
		if h.members[id] {
			shared = id
			break
		}
	}

	if g.confidence <= h.confidence {
		delete(g.members, shared)
	} else {
		delete(h.members, shared)
	}
}

// buildOverlapGraph returns, for each group index still present, the set of
// other indices it shares at least one member with.
func buildOverlapGraph(active []*candidateGroup) map[int]map[int]bool {
	adjacency := map[int]map[int]bool{}
	for i, g := range active {
		if g == nil {
			continue
		}
		for j := i + 1; j < len(active); j++ {
			h := active[j]
			if h == nil {
				continue
			}
			if sharesMember(g, h) {
				if adjacency[i] == nil {
					adjacency[i] = map[int]bool{}
				}
				if adjacency[j] == nil {
					adjacency[j] = map[int]bool{}
				}
				adjacency[i][j] = true
				adjacency[j][i] = true
			}
		}
	}
	return adjacency
}

func sharesMember(a, b *candidateGroup) bool {
	for id := range a.members {
		if b.members[id] {
			return true
		}
	}
	return false
}

func firstNonTrivialComponent(adjacency map[int]map[int]bool, n int) []int {
	visited := map[int]bool{}
	for start := 0; start < n; start++ {
		if visited[start] || adjacency[start] == nil {
			continue
		}
		component := bfsComponent(adjacency, start, visited)
		if len(component) > 1 {
			return component
		}
	}
	return nil
}

// bfsComponent walks adjacency in sorted neighbor order and returns the
// component sorted by index, so which pair resolveComponent resolves first
// never depends on Go's randomized map iteration order.
func bfsComponent(adjacency map[int]map[int]bool, start int, visited map[int]bool) []int {
	queue := []int{start}
	visited[start] = true
	var component []int
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		component = append(component, n)

		neighbors := make([]int, 0, len(adjacency[n]))
		for neighbor := range adjacency[n] {
			neighbors = append(neighbors, neighbor)
		}
		sort.Ints(neighbors)

		for _, neighbor := range neighbors {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
	sort.Ints(component)
	return component
}
