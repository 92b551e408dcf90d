package matcher

import (
	"sort"

	"github.com/adewale/olsen/pkg/models"
)

// unionFind is a standard disjoint-set structure keyed by photo id, used to
// collapse Phase 3's pairwise perceptual-match edges into connected
// components. It also tracks, per component, the minimum confidence among
// the edges that built it, keyed on whichever id is the current root.
type unionFind struct {
	parent map[int64]int64
	rank   map[int64]int
	conf   map[int64]models.Confidence
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[int64]int64{}, rank: map[int64]int{}, conf: map[int64]models.Confidence{}}
}

func (u *unionFind) find(x int64) int64 {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		return x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b int64) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// unionWithConfidence merges a and b's components like union, and folds
// edgeConfidence into the minimum confidence tracked for the merged
// component. The minimum is recorded under whichever id is root after the
// merge, so a later union's rank-based reparenting — which can move which
// side survives as root — never orphans a previously recorded value.
func (u *unionFind) unionWithConfidence(a, b int64, edgeConfidence models.Confidence) {
	merged := edgeConfidence
	if c, ok := u.conf[u.find(a)]; ok && c < merged {
		merged = c
	}
	if c, ok := u.conf[u.find(b)]; ok && c < merged {
		merged = c
	}
	u.union(a, b)
	u.conf[u.find(a)] = merged
}

// componentConfidence returns the tracked minimum confidence for x's
// component, defaulting to the broadest accepted level if x was only ever
// merged through plain union (no confidence recorded).
func (u *unionFind) componentConfidence(x int64) models.Confidence {
	if c, ok := u.conf[u.find(x)]; ok {
		return c
	}
	return models.ConfidenceProbable
}

// Components returns each connected set of size > 1, each sorted in
// ascending id order, with the components themselves ordered by their
// smallest member id — so the result never depends on Go's randomized map
// iteration order, which would otherwise leak into which bridge pair Phase
// 4 resolves first.
func (u *unionFind) Components() [][]int64 {
	grouped := map[int64][]int64{}
	for id := range u.parent {
		root := u.find(id)
		grouped[root] = append(grouped[root], id)
	}

	var out [][]int64
	for _, members := range grouped {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
