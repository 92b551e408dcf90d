package matcher

import "github.com/adewale/olsen/internal/hasher"

// bkTree is a metric tree over 64-bit perceptual hashes, indexed by Hamming
// distance. No repository in the retrieval pack ships a BK-tree
// implementation (nearest-neighbor search elsewhere in the corpus works
// over inverted indexes or vector stores, not Hamming space), so this is
// hand-rolled for Phase 3's bounded-radius lookups.
type bkTree struct {
	root *bkNode
}

type bkNode struct {
	hash     uint64
	ids      []int64
	children map[int]*bkNode
}

func newBKTree() *bkTree {
	return &bkTree{}
}

// Insert adds id under hash. Multiple ids sharing an identical hash are
// accumulated on the same node.
func (t *bkTree) Insert(hash uint64, id int64) {
	if t.root == nil {
		t.root = &bkNode{hash: hash, ids: []int64{id}, children: map[int]*bkNode{}}
		return
	}

	node := t.root
	for {
		d := hasher.HammingDistance(hash, node.hash)
		if d == 0 {
			node.ids = append(node.ids, id)
			return
		}
		child, ok := node.children[d]
		if !ok {
			node.children[d] = &bkNode{hash: hash, ids: []int64{id}, children: map[int]*bkNode{}}
			return
		}
		node = child
	}
}

// Query returns the ids of every node within radius of target, leaving out
// skipID wherever it appears (so a record does not match itself).
func (t *bkTree) Query(target uint64, radius int, skipID int64) []int64 {
	if t.root == nil {
		return nil
	}
	var out []int64
	var visit func(node *bkNode)
	visit = func(node *bkNode) {
		d := hasher.HammingDistance(target, node.hash)
		if d <= radius {
			for _, id := range node.ids {
				if id != skipID {
					out = append(out, id)
				}
			}
		}
		for dist, child := range node.children {
			if dist >= d-radius && dist <= d+radius {
				visit(child)
			}
		}
	}
	visit(t.root)
	return out
}
