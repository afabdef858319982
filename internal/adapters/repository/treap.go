package repository

import (
	"math/rand"

	"github.com/okian/vouch/internal/domain/model"
)

// Reputation rank index: a size-augmented treap ordered by
// (score DESC, talentID ASC).
//
// The comparator puts higher scores earlier, so in-order traversal yields
// the leaderboard from best to worst. Subtree sizes give positional ranks
// in O(log n); ties on score are split deterministically by talent ID.
// Priorities are random, keeping the tree balanced in expectation
// regardless of insertion order.

type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aID) ranks earlier than (bScore, bID).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int) *node {
	if n == nil {
		return &node{id: id, score: score, prio: rand.Uint64(), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	if score == n.score && id == n.id {
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	} else if less(score, id, n.score, n.id) {
		n.left = deleteNode(n.left, id, score)
	} else {
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// rankOf returns the 1-based leaderboard position of (id, score), or 0 when
// the pair is not in the index.
func rankOf(n *node, id string, score int) int {
	rank := 1
	for n != nil {
		if score == n.score && id == n.id {
			return rank + nsize(n.left)
		}
		if less(score, id, n.score, n.id) {
			n = n.left
		} else {
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return 0
}

// collectTopN appends up to limit entries in rank order, assigning positions
// as it goes. Must start from the root for positions to be global.
func collectTopN(n *node, limit int, out *[]model.RankEntry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, model.RankEntry{
			TalentID: n.id,
			Rank:     len(*out) + 1,
			Score:    n.score,
		})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}
