package cluster

import (
	"slices"
)

// scoreNudge separates colliding scores so every collected item keeps a
// distinct rank.
const scoreNudge = 1e-9

// Ranked is one entry of an n-best list.
type Ranked[T any] struct {
	Item  T       `json:"item"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// RecognizeNBest returns up to n distinct items ordered by descending score.
//
// The walk is depth-first with the same depth limit and pruning rule as
// Recognize, but never stops early on a good score. Each item is compared
// at most once. A leaf is collected when its score is positive; an internal
// node's center is collected when the node survives the radius test. A score
// already present in the list is nudged upward by 1e-9 until it is unique.
func (t *Tree[T]) RecognizeNBest(unknown T, n int, opts SearchOptions) []Ranked[T] {
	if n <= 0 {
		return nil
	}

	c := &collector[T]{
		tree:    t,
		unknown: unknown,
		opts:    opts,
		seen:    make(map[int]bool),
		scores:  make(map[float64]bool),
	}
	c.walk(t.root)

	slices.SortFunc(c.ranked, func(a, b Ranked[T]) int {
		return compareDesc(a.Score, b.Score)
	})
	if len(c.ranked) > n {
		c.ranked = c.ranked[:n]
	}
	return c.ranked
}

type collector[T any] struct {
	tree    *Tree[T]
	unknown T
	opts    SearchOptions
	seen    map[int]bool
	scores  map[float64]bool
	ranked  []Ranked[T]
}

func (c *collector[T]) walk(id int) {
	n := &c.tree.nodes[id]
	if c.opts.tooDeep(n.Depth) {
		return
	}

	if !c.seen[n.Center] {
		score := c.tree.cmp.Similarity(c.tree.items[n.Center], c.unknown)
		c.seen[n.Center] = true
		if n.IsLeaf() {
			if score > 0 {
				c.add(n.Center, score)
			}
			return
		}
		if n.Parent >= 0 && c.opts.pruned(score, n.Radius) {
			return
		}
		c.add(n.Center, score)
	}

	for _, child := range n.Children {
		c.walk(child)
	}
}

func (c *collector[T]) add(item int, score float64) {
	for c.scores[score] {
		score += scoreNudge
	}
	c.scores[score] = true
	c.ranked = append(c.ranked, Ranked[T]{Item: c.tree.items[item], Index: item, Score: score})
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
