package cluster

import (
	"math"
)

// Unlimited disables the depth limit of a search.
const Unlimited = -1

// SearchOptions bounds a tree search.
type SearchOptions struct {
	// MaxDepth skips nodes deeper than this. Unlimited (or any negative
	// value) searches the whole tree.
	MaxDepth int

	// ScoreThreshold stops the search as soon as the best score exceeds it.
	// Use a value >= 1 to never stop early.
	ScoreThreshold float64

	// RadiusRatio scales each node's radius into its pruning bound.
	// math.Inf(1) disables pruning.
	RadiusRatio float64
}

// DefaultSearchOptions returns the settings used when none are configured.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxDepth:       Unlimited,
		ScoreThreshold: 0.9,
		RadiusRatio:    1.0,
	}
}

// Exhaustive returns options under which Recognize visits every node.
func Exhaustive() SearchOptions {
	return SearchOptions{MaxDepth: Unlimited, ScoreThreshold: 2, RadiusRatio: math.Inf(1)}
}

func (o SearchOptions) tooDeep(depth int) bool {
	return o.MaxDepth >= 0 && depth > o.MaxDepth
}

// pruned reports whether a node with the given radius and center score can
// be skipped.
func (o SearchOptions) pruned(score, radius float64) bool {
	if math.IsInf(o.RadiusRatio, 1) {
		return false
	}
	return 1-score > radius*o.RadiusRatio
}

// Match is the outcome of a single-answer search.
type Match[T any] struct {
	// Item is the best matching item; the zero value when Index is -1.
	Item  T       `json:"item"`
	Index int     `json:"index"`
	Score float64 `json:"score"`

	// Compared counts similarity evaluations performed by the search.
	Compared int `json:"compared"`
}

// Found reports whether the search compared at least one item.
func (m Match[T]) Found() bool { return m.Index >= 0 }

type searcher[T any] struct {
	tree    *Tree[T]
	unknown T
	opts    SearchOptions
	best    Match[T]
}

func (t *Tree[T]) newSearcher(unknown T, opts SearchOptions) *searcher[T] {
	return &searcher[T]{
		tree:    t,
		unknown: unknown,
		opts:    opts,
		best:    Match[T]{Index: -1, Score: -1},
	}
}

func (s *searcher[T]) score(item int) float64 {
	sc := s.tree.cmp.Similarity(s.tree.items[item], s.unknown)
	s.best.Compared++
	if sc > s.best.Score {
		s.best.Item = s.tree.items[item]
		s.best.Index = item
		s.best.Score = sc
	}
	return sc
}

func (s *searcher[T]) done() bool {
	return s.best.Score > s.opts.ScoreThreshold
}

// Recognize searches the tree depth-first from the root.
//
// At each node the center is compared with unknown and the best score so far
// is updated. The search stops once the best score exceeds ScoreThreshold,
// never descends below MaxDepth, and skips the children of any non-root node
// whose distance to unknown exceeds radius * RadiusRatio.
func (t *Tree[T]) Recognize(unknown T, opts SearchOptions) Match[T] {
	s := t.newSearcher(unknown, opts)
	s.descend(t.root)
	return s.best
}

func (s *searcher[T]) descend(id int) {
	if s.done() {
		return
	}
	n := &s.tree.nodes[id]
	if s.opts.tooDeep(n.Depth) {
		return
	}

	score := s.score(n.Center)
	if n.Parent >= 0 && s.opts.pruned(score, n.Radius) {
		return
	}
	for _, c := range n.Children {
		s.descend(c)
	}
}

// BruteForce compares unknown with every item and returns the first item
// with the highest score.
func BruteForce[T any](items []T, unknown T, cmp Comparator[T]) Match[T] {
	best := Match[T]{Index: -1, Score: -1}
	for i, it := range items {
		sc := cmp.Similarity(it, unknown)
		best.Compared++
		if sc > best.Score {
			best.Item, best.Index, best.Score = it, i, sc
		}
	}
	return best
}
