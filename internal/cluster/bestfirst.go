package cluster

import (
	"container/heap"
)

// frontierItem is a node waiting to be expanded, ranked by the score of its
// parent's center.
type frontierItem struct {
	node     int
	priority float64
	seq      int
}

// frontier implements heap.Interface as a max-heap on priority. Equal
// priorities pop in insertion order.
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority > f[j].priority
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x interface{}) {
	*f = append(*f, x.(frontierItem))
}

func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	it := old[n-1]
	*f = old[:n-1]
	return it
}

// RecognizeBestFirst searches outward from seeds, always expanding the
// pending node whose parent scored highest.
//
// Every seed is scored first. Children of a scored node are queued when the
// node passes the radius test and its depth is below MaxDepth-1. The search
// returns as soon as the best score exceeds ScoreThreshold, or when nothing
// is left to expand. Seeds are typically NodesAtDepth(d) for a small d.
//
// This is a heuristic: it can stop on a worse match than Recognize would
// find.
func (t *Tree[T]) RecognizeBestFirst(seeds []int, unknown T, opts SearchOptions) Match[T] {
	s := t.newSearcher(unknown, opts)
	pq := &frontier{}
	heap.Init(pq)
	seq := 0

	expand := func(id int) {
		n := &t.nodes[id]
		score := s.score(n.Center)
		if n.Parent >= 0 && opts.pruned(score, n.Radius) {
			return
		}
		if n.IsLeaf() || (opts.MaxDepth >= 0 && n.Depth >= opts.MaxDepth-1) {
			return
		}
		for _, c := range n.Children {
			heap.Push(pq, frontierItem{node: c, priority: score, seq: seq})
			seq++
		}
	}

	for _, id := range seeds {
		if id < 0 || id >= len(t.nodes) || opts.tooDeep(t.nodes[id].Depth) {
			continue
		}
		expand(id)
	}

	for !s.done() && pq.Len() > 0 {
		it := heap.Pop(pq).(frontierItem)
		expand(it.node)
	}
	return s.best
}
