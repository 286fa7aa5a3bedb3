package cluster

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Comparator scores a pair of items. Similarity must return a value in
// [0, 1], where 1 means identical.
type Comparator[T any] interface {
	Similarity(a, b T) float64
}

// Node is one cluster of the tree. Nodes live in the tree's arena and refer
// to each other and to items by index.
type Node struct {
	// Members holds item indices: the first child's members followed by the
	// second child's.
	Members []int `json:"members"`

	// Center is the item index of the member with the smallest summed
	// distance to all other members.
	Center int `json:"center"`

	// Radius is the largest distance from Center to another member. Leaves
	// have radius 0.
	Radius float64 `json:"radius"`

	// Parent is the node index of the parent, or -1 for the root.
	Parent int `json:"parent"`

	// Children holds zero or exactly two node indices.
	Children []int `json:"children,omitempty"`

	// Depth is 0 for the root.
	Depth int `json:"depth"`
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// BuildOptions controls BuildTree.
type BuildOptions struct {
	Linkage Linkage

	// Workers bounds the goroutines computing pairwise distances. Values
	// <= 0 use runtime.GOMAXPROCS.
	Workers int
}

// Tree is an immutable hierarchical index over items.
type Tree[T any] struct {
	items   []T
	cmp     Comparator[T]
	linkage Linkage
	dist    *mat.SymDense
	nodes   []Node
	root    int
	depth   int
}

// BuildTree clusters items bottom-up and returns the resulting tree.
//
// The pairwise distance matrix is fully computed before any merge, so the
// merge sequence depends only on item order: the pair of current clusters
// with the strictly smallest linkage distance is merged, scanning pairs in
// list order, and the merged cluster is appended to the end of the list.
//
// It returns ErrEmptyTemplates when items is empty and the context error if
// ctx is cancelled while distances are computed.
func BuildTree[T any](ctx context.Context, items []T, cmp Comparator[T], opts BuildOptions) (*Tree[T], error) {
	if len(items) == 0 {
		return nil, ErrEmptyTemplates
	}
	if cmp == nil {
		return nil, ErrNilComparator
	}

	dist, err := pairwiseDistances(ctx, items, cmp, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("cluster: computing distances: %w", err)
	}

	t := &Tree[T]{
		items:   append([]T(nil), items...),
		cmp:     cmp,
		linkage: opts.Linkage,
		dist:    dist,
	}
	t.merge()
	t.assignDepths()
	return t, nil
}

// pairwiseDistances fills a symmetric matrix with 1 - similarity for every
// pair i < j. The diagonal is 1.
func pairwiseDistances[T any](ctx context.Context, items []T, cmp Comparator[T], workers int) (*mat.SymDense, error) {
	n := len(items)
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := make([][]float64, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := make([]float64, n)
			for j := i + 1; j < n; j++ {
				row[j] = 1 - cmp.Similarity(items[i], items[j])
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		dist.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			dist.SetSym(i, j, rows[i][j])
		}
	}
	return dist, nil
}

// merge seeds one leaf per item and merges until a single root remains.
func (t *Tree[T]) merge() {
	n := len(t.items)
	t.nodes = make([]Node, 0, 2*n-1)
	active := make([]int, 0, n)
	for i := 0; i < n; i++ {
		t.nodes = append(t.nodes, Node{Members: []int{i}, Center: i, Parent: -1})
		active = append(active, i)
	}

	// Linkage distances between clusters never change once both exist.
	cache := make(map[[2]int]float64)
	linkDist := func(a, b int) float64 {
		key := [2]int{a, b}
		if d, ok := cache[key]; ok {
			return d
		}
		d := t.linkage.between(t.nodes[a].Members, t.nodes[b].Members, t.dist)
		cache[key] = d
		return d
	}

	for len(active) > 1 {
		bi, bj := 0, 1
		best := linkDist(active[0], active[1])
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				if d := linkDist(active[i], active[j]); d < best {
					best, bi, bj = d, i, j
				}
			}
		}

		a, b := active[bi], active[bj]
		id := len(t.nodes)
		t.nodes = append(t.nodes, t.newParent(a, b))
		t.nodes[a].Parent = id
		t.nodes[b].Parent = id

		next := make([]int, 0, len(active)-1)
		for k, c := range active {
			if k != bi && k != bj {
				next = append(next, c)
			}
		}
		active = append(next, id)
	}
	t.root = active[0]
}

func (t *Tree[T]) newParent(a, b int) Node {
	members := make([]int, 0, len(t.nodes[a].Members)+len(t.nodes[b].Members))
	members = append(members, t.nodes[a].Members...)
	members = append(members, t.nodes[b].Members...)

	center, radius := t.findCenter(members)
	return Node{
		Members:  members,
		Center:   center,
		Radius:   radius,
		Parent:   -1,
		Children: []int{a, b},
	}
}

// findCenter returns the member with the smallest summed distance to the
// other members (first one on ties) and its largest such distance.
func (t *Tree[T]) findCenter(members []int) (int, float64) {
	center, bestSum := members[0], -1.0
	for _, m := range members {
		var sum float64
		for _, o := range members {
			if o != m {
				sum += t.dist.At(m, o)
			}
		}
		if bestSum < 0 || sum < bestSum {
			center, bestSum = m, sum
		}
	}

	var radius float64
	for _, o := range members {
		if o != center && t.dist.At(center, o) > radius {
			radius = t.dist.At(center, o)
		}
	}
	return center, radius
}

func (t *Tree[T]) assignDepths() {
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if n.Parent >= 0 {
			n.Depth = t.nodes[n.Parent].Depth + 1
		}
		if n.Depth > t.depth {
			t.depth = n.Depth
		}
		stack = append(stack, n.Children...)
	}
}

// Root returns the index of the root node.
func (t *Tree[T]) Root() int { return t.root }

// Node returns the node at index i.
func (t *Tree[T]) Node(i int) Node { return t.nodes[i] }

// Len returns the number of nodes.
func (t *Tree[T]) Len() int { return len(t.nodes) }

// Depth returns the depth of the deepest leaf.
func (t *Tree[T]) Depth() int { return t.depth }

// Linkage returns the linkage the tree was built with.
func (t *Tree[T]) Linkage() Linkage { return t.linkage }

// Items returns the clustered items in their original order.
func (t *Tree[T]) Items() []T { return append([]T(nil), t.items...) }

// Item returns the item at index i.
func (t *Tree[T]) Item(i int) T { return t.items[i] }

// Distance returns the precomputed distance between items i and j. The
// diagonal is 1 by convention.
func (t *Tree[T]) Distance(i, j int) float64 { return t.dist.At(i, j) }

// Leaves returns the indices of all leaf nodes.
func (t *Tree[T]) Leaves() []int {
	var leaves []int
	for i := range t.nodes {
		if t.nodes[i].IsLeaf() {
			leaves = append(leaves, i)
		}
	}
	return leaves
}

// NodesAtDepth returns the indices of nodes at exactly depth d, plus any
// leaves shallower than d so that the result covers every item.
func (t *Tree[T]) NodesAtDepth(d int) []int {
	var out []int
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if n.Depth == d || (n.IsLeaf() && n.Depth < d) {
			out = append(out, id)
			continue
		}
		// Push the second child first so the first child is visited first.
		for k := len(n.Children) - 1; k >= 0; k-- {
			stack = append(stack, n.Children[k])
		}
	}
	return out
}
