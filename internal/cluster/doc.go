// Package cluster builds an agglomerative hierarchical index over a template
// library and searches it with radius-based branch-and-bound pruning.
//
// The tree is generic over the item type. Any Comparator that maps a pair of
// items to a similarity in [0, 1] can drive it; distances are 1 - similarity.
//
// # Building
//
// BuildTree computes every pairwise distance up front (in parallel), then
// repeatedly merges the two closest clusters under the chosen Linkage until
// a single root remains. Each internal node records a center (the member
// with the smallest summed distance to the other members) and a radius (the
// largest distance from that center to a member). Construction is O(T^3) in
// the number of templates and is meant for libraries of up to a few hundred
// entries.
//
// # Searching
//
// Three search strategies share the same pruning rule: a subtree is skipped
// when 1 - similarity(center, unknown) exceeds radius * RadiusRatio. The root
// is never pruned.
//
//   - Recognize: depth-first branch-and-bound. With unlimited depth, an
//     infinite radius ratio and a threshold above 1 it returns exactly what
//     BruteForce returns.
//   - RecognizeBestFirst: priority-queue expansion from a set of seed nodes,
//     ordered by the parent's score. A heuristic; it may settle on a worse
//     match than Recognize.
//   - RecognizeNBest: collects up to n distinct templates ranked by score.
//
// # Thread Safety
//
// A Tree is immutable after BuildTree returns. Searches only read it and may
// run concurrently as long as the Comparator is safe for concurrent use.
package cluster
