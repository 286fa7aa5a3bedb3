// Package match scores unknown ink against reference templates.
//
// Matching runs in two stages. First every candidate template is aligned to
// the unknown on the polar grid: the unknown's polar columns are shifted
// through the allowed rotations and the offset with the lowest weighted
// distance wins. The best TopK candidates by polar distance then get four
// screen-grid metrics computed against the unknown, de-rotated by the
// candidate's best angle:
//
//   - Hausdorff: 94th percentile of directed nearest-ink distances
//   - MeanPixel: mean of directed nearest-ink distances
//   - Tanimoto: blended coefficient over near-ink and far-from-ink cells
//   - Yule: association coefficient over the same partition
//
// Each metric is turned into a percentile position within the TopK set and
// the four positions are summed into a fused score (lower is better).
//
// All values are distances: 0 means identical, larger is worse. Functions in
// this package never mutate templates or the unknown and are safe to call
// concurrently.
package match
