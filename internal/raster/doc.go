// Package raster converts ink point sequences into the fixed-size grids used
// for symbol matching.
//
// Every shape is quantized twice onto a GridSize x GridSize grid:
//
//   - Screen grid: the bounding box of the points is scaled uniformly so its
//     longer side spans the grid, then centered. Rows index Y, columns index X.
//   - Polar grid: points are expressed relative to the path-length-weighted
//     centroid. Columns index the angle (GridSize equal sectors starting at -pi)
//     and rows index the radius normalized by the mean radius.
//
// For each grid a distance field is built holding, per cell, the Euclidean
// distance to the nearest occupied cell. The polar field wraps around the
// angular axis. A grid with no occupied cells yields a field of +Inf.
//
// # Coordinate System
//
// Points use the input device's coordinate space. Only relative positions
// matter: the screen grid is invariant to translation and uniform scale, the
// polar grid to translation and scale, and a rotation of the input shows up
// as a circular shift of polar columns.
//
// # Thread Safety
//
// Rasterize and the transforms are pure functions. A Raster is never mutated
// after construction and can be shared between goroutines.
package raster
