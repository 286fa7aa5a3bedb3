package raster

import (
	"math"
)

const (
	// GridSize is the side length of every grid.
	GridSize = 24

	// RelativeDistanceScale is the largest normalized radius kept on the
	// polar grid. Points farther than this multiple of the mean radius are
	// dropped.
	RelativeDistanceScale = 2.4
)

// Cell addresses one grid cell.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is an occupancy grid indexed [row][col].
type Grid [GridSize][GridSize]bool

// Cells returns the occupied cells in row-major order.
func (g *Grid) Cells() []Cell {
	cells := make([]Cell, 0)
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			if g[r][c] {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// Raster holds the quantized views of one shape.
type Raster struct {
	Screen      Grid
	ScreenCells []Cell
	ScreenField Field

	Polar      Grid
	PolarCells []Cell
	PolarField Field

	// PolarYMax is the largest occupied polar row, or 0 when the polar grid
	// is empty.
	PolarYMax int

	Bounds Bounds
	Points int
}

// Rasterize quantizes points onto the screen and polar grids and builds
// both distance fields. The input slice is not modified.
func Rasterize(points []Point) *Raster {
	r := &Raster{
		Bounds: BoundsOf(points),
		Points: len(points),
	}

	quantizeScreen(points, r.Bounds, &r.Screen)
	quantizePolar(points, &r.Polar)

	r.ScreenCells = r.Screen.Cells()
	r.PolarCells = r.Polar.Cells()
	for _, c := range r.PolarCells {
		if c.Row > r.PolarYMax {
			r.PolarYMax = c.Row
		}
	}

	r.ScreenField = ScreenTransform(r.ScreenCells)
	r.PolarField = PolarTransform(r.PolarCells)
	return r
}

// quantizeScreen maps points onto the grid after centering the bounding box
// and scaling its longer side to GridSize-1 cells.
func quantizeScreen(points []Point, b Bounds, g *Grid) {
	if len(points) == 0 {
		return
	}

	step := math.Max(b.Width(), b.Height()) / float64(GridSize-1)
	if step == 0 {
		step = 1
	}
	cx, cy := b.Center()

	for _, p := range points {
		col := clampIndex(math.Floor((p.X-cx)/step + GridSize/2))
		row := clampIndex(math.Floor((p.Y-cy)/step + GridSize/2))
		g[row][col] = true
	}
}

// quantizePolar maps points onto (radius, angle) buckets around the
// path-length-weighted centroid. Radii are normalized by their mean.
func quantizePolar(points []Point, g *Grid) {
	if len(points) == 0 {
		return
	}

	cx, cy := Centroid(points)
	radii := make([]float64, len(points))
	angles := make([]float64, len(points))
	var mean float64
	for i, p := range points {
		dx, dy := p.X-cx, p.Y-cy
		radii[i] = math.Hypot(dx, dy)
		angles[i] = math.Atan2(dy, dx)
		mean += radii[i]
	}
	mean /= float64(len(points))

	band := RelativeDistanceScale / GridSize
	for i := range points {
		r := 0.0
		if mean > 0 {
			r = radii[i] / mean
		}
		row := int(math.Floor(r / band))
		if row >= GridSize {
			continue
		}
		g[row][polarColumn(angles[i])] = true
	}
}

// sectorSnap absorbs the rounding of atan2 on sector boundaries.
const sectorSnap = 1e-9

// polarColumn maps an angle in [-pi, pi] to one of GridSize sectors.
// Angles on a boundary belong to the sector they start; pi wraps to 0.
func polarColumn(theta float64) int {
	pos := (theta/math.Pi + 1) * GridSize / 2
	col := int(math.Floor(pos + sectorSnap))
	if col < 0 {
		col = 0
	}
	return col % GridSize
}

func clampIndex(v float64) int {
	if v < 0 {
		return 0
	}
	if v > GridSize-1 {
		return GridSize - 1
	}
	return int(v)
}
