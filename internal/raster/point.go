package raster

import (
	"math"
)

// Point is a single ink sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// EndOfStroke marks the last sample of a stroke. The segment from this
	// point to the next one is a pen-up jump and carries no ink.
	EndOfStroke bool `json:"end_of_stroke,omitempty"`
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent of the box.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// BoundsOf returns the bounding box of points. The zero Bounds is returned
// for an empty slice.
func BoundsOf(points []Point) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// Centroid returns the path-length-weighted centroid of points.
//
// Each segment between consecutive points contributes its midpoint weighted
// by its length. Segments that start on an end-of-stroke point are skipped.
// When the total ink length is zero (a single point, or all points stacked)
// the arithmetic mean is returned instead.
func Centroid(points []Point) (float64, float64) {
	if len(points) == 0 {
		return 0, 0
	}

	var cx, cy, total float64
	for i := 0; i+1 < len(points); i++ {
		p, q := points[i], points[i+1]
		if p.EndOfStroke {
			continue
		}
		l := math.Hypot(q.X-p.X, q.Y-p.Y)
		cx += l * (p.X + q.X) / 2
		cy += l * (p.Y + q.Y) / 2
		total += l
	}
	if total > 0 {
		return cx / total, cy / total
	}

	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	return cx / n, cy / n
}

// Rotate returns a copy of points rotated by theta radians about their
// path-length-weighted centroid. Stroke markers are preserved.
func Rotate(points []Point, theta float64) []Point {
	cx, cy := Centroid(points)
	sin, cos := math.Sincos(theta)

	out := make([]Point, len(points))
	for i, p := range points {
		dx, dy := p.X-cx, p.Y-cy
		out[i] = Point{
			X:           cx + dx*cos - dy*sin,
			Y:           cy + dx*sin + dy*cos,
			EndOfStroke: p.EndOfStroke,
		}
	}
	return out
}
