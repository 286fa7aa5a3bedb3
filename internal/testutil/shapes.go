// Package testutil generates deterministic ink shapes for tests.
package testutil

import (
	"math"
	"math/rand/v2"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
)

// Line samples n+1 evenly spaced points from (x0,y0) to (x1,y1).
func Line(x0, y0, x1, y1 float64, n int) []raster.Point {
	pts := make([]raster.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, raster.Point{X: x0 + t*(x1-x0), Y: y0 + t*(y1-y0)})
	}
	return pts
}

// Arc samples n+1 points on a circle of radius r around (cx,cy) from angle
// from to angle to, in radians.
func Arc(cx, cy, r, from, to float64, n int) []raster.Point {
	pts := make([]raster.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := from + (to-from)*float64(i)/float64(n)
		pts = append(pts, raster.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return pts
}

// Join concatenates strokes, marking the last point of each as the end of a
// stroke.
func Join(strokes ...[]raster.Point) []raster.Point {
	var out []raster.Point
	for _, s := range strokes {
		if len(s) == 0 {
			continue
		}
		start := len(out)
		out = append(out, s...)
		out[start+len(s)-1].EndOfStroke = true
	}
	return out
}

// Polyline joins consecutive vertices with n samples per edge into a
// single stroke.
func Polyline(n int, vertices ...raster.Point) []raster.Point {
	var out []raster.Point
	for i := 0; i+1 < len(vertices); i++ {
		seg := Line(vertices[i].X, vertices[i].Y, vertices[i+1].X, vertices[i+1].Y, n)
		if i > 0 {
			seg = seg[1:]
		}
		out = append(out, seg...)
	}
	return out
}

// Transform scales points about the origin and then translates them.
func Transform(points []raster.Point, scale, dx, dy float64) []raster.Point {
	out := make([]raster.Point, len(points))
	for i, p := range points {
		out[i] = raster.Point{X: p.X*scale + dx, Y: p.Y*scale + dy, EndOfStroke: p.EndOfStroke}
	}
	return out
}

// Square is a closed square outline of side 100.
func Square() []raster.Point {
	return Join(Polyline(10,
		raster.Point{X: 0, Y: 0}, raster.Point{X: 100, Y: 0},
		raster.Point{X: 100, Y: 100}, raster.Point{X: 0, Y: 100},
		raster.Point{X: 0, Y: 0},
	))
}

// Circle is a closed circle of radius 50.
func Circle() []raster.Point {
	return Join(Arc(50, 50, 50, 0, 2*math.Pi, 48))
}

// Triangle is a closed triangle pointing right.
func Triangle() []raster.Point {
	return Join(Polyline(12,
		raster.Point{X: 0, Y: 0}, raster.Point{X: 100, Y: 50},
		raster.Point{X: 0, Y: 100}, raster.Point{X: 0, Y: 0},
	))
}

// Cross is two crossing diagonal strokes.
func Cross() []raster.Point {
	return Join(Line(0, 0, 100, 100, 20), Line(100, 0, 0, 100, 20))
}

// AndGate is a flat back joined to a semicircular front, with two input
// leads and one output lead.
func AndGate() []raster.Point {
	body := Polyline(10,
		raster.Point{X: 50, Y: 0}, raster.Point{X: 20, Y: 0},
		raster.Point{X: 20, Y: 100}, raster.Point{X: 50, Y: 100},
	)
	front := Arc(50, 50, 50, math.Pi/2, -math.Pi/2, 24)
	return Join(body, front,
		Line(0, 25, 20, 25, 4),
		Line(0, 75, 20, 75, 4),
		Line(100, 50, 120, 50, 4),
	)
}

// OrGate has a concave back and two arcs meeting in a point at the front,
// with two input leads and one output lead.
func OrGate() []raster.Point {
	back := Arc(-40, 50, 70, -math.Pi/4.6, math.Pi/4.6, 12)
	top := Arc(20, 150, 150, -math.Pi/2, -math.Pi/6, 20)
	bottom := Arc(20, -50, 150, math.Pi/2, math.Pi/6, 20)
	return Join(back, top, bottom,
		Line(0, 25, 26, 25, 4),
		Line(0, 75, 26, 75, 4),
		Line(150, 50, 170, 50, 4),
	)
}

// NotGate is a triangle followed by a small bubble, with input and output
// leads.
func NotGate() []raster.Point {
	return Join(
		Polyline(10,
			raster.Point{X: 20, Y: 0}, raster.Point{X: 100, Y: 50},
			raster.Point{X: 20, Y: 100}, raster.Point{X: 20, Y: 0},
		),
		Arc(110, 50, 10, math.Pi, 3*math.Pi, 16),
		Line(0, 50, 20, 50, 4),
		Line(120, 50, 140, 50, 4),
	)
}

// Jitter offsets every point by a pseudo-random amount of at most amount in
// each axis. The same seed always produces the same output.
func Jitter(points []raster.Point, amount float64, seed uint64) []raster.Point {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]raster.Point, len(points))
	for i, p := range points {
		dx := amount * (2*rng.Float64() - 1)
		dy := amount * (2*rng.Float64() - 1)
		out[i] = raster.Point{X: p.X + dx, Y: p.Y + dy, EndOfStroke: p.EndOfStroke}
	}
	return out
}
