package raster

import (
	"math"
)

// Field holds a distance value per grid cell, indexed [row][col].
type Field [GridSize][GridSize]float64

// At returns the value at c.
func (f *Field) At(c Cell) float64 {
	return f[c.Row][c.Col]
}

// ScreenTransform builds the Euclidean distance field for the occupied
// cells. Every cell of the result holds the distance to the nearest occupied
// cell, 0 on occupied cells and +Inf everywhere when cells is empty.
func ScreenTransform(cells []Cell) Field {
	return transform(cells, func(dCol int) float64 { return float64(dCol) })
}

// PolarTransform is ScreenTransform with the column axis treated as
// circular, so the angular gap between columns 0 and GridSize-1 is 1.
func PolarTransform(cells []Cell) Field {
	return transform(cells, func(dCol int) float64 {
		return float64(min(dCol, GridSize-dCol))
	})
}

func transform(cells []Cell, colGap func(int) float64) Field {
	var f Field
	for r := 0; r < GridSize; r++ {
		for c := 0; c < GridSize; c++ {
			best := math.Inf(1)
			for _, o := range cells {
				dr := float64(r - o.Row)
				dc := colGap(absInt(c - o.Col))
				if d := math.Sqrt(dr*dr + dc*dc); d < best {
					best = d
				}
			}
			f[r][c] = best
		}
	}
	return f
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
