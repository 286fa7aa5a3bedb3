package match

import (
	"math"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
)

// polarWeightDecay shrinks the contribution of cells near the centroid,
// where small jitter moves points across many angle sectors.
const polarWeightDecay = 0.1

// Alignment is the outcome of a polar alignment.
type Alignment struct {
	// Distance is the larger of the two directed weighted mean distances.
	Distance float64 `json:"distance"`

	// Offset is the winning column shift.
	Offset int `json:"offset"`

	// Angle is the rotation, in radians, that maps the template onto the
	// unknown. Rotating the unknown by -Angle undoes it.
	Angle float64 `json:"angle"`
}

// AlignPolar finds the rotation of unknown that best matches template on
// the polar grid.
//
// For every allowed column offset i, each occupied template cell (r,c) is
// looked up in the unknown's polar field at (r, c+i mod N) and the values
// are summed with weight (r/yMax)^0.1. The first offset with the strictly
// lowest sum wins. The reverse direction is then measured at that offset
// only, and the result is the larger of both sums normalized by cell count.
// Either raster being empty yields +Inf.
func AlignPolar(template, unknown *raster.Raster, allowedDeg float64, origins []float64) Alignment {
	a, b := template.PolarCells, unknown.PolarCells
	if len(a) == 0 || len(b) == 0 {
		return Alignment{Distance: math.Inf(1)}
	}

	const n = raster.GridSize
	allowed := allowedOffsets(allowedDeg, origins)

	best, bestSum := 0, math.Inf(1)
	for i := 0; i < n; i++ {
		if !allowed[i] {
			continue
		}
		var sum float64
		for _, c := range a {
			sum += unknown.PolarField[c.Row][(c.Col+i)%n] * polarWeight(c.Row, template.PolarYMax)
		}
		if sum < bestSum {
			best, bestSum = i, sum
		}
	}

	var reverse float64
	for _, c := range b {
		reverse += template.PolarField[c.Row][(c.Col-best+n)%n] * polarWeight(c.Row, unknown.PolarYMax)
	}

	return Alignment{
		Distance: math.Max(bestSum/float64(len(a)), reverse/float64(len(b))),
		Offset:   best,
		Angle:    float64(best) * 2 * math.Pi / n,
	}
}

// allowedOffsets marks the column offsets whose angle lies within allowedDeg
// of at least one origin, measured around the circle.
func allowedOffsets(allowedDeg float64, origins []float64) [raster.GridSize]bool {
	var allowed [raster.GridSize]bool
	all := allowedDeg >= 180 || len(origins) == 0
	for i := range allowed {
		if all {
			allowed[i] = true
			continue
		}
		deg := float64(i) * 360 / raster.GridSize
		for _, o := range origins {
			if circularDiff(deg, o) <= allowedDeg+1e-9 {
				allowed[i] = true
				break
			}
		}
	}
	return allowed
}

func circularDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func polarWeight(row, yMax int) float64 {
	if yMax <= 0 {
		return 1
	}
	return math.Pow(float64(row)/float64(yMax), polarWeightDecay)
}
