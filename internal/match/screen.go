package match

import (
	"math"
	"slices"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
)

const (
	// hausdorffQuantile picks the partial Hausdorff distance, which ignores
	// the worst 6% of stray ink.
	hausdorffQuantile = 0.94

	// worstTanimoto and worstYule are reported when a coefficient is
	// undefined for the pair.
	worstTanimoto = 1.0
	worstYule     = 2.0
)

// nearInk is the distance below which a screen cell counts as ink for the
// Tanimoto and Yule coefficients.
var nearInk = math.Sqrt(raster.GridSize*raster.GridSize+raster.GridSize*raster.GridSize) / 15

// Metrics holds the screen-grid distances between two rasters.
type Metrics struct {
	Hausdorff float64 `json:"hausdorff"`
	MeanPixel float64 `json:"mean_pixel"`
	Tanimoto  float64 `json:"tanimoto"`
	Yule      float64 `json:"yule"`

	// Degenerate is set when Tanimoto or Yule had a zero denominator and
	// was reported at its worst value.
	Degenerate bool `json:"degenerate,omitempty"`
}

// ScreenMetrics computes the four screen-grid distances between two
// rasters. The Hausdorff and mean pixel distances are symmetric by taking
// the larger of both directions, and are +Inf when either side is empty.
func ScreenMetrics(a, b *raster.Raster) Metrics {
	m := Metrics{
		Hausdorff: math.Max(directedHausdorff(a.ScreenCells, &b.ScreenField), directedHausdorff(b.ScreenCells, &a.ScreenField)),
		MeanPixel: math.Max(directedMean(a.ScreenCells, &b.ScreenField), directedMean(b.ScreenCells, &a.ScreenField)),
	}

	var tanimotoOK, yuleOK bool
	m.Tanimoto, tanimotoOK = tanimoto(&a.ScreenField, &b.ScreenField)
	m.Yule, yuleOK = yule(&a.ScreenField, &b.ScreenField)
	m.Degenerate = !tanimotoOK || !yuleOK
	return m
}

func directedHausdorff(cells []raster.Cell, field *raster.Field) float64 {
	if len(cells) == 0 {
		return math.Inf(1)
	}
	d := make([]float64, len(cells))
	for i, c := range cells {
		d[i] = field.At(c)
	}
	slices.Sort(d)
	return d[int(math.Floor(float64(len(d)-1)*hausdorffQuantile))]
}

func directedMean(cells []raster.Cell, field *raster.Field) float64 {
	if len(cells) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for _, c := range cells {
		sum += field.At(c)
	}
	return sum / float64(len(cells))
}

// contingency counts cells by whether each field is near ink.
type contingency struct {
	n11, n10, n01, n00 int
}

func tabulate(a, b *raster.Field) contingency {
	var t contingency
	for r := 0; r < raster.GridSize; r++ {
		for c := 0; c < raster.GridSize; c++ {
			inA, inB := a[r][c] < nearInk, b[r][c] < nearInk
			switch {
			case inA && inB:
				t.n11++
			case inA:
				t.n10++
			case inB:
				t.n01++
			default:
				t.n00++
			}
		}
	}
	return t
}

// tanimoto blends the coefficient over near-ink cells with the one over
// far cells, weighting near-ink more heavily for sparse drawings.
func tanimoto(a, b *raster.Field) (float64, bool) {
	t := tabulate(a, b)
	inA, inB := t.n11+t.n10, t.n11+t.n01

	d1 := inA + inB - t.n11
	d0 := inA + inB - 2*t.n11 + t.n00
	if d1 == 0 || d0 == 0 {
		return worstTanimoto, false
	}

	t1 := float64(t.n11) / float64(d1)
	t0 := float64(t.n00) / float64(d0)
	p := float64(inA+inB) / 2 / (raster.GridSize * raster.GridSize)
	alpha := (3 - p) / 4
	return 1 - (alpha*t1 + (1-alpha)*t0), true
}

func yule(a, b *raster.Field) (float64, bool) {
	t := tabulate(a, b)
	agree := t.n11 * t.n00
	disagree := t.n10 * t.n01
	if agree+disagree == 0 {
		return worstYule, false
	}
	return 1 - float64(agree-disagree)/float64(agree+disagree), true
}
