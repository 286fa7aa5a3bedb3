package match

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// flatRange is the spread below which a metric is considered constant
// across the candidate set.
const flatRange = 1e-6

// Fuse replaces each result's Score with the sum of its percentile
// positions, (v-min)/(max-min)*100, under the four screen metrics, and
// returns the results stable-sorted by ascending Score. A metric whose
// range is flat contributes 0 for every result.
//
// The input slice is sorted in place.
func Fuse(results []Result) []Result {
	if len(results) == 0 {
		return results
	}

	metrics := []func(Result) float64{
		func(r Result) float64 { return r.Hausdorff },
		func(r Result) float64 { return r.MeanPixel },
		func(r Result) float64 { return r.Tanimoto },
		func(r Result) float64 { return r.Yule },
	}

	scores := make([]float64, len(results))
	values := make([]float64, len(results))
	for _, metric := range metrics {
		for i, r := range results {
			values[i] = metric(r)
		}
		lo, hi := floats.Min(values), floats.Max(values)
		for i, v := range values {
			scores[i] += percentLocation(lo, hi, v)
		}
	}
	for i := range results {
		results[i].Score = scores[i]
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return compareFloat(a.Score, b.Score)
	})
	return results
}

func percentLocation(lo, hi, v float64) float64 {
	span := hi - lo
	if math.Abs(span) < flatRange || math.IsInf(span, 0) || math.IsNaN(span) {
		return 0
	}
	return (v - lo) / span * 100
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
