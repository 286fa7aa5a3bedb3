package cluster

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Linkage selects how the distance between two clusters is derived from the
// distances between their members.
type Linkage int

const (
	// Complete uses the largest member-pair distance.
	Complete Linkage = iota
	// Single uses the smallest member-pair distance.
	Single
	// Average uses the mean member-pair distance.
	Average
)

// String implements fmt.Stringer.
func (l Linkage) String() string {
	switch l {
	case Complete:
		return "complete"
	case Single:
		return "single"
	case Average:
		return "average"
	default:
		return fmt.Sprintf("Linkage(%d)", int(l))
	}
}

// ParseLinkage converts a linkage name, case-insensitively. The empty string
// selects Complete.
func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "complete":
		return Complete, nil
	case "single":
		return Single, nil
	case "average":
		return Average, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLinkage, s)
	}
}

// between returns the linkage distance between two disjoint member sets.
func (l Linkage) between(a, b []int, dist *mat.SymDense) float64 {
	var acc float64
	switch l {
	case Single:
		acc = math.Inf(1)
	case Complete:
		acc = math.Inf(-1)
	}
	for _, i := range a {
		for _, j := range b {
			d := dist.At(i, j)
			switch l {
			case Single:
				acc = math.Min(acc, d)
			case Complete:
				acc = math.Max(acc, d)
			default:
				acc += d
			}
		}
	}
	if l == Average {
		acc /= float64(len(a) * len(b))
	}
	return acc
}
