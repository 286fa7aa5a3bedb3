package match

import (
	"slices"
)

const (
	// MinInkPoints is the largest point count still treated as no ink.
	MinInkPoints = 6

	// DefaultTopK is the number of polar-ranked candidates that get full
	// screen metrics and fusion.
	DefaultTopK = 5

	// DefaultAllowedRotation is the rotation tolerance around each origin,
	// in degrees.
	DefaultAllowedRotation = 15.0
)

// DefaultOrigins are the rotation origins, in degrees, searched by default.
var DefaultOrigins = []float64{0, 90}

// Options controls FindBestMatches and Compare.
type Options struct {
	// TopK bounds the candidates carried into the fusion stage. Values <= 0
	// or larger than the candidate count mean all candidates.
	TopK int

	// AllowedRotation is the tolerance in degrees around every origin.
	// 180 or more allows any rotation.
	AllowedRotation float64

	// Origins lists the orientations, in degrees, the unknown may be drawn
	// at. Empty allows any rotation.
	Origins []float64
}

// DefaultOptions returns the default matching options.
func DefaultOptions() Options {
	return Options{
		TopK:            DefaultTopK,
		AllowedRotation: DefaultAllowedRotation,
		Origins:         slices.Clone(DefaultOrigins),
	}
}

// Upright returns a copy of o that only searches around the 0 degree
// origin.
func (o Options) Upright() Options {
	o.Origins = []float64{0}
	return o
}

// ForClass returns o unchanged unless class is one of upright, in which
// case the unknown is only searched around its drawn orientation. Text-like
// symbols such as labels read differently when turned on their side.
func (o Options) ForClass(class string, upright []string) Options {
	if class != "" && slices.Contains(upright, class) {
		return o.Upright()
	}
	return o
}
