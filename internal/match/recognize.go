package match

import (
	"slices"

	"github.com/google/uuid"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
	"github.com/ironsheep/symbol-tools-mcp/internal/symbol"
)

// Result is one ranked candidate returned by FindBestMatches.
type Result struct {
	Template *symbol.Template `json:"-"`

	TemplateID uuid.UUID `json:"template_id"`
	Label      string    `json:"label"`
	Class      string    `json:"class,omitempty"`

	// Score is the fused percentile score; lower is better.
	Score float64 `json:"score"`

	Polar    float64 `json:"polar"`
	Rotation float64 `json:"rotation"`
	Metrics
}

// FindBestMatches ranks candidates against the unknown ink.
//
// Candidates are first ordered by polar alignment distance (stable, so
// ties keep library order). The best TopK get the screen metrics computed
// against the unknown de-rotated by their own best angle, and are returned
// ordered by fused score. The unknown slice is never modified.
//
// An unknown with MinInkPoints or fewer points returns an
// *InsufficientDataError. No candidates yields an empty result.
func FindBestMatches(unknown []raster.Point, candidates []*symbol.Template, o Options) ([]Result, error) {
	if len(unknown) <= MinInkPoints {
		return nil, &InsufficientDataError{Points: len(unknown)}
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	u := raster.Rasterize(unknown)

	ranked := make([]Result, len(candidates))
	for i, t := range candidates {
		al := AlignPolar(t.Raster(), u, o.AllowedRotation, o.Origins)
		ranked[i] = Result{
			Template:   t,
			TemplateID: t.ID,
			Label:      t.Label,
			Class:      t.Class,
			Polar:      al.Distance,
			Rotation:   al.Angle,
		}
	}
	slices.SortStableFunc(ranked, func(a, b Result) int {
		return compareFloat(a.Polar, b.Polar)
	})

	k := o.TopK
	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}
	top := ranked[:k:k]

	for i := range top {
		top[i].Metrics = ScreenMetrics(top[i].Template.Raster(), derotate(unknown, u, top[i].Rotation))
	}

	return Fuse(top), nil
}
