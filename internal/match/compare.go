package match

import (
	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
	"github.com/ironsheep/symbol-tools-mcp/internal/symbol"
)

// Comparison holds every distance between one template and one unknown.
type Comparison struct {
	Polar    float64 `json:"polar"`
	Rotation float64 `json:"rotation"`
	Metrics
}

// Compare aligns unknown to the template on the polar grid and computes the
// screen metrics against the unknown de-rotated by the winning angle.
func Compare(template *symbol.Template, unknown []raster.Point, o Options) Comparison {
	return compareRaster(template.Raster(), unknown, raster.Rasterize(unknown), o)
}

func compareRaster(t *raster.Raster, points []raster.Point, u *raster.Raster, o Options) Comparison {
	al := AlignPolar(t, u, o.AllowedRotation, o.Origins)
	return Comparison{
		Polar:    al.Distance,
		Rotation: al.Angle,
		Metrics:  ScreenMetrics(t, derotate(points, u, al.Angle)),
	}
}

// derotate returns the raster of points rotated back by angle. The already
// computed raster is reused when no rotation is needed.
func derotate(points []raster.Point, r *raster.Raster, angle float64) *raster.Raster {
	if angle == 0 {
		return r
	}
	return raster.Rasterize(raster.Rotate(points, -angle))
}

// Comparator scores template pairs for the cluster tree. It searches the
// full circle so that rotated variants of a symbol cluster together.
type Comparator struct {
	Options Options
}

// NewComparator returns a Comparator that allows any rotation.
func NewComparator() *Comparator {
	return &Comparator{Options: Options{AllowedRotation: 180}}
}

// Similarity maps the polar and mean pixel distances of a and b into
// (0, 1], where 1 means identical rasters.
func (c *Comparator) Similarity(a, b *symbol.Template) float64 {
	cmp := compareRaster(a.Raster(), b.Points, b.Raster(), c.Options)
	return 1 / (1 + (cmp.Polar+cmp.MeanPixel)/2)
}
