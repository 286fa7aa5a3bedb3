// Package symbol defines the reference templates that unknown shapes are
// matched against.
package symbol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
)

// ErrEmptyLabel is returned when a template is created without a label.
var ErrEmptyLabel = errors.New("symbol: template label is required")

// ErrNoPoints is returned when a template is created without ink.
var ErrNoPoints = errors.New("symbol: template has no points")

// Template is a labeled reference shape. Labels need not be unique; several
// templates usually share a label to cover drawing variations.
//
// A Template is immutable once created and safe to share between
// goroutines.
type Template struct {
	ID       uuid.UUID      `json:"id"`
	Label    string         `json:"label"`
	Class    string         `json:"class,omitempty"`
	Platform string         `json:"platform,omitempty"`
	Author   string         `json:"author,omitempty"`
	Points   []raster.Point `json:"points"`

	raster *raster.Raster
}

// Info carries the descriptive fields of a template.
type Info struct {
	Label    string
	Class    string
	Platform string
	Author   string
}

// New creates a template with a fresh random id and rasterizes its points.
func New(info Info, points []raster.Point) (*Template, error) {
	return NewWithID(uuid.New(), info, points)
}

// NewWithID creates a template with a caller-supplied id, used when
// reloading persisted templates.
func NewWithID(id uuid.UUID, info Info, points []raster.Point) (*Template, error) {
	label := strings.TrimSpace(info.Label)
	if label == "" {
		return nil, ErrEmptyLabel
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPoints, label)
	}

	pts := append([]raster.Point(nil), points...)
	return &Template{
		ID:       id,
		Label:    label,
		Class:    info.Class,
		Platform: info.Platform,
		Author:   info.Author,
		Points:   pts,
		raster:   raster.Rasterize(pts),
	}, nil
}

// Raster returns the quantized grids of the template.
func (t *Template) Raster() *raster.Raster {
	return t.raster
}

// String implements fmt.Stringer.
func (t *Template) String() string {
	if t.Class == "" {
		return t.Label
	}
	return t.Class + "/" + t.Label
}
