package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
)

// DefaultScale is the pixel size of one grid cell in a rendering.
const DefaultScale = 12

var (
	inkColor        = colorful.Color{R: 0.05, G: 0.10, B: 0.35}
	backgroundColor = colorful.Color{R: 1, G: 1, B: 1}
)

// RenderResult contains an encoded rendering of a grid.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderOccupancy paints occupied cells in ink and the rest as background.
// Row 0 is the top of the image.
func RenderOccupancy(grid *raster.Grid, scale int) (*RenderResult, error) {
	return render(func(row, col int) colorful.Color {
		if grid[row][col] {
			return inkColor
		}
		return backgroundColor
	}, scale)
}

// RenderField paints a distance field, blending in Lab space from ink at
// distance zero to background at the largest finite distance. Infinite
// cells are background.
func RenderField(field *raster.Field, scale int) (*RenderResult, error) {
	var maxDist float64
	for row := range field {
		for _, v := range field[row] {
			if !math.IsInf(v, 0) && v > maxDist {
				maxDist = v
			}
		}
	}

	return render(func(row, col int) colorful.Color {
		v := field[row][col]
		switch {
		case math.IsInf(v, 0):
			return backgroundColor
		case maxDist == 0:
			return inkColor
		default:
			return inkColor.BlendLab(backgroundColor, v/maxDist).Clamped()
		}
	}, scale)
}

func render(cell func(row, col int) colorful.Color, scale int) (*RenderResult, error) {
	if scale <= 0 {
		scale = DefaultScale
	}

	const n = raster.GridSize
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			img.Set(col, row, cell(row, col))
		}
	}

	scaled := imaging.Resize(img, n*scale, n*scale, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode rendering: %w", err)
	}

	return &RenderResult{
		Width:       scaled.Bounds().Dx(),
		Height:      scaled.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
