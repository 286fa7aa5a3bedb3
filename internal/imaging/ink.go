package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
)

const (
	// DefaultThreshold is the luminance below which a pixel counts as ink.
	DefaultThreshold = 128

	// MinInkPixels is the smallest connected component kept as a stroke.
	// Smaller specks are treated as scanner noise.
	MinInkPixels = 4
)

// ErrNoInk is returned when an image holds no ink component large enough
// to keep.
var ErrNoInk = errors.New("imaging: no ink found")

// point is a pixel coordinate.
type point struct{ x, y int }

// ExtractInk converts a bitmap into a stroke sequence.
//
// The image is binarized with threshold: pixels darker than it are ink.
// Every 8-connected ink component becomes one stroke, discovered in
// row-major scan order and traced by an iterative flood fill. The last
// point of each stroke is marked EndOfStroke. Components with fewer than
// MinInkPixels pixels are dropped.
func ExtractInk(img image.Image, threshold uint8) ([]raster.Point, error) {
	bw := segment.Threshold(img, threshold)
	width, height := bw.Bounds().Dx(), bw.Bounds().Dy()

	ink := make([][]bool, height)
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		ink[y] = make([]bool, width)
		visited[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			ink[y][x] = bw.Pix[y*bw.Stride+x] == 0
		}
	}

	var points []raster.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !ink[y][x] || visited[y][x] {
				continue
			}
			stroke := floodFill(ink, visited, x, y, width, height)
			if len(stroke) < MinInkPixels {
				continue
			}
			for _, p := range stroke {
				points = append(points, raster.Point{X: float64(p.x), Y: float64(p.y)})
			}
			points[len(points)-1].EndOfStroke = true
		}
	}

	if len(points) == 0 {
		return nil, ErrNoInk
	}
	return points, nil
}

// LoadInk opens the image at path and extracts its ink.
func LoadInk(path string, threshold uint8) ([]raster.Point, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}
	return ExtractInk(img, threshold)
}

// Open decodes the PNG, JPEG or BMP image at path.
func Open(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Crop cuts the region r out of img, so that one symbol can be taken from
// a larger drawing. r is in image coordinates with an exclusive maximum.
func Crop(img image.Image, r image.Rectangle) (image.Image, error) {
	bounds := img.Bounds()
	if r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if !r.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	return imaging.Crop(img, r), nil
}

// floodFill collects the 8-connected component containing (startX, startY)
// in visit order. It uses an explicit stack so large components cannot
// overflow the goroutine stack.
func floodFill(ink, visited [][]bool, startX, startY, width, height int) []point {
	var stroke []point
	stack := []point{{startX, startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			continue
		}
		if visited[p.y][p.x] || !ink[p.y][p.x] {
			continue
		}

		visited[p.y][p.x] = true
		stroke = append(stroke, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, point{p.x + dx, p.y + dy})
			}
		}
	}
	return stroke
}
