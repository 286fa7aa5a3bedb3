// Package imaging connects bitmap images to the symbol recognizer.
//
// It extracts ink from scanned or rendered symbols and draws the recognizer's
// grids back out as PNG previews. Coordinates follow the image convention:
// (0,0) is the top-left pixel, X increases rightward and Y downward.
//
// # Ink Extraction
//
// ExtractInk thresholds the image to black and white and walks each
// 8-connected component of dark pixels as one stroke. Components are found
// in row-major order of their first pixel, so the same image always yields
// the same point sequence. The last point of every stroke is marked as a
// stroke end.
//
// # Regions
//
// Crop uses the same region convention as the server tools: (x1,y1) is
// inclusive, (x2,y2) is exclusive, and the region must lie inside the image.
//
// # Rendering
//
// RenderOccupancy and RenderField draw one GridSize x GridSize grid, one
// square of scale pixels per cell. Distance fields are shaded from ink
// (dark) to the farthest finite cell (light); unreachable cells take the
// background color.
package imaging
