package imaging

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"
)

// ErrInvalidDetection is returned for out-of-range detection parameters.
var ErrInvalidDetection = errors.New("invalid detection parameters")

const (
	// edgeThreshold is the luminance step between neighbours that marks an edge.
	edgeThreshold = 30
	// minContour is the smallest edge component considered; shorter ones are noise.
	minContour = 10
)

// Region is a rectangular area found by DetectRegions, in the 0-based pixel
// space of the analyzed image.
type Region struct {
	Rect Rect `json:"rect"`

	// Area is Rect.Width() * Rect.Height().
	Area int `json:"area"`

	// FillColor is the hex color at the center of the region.
	FillColor string `json:"fill_color,omitempty"`

	// Confidence is how rectangular the outline is (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// DetectRegions finds axis-aligned rectangular areas that stand out from
// their surroundings, such as a photo on a scanner bed or a framed panel.
// Results are sorted by area, largest first, so the first region is the
// most likely crop.
//
// minArea drops regions smaller than that many square pixels. tolerance
// (0.0 to 1.0) is the least rectangularity accepted.
//
// # Algorithm
//
//  1. Convert to luminance and mark pixels whose right or lower neighbour
//     differs by more than edgeThreshold.
//  2. Group 8-connected edge pixels into contours.
//  3. Score each contour by how close its length is to the perimeter of its
//     bounding box: 1 - |length - perimeter| / perimeter.
//
// The outermost row and column are never edges, so a region touching the
// image border is not found.
func DetectRegions(img image.Image, minArea int, tolerance float64) ([]Region, error) {
	if minArea < 0 {
		return nil, fmt.Errorf("%w: min area %d is negative", ErrInvalidDetection, minArea)
	}
	if math.IsNaN(tolerance) || tolerance < 0 || tolerance > 1 {
		return nil, fmt.Errorf("%w: tolerance %g not in [0, 1]", ErrInvalidDetection, tolerance)
	}

	gray := Grayscale(img)
	width, height := gray.Bounds().Dx(), gray.Bounds().Dy()
	edges := detectEdges(gray)

	regions := make([]Region, 0)
	for _, contour := range findContours(edges, width, height) {
		minX, minY := width, height
		maxX, maxY := 0, 0
		for _, p := range contour {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}

		// Edges sit on the last pixel before each step, so the region
		// starts one pixel after the contour's top-left.
		r := Rect{X1: minX + 1, Y1: minY + 1, X2: maxX + 1, Y2: maxY + 1}
		if r.Empty() {
			continue
		}
		area := r.Width() * r.Height()
		if area < minArea {
			continue
		}

		perimeter := 2 * (r.Width() + r.Height())
		score := 1.0 - math.Abs(float64(len(contour)-perimeter))/float64(perimeter)
		if score < tolerance {
			continue
		}

		region := Region{Rect: r, Area: area, Confidence: score}
		if c, err := SampleColor(img, (r.X1+r.X2)/2, (r.Y1+r.Y2)/2); err == nil {
			region.FillColor = c.Hex
		}
		regions = append(regions, region)
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Area > regions[j].Area
	})
	return regions, nil
}

// detectEdges marks pixels whose right or lower neighbour differs by more
// than edgeThreshold. Border pixels are never edges.
func detectEdges(gray *image.Gray) [][]bool {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	edges := make([][]bool, height)

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		row := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		below := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y+1):]
		for x := 1; x < width-1; x++ {
			c := int(row[x])
			if absInt(c-int(row[x+1])) > edgeThreshold || absInt(c-int(below[x])) > edgeThreshold {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// findContours groups 8-connected edge pixels and drops groups shorter than
// minContour.
func findContours(edges [][]bool, width, height int) [][]image.Point {
	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	contours := make([][]image.Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := floodFill(edges, visited, x, y)
				if len(contour) >= minContour {
					contours = append(contours, contour)
				}
			}
		}
	}
	return contours
}

// floodFill collects the contour containing (x, y) with an explicit stack so
// large outlines do not recurse deeply.
func floodFill(edges, visited [][]bool, x, y int) []image.Point {
	height, width := len(edges), len(edges[0])
	var contour []image.Point
	stack := []image.Point{{X: x, Y: y}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}
		visited[p.Y][p.X] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx != 0 || dy != 0 {
					stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
				}
			}
		}
	}
	return contour
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
