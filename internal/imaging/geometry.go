package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rect is a rectangle given by two corners in some pixel space.
//
// After Normalize, (X1, Y1) is the top-left corner (inclusive) and (X2, Y2)
// the bottom-right corner (exclusive), so Width = X2 - X1 and Height = Y2 - Y1.
// A Rect may be degenerate (zero width or height); Crop rejects those.
type Rect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Normalize returns r with its corners ordered so that X1 <= X2 and Y1 <= Y2.
// A drag may start at any corner, so every entry point normalizes first.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Width returns the horizontal extent of the normalized rectangle.
func (r Rect) Width() int {
	n := r.Normalize()
	return n.X2 - n.X1
}

// Height returns the vertical extent of the normalized rectangle.
func (r Rect) Height() int {
	n := r.Normalize()
	return n.Y2 - n.Y1
}

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	n := r.Normalize()
	return image.Rect(n.X1, n.Y1, n.X2, n.Y2)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// ScaleFactors maps display-space pixels to source-space pixels.
//
// X and Y are sourceWidth/displayWidth and sourceHeight/displayHeight. The
// integer dimensions are kept alongside so that mapping can be computed
// exactly rather than through a rounded float product.
type ScaleFactors struct {
	X float64 `json:"scale_x"`
	Y float64 `json:"scale_y"`

	SourceWidth   int `json:"source_width"`
	SourceHeight  int `json:"source_height"`
	DisplayWidth  int `json:"display_width"`
	DisplayHeight int `json:"display_height"`
}

// NewScaleFactors builds the factors for a source image shown at the given
// display size. Display dimensions must be positive.
func NewScaleFactors(sourceWidth, sourceHeight, displayWidth, displayHeight int) (ScaleFactors, error) {
	if displayWidth <= 0 || displayHeight <= 0 {
		return ScaleFactors{}, fmt.Errorf("invalid display size %dx%d", displayWidth, displayHeight)
	}
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return ScaleFactors{}, fmt.Errorf("invalid source size %dx%d", sourceWidth, sourceHeight)
	}
	return ScaleFactors{
		X:             float64(sourceWidth) / float64(displayWidth),
		Y:             float64(sourceHeight) / float64(displayHeight),
		SourceWidth:   sourceWidth,
		SourceHeight:  sourceHeight,
		DisplayWidth:  displayWidth,
		DisplayHeight: displayHeight,
	}, nil
}

// ToSourceRect converts a drag rectangle in display coordinates into a
// rectangle in source-image pixel coordinates.
//
// The corners are normalized, clamped to [0, DisplayWidth] x [0, DisplayHeight]
// (pointer events can land outside the canvas during fast drags), scaled and
// truncated toward zero. A degenerate result is returned as is; Crop is the
// one that rejects it.
func ToSourceRect(drag Rect, scale ScaleFactors) Rect {
	r := drag.Normalize()

	r.X1 = clamp(r.X1, 0, scale.DisplayWidth)
	r.X2 = clamp(r.X2, 0, scale.DisplayWidth)
	r.Y1 = clamp(r.Y1, 0, scale.DisplayHeight)
	r.Y2 = clamp(r.Y2, 0, scale.DisplayHeight)

	return Rect{
		X1: scaleCoord(r.X1, scale.SourceWidth, scale.DisplayWidth),
		Y1: scaleCoord(r.Y1, scale.SourceHeight, scale.DisplayHeight),
		X2: scaleCoord(r.X2, scale.SourceWidth, scale.DisplayWidth),
		Y2: scaleCoord(r.Y2, scale.SourceHeight, scale.DisplayHeight),
	}
}

// scaleCoord computes trunc(v * src / disp) in integer arithmetic.
func scaleCoord(v, src, disp int) int {
	if disp == 0 {
		return 0
	}
	return int(int64(v) * int64(src) / int64(disp))
}

// FitPreview scales img to fit inside a surfaceWidth x surfaceHeight canvas
// while keeping its aspect ratio, and returns the preview together with the
// factors that map preview pixels back to img.
//
// Images smaller than the surface are shown at their natural size, so the
// factors are 1 in that case.
func FitPreview(img image.Image, surfaceWidth, surfaceHeight int) (image.Image, ScaleFactors, error) {
	if surfaceWidth <= 0 || surfaceHeight <= 0 {
		return nil, ScaleFactors{}, fmt.Errorf("invalid surface size %dx%d", surfaceWidth, surfaceHeight)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, ScaleFactors{}, fmt.Errorf("cannot preview an empty image")
	}

	preview := imaging.Fit(img, surfaceWidth, surfaceHeight, imaging.Lanczos)
	pb := preview.Bounds()

	scale, err := NewScaleFactors(bounds.Dx(), bounds.Dy(), pb.Dx(), pb.Dy())
	if err != nil {
		return nil, ScaleFactors{}, err
	}
	return preview, scale, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
