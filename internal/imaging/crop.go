package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ErrInvalidRegion is returned by Crop when the requested region has no area
// or does not overlap the source image.
var ErrInvalidRegion = errors.New("invalid crop region")

// Crop extracts the region r from src.
//
// The region is given in source pixel coordinates relative to the top-left
// corner of src. It is normalized and intersected with the source bounds, so
// Crop never reads outside src. The returned image has its origin at (0,0)
// and is a fresh copy: later edits to it never touch src.
//
// Luminance sources stay luminance; everything else comes back as NRGBA.
func Crop(src image.Image, r Rect) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("%w: %s has zero area", ErrInvalidRegion, r)
	}

	bounds := src.Bounds()
	region := r.Bounds().Add(bounds.Min).Intersect(bounds)
	if region.Empty() {
		return nil, fmt.Errorf("%w: %s lies outside image bounds %dx%d",
			ErrInvalidRegion, r, bounds.Dx(), bounds.Dy())
	}

	return keepFormat(src, imaging.Crop(src, region)), nil
}

// keepFormat converts dst back to luminance when src was luminance.
//
// The transforms in disintegration/imaging always return NRGBA. Converting
// back keeps the pixel format stable across an edit chain, which matters for
// operations like four successive rotations returning the same image.
func keepFormat(src, dst image.Image) image.Image {
	if _, ok := src.(*image.Gray); !ok {
		return dst
	}
	if g, ok := dst.(*image.Gray); ok {
		return g
	}
	b := dst.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), dst, b.Min, draw.Src)
	return gray
}
