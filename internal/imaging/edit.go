package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Bounds of the continuous parameter carried by brightness and resize edits.
const (
	MinFactor = 0.1
	MaxFactor = 2.0
)

// ErrFactorOutOfRange is returned when a brightness or resize factor falls
// outside [MinFactor, MaxFactor].
var ErrFactorOutOfRange = errors.New("factor out of range")

// ValidateFactor rejects factors outside [MinFactor, MaxFactor], including NaN.
func ValidateFactor(factor float64) error {
	if math.IsNaN(factor) || factor < MinFactor || factor > MaxFactor {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrFactorOutOfRange, factor, MinFactor, MaxFactor)
	}
	return nil
}

// Grayscale converts img to single-channel luminance.
//
// An image that is already luminance is copied unchanged, so applying
// Grayscale twice gives the same pixels as applying it once.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		b := g.Bounds()
		out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	}
	// bild weights the channels but returns RGBA with R == G == B.
	rgba := effect.Grayscale(img)
	b := rgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride : y*out.Stride+b.Dx()]
		for x := range dst {
			dst[x] = src[x*4]
		}
	}
	return out
}

// Rotate90 turns img 90 degrees clockwise. The canvas grows to fit, so the
// output is img.Height wide and img.Width tall and no pixel is lost.
func Rotate90(img image.Image) image.Image {
	// imaging rotates counter-clockwise; 270 CCW is 90 CW.
	return keepFormat(img, imaging.Rotate270(img))
}

// Brightness multiplies the color channels of img by factor, rounding and
// clamping to [0, 255]. Alpha is left alone. A factor of 1 reproduces img.
func Brightness(img image.Image, factor float64) (image.Image, error) {
	if err := ValidateFactor(factor); err != nil {
		return nil, err
	}

	scale := func(v uint8) uint8 {
		return uint8(clamp(int(math.Round(float64(v)*factor)), 0, 255))
	}
	out := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
	})
	return keepFormat(img, out), nil
}

// Resize scales img by factor on both axes using Lanczos resampling.
//
// The new size is round(width*factor) x round(height*factor), never less
// than one pixel per side. A factor of 1 returns an exact copy.
func Resize(img image.Image, factor float64) (image.Image, error) {
	if err := ValidateFactor(factor); err != nil {
		return nil, err
	}

	b := img.Bounds()
	w := max(1, int(math.Round(float64(b.Dx())*factor)))
	h := max(1, int(math.Round(float64(b.Dy())*factor)))

	if w == b.Dx() && h == b.Dy() {
		return keepFormat(img, imaging.Clone(img)), nil
	}
	return keepFormat(img, imaging.Resize(img, w, h, imaging.Lanczos)), nil
}
