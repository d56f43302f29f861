package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// DefaultOutlineColor is the rubber-band color used when none is configured.
var DefaultOutlineColor = color.RGBA{255, 0, 0, 255}

// DrawSelection returns a copy of img with a one-pixel outline of r drawn on
// top. r is in img's pixel space and may extend past its edges; only the
// visible part of the outline is drawn. img itself is not modified.
func DrawSelection(img image.Image, r Rect, outline color.Color) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	n := r.Normalize()
	if n.X1 == n.X2 && n.Y1 == n.Y2 {
		// A press without movement yet: nothing to outline.
		return result
	}

	// The outline sits on the last pixel inside the rectangle.
	right, bottom := n.X2-1, n.Y2-1
	if right < n.X1 {
		right = n.X1
	}
	if bottom < n.Y1 {
		bottom = n.Y1
	}

	rb := result.Bounds()
	set := func(x, y int) {
		if x >= rb.Min.X && x < rb.Max.X && y >= rb.Min.Y && y < rb.Max.Y {
			result.Set(x, y, outline)
		}
	}

	// Loops only cover the visible span; a drag far off the canvas must not
	// cost more than the canvas itself.
	x0, x1 := max(n.X1, rb.Min.X), min(right, rb.Max.X-1)
	y0, y1 := max(n.Y1, rb.Min.Y), min(bottom, rb.Max.Y-1)

	// Horizontal edges
	for x := x0; x <= x1; x++ {
		set(x, n.Y1)
		set(x, bottom)
	}

	// Vertical edges
	for y := y0; y <= y1; y++ {
		set(n.X1, y)
		set(right, y)
	}

	return result
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// EncodedImage is an image serialized for a client that renders it.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// EncodePNG serializes img as base64 PNG.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
