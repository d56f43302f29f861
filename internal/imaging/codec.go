package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrUnsupportedFormat is returned when a file extension maps to no known
// image format, or to one the codec was configured not to accept.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Codec reads and writes image files, choosing the format by file extension.
//
// Decoding goes through disintegration/imaging, which understands JPEG, PNG,
// GIF, TIFF and BMP; WebP decoding is registered by this package. Encoding
// supports the same set, with WebP handled by chai2010/webp.
type Codec struct {
	// OpenExtensions limits which files Open accepts, e.g. ".png". Empty
	// means any format the decoders understand.
	OpenExtensions []string

	// JPEGQuality is the JPEG encoder quality (1-100).
	JPEGQuality int

	// WebPQuality is the lossy WebP encoder quality (0-100).
	WebPQuality float32
}

// NewCodec returns a Codec with the editor's default settings.
func NewCodec() *Codec {
	return &Codec{
		OpenExtensions: []string{".jpg", ".jpeg", ".png", ".bmp"},
		JPEGQuality:    95,
		WebPQuality:    90,
	}
}

// Open reads and decodes the image at path. EXIF orientation is applied so
// the result is shown the way the camera intended.
func (c *Codec) Open(path string) (image.Image, error) {
	if !c.accepts(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Write encodes img to path in the format named by the path's extension.
func (c *Codec) Write(img image.Image, path string) error {
	format := FormatFromPath(path)
	switch format {
	case "webp":
		return c.writeWebP(img, path)
	case "unknown":
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(c.JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

func (c *Codec) writeWebP(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	opts := &webp.Options{Lossless: false, Quality: c.WebPQuality}
	if err := webp.Encode(f, img, opts); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func (c *Codec) accepts(path string) bool {
	if FormatFromPath(path) == "unknown" {
		return false
	}
	if len(c.OpenExtensions) == 0 {
		return true
	}
	return HasExtension(path, c.OpenExtensions)
}

// HasExtension reports whether path ends in one of exts (case-insensitive).
func HasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// FormatFromPath maps a file extension to a format name:
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - ".bmp" -> "bmp"
//   - ".tif", ".tiff" -> "tiff"
//   - ".webp" -> "webp"
//   - anything else -> "unknown"
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format name derived from the file extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// Grayscale is true for single-channel luminance images.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the file on disk, or 0 for in-memory images.
	FileSizeBytes int64 `json:"file_size_bytes,omitempty"`
}

// Describe reports metadata for img. When path is non-empty the format and
// file size are taken from it.
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func Describe(img image.Image, path string) (*ImageInfo, error) {
	bounds := img.Bounds()
	info := &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     "unknown",
		ColorDepth: "8-bit",
	}

	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	case *image.Gray:
		info.Grayscale = true
	case *image.Gray16:
		info.Grayscale = true
		info.ColorDepth = "16-bit"
	}

	if path == "" {
		return info, nil
	}

	info.Format = FormatFromPath(path)
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	info.FileSizeBytes = stat.Size()
	return info, nil
}
