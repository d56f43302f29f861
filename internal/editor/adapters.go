package editor

import (
	"image"

	"github.com/ironsheep/crop-editor/internal/imaging"
)

// Surface names one of the two places the editor draws on.
type Surface int

const (
	// SurfacePreview shows the display-scaled original and the selection.
	SurfacePreview Surface = iota
	// SurfaceWorking shows the cropped image under edit.
	SurfaceWorking
)

func (s Surface) String() string {
	if s == SurfaceWorking {
		return "working"
	}
	return "preview"
}

// Display is the presentation side of the editor. It reports the size of
// the preview surface and shows images. Render with a nil image clears the
// surface (the working surface after the first crop is undone).
type Display interface {
	SurfaceSize() (width, height int)
	Render(surface Surface, img image.Image)
}

// FileIO is the file side of the editor. Pickers return ok=false when the
// user cancels.
type FileIO interface {
	PickOpenPath(allowedExtensions []string) (path string, ok bool)
	OpenImage(path string) (image.Image, error)
	PickSavePath(defaultExtension string, allowedExtensions []string) (path string, ok bool)
	WriteImage(img image.Image, path string) error
}

// PresetFiles is a FileIO for headless front ends: the "picked" paths are
// whatever the caller stored beforehand, and an empty path reads as a
// cancelled dialog. Reading and writing go through Codec.
type PresetFiles struct {
	Codec    *imaging.Codec
	OpenPath string
	SavePath string
}

// NewPresetFiles returns a PresetFiles using codec.
func NewPresetFiles(codec *imaging.Codec) *PresetFiles {
	return &PresetFiles{Codec: codec}
}

// PickOpenPath returns the stored open path.
func (f *PresetFiles) PickOpenPath(_ []string) (string, bool) {
	return f.OpenPath, f.OpenPath != ""
}

// OpenImage decodes the file at path.
func (f *PresetFiles) OpenImage(path string) (image.Image, error) {
	return f.Codec.Open(path)
}

// PickSavePath returns the stored save path.
func (f *PresetFiles) PickSavePath(_ string, _ []string) (string, bool) {
	return f.SavePath, f.SavePath != ""
}

// WriteImage encodes img to path.
func (f *PresetFiles) WriteImage(img image.Image, path string) error {
	return f.Codec.Write(img, path)
}
