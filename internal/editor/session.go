package editor

import (
	"fmt"
	"image"

	"github.com/ironsheep/crop-editor/internal/imaging"
)

// Session is the complete mutable state of one editing instance: the loaded
// image, its display preview, the working crop, the baseline used by
// relative edits, the history and any drag in progress.
//
// Every method either commits a change fully or returns an error and leaves
// the session exactly as it was. Session is not safe for concurrent use; a
// caller with several goroutines must serialize access.
type Session struct {
	original image.Image
	preview  image.Image
	scale    imaging.ScaleFactors

	cropped  image.Image
	baseline image.Image

	history *History
	drag    dragState

	// unsaved is set by every committed crop, edit, undo and redo and
	// cleared by Load and MarkSaved.
	unsaved bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHistoryLimit caps the number of undo entries kept. 0 means unbounded.
func WithHistoryLimit(n int) SessionOption {
	return func(s *Session) { s.history = NewHistory(n) }
}

// NewSession returns an empty session with no image loaded.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{history: NewHistory(0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the original image and starts a new editing session: the
// preview is fitted to a surfaceWidth x surfaceHeight canvas and the crop,
// baseline, history and drag state are discarded.
func (s *Session) Load(img image.Image, surfaceWidth, surfaceHeight int) error {
	if img == nil || img.Bounds().Empty() {
		return newError(ErrLoad, "load", fmt.Errorf("image has no pixels"))
	}
	preview, scale, err := imaging.FitPreview(img, surfaceWidth, surfaceHeight)
	if err != nil {
		return newError(ErrLoad, "load", err)
	}

	s.original = img
	s.preview = preview
	s.scale = scale
	s.cropped = nil
	s.baseline = nil
	s.history.Clear()
	s.drag = dragState{}
	s.unsaved = false
	return nil
}

// SetSurface refits the preview to a new surface size. The crop and history
// are kept; a drag in progress is cancelled because its coordinates refer to
// the old preview.
func (s *Session) SetSurface(surfaceWidth, surfaceHeight int) error {
	if s.original == nil {
		return newError(ErrNoImageLoaded, "resize surface", nil)
	}
	preview, scale, err := imaging.FitPreview(s.original, surfaceWidth, surfaceHeight)
	if err != nil {
		return newError(ErrInvalidParameter, "resize surface", err)
	}
	s.preview = preview
	s.scale = scale
	s.drag = dragState{}
	return nil
}

// Loaded reports whether an image has been loaded.
func (s *Session) Loaded() bool { return s.original != nil }

// Original returns the loaded source image, or nil.
func (s *Session) Original() image.Image { return s.original }

// Preview returns the display-scaled copy of the original, or nil.
func (s *Session) Preview() image.Image { return s.preview }

// Scale returns the factors mapping preview pixels to source pixels.
func (s *Session) Scale() imaging.ScaleFactors { return s.scale }

// Cropped returns the working image under edit, or nil before any crop.
func (s *Session) Cropped() image.Image { return s.cropped }

// Baseline returns the crop-time copy used by brightness and resize, or nil.
func (s *Session) Baseline() image.Image { return s.baseline }

// History returns the session's undo/redo history.
func (s *Session) History() *History { return s.history }

// CropDisplay maps a rectangle in preview coordinates to the source and
// crops it. See CropSource.
func (s *Session) CropDisplay(drag imaging.Rect) error {
	if s.original == nil {
		return newError(ErrNoImageLoaded, "crop", nil)
	}
	return s.CropSource(imaging.ToSourceRect(drag, s.scale))
}

// CropSource crops the original to r (source pixel coordinates) and makes
// the result both the working image and the new baseline. The previous
// working image and baseline go onto the undo stack.
func (s *Session) CropSource(r imaging.Rect) error {
	if s.original == nil {
		return newError(ErrNoImageLoaded, "crop", nil)
	}
	cropped, err := imaging.Crop(s.original, r)
	if err != nil {
		return newError(ErrInvalidSelection, "crop", err)
	}

	s.history.RecordBeforeEdit(s.snapshot())
	s.cropped = cropped
	s.baseline = cropped
	s.unsaved = true
	return nil
}

// Apply runs op and makes its result the working image.
//
// Grayscale and Rotate90 transform the current working image. Brightness
// and Resize are recomputed from the baseline, so moving a slider back to 1
// restores the crop exactly instead of compounding earlier adjustments.
func (s *Session) Apply(op Operation) error {
	name := "apply " + op.Kind.String()
	if s.cropped == nil {
		return newError(ErrNoActiveSelection, name, nil)
	}
	if err := op.validate(); err != nil {
		return newError(ErrInvalidParameter, name, err)
	}

	result, err := op.run(s.cropped, s.baseline)
	if err != nil {
		return newError(ErrInvalidParameter, name, err)
	}

	s.history.RecordBeforeEdit(s.snapshot())
	s.cropped = result
	s.unsaved = true
	return nil
}

// Undo restores the state before the most recent change.
func (s *Session) Undo() error {
	prev, err := s.history.Undo(s.snapshot())
	if err != nil {
		return newError(ErrNothingToUndo, "undo", nil)
	}
	s.restore(prev)
	return nil
}

// Redo reapplies the most recently undone change.
func (s *Session) Redo() error {
	next, err := s.history.Redo(s.snapshot())
	if err != nil {
		return newError(ErrNothingToRedo, "redo", nil)
	}
	s.restore(next)
	return nil
}

// Unsaved reports whether the working image changed since the last load or
// save.
func (s *Session) Unsaved() bool { return s.unsaved }

// MarkSaved records that the working image has been written out.
func (s *Session) MarkSaved() { s.unsaved = false }

func (s *Session) snapshot() Snapshot {
	return Snapshot{Working: s.cropped, Baseline: s.baseline}
}

func (s *Session) restore(snap Snapshot) {
	s.cropped = snap.Working
	s.baseline = snap.Baseline
	s.unsaved = true
}
