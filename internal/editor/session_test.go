package editor

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/crop-editor/internal/imaging"
)

// createGradientImage returns an image whose pixels are all distinct, so
// crops and rotations can be checked pixel by pixel.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x*7 + y*13) % 256),
				A: 255,
			})
		}
	}
	return img
}

// samePixels reports whether a and b have the same size and colors.
func samePixels(a, b image.Image) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}

// loadedSession returns a session holding a width x height gradient shown
// on a surface of the same size, so display and source coordinates agree.
func loadedSession(t *testing.T, width, height int) *Session {
	t.Helper()
	s := NewSession()
	if err := s.Load(createGradientImage(width, height), width, height); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return s
}

// croppedSession returns a loaded session with a 200x200 crop committed.
func croppedSession(t *testing.T) *Session {
	t.Helper()
	s := loadedSession(t, 400, 300)
	if err := s.CropSource(imaging.Rect{X1: 50, Y1: 50, X2: 250, Y2: 250}); err != nil {
		t.Fatalf("CropSource failed: %v", err)
	}
	return s
}

func TestSession_LoadScenario(t *testing.T) {
	s := NewSession()
	if err := s.Load(createGradientImage(1000, 500), 800, 600); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	pb := s.Preview().Bounds()
	if pb.Dx() != 800 || pb.Dy() != 400 {
		t.Errorf("preview: got %dx%d, want 800x400", pb.Dx(), pb.Dy())
	}
	if s.Scale().X != 1.25 || s.Scale().Y != 1.25 {
		t.Errorf("scale: got (%v, %v), want (1.25, 1.25)", s.Scale().X, s.Scale().Y)
	}

	if err := s.CropDisplay(imaging.Rect{X1: 100, Y1: 50, X2: 300, Y2: 100}); err != nil {
		t.Fatalf("CropDisplay failed: %v", err)
	}
	cb := s.Cropped().Bounds()
	if cb.Dx() != 250 || cb.Dy() != 63 {
		t.Errorf("crop: got %dx%d, want 250x63 from (125,62)-(375,125)", cb.Dx(), cb.Dy())
	}

	want, _ := imaging.Crop(s.Original(), imaging.Rect{X1: 125, Y1: 62, X2: 375, Y2: 125})
	if !samePixels(s.Cropped(), want) {
		t.Error("crop pixels should come from (125,62)-(375,125) of the original")
	}
}

func TestSession_LoadRejectsEmptyImage(t *testing.T) {
	s := NewSession()
	err := s.Load(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 800, 600)
	if !errors.Is(err, ErrLoad) {
		t.Errorf("got %v, want ErrLoad", err)
	}
	if s.Loaded() {
		t.Error("failed load should leave the session empty")
	}
}

func TestSession_LoadResetsState(t *testing.T) {
	s := croppedSession(t)
	if err := s.Apply(Grayscale()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if err := s.Load(createGradientImage(64, 32), 800, 600); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Cropped() != nil || s.Baseline() != nil {
		t.Error("load should discard the crop and baseline")
	}
	if s.History().CanUndo() || s.History().CanRedo() {
		t.Error("load should clear the history")
	}
	if _, dragging := s.Dragging(); dragging {
		t.Error("load should leave the pointer idle")
	}
}

func TestSession_CropBeforeLoad(t *testing.T) {
	s := NewSession()
	err := s.CropDisplay(imaging.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10})
	if !errors.Is(err, ErrNoImageLoaded) {
		t.Errorf("got %v, want ErrNoImageLoaded", err)
	}
}

func TestSession_CropEmptySelection(t *testing.T) {
	s := loadedSession(t, 100, 100)

	err := s.CropDisplay(imaging.Rect{X1: 40, Y1: 40, X2: 40, Y2: 40})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("got %v, want ErrInvalidSelection", err)
	}
	if s.Cropped() != nil {
		t.Error("failed crop should not set a working image")
	}
	if s.History().CanUndo() {
		t.Error("failed crop should not record history")
	}
}

func TestSession_CropSetsBaseline(t *testing.T) {
	s := croppedSession(t)

	if s.Cropped() == nil || s.Baseline() == nil {
		t.Fatal("crop should set working image and baseline")
	}
	if !samePixels(s.Cropped(), s.Baseline()) {
		t.Error("baseline should equal the fresh crop")
	}
	if s.History().UndoDepth() != 1 {
		t.Errorf("UndoDepth: got %d, want 1", s.History().UndoDepth())
	}
}

func TestSession_UndoCropClearsSelection(t *testing.T) {
	s := croppedSession(t)

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if s.Cropped() != nil || s.Baseline() != nil {
		t.Error("undoing the first crop should leave no selection")
	}
	if err := s.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if s.Cropped() == nil || s.Cropped().Bounds().Dx() != 200 {
		t.Error("redo should bring the crop back")
	}
}

func TestSession_SecondCropReplacesBaseline(t *testing.T) {
	s := croppedSession(t)
	if err := s.Apply(Brightness(0.5)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := s.CropSource(imaging.Rect{X1: 0, Y1: 0, X2: 40, Y2: 30}); err != nil {
		t.Fatalf("CropSource failed: %v", err)
	}
	if s.Baseline().Bounds().Dx() != 40 {
		t.Errorf("baseline width: got %d, want 40", s.Baseline().Bounds().Dx())
	}

	// Undo restores both the brightened image and the first baseline.
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if s.Baseline().Bounds().Dx() != 200 {
		t.Errorf("baseline width after undo: got %d, want 200", s.Baseline().Bounds().Dx())
	}
	if samePixels(s.Cropped(), s.Baseline()) {
		t.Error("working image after undo should be the brightened one")
	}
}

func TestSession_ApplyWithoutSelection(t *testing.T) {
	s := loadedSession(t, 50, 50)
	for _, op := range []Operation{Grayscale(), Rotate90(), Brightness(1.2), Resize(0.5)} {
		if err := s.Apply(op); !errors.Is(err, ErrNoActiveSelection) {
			t.Errorf("%s: got %v, want ErrNoActiveSelection", op, err)
		}
	}
	if s.History().CanUndo() {
		t.Error("rejected operations should not record history")
	}
}

func TestSession_ApplyRejectsFactor(t *testing.T) {
	s := croppedSession(t)
	before := s.Cropped()

	for _, op := range []Operation{Brightness(0), Brightness(2.5), Resize(0.05), Resize(3)} {
		err := s.Apply(op)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: got %v, want ErrInvalidParameter", op, err)
		}
	}
	if s.Cropped() != before {
		t.Error("rejected operations should leave the working image untouched")
	}
	if s.History().UndoDepth() != 1 {
		t.Errorf("UndoDepth: got %d, want 1", s.History().UndoDepth())
	}
}

func TestSession_GrayscaleIdempotent(t *testing.T) {
	s := croppedSession(t)

	if err := s.Apply(Grayscale()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	once := s.Cropped()
	if _, ok := once.(*image.Gray); !ok {
		t.Fatalf("grayscale result: got %T, want *image.Gray", once)
	}
	if err := s.Apply(Grayscale()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !samePixels(once, s.Cropped()) {
		t.Error("grayscale twice should equal grayscale once")
	}
}

func TestSession_RotateFourTimes(t *testing.T) {
	s := loadedSession(t, 400, 300)
	if err := s.CropSource(imaging.Rect{X1: 10, Y1: 20, X2: 130, Y2: 100}); err != nil {
		t.Fatalf("CropSource failed: %v", err)
	}
	start := s.Cropped()

	for i := 0; i < 4; i++ {
		if err := s.Apply(Rotate90()); err != nil {
			t.Fatalf("rotation %d failed: %v", i+1, err)
		}
		b := s.Cropped().Bounds()
		if i%2 == 0 && (b.Dx() != 80 || b.Dy() != 120) {
			t.Errorf("rotation %d: got %dx%d, want 80x120", i+1, b.Dx(), b.Dy())
		}
	}
	if !samePixels(start, s.Cropped()) {
		t.Error("four rotations should return the original crop")
	}
}

func TestSession_BrightnessFromBaseline(t *testing.T) {
	s := croppedSession(t)
	baseline := s.Baseline()

	for _, f := range []float64{1.0, 0.5, 1.0} {
		if err := s.Apply(Brightness(f)); err != nil {
			t.Fatalf("Brightness(%v) failed: %v", f, err)
		}
	}
	if !samePixels(s.Cropped(), baseline) {
		t.Error("brightness 1.0 after 0.5 should restore the baseline exactly")
	}
	if s.Baseline() != baseline {
		t.Error("edits must not replace the baseline")
	}
}

func TestSession_ResizeFromBaseline(t *testing.T) {
	s := croppedSession(t)

	if err := s.Apply(Resize(0.5)); err != nil {
		t.Fatalf("Resize(0.5) failed: %v", err)
	}
	if b := s.Cropped().Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("Resize(0.5): got %dx%d, want 100x100", b.Dx(), b.Dy())
	}

	if err := s.Apply(Resize(1.0)); err != nil {
		t.Fatalf("Resize(1.0) failed: %v", err)
	}
	if !samePixels(s.Cropped(), s.Baseline()) {
		t.Error("Resize(1.0) should restore the baseline")
	}
}

func TestSession_RelativeEditDiscardsRotation(t *testing.T) {
	s := loadedSession(t, 400, 300)
	if err := s.CropSource(imaging.Rect{X1: 0, Y1: 0, X2: 120, Y2: 80}); err != nil {
		t.Fatalf("CropSource failed: %v", err)
	}
	if err := s.Apply(Rotate90()); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}
	if err := s.Apply(Brightness(1.0)); err != nil {
		t.Fatalf("Brightness failed: %v", err)
	}
	if b := s.Cropped().Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("got %dx%d, want the unrotated 120x80", b.Dx(), b.Dy())
	}
}

func TestSession_UndoRedoSequence(t *testing.T) {
	s := croppedSession(t)
	ops := []Operation{Grayscale(), Rotate90(), Resize(0.5)}

	states := []image.Image{s.Cropped()}
	for _, op := range ops {
		if err := s.Apply(op); err != nil {
			t.Fatalf("%s failed: %v", op, err)
		}
		states = append(states, s.Cropped())
	}

	for i := len(ops) - 1; i >= 0; i-- {
		if err := s.Undo(); err != nil {
			t.Fatalf("Undo failed: %v", err)
		}
		if s.Cropped() != states[i] {
			t.Errorf("undo to step %d restored the wrong image", i)
		}
	}
	for i := 1; i <= len(ops); i++ {
		if err := s.Redo(); err != nil {
			t.Fatalf("Redo failed: %v", err)
		}
		if s.Cropped() != states[i] {
			t.Errorf("redo to step %d restored the wrong image", i)
		}
	}
	if err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("got %v, want ErrNothingToRedo", err)
	}
}

func TestSession_EditClearsRedo(t *testing.T) {
	s := croppedSession(t)
	if err := s.Apply(Grayscale()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if err := s.Apply(Rotate90()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("got %v, want ErrNothingToRedo", err)
	}
}

func TestSession_UndoEmpty(t *testing.T) {
	s := loadedSession(t, 10, 10)
	err := s.Undo()
	if !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("got %v, want ErrNothingToUndo", err)
	}
	if !IsQuiet(err) {
		t.Error("an empty undo should be quiet")
	}
}

func TestSession_HistoryLimit(t *testing.T) {
	s := NewSession(WithHistoryLimit(2))
	if err := s.Load(createGradientImage(50, 50), 50, 50); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.CropSource(imaging.Rect{X1: 0, Y1: 0, X2: 20, Y2: 20}); err != nil {
		t.Fatalf("CropSource failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Apply(Rotate90()); err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
	}
	if s.History().UndoDepth() != 2 {
		t.Errorf("UndoDepth: got %d, want 2", s.History().UndoDepth())
	}
}

func TestSession_SetSurface(t *testing.T) {
	s := NewSession()
	if err := s.SetSurface(100, 100); !errors.Is(err, ErrNoImageLoaded) {
		t.Errorf("got %v, want ErrNoImageLoaded", err)
	}

	if err := s.Load(createGradientImage(1000, 500), 800, 600); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := s.HandlePointer(PointerEvent{Kind: Press, X: 10, Y: 10}); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	if err := s.SetSurface(400, 400); err != nil {
		t.Fatalf("SetSurface failed: %v", err)
	}
	if s.Scale().X != 2.5 {
		t.Errorf("scale X: got %v, want 2.5", s.Scale().X)
	}
	if _, dragging := s.Dragging(); dragging {
		t.Error("a surface change should cancel the drag")
	}
	if err := s.SetSurface(0, 400); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("got %v, want ErrInvalidParameter", err)
	}
	if s.Scale().X != 2.5 {
		t.Error("a rejected surface size should keep the previous scale")
	}
}
