package editor

import (
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/crop-editor/internal/imaging"
)

// OpKind identifies one of the editor's edit operations.
type OpKind int

const (
	OpGrayscale OpKind = iota + 1
	OpRotate90
	OpBrightness
	OpResize
)

func (k OpKind) String() string {
	switch k {
	case OpGrayscale:
		return "grayscale"
	case OpRotate90:
		return "rotate"
	case OpBrightness:
		return "brightness"
	case OpResize:
		return "resize"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Operation is an edit applied to the working image. Factor is only
// meaningful for OpBrightness and OpResize.
type Operation struct {
	Kind   OpKind
	Factor float64
}

// Grayscale converts the working image to luminance.
func Grayscale() Operation { return Operation{Kind: OpGrayscale} }

// Rotate90 turns the working image 90 degrees clockwise.
func Rotate90() Operation { return Operation{Kind: OpRotate90} }

// Brightness scales the baseline's channel intensities by factor.
func Brightness(factor float64) Operation { return Operation{Kind: OpBrightness, Factor: factor} }

// Resize scales the baseline's dimensions by factor.
func Resize(factor float64) Operation { return Operation{Kind: OpResize, Factor: factor} }

// ParseOperation builds an Operation from its name as used by String.
// "rotate90" and "gray" are accepted as aliases.
func ParseOperation(name string, factor float64) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "grayscale", "gray":
		return Grayscale(), nil
	case "rotate", "rotate90":
		return Rotate90(), nil
	case "brightness":
		return Brightness(factor), nil
	case "resize":
		return Resize(factor), nil
	}
	return Operation{}, newError(ErrInvalidParameter, "parse operation", fmt.Errorf("unknown operation %q", name))
}

func (o Operation) String() string {
	if o.relative() {
		return fmt.Sprintf("%s(%g)", o.Kind, o.Factor)
	}
	return o.Kind.String()
}

// relative reports whether the operation is recomputed from the baseline
// rather than applied to the current working image.
func (o Operation) relative() bool {
	return o.Kind == OpBrightness || o.Kind == OpResize
}

func (o Operation) validate() error {
	switch o.Kind {
	case OpGrayscale, OpRotate90:
		return nil
	case OpBrightness, OpResize:
		return imaging.ValidateFactor(o.Factor)
	}
	return fmt.Errorf("unknown operation kind %d", int(o.Kind))
}

// run computes the result of o. working is the current image, baseline the
// crop-time copy; neither is modified.
func (o Operation) run(working, baseline image.Image) (image.Image, error) {
	switch o.Kind {
	case OpGrayscale:
		return imaging.Grayscale(working), nil
	case OpRotate90:
		return imaging.Rotate90(working), nil
	case OpBrightness:
		return imaging.Brightness(baseline, o.Factor)
	case OpResize:
		return imaging.Resize(baseline, o.Factor)
	}
	return nil, fmt.Errorf("unknown operation kind %d", int(o.Kind))
}
