package editor

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	// ErrNoFileSelected means the user cancelled a file picker. Not a failure.
	ErrNoFileSelected = errors.New("no file selected")
	// ErrLoad means the chosen file could not be read or decoded.
	ErrLoad = errors.New("failed to load image")
	// ErrSave means the working image could not be written.
	ErrSave = errors.New("failed to save image")
	// ErrNoImageLoaded means a pointer or crop event arrived before any load.
	ErrNoImageLoaded = errors.New("no image loaded")
	// ErrInvalidSelection means the selection has no area or misses the image.
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrInvalidParameter means an edit factor is outside the accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNoActiveSelection means an edit or save was requested with no crop.
	ErrNoActiveSelection = errors.New("no active selection")
	// ErrNothingToUndo means the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo means the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Error records the operation that failed, its kind and the underlying cause.
type Error struct {
	Kind error  // one of the Err* kinds above
	Op   string // operation name, e.g. "crop" or "apply brightness"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsQuiet reports whether err is a kind the user-facing layer may ignore
// without telling the user: cancelled pickers, empty selections, empty
// history stacks and pointer input before a load.
func IsQuiet(err error) bool {
	for _, kind := range []error{
		ErrNoFileSelected,
		ErrInvalidSelection,
		ErrNothingToUndo,
		ErrNothingToRedo,
		ErrNoImageLoaded,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// KindOf returns the kind of err, or nil if err did not come from this package.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
