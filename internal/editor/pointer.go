package editor

import (
	"fmt"

	"github.com/ironsheep/crop-editor/internal/imaging"
)

// PointerKind is the kind of a pointer event reported by the display.
type PointerKind int

const (
	Press PointerKind = iota + 1
	Drag
	Release
)

func (k PointerKind) String() string {
	switch k {
	case Press:
		return "press"
	case Drag:
		return "drag"
	case Release:
		return "release"
	}
	return fmt.Sprintf("PointerKind(%d)", int(k))
}

// ParsePointerKind maps "press", "drag" and "release" to their kinds.
func ParsePointerKind(s string) (PointerKind, error) {
	switch s {
	case "press":
		return Press, nil
	case "drag":
		return Drag, nil
	case "release":
		return Release, nil
	}
	return 0, newError(ErrInvalidParameter, "parse pointer event", fmt.Errorf("unknown event %q", s))
}

// PointerEvent is a pointer event in display (preview) coordinates.
type PointerEvent struct {
	Kind PointerKind
	X, Y int
}

// dragState is the Idle/Dragging state machine. The zero value is Idle.
type dragState struct {
	active bool
	rect   imaging.Rect // X1,Y1 is the press point, X2,Y2 the latest position
}

// HandlePointer feeds one pointer event through the drag state machine:
//
//	Idle     --Press-->   Dragging
//	Dragging --Press-->   Dragging (gesture restarted)
//	Dragging --Drag-->    Dragging (rectangle updated)
//	Dragging --Release--> Idle     (crop committed)
//
// Drag and Release while Idle are ignored. committed is true when a Release
// produced a new crop; a Release that selects nothing returns
// ErrInvalidSelection and leaves the crop and history untouched.
func (s *Session) HandlePointer(ev PointerEvent) (committed bool, err error) {
	if s.original == nil {
		return false, newError(ErrNoImageLoaded, ev.Kind.String(), nil)
	}

	switch ev.Kind {
	case Press:
		s.drag = dragState{active: true, rect: imaging.Rect{X1: ev.X, Y1: ev.Y, X2: ev.X, Y2: ev.Y}}
		return false, nil

	case Drag:
		if s.drag.active {
			s.drag.rect.X2, s.drag.rect.Y2 = ev.X, ev.Y
		}
		return false, nil

	case Release:
		if !s.drag.active {
			return false, nil
		}
		r := s.drag.rect
		r.X2, r.Y2 = ev.X, ev.Y
		s.drag = dragState{}
		if err := s.CropDisplay(r); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, newError(ErrInvalidParameter, "pointer", fmt.Errorf("unknown event kind %d", int(ev.Kind)))
}

// Dragging returns the in-progress selection in display coordinates (press
// point first) and whether a drag is active.
func (s *Session) Dragging() (imaging.Rect, bool) {
	return s.drag.rect, s.drag.active
}

// CancelDrag abandons any drag in progress.
func (s *Session) CancelDrag() {
	s.drag = dragState{}
}
