// Package editor holds the state and rules of an interactive crop editor.
//
// A Session owns the loaded image, its display preview, the working crop,
// the crop-time baseline and a History of full snapshots. Pointer events in
// preview coordinates run through a small Idle/Dragging state machine; a
// release maps the rectangle to source pixels and crops. Edits (grayscale,
// clockwise rotation, brightness, resize) replace the working image and
// push the previous state onto the undo stack, clearing the redo stack.
// Brightness and resize are always computed from the baseline.
//
// Editor wraps a Session with the two external collaborators: a Display
// that reports its size and renders images, and a FileIO that picks, reads
// and writes files. SuggestSelections looks for rectangular regions on the
// preview, such as a print on a scanner bed, and AutoSelect crops to the
// largest of them.
//
// # Errors
//
// Every failure is an *Error whose Kind is one of the Err* values, so
// callers switch with errors.Is. No failure changes the session. IsQuiet
// separates the kinds a UI can drop silently from those it should report.
package editor
