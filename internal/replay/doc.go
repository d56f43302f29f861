// Package replay runs recorded editing sessions without a user interface.
//
// A Script is a YAML list of user actions (open, pointer events, selections,
// edits, undo/redo and save). A Runner feeds them to an editor.Editor whose
// display only records renders and whose file dialogs return the paths
// given in the script. Steps can declare the error kind they are expected to
// fail with, so scripts double as regression tests for editing behavior.
package replay
