package replay

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/crop-editor/internal/editor"
	"github.com/ironsheep/crop-editor/internal/imaging"
)

// Script is a recorded editing session.
//
//	canvas: {width: 800, height: 600}
//	steps:
//	  - action: open
//	    path: photo.jpg
//	  - action: select
//	    rect: {x1: 100, y1: 50, x2: 300, y2: 100}
//	  - action: brightness
//	    factor: 1.2
//	  - action: save
//	    path: out/crop
type Script struct {
	// Canvas overrides the configured preview surface size when set.
	Canvas *Canvas `yaml:"canvas,omitempty"`
	Steps  []Step  `yaml:"steps"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Canvas is a preview surface size.
type Canvas struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Step is one user action.
//
// Action is one of open, save, pointer, select, auto_select, canvas,
// grayscale, rotate, brightness, resize, undo and redo. ExpectError names the error kind the
// step must fail with (see KindNames); a step that fails any other way stops
// the replay.
type Step struct {
	Action      string        `yaml:"action"`
	Path        string        `yaml:"path,omitempty"`
	Event       string        `yaml:"event,omitempty"`
	X           int           `yaml:"x,omitempty"`
	Y           int           `yaml:"y,omitempty"`
	Rect        *imaging.Rect `yaml:"rect,omitempty"`
	Factor      float64       `yaml:"factor,omitempty"`
	Width       int           `yaml:"width,omitempty"`
	Height      int           `yaml:"height,omitempty"`
	ExpectError string        `yaml:"expect_error,omitempty"`
}

// KindNames maps the names usable in expect_error to editor error kinds.
var KindNames = map[string]error{
	"no_file_selected":    editor.ErrNoFileSelected,
	"load":                editor.ErrLoad,
	"save":                editor.ErrSave,
	"no_image_loaded":     editor.ErrNoImageLoaded,
	"invalid_selection":   editor.ErrInvalidSelection,
	"invalid_parameter":   editor.ErrInvalidParameter,
	"no_active_selection": editor.ErrNoActiveSelection,
	"nothing_to_undo":     editor.ErrNothingToUndo,
	"nothing_to_redo":     editor.ErrNothingToRedo,
}

// KindName returns the expect_error name of err's kind, or "" if err has no
// editor kind.
func KindName(err error) string {
	kind := editor.KindOf(err)
	for name, k := range KindNames {
		if k == kind {
			return name
		}
	}
	return ""
}

// Load reads and validates the script at path. Relative paths inside the
// script are resolved against the script's directory.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	script.dir = filepath.Dir(path)
	return script, nil
}

// Parse decodes and validates a script. Relative paths are left as they are.
func Parse(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks that every step is well formed. It does not check factor
// ranges or rectangles; those are the editor's job and can be expected to
// fail with expect_error.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}
	if s.Canvas != nil && (s.Canvas.Width <= 0 || s.Canvas.Height <= 0) {
		return fmt.Errorf("canvas size must be positive, got %dx%d", s.Canvas.Width, s.Canvas.Height)
	}

	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, st.Action, err)
		}
	}
	return nil
}

func (st Step) validate() error {
	if st.ExpectError != "" {
		if _, ok := KindNames[st.ExpectError]; !ok {
			return fmt.Errorf("unknown error kind %q", st.ExpectError)
		}
	}

	switch strings.ToLower(st.Action) {
	case "open", "save", "auto_select", "grayscale", "gray", "rotate", "rotate90", "undo", "redo":
		return nil
	case "brightness", "resize":
		if st.Factor == 0 {
			return fmt.Errorf("factor is required")
		}
		return nil
	case "pointer":
		_, err := editor.ParsePointerKind(st.Event)
		return err
	case "select":
		if st.Rect == nil {
			return fmt.Errorf("rect is required")
		}
		return nil
	case "canvas":
		if st.Width <= 0 || st.Height <= 0 {
			return fmt.Errorf("width and height must be positive")
		}
		return nil
	case "":
		return fmt.Errorf("action is required")
	}
	return fmt.Errorf("unknown action %q", st.Action)
}

// resolve makes p absolute relative to the script's directory.
func (s *Script) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.dir == "" {
		return p
	}
	return filepath.Join(s.dir, p)
}
