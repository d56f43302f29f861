package replay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/ironsheep/crop-editor/internal/editor"
)

// surfaceLog is the Display used during a replay. It counts renders and
// remembers the last image on each surface.
type surfaceLog struct {
	width, height int
	renders       int
	last          map[editor.Surface]image.Image
}

func (d *surfaceLog) SurfaceSize() (int, int) { return d.width, d.height }

func (d *surfaceLog) Render(s editor.Surface, img image.Image) {
	d.renders++
	d.last[s] = img
}

// Runner replays scripts against a fresh editor.
type Runner struct {
	display *surfaceLog
	files   *editor.PresetFiles
	editor  *editor.Editor
	log     *slog.Logger
}

// NewRunner creates a runner whose editor draws on a width x height surface
// and reads and writes files through files. opts are passed to editor.New.
func NewRunner(width, height int, files *editor.PresetFiles, log *slog.Logger, opts ...editor.Option) *Runner {
	if log == nil {
		log = slog.Default()
	}
	display := &surfaceLog{width: width, height: height, last: make(map[editor.Surface]image.Image)}
	opts = append([]editor.Option{editor.WithLogger(log)}, opts...)
	return &Runner{
		display: display,
		files:   files,
		editor:  editor.New(display, files, opts...),
		log:     log,
	}
}

// Editor returns the editor the runner drives.
func (r *Runner) Editor() *editor.Editor { return r.editor }

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int    `json:"index" yaml:"index"`
	Action string `json:"action" yaml:"action"`
	Status string `json:"status" yaml:"status"` // ok, cancelled or expected_error
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// Report is the outcome of a replay.
type Report struct {
	Steps   []StepResult `json:"steps" yaml:"steps"`
	Renders int          `json:"renders" yaml:"renders"`
	State   editor.State `json:"state" yaml:"state"`
}

// StepError reports the step that stopped a replay.
type StepError struct {
	Index  int
	Action string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Action, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Run executes the script's steps in order. It stops at the first step that
// fails unexpectedly, or when ctx is cancelled, and returns the report of
// the steps run so far together with the error.
func (r *Runner) Run(ctx context.Context, script *Script) (*Report, error) {
	if script.Canvas != nil {
		r.display.width, r.display.height = script.Canvas.Width, script.Canvas.Height
	}

	report := &Report{}
	for i, st := range script.Steps {
		if err := ctx.Err(); err != nil {
			return r.finish(report), err
		}

		res, err := r.step(script, st)
		res.Index = i + 1
		res.Action = st.Action

		switch {
		case st.ExpectError != "" && err == nil:
			return r.finish(report), &StepError{Index: i + 1, Action: st.Action,
				Err: fmt.Errorf("expected %s error, got success", st.ExpectError)}
		case st.ExpectError != "" && !errors.Is(err, KindNames[st.ExpectError]):
			return r.finish(report), &StepError{Index: i + 1, Action: st.Action,
				Err: fmt.Errorf("expected %s error, got: %w", st.ExpectError, err)}
		case st.ExpectError != "":
			res.Status = "expected_error"
			res.Error = err.Error()
		case errors.Is(err, editor.ErrNoFileSelected):
			res.Status = "cancelled"
		case err != nil:
			return r.finish(report), &StepError{Index: i + 1, Action: st.Action, Err: err}
		default:
			res.Status = "ok"
		}

		if img := r.editor.Session().Cropped(); img != nil {
			res.Width, res.Height = img.Bounds().Dx(), img.Bounds().Dy()
		}
		r.log.Debug("step replayed", "index", res.Index, "action", res.Action, "status", res.Status)
		report.Steps = append(report.Steps, res)
	}
	return r.finish(report), nil
}

func (r *Runner) finish(report *Report) *Report {
	report.Renders = r.display.renders
	report.State = r.editor.State()
	return report
}

// step performs one action on the editor.
func (r *Runner) step(script *Script, st Step) (StepResult, error) {
	var res StepResult

	switch action := strings.ToLower(st.Action); action {
	case "open":
		r.files.OpenPath = script.resolve(st.Path)
		defer func() { r.files.OpenPath = "" }()
		path, err := r.editor.Open()
		res.Path = path
		return res, err

	case "save":
		r.files.SavePath = script.resolve(st.Path)
		defer func() { r.files.SavePath = "" }()
		path, err := r.editor.Save()
		res.Path = path
		return res, err

	case "pointer":
		kind, err := editor.ParsePointerKind(st.Event)
		if err != nil {
			return res, err
		}
		return res, r.editor.HandlePointer(editor.PointerEvent{Kind: kind, X: st.X, Y: st.Y})

	case "select":
		return res, r.editor.Select(*st.Rect)

	case "auto_select":
		_, err := r.editor.AutoSelect()
		return res, err

	case "canvas":
		r.display.width, r.display.height = st.Width, st.Height
		if !r.editor.Session().Loaded() {
			return res, nil
		}
		return res, r.editor.SurfaceResized()

	case "undo":
		return res, r.editor.Undo()

	case "redo":
		return res, r.editor.Redo()

	default:
		op, err := editor.ParseOperation(action, st.Factor)
		if err != nil {
			return res, err
		}
		return res, r.editor.Apply(op)
	}
}
