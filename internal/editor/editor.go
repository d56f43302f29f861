package editor

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ironsheep/crop-editor/internal/imaging"
)

// Editor drives a Session from user actions and keeps the display in step
// with it. It is the piece a front end talks to: pointer events, buttons,
// sliders and the open/save commands all map to one method each.
type Editor struct {
	session *Session
	display Display
	files   FileIO
	log     *slog.Logger

	outline          color.Color
	detectMinArea    int
	detectTolerance  float64
	openExtensions   []string
	saveExtensions   []string
	defaultExtension string
}

// DefaultExtension is appended to save paths that have no extension.
const DefaultExtension = ".png"

// DefaultOpenExtensions returns the extensions the open picker offers unless
// configured otherwise.
func DefaultOpenExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".bmp"}
}

// DefaultSaveExtensions returns the extensions accepted when saving unless
// configured otherwise.
func DefaultSaveExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithOutlineColor sets the color of the selection rubber band.
func WithOutlineColor(c color.Color) Option {
	return func(e *Editor) { e.outline = c }
}

// WithDetection sets the smallest area, in preview pixels, and the least
// rectangularity of regions returned by SuggestSelections.
func WithDetection(minArea int, tolerance float64) Option {
	return func(e *Editor) { e.detectMinArea, e.detectTolerance = minArea, tolerance }
}

// WithOpenExtensions sets the extensions offered by the open picker.
func WithOpenExtensions(exts []string) Option {
	return func(e *Editor) { e.openExtensions = exts }
}

// WithSaveExtensions sets the extensions accepted when saving.
func WithSaveExtensions(exts []string) Option {
	return func(e *Editor) { e.saveExtensions = exts }
}

// WithDefaultExtension sets the extension appended to save paths that have none.
func WithDefaultExtension(ext string) Option {
	return func(e *Editor) { e.defaultExtension = ext }
}

// WithSession replaces the editor's session, e.g. to set a history limit.
func WithSession(s *Session) Option {
	return func(e *Editor) { e.session = s }
}

// New creates an Editor bound to display and files.
func New(display Display, files FileIO, opts ...Option) *Editor {
	e := &Editor{
		session:          NewSession(),
		display:          display,
		files:            files,
		log:              slog.Default(),
		outline:          imaging.DefaultOutlineColor,
		detectMinArea:    400,
		detectTolerance:  0.8,
		openExtensions:   DefaultOpenExtensions(),
		saveExtensions:   DefaultSaveExtensions(),
		defaultExtension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session returns the editor's session.
func (e *Editor) Session() *Session { return e.session }

// Open asks for a file, loads it and shows its preview. A cancelled picker
// returns ErrNoFileSelected; a file that cannot be read returns ErrLoad. In
// both cases the current session is left as it was.
func (e *Editor) Open() (string, error) {
	path, ok := e.files.PickOpenPath(e.openExtensions)
	if !ok {
		return "", e.reject(newError(ErrNoFileSelected, "open", nil))
	}

	img, err := e.files.OpenImage(path)
	if err != nil {
		return "", e.reject(newError(ErrLoad, "open", err))
	}

	w, h := e.display.SurfaceSize()
	if err := e.session.Load(img, w, h); err != nil {
		return "", e.reject(err)
	}

	b := img.Bounds()
	e.log.Debug("image loaded",
		"path", path,
		"width", b.Dx(),
		"height", b.Dy(),
		"scale_x", e.session.Scale().X,
		"scale_y", e.session.Scale().Y,
	)
	e.display.Render(SurfacePreview, e.session.Preview())
	e.display.Render(SurfaceWorking, nil)
	return path, nil
}

// SurfaceResized refits the preview after the display surface changed size.
func (e *Editor) SurfaceResized() error {
	w, h := e.display.SurfaceSize()
	if err := e.session.SetSurface(w, h); err != nil {
		return e.reject(err)
	}
	e.display.Render(SurfacePreview, e.session.Preview())
	return nil
}

// HandlePointer feeds a pointer event to the session. While dragging the
// preview is redrawn with the selection outline; on release the crop is
// committed and shown on the working surface.
func (e *Editor) HandlePointer(ev PointerEvent) error {
	committed, err := e.session.HandlePointer(ev)
	if err != nil {
		// Release always ends the drag, so drop the outline too.
		if e.session.Loaded() {
			e.display.Render(SurfacePreview, e.session.Preview())
		}
		return e.reject(err)
	}

	if r, dragging := e.session.Dragging(); dragging {
		e.display.Render(SurfacePreview, imaging.DrawSelection(e.session.Preview(), r, e.outline))
		return nil
	}
	if committed {
		e.logCommit("crop")
		e.display.Render(SurfacePreview, e.session.Preview())
		e.display.Render(SurfaceWorking, e.session.Cropped())
	}
	return nil
}

// Select performs a whole press-release gesture over drag, in display
// coordinates.
func (e *Editor) Select(drag imaging.Rect) error {
	if err := e.HandlePointer(PointerEvent{Kind: Press, X: drag.X1, Y: drag.Y1}); err != nil {
		return err
	}
	return e.HandlePointer(PointerEvent{Kind: Release, X: drag.X2, Y: drag.Y2})
}

// SuggestSelections finds rectangular regions of the preview that look like
// crop candidates, largest first. Their rectangles are in display
// coordinates and can be passed straight to Select.
func (e *Editor) SuggestSelections() ([]imaging.Region, error) {
	preview := e.session.Preview()
	if preview == nil {
		return nil, e.reject(newError(ErrNoImageLoaded, "suggest", nil))
	}
	regions, err := imaging.DetectRegions(preview, e.detectMinArea, e.detectTolerance)
	if err != nil {
		return nil, e.reject(newError(ErrInvalidParameter, "suggest", err))
	}
	e.log.Debug("selections suggested", "count", len(regions))
	return regions, nil
}

// AutoSelect crops to the largest suggested region. It returns every
// region found; the first is the one selected.
func (e *Editor) AutoSelect() ([]imaging.Region, error) {
	regions, err := e.SuggestSelections()
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return regions, e.reject(newError(ErrInvalidSelection, "auto select", fmt.Errorf("no region found")))
	}
	return regions, e.Select(regions[0].Rect)
}

// Apply runs an edit on the working image and shows the result.
func (e *Editor) Apply(op Operation) error {
	if err := e.session.Apply(op); err != nil {
		return e.reject(err)
	}
	e.logCommit(op.String())
	e.display.Render(SurfaceWorking, e.session.Cropped())
	return nil
}

// Undo reverts the most recent crop or edit.
func (e *Editor) Undo() error {
	if err := e.session.Undo(); err != nil {
		return e.reject(err)
	}
	e.logCommit("undo")
	e.display.Render(SurfaceWorking, e.session.Cropped())
	return nil
}

// Redo reapplies the most recently undone crop or edit.
func (e *Editor) Redo() error {
	if err := e.session.Redo(); err != nil {
		return e.reject(err)
	}
	e.logCommit("redo")
	e.display.Render(SurfaceWorking, e.session.Cropped())
	return nil
}

// Save asks for a destination and writes the working image there. A path
// without an extension gets the default one. The session is never changed.
func (e *Editor) Save() (string, error) {
	img := e.session.Cropped()
	if img == nil {
		return "", e.reject(newError(ErrNoActiveSelection, "save", fmt.Errorf("no cropped image to save")))
	}

	path, ok := e.files.PickSavePath(e.defaultExtension, e.saveExtensions)
	if !ok {
		return "", e.reject(newError(ErrNoFileSelected, "save", nil))
	}
	if filepath.Ext(path) == "" {
		path += e.defaultExtension
	}
	if len(e.saveExtensions) > 0 && !imaging.HasExtension(path, e.saveExtensions) {
		return "", e.reject(newError(ErrSave, "save",
			fmt.Errorf("%w: %s (accepted: %s)", imaging.ErrUnsupportedFormat,
				filepath.Ext(path), strings.Join(e.saveExtensions, ", "))))
	}

	if err := e.files.WriteImage(img, path); err != nil {
		return "", e.reject(newError(ErrSave, "save", err))
	}

	e.session.MarkSaved()
	e.log.Info("image saved", "path", path, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return path, nil
}

// Sample reads the color at (x, y) of the working image.
func (e *Editor) Sample(x, y int) (*imaging.ColorResult, error) {
	img := e.session.Cropped()
	if img == nil {
		return nil, newError(ErrNoActiveSelection, "sample", nil)
	}
	c, err := imaging.SampleColor(img, x, y)
	if err != nil {
		return nil, newError(ErrInvalidParameter, "sample", err)
	}
	return c, nil
}

// State summarizes the session for display by a front end.
type State struct {
	Loaded        bool                 `json:"loaded"`
	SourceWidth   int                  `json:"source_width,omitempty"`
	SourceHeight  int                  `json:"source_height,omitempty"`
	PreviewWidth  int                  `json:"preview_width,omitempty"`
	PreviewHeight int                  `json:"preview_height,omitempty"`
	Scale         imaging.ScaleFactors `json:"scale"`
	Dragging      bool                 `json:"dragging"`
	Drag          *imaging.Rect        `json:"drag,omitempty"`
	HasSelection  bool                 `json:"has_selection"`
	WorkingWidth  int                  `json:"working_width,omitempty"`
	WorkingHeight int                  `json:"working_height,omitempty"`
	Grayscale     bool                 `json:"grayscale"`
	UndoDepth     int                  `json:"undo_depth"`
	RedoDepth     int                  `json:"redo_depth"`

	// Unsaved is true when the working image changed since the last open
	// or save; a front end warns before discarding it.
	Unsaved bool `json:"unsaved"`
}

// State returns a summary of the current session.
func (e *Editor) State() State {
	s := e.session
	st := State{
		Loaded:    s.Loaded(),
		Scale:     s.Scale(),
		UndoDepth: s.History().UndoDepth(),
		RedoDepth: s.History().RedoDepth(),
		Unsaved:   s.Unsaved(),
	}
	if img := s.Original(); img != nil {
		st.SourceWidth, st.SourceHeight = img.Bounds().Dx(), img.Bounds().Dy()
	}
	if img := s.Preview(); img != nil {
		st.PreviewWidth, st.PreviewHeight = img.Bounds().Dx(), img.Bounds().Dy()
	}
	if r, ok := s.Dragging(); ok {
		st.Dragging = true
		st.Drag = &r
	}
	if img := s.Cropped(); img != nil {
		st.HasSelection = true
		st.WorkingWidth, st.WorkingHeight = img.Bounds().Dx(), img.Bounds().Dy()
		_, st.Grayscale = img.(*image.Gray)
	}
	return st
}

func (e *Editor) logCommit(action string) {
	b := image.Rectangle{}
	if img := e.session.Cropped(); img != nil {
		b = img.Bounds()
	}
	e.log.Debug("edit committed",
		"action", action,
		"width", b.Dx(),
		"height", b.Dy(),
		"undo_depth", e.session.History().UndoDepth(),
		"redo_depth", e.session.History().RedoDepth(),
	)
}

// reject logs a refused operation and returns err unchanged.
func (e *Editor) reject(err error) error {
	if IsQuiet(err) {
		e.log.Debug("operation ignored", "error", err)
	} else {
		e.log.Info("operation rejected", "error", err)
	}
	return err
}
