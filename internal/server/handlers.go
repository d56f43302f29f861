package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/crop-editor/internal/editor"
	"github.com/ironsheep/crop-editor/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "editor_open", "editor_select").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// A cancelled file dialog is not an error: it yields status "cancelled".
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if errors.Is(err, editor.ErrNoFileSelected) {
		result, err = s.actionResult("cancelled", ""), nil
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Calls the matching Editor method
//  3. Returns the resulting session state or the error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Files
	case "editor_open":
		return s.handleOpen(args)
	case "editor_save":
		return s.handleSave(args)

	// Selection
	case "editor_pointer":
		return s.handlePointer(args)
	case "editor_select":
		return s.handleSelect(args)
	case "editor_canvas":
		return s.handleCanvas(args)
	case "editor_suggest_selection":
		return s.handleSuggest(args)

	// Edits
	case "editor_grayscale":
		return s.apply(editor.Grayscale())
	case "editor_rotate":
		return s.apply(editor.Rotate90())
	case "editor_brightness":
		return s.handleFactor(args, editor.Brightness)
	case "editor_resize":
		return s.handleFactor(args, editor.Resize)

	// History
	case "editor_undo":
		return s.action(s.editor.Undo())
	case "editor_redo":
		return s.action(s.editor.Redo())

	// Inspection
	case "editor_state":
		return s.editor.State(), nil
	case "editor_view":
		return s.handleView(args)
	case "editor_sample_color":
		return s.handleSampleColor(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments. Missing arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// ActionResult is returned by every tool that changes the session.
type ActionResult struct {
	Status string       `json:"status"`
	Path   string       `json:"path,omitempty"`
	State  editor.State `json:"state"`

	// Info describes the file just opened or written.
	Info *imaging.ImageInfo `json:"info,omitempty"`
}

func (s *Server) actionResult(status, path string) *ActionResult {
	return &ActionResult{Status: status, Path: path, State: s.editor.State()}
}

// action turns the error of an Editor call into a tool result.
func (s *Server) action(err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return s.actionResult("ok", ""), nil
}

func (s *Server) apply(op editor.Operation) (interface{}, error) {
	return s.action(s.editor.Apply(op))
}

// === File Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleOpen(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	s.files.OpenPath = a.Path
	defer func() { s.files.OpenPath = "" }()

	path, err := s.editor.Open()
	if err != nil {
		return nil, err
	}
	return s.describe(s.editor.Session().Original(), path)
}

func (s *Server) handleSave(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	s.files.SavePath = a.Path
	defer func() { s.files.SavePath = "" }()

	path, err := s.editor.Save()
	if err != nil {
		return nil, err
	}
	return s.describe(s.editor.Session().Cropped(), path)
}

// describe builds the result of a successful open or save of img at path.
func (s *Server) describe(img image.Image, path string) (interface{}, error) {
	info, err := imaging.Describe(img, path)
	if err != nil {
		return nil, err
	}
	res := s.actionResult("ok", path)
	res.Info = info
	return res, nil
}

// === Selection Handlers ===

type pointerArgs struct {
	Event string `json:"event"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

func (s *Server) handlePointer(args json.RawMessage) (interface{}, error) {
	var a pointerArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	kind, err := editor.ParsePointerKind(a.Event)
	if err != nil {
		return nil, err
	}
	return s.action(s.editor.HandlePointer(editor.PointerEvent{Kind: kind, X: a.X, Y: a.Y}))
}

func (s *Server) handleSelect(args json.RawMessage) (interface{}, error) {
	var r imaging.Rect
	if err := decodeArgs(args, &r); err != nil {
		return nil, err
	}
	return s.action(s.editor.Select(r))
}

type suggestArgs struct {
	Apply bool `json:"apply"`
}

// SuggestResult lists crop candidates found on the preview, largest first.
type SuggestResult struct {
	Regions  []imaging.Region `json:"regions"`
	Count    int              `json:"count"`
	Selected *imaging.Region  `json:"selected,omitempty"`
	State    editor.State     `json:"state"`
}

func (s *Server) handleSuggest(args json.RawMessage) (interface{}, error) {
	var a suggestArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var regions []imaging.Region
	var err error
	if a.Apply {
		regions, err = s.editor.AutoSelect()
	} else {
		regions, err = s.editor.SuggestSelections()
	}
	if err != nil {
		return nil, err
	}

	result := &SuggestResult{Regions: regions, Count: len(regions), State: s.editor.State()}
	if a.Apply {
		result.Selected = &regions[0]
	}
	return result, nil
}

type canvasArgs struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleCanvas(args json.RawMessage) (interface{}, error) {
	var a canvasArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("%w: canvas size must be positive, got %dx%d",
			editor.ErrInvalidParameter, a.Width, a.Height)
	}

	s.canvas.Resize(a.Width, a.Height)
	if !s.editor.Session().Loaded() {
		return s.actionResult("ok", ""), nil
	}
	return s.action(s.editor.SurfaceResized())
}

// === Edit Handlers ===

type factorArgs struct {
	Factor *float64 `json:"factor"`
}

func (s *Server) handleFactor(args json.RawMessage, op func(float64) editor.Operation) (interface{}, error) {
	var a factorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Factor == nil {
		return nil, fmt.Errorf("%w: factor is required", editor.ErrInvalidParameter)
	}
	return s.apply(op(*a.Factor))
}

// === Inspection Handlers ===

type viewArgs struct {
	Surface string `json:"surface"`
}

func (s *Server) handleView(args json.RawMessage) (interface{}, error) {
	a := viewArgs{Surface: "working"}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	var surface editor.Surface
	switch a.Surface {
	case "preview":
		surface = editor.SurfacePreview
	case "working", "":
		surface = editor.SurfaceWorking
	default:
		return nil, fmt.Errorf("%w: unknown surface %q", editor.ErrInvalidParameter, a.Surface)
	}

	img := s.canvas.Surface(surface)
	if img == nil {
		return nil, fmt.Errorf("%s surface is empty", surface)
	}
	return imaging.EncodePNG(img)
}

type sampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleSampleColor(args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.editor.Sample(a.X, a.Y)
}
