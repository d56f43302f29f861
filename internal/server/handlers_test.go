package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/crop-editor/internal/config"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "handler-test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful response into v.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("Failed to unmarshal result: %v", err)
	}
}

// expectToolError checks that resp is a tool failure mentioning want.
func expectToolError(t *testing.T, resp *MCPResponse, want string) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error containing %q, got result %v", want, resp.Result)
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Code: got %d, want -32000", resp.Error.Code)
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, want) {
		t.Errorf("error data %q should contain %q", data, want)
	}
}

// openTestImage opens a 1000x500 image on the default 800x600 canvas.
func openTestImage(t *testing.T, s *Server) {
	t.Helper()
	path := createTestImageFile(t, 1000, 500, color.RGBA{200, 100, 50, 255})

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_open", map[string]interface{}{"path": path}), &res)
	if res.Status != "ok" || res.Path != path {
		t.Fatalf("open: got %+v", res)
	}
	if res.Info == nil || res.Info.Width != 1000 || res.Info.Format != "png" {
		t.Fatalf("open info: got %+v", res.Info)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	expectToolError(t, callTool(t, s, "image_ocr_full", nil), "unknown tool")
}

func TestHandleToolsCall_Open(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	var st struct {
		Loaded        bool `json:"loaded"`
		SourceWidth   int  `json:"source_width"`
		PreviewWidth  int  `json:"preview_width"`
		PreviewHeight int  `json:"preview_height"`
		HasSelection  bool `json:"has_selection"`
	}
	decodeResult(t, callTool(t, s, "editor_state", nil), &st)
	if !st.Loaded || st.SourceWidth != 1000 || st.PreviewWidth != 800 || st.PreviewHeight != 400 {
		t.Errorf("unexpected state %+v", st)
	}
	if st.HasSelection {
		t.Error("a fresh open has no selection")
	}
	if s.files.OpenPath != "" {
		t.Error("the preset open path should be reset after the call")
	}
}

func TestHandleToolsCall_OpenCancelled(t *testing.T) {
	s := newTestServer(t)

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_open", map[string]interface{}{"path": ""}), &res)
	if res.Status != "cancelled" {
		t.Errorf("Status: got %s, want cancelled", res.Status)
	}
	if res.State.Loaded {
		t.Error("nothing should be loaded")
	}
}

func TestHandleToolsCall_OpenErrors(t *testing.T) {
	s := newTestServer(t)

	expectToolError(t, callTool(t, s, "editor_open",
		map[string]interface{}{"path": "/nonexistent/image.png"}), "failed to load image")

	gif := filepath.Join(t.TempDir(), "anim.gif")
	expectToolError(t, callTool(t, s, "editor_open",
		map[string]interface{}{"path": gif}), "unsupported image format")
}

func TestHandleToolsCall_SelectScenario(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_select", map[string]interface{}{
		"x1": 100, "y1": 50, "x2": 300, "y2": 100,
	}), &res)

	if !res.State.HasSelection {
		t.Fatal("select should produce a selection")
	}
	if res.State.WorkingWidth != 250 || res.State.WorkingHeight != 63 {
		t.Errorf("working: got %dx%d, want 250x63", res.State.WorkingWidth, res.State.WorkingHeight)
	}
	if res.State.UndoDepth != 1 {
		t.Errorf("UndoDepth: got %d, want 1", res.State.UndoDepth)
	}
}

func TestHandleToolsCall_PointerEvents(t *testing.T) {
	s := newTestServer(t)

	expectToolError(t, callTool(t, s, "editor_pointer",
		map[string]interface{}{"event": "press", "x": 1, "y": 1}), "no image loaded")

	openTestImage(t, s)
	events := []map[string]interface{}{
		{"event": "press", "x": 400, "y": 200},
		{"event": "drag", "x": 300, "y": 100},
	}
	for _, ev := range events {
		var res ActionResult
		decodeResult(t, callTool(t, s, "editor_pointer", ev), &res)
		if !res.State.Dragging {
			t.Errorf("%v: should be dragging", ev["event"])
		}
	}

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_pointer",
		map[string]interface{}{"event": "release", "x": 200, "y": 0}), &res)
	if res.State.Dragging || !res.State.HasSelection {
		t.Errorf("release should commit: %+v", res.State)
	}
	if res.State.WorkingWidth != 250 || res.State.WorkingHeight != 250 {
		t.Errorf("working: got %dx%d, want 250x250", res.State.WorkingWidth, res.State.WorkingHeight)
	}

	expectToolError(t, callTool(t, s, "editor_pointer",
		map[string]interface{}{"event": "hover", "x": 1, "y": 1}), "invalid parameter")
}

func TestHandleToolsCall_SelectNoArea(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	expectToolError(t, callTool(t, s, "editor_select", map[string]interface{}{
		"x1": 10, "y1": 10, "x2": 10, "y2": 10,
	}), "invalid selection")
}

func TestHandleToolsCall_Edits(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	expectToolError(t, callTool(t, s, "editor_grayscale", nil), "no active selection")

	callTool(t, s, "editor_select", map[string]interface{}{"x1": 0, "y1": 0, "x2": 160, "y2": 80})

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_grayscale", nil), &res)
	if !res.State.Grayscale {
		t.Error("grayscale should be reported")
	}

	decodeResult(t, callTool(t, s, "editor_rotate", nil), &res)
	if res.State.WorkingWidth != 100 || res.State.WorkingHeight != 200 {
		t.Errorf("rotate: got %dx%d, want 100x200", res.State.WorkingWidth, res.State.WorkingHeight)
	}

	decodeResult(t, callTool(t, s, "editor_resize", map[string]interface{}{"factor": 0.5}), &res)
	if res.State.WorkingWidth != 100 || res.State.WorkingHeight != 50 {
		t.Errorf("resize: got %dx%d, want 100x50 from the crop", res.State.WorkingWidth, res.State.WorkingHeight)
	}
	if res.State.Grayscale {
		t.Error("resize recomputes from the crop and drops grayscale")
	}

	decodeResult(t, callTool(t, s, "editor_brightness", map[string]interface{}{"factor": 1.5}), &res)
	if res.State.UndoDepth != 5 {
		t.Errorf("UndoDepth: got %d, want 5", res.State.UndoDepth)
	}
}

func TestHandleToolsCall_FactorErrors(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)
	callTool(t, s, "editor_select", map[string]interface{}{"x1": 0, "y1": 0, "x2": 160, "y2": 80})

	expectToolError(t, callTool(t, s, "editor_brightness", nil), "factor is required")
	expectToolError(t, callTool(t, s, "editor_brightness",
		map[string]interface{}{"factor": 2.5}), "invalid parameter")
	expectToolError(t, callTool(t, s, "editor_resize",
		map[string]interface{}{"factor": 0.01}), "invalid parameter")
	expectToolError(t, callTool(t, s, "editor_resize",
		map[string]interface{}{"factor": "big"}), "invalid arguments")

	var st struct {
		UndoDepth int `json:"undo_depth"`
	}
	decodeResult(t, callTool(t, s, "editor_state", nil), &st)
	if st.UndoDepth != 1 {
		t.Errorf("rejected edits should not record history, UndoDepth %d", st.UndoDepth)
	}
}

func TestHandleToolsCall_UndoRedo(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	expectToolError(t, callTool(t, s, "editor_undo", nil), "nothing to undo")

	callTool(t, s, "editor_select", map[string]interface{}{"x1": 0, "y1": 0, "x2": 160, "y2": 80})
	callTool(t, s, "editor_rotate", nil)

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_undo", nil), &res)
	if res.State.WorkingWidth != 200 || res.State.RedoDepth != 1 {
		t.Errorf("undo: got %+v", res.State)
	}

	decodeResult(t, callTool(t, s, "editor_redo", nil), &res)
	if res.State.WorkingWidth != 100 || res.State.RedoDepth != 0 {
		t.Errorf("redo: got %+v", res.State)
	}

	expectToolError(t, callTool(t, s, "editor_redo", nil), "nothing to redo")
}

func TestHandleToolsCall_Save(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)
	dir := t.TempDir()

	expectToolError(t, callTool(t, s, "editor_save",
		map[string]interface{}{"path": filepath.Join(dir, "x.png")}), "no cropped image to save")

	callTool(t, s, "editor_select", map[string]interface{}{"x1": 0, "y1": 0, "x2": 160, "y2": 80})

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_save",
		map[string]interface{}{"path": filepath.Join(dir, "crop")}), &res)
	if res.Path != filepath.Join(dir, "crop.png") {
		t.Errorf("Path: got %s, want crop.png", res.Path)
	}
	if res.Info == nil || res.Info.Format != "png" || res.Info.FileSizeBytes == 0 {
		t.Errorf("save info: got %+v", res.Info)
	}

	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("saved file is not a PNG: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("saved size: got %dx%d, want 200x100", cfg.Width, cfg.Height)
	}

	decodeResult(t, callTool(t, s, "editor_save", map[string]interface{}{"path": ""}), &res)
	if res.Status != "cancelled" {
		t.Errorf("Status: got %s, want cancelled", res.Status)
	}

	expectToolError(t, callTool(t, s, "editor_save",
		map[string]interface{}{"path": filepath.Join(dir, "crop.gif")}), "failed to save image")
}

func TestHandleToolsCall_View(t *testing.T) {
	s := newTestServer(t)

	expectToolError(t, callTool(t, s, "editor_view",
		map[string]interface{}{"surface": "preview"}), "surface is empty")

	openTestImage(t, s)
	callTool(t, s, "editor_select", map[string]interface{}{"x1": 0, "y1": 0, "x2": 160, "y2": 80})

	var view struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeResult(t, callTool(t, s, "editor_view", nil), &view)
	if view.Width != 200 || view.Height != 100 || view.MimeType != "image/png" {
		t.Errorf("working view: got %dx%d %s", view.Width, view.Height, view.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(view.ImageBase64)
	if err != nil {
		t.Fatalf("bad base64: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(data))); err != nil {
		t.Errorf("view is not a PNG: %v", err)
	}

	decodeResult(t, callTool(t, s, "editor_view", map[string]interface{}{"surface": "preview"}), &view)
	if view.Width != 800 || view.Height != 400 {
		t.Errorf("preview view: got %dx%d, want 800x400", view.Width, view.Height)
	}

	expectToolError(t, callTool(t, s, "editor_view",
		map[string]interface{}{"surface": "side"}), "unknown surface")
}

func TestHandleToolsCall_ViewShowsSelection(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)
	callTool(t, s, "editor_pointer", map[string]interface{}{"event": "press", "x": 10, "y": 10})
	callTool(t, s, "editor_pointer", map[string]interface{}{"event": "drag", "x": 50, "y": 50})

	img := s.canvas.Surface(0)
	if img == nil {
		t.Fatal("preview should be rendered")
	}
	r, g, b, _ := img.At(10, 30).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("outline pixel: got (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	expectToolError(t, callTool(t, s, "editor_sample_color",
		map[string]interface{}{"x": 0, "y": 0}), "no active selection")

	callTool(t, s, "editor_select", map[string]interface{}{"x1": 0, "y1": 0, "x2": 160, "y2": 80})

	var c struct {
		Hex string `json:"hex"`
		RGB struct {
			R, G, B int
		} `json:"rgb"`
	}
	decodeResult(t, callTool(t, s, "editor_sample_color", map[string]interface{}{"x": 5, "y": 5}), &c)
	if c.Hex != "#C86432" {
		t.Errorf("Hex: got %s, want #C86432", c.Hex)
	}

	expectToolError(t, callTool(t, s, "editor_sample_color",
		map[string]interface{}{"x": 999, "y": 0}), "invalid parameter")
}

func TestHandleToolsCall_Canvas(t *testing.T) {
	s := newTestServer(t)

	var res ActionResult
	decodeResult(t, callTool(t, s, "editor_canvas", map[string]interface{}{"width": 500, "height": 500}), &res)
	if w, _ := s.canvas.SurfaceSize(); w != 500 {
		t.Errorf("canvas width: got %d, want 500", w)
	}

	openTestImage(t, s)
	decodeResult(t, callTool(t, s, "editor_canvas", map[string]interface{}{"width": 250, "height": 250}), &res)
	if res.State.PreviewWidth != 250 || res.State.Scale.X != 4 {
		t.Errorf("refit: got preview %d scale %v", res.State.PreviewWidth, res.State.Scale.X)
	}

	expectToolError(t, callTool(t, s, "editor_canvas",
		map[string]interface{}{"width": 0, "height": 10}), "invalid parameter")
}

// createScanImageFile writes a 400x300 white PNG with a dark 200x180 box
// at (100,60) and returns its path.
func createScanImageFile(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 400, 300))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 60; y < 240; y++ {
		for x := 100; x < 300; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	f.Close()
	return path
}

func TestHandleToolsCall_SuggestSelection(t *testing.T) {
	s := newTestServer(t)
	expectToolError(t, callTool(t, s, "editor_suggest_selection", nil), "no image loaded")

	var opened ActionResult
	decodeResult(t, callTool(t, s, "editor_open", map[string]interface{}{"path": createScanImageFile(t)}), &opened)

	var res SuggestResult
	decodeResult(t, callTool(t, s, "editor_suggest_selection", nil), &res)
	if res.Count != 1 || len(res.Regions) != 1 {
		t.Fatalf("expected 1 region, got %+v", res)
	}
	if res.Selected != nil || res.State.HasSelection {
		t.Error("suggesting without apply must not crop")
	}

	res = SuggestResult{}
	decodeResult(t, callTool(t, s, "editor_suggest_selection", map[string]interface{}{"apply": true}), &res)
	if res.Selected == nil {
		t.Fatal("expected a selected region")
	}
	if res.State.WorkingWidth != 200 || res.State.WorkingHeight != 180 || res.State.UndoDepth != 1 {
		t.Errorf("unexpected state after apply: %+v", res.State)
	}
}

func TestHandleToolsCall_SuggestSelectionNoRegion(t *testing.T) {
	s := newTestServer(t)
	openTestImage(t, s)

	var res SuggestResult
	decodeResult(t, callTool(t, s, "editor_suggest_selection", nil), &res)
	if res.Count != 0 {
		t.Errorf("a uniform image has no regions, got %d", res.Count)
	}
	expectToolError(t, callTool(t, s, "editor_suggest_selection",
		map[string]interface{}{"apply": true}), "no region found")
}

func TestHandleToolsCall_SuggestSelectionDetectsOnce(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := New(config.DefaultConfig(), logger, "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	var opened ActionResult
	decodeResult(t, callTool(t, s, "editor_open", map[string]interface{}{"path": createScanImageFile(t)}), &opened)
	logs.Reset()

	var res SuggestResult
	decodeResult(t, callTool(t, s, "editor_suggest_selection", map[string]interface{}{"apply": true}), &res)
	if res.Selected == nil || res.Count != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if n := strings.Count(logs.String(), "selections suggested"); n != 1 {
		t.Errorf("detector ran %d times, want 1", n)
	}
}
