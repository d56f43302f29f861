// Package server exposes a crop-editor session as an MCP (Model Context
// Protocol) tool server.
//
// The server holds one editor.Editor. Its display is a Canvas that keeps the
// last image rendered on each surface, and its file dialogs are replaced by
// the paths passed to editor_open and editor_save.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Requests are handled strictly in order on the read loop, so the session is
// only ever touched by one goroutine.
//
// # Available Tools
//
// Files:
//   - editor_open: Load an image and reset the session
//   - editor_save: Write the working image
//
// Selection:
//   - editor_pointer: One press, drag or release event on the preview
//   - editor_select: A whole press-release gesture
//   - editor_suggest_selection: Rectangular regions worth cropping, optionally applied
//   - editor_canvas: Resize the preview canvas
//
// Edits:
//   - editor_grayscale, editor_rotate: Transform the working image
//   - editor_brightness, editor_resize: Recompute from the crop with a factor
//
// History:
//   - editor_undo, editor_redo
//
// Inspection:
//   - editor_state: Session summary
//   - editor_view: Surface contents as base64 PNG
//   - editor_sample_color: Pixel color of the working image
//
// # Error Handling
//
// editor_open and editor_save also return the file's size, format and
// color depth.
//
// Rejected operations are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed"
//   - data: The error text, which names the operation and error kind
//
// An empty path given to editor_open or editor_save is a cancelled dialog and
// returns {"status": "cancelled"} with the unchanged state.
//
// # Usage
//
//	srv, err := server.New(cfg, logger, version)
//	if err != nil {
//	    return err
//	}
//	return srv.Run()
package server
