package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of tools that take no arguments.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// factorSchema is the schema shared by the slider tools.
func factorSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"factor": map[string]interface{}{
				"type":        "number",
				"minimum":     0.1,
				"maximum":     2.0,
				"description": description,
			},
		},
		"required": []string{"factor"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Files
		{
			Name:        "editor_open",
			Description: "Open an image file and start a new editing session. The image is fitted to the canvas as a preview; crop, edits and history are reset. An empty path behaves like a cancelled file dialog.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to a .jpg, .jpeg, .png or .bmp file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_save",
			Description: "Write the working image to a file. The format follows the extension; a path without one gets the default extension (.png). An empty path behaves like a cancelled file dialog.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Destination path",
					},
				},
				"required": []string{"path"},
			},
		},

		// Selection
		{
			Name:        "editor_pointer",
			Description: "Send one pointer event in preview coordinates. press starts a selection, drag updates it and release commits the crop.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"event": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"press", "drag", "release"},
						"description": "Pointer event kind",
					},
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate on the preview (0-based)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate on the preview (0-based)",
					},
				},
				"required": []string{"event", "x", "y"},
			},
		},
		{
			Name:        "editor_select",
			Description: "Select a rectangle on the preview and crop the original image to it. Corners may be given in any order; a rectangle with no area is rejected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "X of the press point",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Y of the press point",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "X of the release point",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Y of the release point",
					},
				},
				"required": []string{"x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "editor_suggest_selection",
			Description: "Find rectangular regions on the preview that look like crop candidates, such as a photo on a scanner bed. Rectangles are in preview coordinates, largest first, ready for editor_select. With apply set, crops to the largest one.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"apply": map[string]interface{}{
						"type":        "boolean",
						"default":     false,
						"description": "Crop to the largest region found",
					},
				},
			},
		},
		{
			Name:        "editor_canvas",
			Description: "Change the preview canvas size. The preview is refitted; the crop and history are kept.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Canvas height in pixels",
					},
				},
				"required": []string{"width", "height"},
			},
		},

		// Edits
		{
			Name:        "editor_grayscale",
			Description: "Convert the working image to grayscale.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_rotate",
			Description: "Rotate the working image 90 degrees clockwise.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_brightness",
			Description: "Set brightness relative to the crop. 1.0 restores the cropped image; earlier grayscale or rotation is discarded.",
			InputSchema: factorSchema("Intensity multiplier (0.1-2.0)"),
		},
		{
			Name:        "editor_resize",
			Description: "Set size relative to the crop. 1.0 restores the cropped image; earlier grayscale or rotation is discarded.",
			InputSchema: factorSchema("Dimension multiplier (0.1-2.0)"),
		},

		// History
		{
			Name:        "editor_undo",
			Description: "Revert the most recent crop or edit.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_redo",
			Description: "Reapply the most recently undone crop or edit.",
			InputSchema: noArgs(),
		},

		// Inspection
		{
			Name:        "editor_state",
			Description: "Report the session: image and preview sizes, scale factors, selection, working image size and history depths.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_view",
			Description: "Return what is currently shown on a surface as base64-encoded PNG. The preview includes the selection outline while dragging.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"surface": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"preview", "working"},
						"description": "Surface to capture. Default working",
						"default":     "working",
					},
				},
			},
		},
		{
			Name:        "editor_sample_color",
			Description: "Get the exact color of a pixel of the working image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
