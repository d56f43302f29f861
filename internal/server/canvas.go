package server

import (
	"image"

	"github.com/ironsheep/crop-editor/internal/editor"
)

// Canvas is a headless editor.Display. It keeps the last image rendered on
// each surface so a client can fetch it with editor_view.
type Canvas struct {
	width, height int
	surfaces      map[editor.Surface]image.Image
}

// NewCanvas returns a canvas whose preview surface is width x height.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:    width,
		height:   height,
		surfaces: make(map[editor.Surface]image.Image),
	}
}

// SurfaceSize implements editor.Display.
func (c *Canvas) SurfaceSize() (int, int) {
	return c.width, c.height
}

// Render implements editor.Display.
func (c *Canvas) Render(surface editor.Surface, img image.Image) {
	if img == nil {
		delete(c.surfaces, surface)
		return
	}
	c.surfaces[surface] = img
}

// Resize changes the reported surface size. The caller is expected to tell
// the editor afterwards.
func (c *Canvas) Resize(width, height int) {
	c.width, c.height = width, height
}

// Surface returns the image last rendered on surface, or nil if the surface
// is blank.
func (c *Canvas) Surface(surface editor.Surface) image.Image {
	return c.surfaces[surface]
}
