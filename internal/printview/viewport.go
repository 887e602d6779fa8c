// Package printview manages the print capture rectangle and composes
// the exported document image.
package printview

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r2"

	"geoedit/internal/surface"
	"geoedit/pkg/colorutil"
	"geoedit/pkg/geo"
)

// PageRatio is the ISO A-series landscape width/height ratio.
const PageRatio = 297.0 / 210.0

// HandleRadius is the pixel radius of the draggable center handle.
const HandleRadius = 12

// viewportHeightFrac is the capture rectangle's pixel height as a
// fraction of the visible canvas height.
const viewportHeightFrac = 0.6

const overlayPrintFrame = "print-frame"

// Controller owns the print viewport: a rectangle of fixed pixel
// dimensions centered on a draggable geographic point. The on-screen
// size never changes with zoom; the geographic footprint does.
type Controller struct {
	surf surface.Surface
	log  zerolog.Logger

	frame *frame

	// Capture hooks let the host hide and restore its controls around
	// the capture sequence. The end hook runs on all paths.
	beginCapture func()
	endCapture   func()
}

// frame is the active viewport: a center point plus fixed pixel
// half-extents.
type frame struct {
	center geo.LatLng
	halfW  float64
	halfH  float64
}

// NewController creates an inactive print viewport controller.
func NewController(surf surface.Surface, log zerolog.Logger) *Controller {
	return &Controller{surf: surf, log: log}
}

// SetCaptureHooks registers callbacks invoked before and after the
// capture sequence.
func (c *Controller) SetCaptureHooks(begin, end func()) {
	c.beginCapture = begin
	c.endCapture = end
}

// Activate creates the viewport centered on the current map center.
// Height is 60% of the visible canvas; width follows the landscape
// page ratio.
func (c *Controller) Activate() {
	view := c.surf.ViewSize()
	halfH := view.Y * viewportHeightFrac / 2
	c.frame = &frame{
		center: c.surf.Center(),
		halfW:  halfH * PageRatio,
		halfH:  halfH,
	}
	c.updateOverlay()
	c.log.Debug().
		Float64("half_w", c.frame.halfW).
		Float64("half_h", c.frame.halfH).
		Msg("print viewport activated")
}

// Deactivate removes the viewport rectangle and its handle.
func (c *Controller) Deactivate() {
	c.frame = nil
	c.surf.ClearOverlay(overlayPrintFrame)
}

// Active reports whether a viewport rectangle exists.
func (c *Controller) Active() bool {
	return c.frame != nil
}

// Center returns the handle's geographic position.
func (c *Controller) Center() (geo.LatLng, bool) {
	if c.frame == nil {
		return geo.LatLng{}, false
	}
	return c.frame.center, true
}

// MoveCenter drags the handle: the rectangle's corners are
// re-projected around the new position using the same fixed pixel
// half-extents.
func (c *Controller) MoveCenter(p geo.LatLng) {
	if c.frame == nil {
		return
	}
	c.frame.center = p
	c.updateOverlay()
}

// Bounds returns the viewport's current geographic rectangle.
func (c *Controller) Bounds() (geo.Bounds, bool) {
	if c.frame == nil {
		return geo.Bounds{}, false
	}
	center := c.surf.Project(c.frame.center)
	topLeft := c.surf.Unproject(r2.Vec{X: center.X - c.frame.halfW, Y: center.Y - c.frame.halfH})
	bottomRight := c.surf.Unproject(r2.Vec{X: center.X + c.frame.halfW, Y: center.Y + c.frame.halfH})
	return geo.NewBounds(topLeft, bottomRight), true
}

func (c *Controller) updateOverlay() {
	b, ok := c.Bounds()
	if !ok {
		return
	}
	c.surf.SetOverlay(overlayPrintFrame, &surface.Overlay{
		Rects: []geo.Bounds{b},
		Markers: []surface.Marker{
			{At: c.frame.center, Radius: HandleRadius, Filled: true},
		},
		Color: colorutil.Red,
	})
}
