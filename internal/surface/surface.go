// Package surface defines the contract between the editing core and a
// pannable/zoomable rendering surface. The surface's native stacking
// rule is last-added = topmost; callers that need a different visual
// order must add groups in the order that produces it.
package surface

import (
	"image"
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"

	"geoedit/pkg/geo"
)

// Cursor selects the pointer affordance shown over the map.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorCrosshair
	CursorMove
)

// Style describes how a single feature is rendered.
type Style struct {
	Color   color.RGBA
	Weight  int     // stroke thickness in pixels
	Opacity float64 // 0.0 - 1.0
}

// Feature is one renderable geometry inside a layer group.
type Feature struct {
	ID       string
	Geometry geo.Geometry
	Style    Style
	Label    string
}

// Group is the render unit for one feature layer. Groups stack in the
// order they are added to the surface.
type Group struct {
	LayerID  string
	Features []Feature
	Opacity  float64
}

// Surface is the rendering contract consumed by every editing
// subsystem. Implementations are single-threaded: all calls happen on
// the event loop.
type Surface interface {
	// Project converts a geographic coordinate to view pixel
	// coordinates for the current pan/zoom state.
	Project(p geo.LatLng) r2.Vec

	// Unproject converts view pixel coordinates back to geographic.
	Unproject(v r2.Vec) geo.LatLng

	// ViewSize returns the visible canvas size in pixels.
	ViewSize() r2.Vec

	// Center returns the geographic coordinate at the view center.
	Center() geo.LatLng

	// SetCursor switches the pointer affordance.
	SetCursor(c Cursor)

	// SetPanEnabled toggles drag-panning of the canvas.
	SetPanEnabled(enabled bool)

	// SetOverlay installs or replaces a named ephemeral overlay.
	SetOverlay(name string, ov *Overlay)

	// ClearOverlay removes a named overlay, if present.
	ClearOverlay(name string)

	// AddGroup adds a feature layer group on top of the stack.
	AddGroup(g *Group)

	// RemoveGroup removes the group for a layer, if present.
	RemoveGroup(layerID string)

	// AddRaster registers a raster tile layer with a slippy-map URL
	// template containing {z}, {x}, {y} placeholders.
	AddRaster(id, urlTemplate string)

	// RemoveRaster removes a raster tile layer.
	RemoveRaster(id string)

	// SetRasterZIndex assigns a raster layer's stacking position
	// (0 = bottom).
	SetRasterZIndex(id string, z int)

	// SetRasterOpacity sets a raster layer's opacity in [0,1].
	SetRasterOpacity(id string, opacity float64)

	// Capture renders the full canvas to a raster image and returns it
	// with the capture scale factor (captured pixels per view pixel).
	Capture() (image.Image, float64, error)

	// Refresh schedules a redraw.
	Refresh()
}
