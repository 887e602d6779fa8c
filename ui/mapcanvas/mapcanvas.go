// Package mapcanvas provides a slippy-map canvas with pan, zoom, tile
// compositing, and overlay drawing. It implements the surface contract
// the editing core draws through.
package mapcanvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r2"

	"geoedit/internal/surface"
	"geoedit/internal/tiles"
	"geoedit/pkg/geo"
)

const (
	minZoom = 2
	maxZoom = 19
)

// rasterLayer is one registered base tile layer.
type rasterLayer struct {
	id      string
	source  *tiles.Source
	z       int
	opacity float64
}

// MapCanvas is a pannable, zoomable Web Mercator map widget. It
// renders base tile layers, feature groups, and named overlays into a
// single raster, and forwards pointer events in geographic
// coordinates.
type MapCanvas struct {
	widget.BaseWidget

	center geo.LatLng
	zoom   int
	viewW  int
	viewH  int

	panEnabled bool
	cursor     surface.Cursor

	groups   []*surface.Group
	overlays map[string]*surface.Overlay
	rasters  []*rasterLayer

	// pendingMu guards pending; prefetch goroutines clear their key
	// when the tile arrives.
	pendingMu sync.Mutex
	pending   map[string]map[tiles.Key]bool

	raster     *fynecanvas.Raster
	lastOutput *image.RGBA

	log zerolog.Logger

	onTap         func(geo.LatLng)
	onDoubleTap   func(geo.LatLng)
	onPointerDown func(geo.LatLng)
	onPointerMove func(geo.LatLng)
	onPointerUp   func(geo.LatLng)
	onViewChange  func()
}

var (
	_ surface.Surface     = (*MapCanvas)(nil)
	_ fyne.Tappable       = (*MapCanvas)(nil)
	_ fyne.DoubleTappable = (*MapCanvas)(nil)
	_ fyne.Draggable      = (*MapCanvas)(nil)
	_ fyne.Scrollable     = (*MapCanvas)(nil)
	_ desktop.Cursorable  = (*MapCanvas)(nil)
	_ desktop.Hoverable   = (*MapCanvas)(nil)
	_ desktop.Mouseable   = (*MapCanvas)(nil)
)

// New creates a map canvas centered on the given position.
func New(center geo.LatLng, zoom int, log zerolog.Logger) *MapCanvas {
	mc := &MapCanvas{
		center:     center,
		zoom:       clampZoom(zoom),
		viewW:      800,
		viewH:      600,
		panEnabled: true,
		overlays:   make(map[string]*surface.Overlay),
		pending:    make(map[string]map[tiles.Key]bool),
		log:        log,
	}

	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = fynecanvas.ImageScalePixels
	mc.raster.SetMinSize(fyne.NewSize(400, 300))

	mc.ExtendBaseWidget(mc)
	return mc
}

// CreateRenderer implements fyne.Widget.
func (mc *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

func clampZoom(z int) int {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// topLeftWorld returns the world pixel coordinate of the view's
// top-left corner.
func (mc *MapCanvas) topLeftWorld() r2.Vec {
	c := geo.Project(mc.center, mc.zoom)
	return r2.Vec{X: c.X - float64(mc.viewW)/2, Y: c.Y - float64(mc.viewH)/2}
}

// Project converts a geographic coordinate to view pixel coordinates.
func (mc *MapCanvas) Project(p geo.LatLng) r2.Vec {
	tl := mc.topLeftWorld()
	world := geo.Project(p, mc.zoom)
	return r2.Vec{X: world.X - tl.X, Y: world.Y - tl.Y}
}

// Unproject converts view pixel coordinates back to geographic.
func (mc *MapCanvas) Unproject(v r2.Vec) geo.LatLng {
	tl := mc.topLeftWorld()
	return geo.Unproject(r2.Vec{X: tl.X + v.X, Y: tl.Y + v.Y}, mc.zoom)
}

// ViewSize returns the visible canvas size in pixels.
func (mc *MapCanvas) ViewSize() r2.Vec {
	return r2.Vec{X: float64(mc.viewW), Y: float64(mc.viewH)}
}

// Center returns the geographic coordinate at the view center.
func (mc *MapCanvas) Center() geo.LatLng {
	return mc.center
}

// SetCenter recenters the view.
func (mc *MapCanvas) SetCenter(p geo.LatLng) {
	mc.center = p
	mc.viewChanged()
}

// Zoom returns the current slippy-map zoom level.
func (mc *MapCanvas) Zoom() int {
	return mc.zoom
}

// SetZoom sets the zoom level, clamped to the supported range. The
// view center is preserved.
func (mc *MapCanvas) SetZoom(z int) {
	z = clampZoom(z)
	if z == mc.zoom {
		return
	}
	mc.zoom = z
	mc.viewChanged()
}

// ZoomIn increases the zoom level by one step.
func (mc *MapCanvas) ZoomIn() { mc.SetZoom(mc.zoom + 1) }

// ZoomOut decreases the zoom level by one step.
func (mc *MapCanvas) ZoomOut() { mc.SetZoom(mc.zoom - 1) }

// Scrolled zooms on mouse wheel.
func (mc *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		mc.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		mc.ZoomOut()
	}
}

// pan shifts the view center by a pixel delta.
func (mc *MapCanvas) pan(dx, dy float64) {
	world := geo.Project(mc.center, mc.zoom)
	mc.center = geo.Unproject(r2.Vec{X: world.X + dx, Y: world.Y + dy}, mc.zoom)
	mc.viewChanged()
}

func (mc *MapCanvas) viewChanged() {
	if mc.onViewChange != nil {
		mc.onViewChange()
	}
	mc.Refresh()
}

// SetCursor switches the pointer affordance.
func (mc *MapCanvas) SetCursor(c surface.Cursor) {
	mc.cursor = c
}

// Cursor implements desktop.Cursorable.
func (mc *MapCanvas) Cursor() desktop.Cursor {
	switch mc.cursor {
	case surface.CursorCrosshair:
		return desktop.CrosshairCursor
	case surface.CursorMove:
		return desktop.PointerCursor
	default:
		return desktop.DefaultCursor
	}
}

// SetPanEnabled toggles drag-panning.
func (mc *MapCanvas) SetPanEnabled(enabled bool) {
	mc.panEnabled = enabled
}

// SetOverlay installs or replaces a named overlay.
func (mc *MapCanvas) SetOverlay(name string, ov *surface.Overlay) {
	mc.overlays[name] = ov
	mc.Refresh()
}

// ClearOverlay removes a named overlay.
func (mc *MapCanvas) ClearOverlay(name string) {
	delete(mc.overlays, name)
	mc.Refresh()
}

// AddGroup adds a feature layer group on top of the stack.
func (mc *MapCanvas) AddGroup(g *surface.Group) {
	mc.RemoveGroup(g.LayerID)
	mc.groups = append(mc.groups, g)
}

// RemoveGroup removes the group for a layer.
func (mc *MapCanvas) RemoveGroup(layerID string) {
	for i, g := range mc.groups {
		if g.LayerID == layerID {
			mc.groups = append(mc.groups[:i], mc.groups[i+1:]...)
			return
		}
	}
}

// AddRaster registers a base tile layer. Templates that fail
// validation are logged and skipped.
func (mc *MapCanvas) AddRaster(id, urlTemplate string) {
	src, err := tiles.NewSource(urlTemplate, mc.log)
	if err != nil {
		mc.log.Warn().Err(err).Str("raster", id).Msg("rejecting tile layer")
		return
	}
	mc.RemoveRaster(id)
	mc.rasters = append(mc.rasters, &rasterLayer{
		id:      id,
		source:  src,
		z:       len(mc.rasters),
		opacity: 1,
	})
	mc.pendingMu.Lock()
	mc.pending[id] = make(map[tiles.Key]bool)
	mc.pendingMu.Unlock()
	mc.Refresh()
}

// RemoveRaster removes a base tile layer.
func (mc *MapCanvas) RemoveRaster(id string) {
	for i, rl := range mc.rasters {
		if rl.id == id {
			mc.rasters = append(mc.rasters[:i], mc.rasters[i+1:]...)
			mc.pendingMu.Lock()
			delete(mc.pending, id)
			mc.pendingMu.Unlock()
			mc.Refresh()
			return
		}
	}
}

// SetRasterZIndex assigns a base layer's stacking position.
func (mc *MapCanvas) SetRasterZIndex(id string, z int) {
	for _, rl := range mc.rasters {
		if rl.id == id {
			rl.z = z
			mc.Refresh()
			return
		}
	}
}

// SetRasterOpacity sets a base layer's opacity.
func (mc *MapCanvas) SetRasterOpacity(id string, opacity float64) {
	for _, rl := range mc.rasters {
		if rl.id == id {
			rl.opacity = opacity
			mc.Refresh()
			return
		}
	}
}

// Capture renders the current view synchronously and returns the
// raster with a 1:1 capture scale.
func (mc *MapCanvas) Capture() (image.Image, float64, error) {
	out := mc.render(mc.viewW, mc.viewH)
	cp := image.NewRGBA(out.Bounds())
	copy(cp.Pix, out.Pix)
	return cp, 1.0, nil
}

// Refresh schedules a redraw.
func (mc *MapCanvas) Refresh() {
	mc.raster.Refresh()
}

// OnTap sets the primary click callback.
func (mc *MapCanvas) OnTap(fn func(geo.LatLng)) { mc.onTap = fn }

// OnDoubleTap sets the double click callback.
func (mc *MapCanvas) OnDoubleTap(fn func(geo.LatLng)) { mc.onDoubleTap = fn }

// OnPointerDown sets the press callback.
func (mc *MapCanvas) OnPointerDown(fn func(geo.LatLng)) { mc.onPointerDown = fn }

// OnPointerMove sets the hover/drag movement callback.
func (mc *MapCanvas) OnPointerMove(fn func(geo.LatLng)) { mc.onPointerMove = fn }

// OnPointerUp sets the release callback.
func (mc *MapCanvas) OnPointerUp(fn func(geo.LatLng)) { mc.onPointerUp = fn }

// OnViewChange sets the pan/zoom callback.
func (mc *MapCanvas) OnViewChange(fn func()) { mc.onViewChange = fn }

func (mc *MapCanvas) posToLatLng(pos fyne.Position) geo.LatLng {
	return mc.Unproject(r2.Vec{X: float64(pos.X), Y: float64(pos.Y)})
}

// Tapped handles primary clicks.
func (mc *MapCanvas) Tapped(ev *fyne.PointEvent) {
	if mc.onTap != nil {
		mc.onTap(mc.posToLatLng(ev.Position))
	}
}

// DoubleTapped handles double clicks.
func (mc *MapCanvas) DoubleTapped(ev *fyne.PointEvent) {
	if mc.onDoubleTap != nil {
		mc.onDoubleTap(mc.posToLatLng(ev.Position))
	}
}

// MouseDown implements desktop.Mouseable.
func (mc *MapCanvas) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary && mc.onPointerDown != nil {
		mc.onPointerDown(mc.posToLatLng(ev.Position))
	}
}

// MouseUp implements desktop.Mouseable.
func (mc *MapCanvas) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary && mc.onPointerUp != nil {
		mc.onPointerUp(mc.posToLatLng(ev.Position))
	}
}

// MouseIn implements desktop.Hoverable.
func (mc *MapCanvas) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved forwards hover movement in geographic coordinates.
func (mc *MapCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if mc.onPointerMove != nil {
		mc.onPointerMove(mc.posToLatLng(ev.Position))
	}
}

// MouseOut implements desktop.Hoverable.
func (mc *MapCanvas) MouseOut() {}

// Dragged pans the map when panning is enabled; otherwise the drag is
// delivered as pointer movement so rubber-band interactions track it.
func (mc *MapCanvas) Dragged(ev *fyne.DragEvent) {
	if mc.panEnabled {
		mc.pan(float64(-ev.Dragged.DX), float64(-ev.Dragged.DY))
		return
	}
	if mc.onPointerMove != nil {
		mc.onPointerMove(mc.posToLatLng(ev.Position))
	}
}

// DragEnd implements fyne.Draggable. Releases are delivered via
// MouseUp.
func (mc *MapCanvas) DragEnd() {}
