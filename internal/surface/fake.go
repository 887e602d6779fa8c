package surface

import (
	"image"

	"gonum.org/v1/gonum/spatial/r2"

	"geoedit/pkg/geo"
)

// Fake is a recording Surface for tests. Projection is a flat
// equirectangular mapping around a configurable origin so pixel math
// stays exact and easy to assert against.
type Fake struct {
	Origin       geo.LatLng // geographic position of the view top-left
	PixelsPerDeg float64
	View         r2.Vec

	Overlays   map[string]*Overlay
	Groups     map[string]*Group
	AddOrder   []string // layer IDs in the order AddGroup was called
	Rasters    map[string]string
	RasterZ    map[string]int
	RasterOp   map[string]float64
	Cursor     Cursor
	PanOn      bool
	Refreshes  int
	CaptureImg image.Image
	CaptureErr error
	OnCapture  func() // invoked at the start of Capture, when set
}

// NewFake creates a Fake with a 100 px/degree projection and a
// 1000x800 view.
func NewFake() *Fake {
	return &Fake{
		Origin:       geo.NewLatLng(10, 0),
		PixelsPerDeg: 100,
		View:         r2.Vec{X: 1000, Y: 800},
		Overlays:     make(map[string]*Overlay),
		Groups:       make(map[string]*Group),
		Rasters:      make(map[string]string),
		RasterZ:      make(map[string]int),
		RasterOp:     make(map[string]float64),
		PanOn:        true,
	}
}

func (f *Fake) Project(p geo.LatLng) r2.Vec {
	return r2.Vec{
		X: (p.Lng - f.Origin.Lng) * f.PixelsPerDeg,
		Y: (f.Origin.Lat - p.Lat) * f.PixelsPerDeg,
	}
}

func (f *Fake) Unproject(v r2.Vec) geo.LatLng {
	return geo.LatLng{
		Lat: f.Origin.Lat - v.Y/f.PixelsPerDeg,
		Lng: f.Origin.Lng + v.X/f.PixelsPerDeg,
	}
}

func (f *Fake) ViewSize() r2.Vec { return f.View }

func (f *Fake) Center() geo.LatLng {
	return f.Unproject(r2.Vec{X: f.View.X / 2, Y: f.View.Y / 2})
}

func (f *Fake) SetCursor(c Cursor)              { f.Cursor = c }
func (f *Fake) SetPanEnabled(on bool)           { f.PanOn = on }
func (f *Fake) SetOverlay(n string, o *Overlay) { f.Overlays[n] = o }
func (f *Fake) ClearOverlay(n string)           { delete(f.Overlays, n) }

func (f *Fake) AddGroup(g *Group) {
	f.Groups[g.LayerID] = g
	f.AddOrder = append(f.AddOrder, g.LayerID)
}

func (f *Fake) RemoveGroup(layerID string) {
	delete(f.Groups, layerID)
}

func (f *Fake) AddRaster(id, urlTemplate string)       { f.Rasters[id] = urlTemplate }
func (f *Fake) RemoveRaster(id string)                 { delete(f.Rasters, id) }
func (f *Fake) SetRasterZIndex(id string, z int)       { f.RasterZ[id] = z }
func (f *Fake) SetRasterOpacity(id string, op float64) { f.RasterOp[id] = op }

func (f *Fake) Capture() (image.Image, float64, error) {
	if f.OnCapture != nil {
		f.OnCapture()
	}
	if f.CaptureErr != nil {
		return nil, 0, f.CaptureErr
	}
	if f.CaptureImg != nil {
		return f.CaptureImg, 1.0, nil
	}
	return image.NewRGBA(image.Rect(0, 0, int(f.View.X), int(f.View.Y))), 1.0, nil
}

func (f *Fake) Refresh() { f.Refreshes++ }

// ResetAddOrder clears the recorded AddGroup sequence, keeping groups.
func (f *Fake) ResetAddOrder() { f.AddOrder = nil }
