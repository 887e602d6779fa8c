package surface

import (
	"image/color"

	"geoedit/pkg/geo"
)

// Overlay is a named set of ephemeral drawables layered above all
// feature groups: session previews, query rectangles, print frames.
type Overlay struct {
	Markers []Marker
	Paths   []Path
	Rects   []geo.Bounds
	Color   color.RGBA
}

// Marker is a circular handle drawn at a geographic position.
type Marker struct {
	At     geo.LatLng
	Radius int // pixels
	Filled bool
}

// Path is a polyline through geographic positions. Dashed paths render
// with a dash pattern; faint paths render at reduced opacity, used for
// the polygon closing-loop preview.
type Path struct {
	Points    []geo.LatLng
	Dashed    bool
	Faint     bool
	Thickness int
}
