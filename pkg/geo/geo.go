// Package geo provides geographic value types used throughout the application.
package geo

import (
	"fmt"
	"math"
)

// LatLng represents a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewLatLng creates a new LatLng.
func NewLatLng(lat, lng float64) LatLng {
	return LatLng{Lat: lat, Lng: lng}
}

// Add returns the coordinate translated by the given deltas.
func (p LatLng) Add(dLat, dLng float64) LatLng {
	return LatLng{Lat: p.Lat + dLat, Lng: p.Lng + dLng}
}

// Equal reports whether two coordinates are coincident within eps degrees.
func (p LatLng) Equal(other LatLng, eps float64) bool {
	return math.Abs(p.Lat-other.Lat) <= eps && math.Abs(p.Lng-other.Lng) <= eps
}

// Bounds describes a geographic rectangle (South,West) - (North,East).
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// NewBounds creates a normalized Bounds from two opposite corners.
func NewBounds(a, b LatLng) Bounds {
	return Bounds{
		South: math.Min(a.Lat, b.Lat),
		West:  math.Min(a.Lng, b.Lng),
		North: math.Max(a.Lat, b.Lat),
		East:  math.Max(a.Lng, b.Lng),
	}
}

// Contains returns true if the point lies inside the rectangle.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.South && p.Lat <= b.North &&
		p.Lng >= b.West && p.Lng <= b.East
}

// Center returns the center point of the rectangle.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Kind identifies the shape of a geometry.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindPolygon:
		return "polygon"
	default:
		return "unknown"
	}
}

// MinVertices returns the minimum vertex count for a valid geometry of this kind.
func (k Kind) MinVertices() int {
	switch k {
	case KindLine:
		return 2
	case KindPolygon:
		return 3
	default:
		return 1
	}
}

// Geometry is a tagged union of point, line, and polygon shapes.
// Polygons are stored as an open ring: the closing edge back to the
// first vertex is implied, never stored.
type Geometry struct {
	Kind   Kind     `json:"kind"`
	Coords []LatLng `json:"coords"`
}

// NewPoint creates a point geometry.
func NewPoint(p LatLng) Geometry {
	return Geometry{Kind: KindPoint, Coords: []LatLng{p}}
}

// NewLine creates a line geometry from the given vertices.
func NewLine(coords ...LatLng) Geometry {
	return Geometry{Kind: KindLine, Coords: coords}
}

// NewPolygon creates a polygon geometry from the given open ring.
func NewPolygon(coords ...LatLng) Geometry {
	return Geometry{Kind: KindPolygon, Coords: coords}
}

// Clone returns a structural deep copy of the geometry.
func (g Geometry) Clone() Geometry {
	coords := make([]LatLng, len(g.Coords))
	copy(coords, g.Coords)
	return Geometry{Kind: g.Kind, Coords: coords}
}

// FirstVertex returns the first vertex, or false for an empty geometry.
func (g Geometry) FirstVertex() (LatLng, bool) {
	if len(g.Coords) == 0 {
		return LatLng{}, false
	}
	return g.Coords[0], true
}

// Translate returns a copy with every vertex shifted by the same
// lat/lng delta. This is only locally accurate; large shapes spanning
// significant latitude distort.
func (g Geometry) Translate(dLat, dLng float64) Geometry {
	out := g.Clone()
	for i, c := range out.Coords {
		out.Coords[i] = c.Add(dLat, dLng)
	}
	return out
}

// Validate checks the vertex count against the geometry kind.
func (g Geometry) Validate() error {
	if n := len(g.Coords); n < g.Kind.MinVertices() {
		return fmt.Errorf("%s geometry needs at least %d vertices, got %d",
			g.Kind, g.Kind.MinVertices(), n)
	}
	return nil
}

// BoundingBox computes the axis-aligned geographic bounding box of the
// geometry's vertices.
func (g Geometry) BoundingBox() Bounds {
	if len(g.Coords) == 0 {
		return Bounds{}
	}
	b := Bounds{
		South: g.Coords[0].Lat, North: g.Coords[0].Lat,
		West: g.Coords[0].Lng, East: g.Coords[0].Lng,
	}
	for _, c := range g.Coords[1:] {
		b.South = math.Min(b.South, c.Lat)
		b.North = math.Max(b.North, c.Lat)
		b.West = math.Min(b.West, c.Lng)
		b.East = math.Max(b.East, c.Lng)
	}
	return b
}

// Centroid computes the average position of the geometry's vertices.
func (g Geometry) Centroid() LatLng {
	if len(g.Coords) == 0 {
		return LatLng{}
	}
	var sumLat, sumLng float64
	for _, c := range g.Coords {
		sumLat += c.Lat
		sumLng += c.Lng
	}
	n := float64(len(g.Coords))
	return LatLng{Lat: sumLat / n, Lng: sumLng / n}
}
