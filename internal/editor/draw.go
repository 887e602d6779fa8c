package editor

import (
	"image/color"

	"geoedit/internal/surface"
	"geoedit/pkg/geo"
)

// coincidentEps is the coordinate tolerance, in degrees, below which
// two captured vertices count as the same point. Double-clicks on real
// surfaces deliver a click at the same position first.
const coincidentEps = 1e-9

// DrawSession holds the ephemeral state of an in-progress line or
// polygon capture: the vertices placed so far, a redo buffer of popped
// vertices, and the last known cursor position for rubber-banding.
// Point geometry never opens a session.
type DrawSession struct {
	kind     geo.Kind
	vertices []geo.LatLng
	redo     []geo.LatLng
	cursor   *geo.LatLng
}

// NewDrawSession creates an empty session for the given geometry kind.
func NewDrawSession(kind geo.Kind) *DrawSession {
	return &DrawSession{kind: kind}
}

// Kind returns the target geometry kind.
func (s *DrawSession) Kind() geo.Kind {
	return s.kind
}

// AddVertex appends a vertex. Placing a new vertex invalidates any
// previously popped vertices: the redo buffer is cleared.
func (s *DrawSession) AddVertex(p geo.LatLng) {
	s.vertices = append(s.vertices, p)
	s.redo = nil
}

// UndoVertex pops the most recent vertex onto the redo buffer.
// No-op when the session is empty.
func (s *DrawSession) UndoVertex() bool {
	if len(s.vertices) == 0 {
		return false
	}
	last := s.vertices[len(s.vertices)-1]
	s.vertices = s.vertices[:len(s.vertices)-1]
	s.redo = append(s.redo, last)
	return true
}

// RedoVertex restores the most recently undone vertex.
// No-op when the redo buffer is empty.
func (s *DrawSession) RedoVertex() bool {
	if len(s.redo) == 0 {
		return false
	}
	last := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.vertices = append(s.vertices, last)
	return true
}

// SetCursor records the current cursor position for rubber-banding.
func (s *DrawSession) SetCursor(p geo.LatLng) {
	s.cursor = &p
}

// ClearCursor forgets the cursor position.
func (s *DrawSession) ClearCursor() {
	s.cursor = nil
}

// Vertices returns a copy of the captured vertices.
func (s *DrawSession) Vertices() []geo.LatLng {
	out := make([]geo.LatLng, len(s.vertices))
	copy(out, s.vertices)
	return out
}

// Empty reports whether no vertices are captured.
func (s *DrawSession) Empty() bool {
	return len(s.vertices) == 0
}

// Commit finalizes the session into a geometry. A terminal vertex
// coincident with its predecessor is dropped first, then the kind's
// minimum vertex count is enforced. On failure the session is
// preserved so the user may continue; on success it is cleared
// immediately so no stale preview survives.
func (s *DrawSession) Commit() (geo.Geometry, error) {
	coords := make([]geo.LatLng, len(s.vertices))
	copy(coords, s.vertices)

	if n := len(coords); n >= 2 && coords[n-1].Equal(coords[n-2], coincidentEps) {
		coords = coords[:n-1]
	}

	if need := s.kind.MinVertices(); len(coords) < need {
		return geo.Geometry{}, NewIncompleteGeometryError(s.kind.String(), len(coords), need)
	}

	g := geo.Geometry{Kind: s.kind, Coords: coords}
	s.vertices = nil
	s.redo = nil
	s.cursor = nil
	return g, nil
}

// Cancel discards the session and redo buffer unconditionally.
func (s *DrawSession) Cancel() {
	s.vertices = nil
	s.redo = nil
	s.cursor = nil
}

// PreviewOverlay builds the live preview: a marker per captured
// vertex, a solid path through them, a dashed rubber-band segment to
// the cursor, and for polygon sessions with at least two vertices a
// faint dashed closing segment from the cursor back to the first
// vertex.
func (s *DrawSession) PreviewOverlay(col color.RGBA) *surface.Overlay {
	ov := &surface.Overlay{Color: col}

	for _, v := range s.vertices {
		ov.Markers = append(ov.Markers, surface.Marker{At: v, Radius: 4, Filled: true})
	}

	if len(s.vertices) >= 2 {
		ov.Paths = append(ov.Paths, surface.Path{Points: s.Vertices(), Thickness: 2})
	}

	if s.cursor != nil && len(s.vertices) > 0 {
		last := s.vertices[len(s.vertices)-1]
		ov.Paths = append(ov.Paths, surface.Path{
			Points:    []geo.LatLng{last, *s.cursor},
			Dashed:    true,
			Thickness: 2,
		})

		if s.kind == geo.KindPolygon && len(s.vertices) >= 2 {
			ov.Paths = append(ov.Paths, surface.Path{
				Points:    []geo.LatLng{*s.cursor, s.vertices[0]},
				Dashed:    true,
				Faint:     true,
				Thickness: 1,
			})
		}
	}

	return ov
}
