package editor

import (
	"fmt"
	"image/color"

	"geoedit/internal/surface"
	"geoedit/pkg/geo"
)

// MeasureMode selects what a measurement session computes.
type MeasureMode int

const (
	MeasureDistance MeasureMode = iota
	MeasureArea
)

func (m MeasureMode) String() string {
	if m == MeasureArea {
		return "area"
	}
	return "distance"
}

// MeasureReadout is the live measurement display state. All values are
// metric base units: meters for distance, square meters for area.
type MeasureReadout struct {
	Mode      MeasureMode
	Committed float64 // sum over captured vertices only
	Segment   float64 // provisional last-vertex-to-cursor distance
	Running   float64 // committed plus provisional
}

// MeasureSession accumulates vertices for distance or area
// measurement. Derived totals are recomputed on every vertex addition
// and cursor movement; the cursor contribution is preview only.
type MeasureSession struct {
	mode     MeasureMode
	vertices []geo.LatLng
	cursor   *geo.LatLng
}

// NewMeasureSession creates an empty distance-mode session.
func NewMeasureSession() *MeasureSession {
	return &MeasureSession{mode: MeasureDistance}
}

// Mode returns the current sub-mode.
func (s *MeasureSession) Mode() MeasureMode {
	return s.mode
}

// SetMode switches between distance and area. The switch is only
// allowed while no vertices are captured; it resets the accumulators.
func (s *MeasureSession) SetMode(mode MeasureMode) bool {
	if len(s.vertices) > 0 {
		return false
	}
	s.mode = mode
	s.cursor = nil
	return true
}

// AddVertex captures a vertex.
func (s *MeasureSession) AddVertex(p geo.LatLng) {
	s.vertices = append(s.vertices, p)
}

// SetCursor records the cursor position for the live preview.
func (s *MeasureSession) SetCursor(p geo.LatLng) {
	s.cursor = &p
}

// Clear empties the vertex list and resets the accumulators. The
// sub-mode is unchanged.
func (s *MeasureSession) Clear() {
	s.vertices = nil
	s.cursor = nil
}

// Empty reports whether no vertices are captured.
func (s *MeasureSession) Empty() bool {
	return len(s.vertices) == 0
}

// Readout computes the current totals. In distance mode the running
// total includes the provisional segment from the last vertex to the
// cursor; in area mode the cursor is drawn but never counted until a
// vertex is actually placed.
func (s *MeasureSession) Readout() MeasureReadout {
	r := MeasureReadout{Mode: s.mode}

	switch s.mode {
	case MeasureDistance:
		r.Committed = geo.PathLength(s.vertices)
		if s.cursor != nil && len(s.vertices) > 0 {
			r.Segment = geo.Distance(s.vertices[len(s.vertices)-1], *s.cursor)
		}
		r.Running = r.Committed + r.Segment
	case MeasureArea:
		r.Committed = geo.RingArea(s.vertices)
		r.Running = r.Committed
	}
	return r
}

// PreviewOverlay builds the measurement preview: vertex markers, the
// solid captured path, and dashed preview edges through the cursor.
// Area sessions close the preview loop back to the first vertex.
func (s *MeasureSession) PreviewOverlay(col color.RGBA) *surface.Overlay {
	ov := &surface.Overlay{Color: col}

	for _, v := range s.vertices {
		ov.Markers = append(ov.Markers, surface.Marker{At: v, Radius: 4, Filled: true})
	}
	if len(s.vertices) >= 2 {
		pts := make([]geo.LatLng, len(s.vertices))
		copy(pts, s.vertices)
		ov.Paths = append(ov.Paths, surface.Path{Points: pts, Thickness: 2})
	}

	if s.cursor != nil && len(s.vertices) > 0 {
		last := s.vertices[len(s.vertices)-1]
		ov.Paths = append(ov.Paths, surface.Path{
			Points:    []geo.LatLng{last, *s.cursor},
			Dashed:    true,
			Thickness: 2,
		})
		if s.mode == MeasureArea && len(s.vertices) >= 2 {
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

// FormatDistance renders a distance in meters: whole meters below
// 1,000 m, kilometers with two decimals above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatArea renders an area in square meters: whole m² below
// 10,000 m², hectares with two decimals to 1,000,000 m², square
// kilometers with two decimals above.
func FormatArea(sqMeters float64) string {
	switch {
	case sqMeters < 1e4:
		return fmt.Sprintf("%.0f m²", sqMeters)
	case sqMeters < 1e6:
		return fmt.Sprintf("%.2f ha", sqMeters/1e4)
	default:
		return fmt.Sprintf("%.2f km²", sqMeters/1e6)
	}
}
