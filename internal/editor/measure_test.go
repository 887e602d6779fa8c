package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/pkg/geo"
)

func TestMeasureModeSwitchOnlyWhenEmpty(t *testing.T) {
	s := NewMeasureSession()
	require.True(t, s.SetMode(MeasureArea))
	assert.Equal(t, MeasureArea, s.Mode())

	s.AddVertex(geo.NewLatLng(0, 0))
	assert.False(t, s.SetMode(MeasureDistance))
	assert.Equal(t, MeasureArea, s.Mode())

	s.Clear()
	assert.True(t, s.SetMode(MeasureDistance))
}

func TestMeasureClearKeepsMode(t *testing.T) {
	s := NewMeasureSession()
	require.True(t, s.SetMode(MeasureArea))
	s.AddVertex(geo.NewLatLng(0, 0))
	s.Clear()

	assert.True(t, s.Empty())
	assert.Equal(t, MeasureArea, s.Mode())
	assert.Zero(t, s.Readout().Running)
}

func TestMeasureDistanceRunningIncludesCursorSegment(t *testing.T) {
	s := NewMeasureSession()
	s.AddVertex(geo.NewLatLng(0, 0))
	s.AddVertex(geo.NewLatLng(0, 1))
	s.SetCursor(geo.NewLatLng(0, 2))

	r := s.Readout()
	oneDegree := geo.Distance(geo.NewLatLng(0, 0), geo.NewLatLng(0, 1))
	assert.InDelta(t, oneDegree, r.Committed, 1)
	assert.InDelta(t, oneDegree, r.Segment, 1)
	assert.InDelta(t, r.Committed+r.Segment, r.Running, 0.001)
}

func TestMeasureAreaIgnoresCursor(t *testing.T) {
	s := NewMeasureSession()
	require.True(t, s.SetMode(MeasureArea))
	s.AddVertex(geo.NewLatLng(0, 0))
	s.AddVertex(geo.NewLatLng(0, 1))
	s.AddVertex(geo.NewLatLng(1, 1))
	committed := s.Readout().Running
	require.Positive(t, committed)

	s.SetCursor(geo.NewLatLng(5, 5))
	assert.Equal(t, committed, s.Readout().Running)
	assert.Zero(t, s.Readout().Segment)
}

func TestMeasureAreaBelowThreeVerticesIsZero(t *testing.T) {
	s := NewMeasureSession()
	require.True(t, s.SetMode(MeasureArea))
	s.AddVertex(geo.NewLatLng(0, 0))
	s.AddVertex(geo.NewLatLng(0, 1))

	assert.Zero(t, s.Readout().Running)
}

func TestMeasurePreviewClosesAreaLoop(t *testing.T) {
	s := NewMeasureSession()
	require.True(t, s.SetMode(MeasureArea))
	s.AddVertex(geo.NewLatLng(0, 0))
	s.AddVertex(geo.NewLatLng(0, 1))
	s.SetCursor(geo.NewLatLng(1, 1))

	ov := s.PreviewOverlay(queryColor)
	require.Len(t, ov.Paths, 3)
	assert.True(t, ov.Paths[2].Faint)
	// The closing edge runs from the cursor back to the first vertex.
	require.Len(t, ov.Paths[2].Points, 2)
	assert.True(t, ov.Paths[2].Points[1].Equal(geo.NewLatLng(0, 0), 1e-9))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "0 m", FormatDistance(0))
	assert.Equal(t, "847 m", FormatDistance(847.3))
	assert.Equal(t, "1.00 km", FormatDistance(1000))
	assert.Equal(t, "12.35 km", FormatDistance(12345))
}

func TestFormatArea(t *testing.T) {
	assert.Equal(t, "0 m²", FormatArea(0))
	assert.Equal(t, "9500 m²", FormatArea(9500))
	assert.Equal(t, "1.00 ha", FormatArea(1e4))
	assert.Equal(t, "42.50 ha", FormatArea(425000))
	assert.Equal(t, "1.00 km²", FormatArea(1e6))
	assert.Equal(t, "2.50 km²", FormatArea(2.5e6))
}
