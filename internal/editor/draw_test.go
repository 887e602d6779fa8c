package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/pkg/colorutil"
	"geoedit/pkg/geo"
)

func TestDrawUndoAllVerticesLeavesSessionEmpty(t *testing.T) {
	s := NewDrawSession(geo.KindLine)
	s.AddVertex(geo.NewLatLng(1, 1))
	s.AddVertex(geo.NewLatLng(2, 2))
	s.AddVertex(geo.NewLatLng(3, 3))

	assert.True(t, s.UndoVertex())
	assert.True(t, s.UndoVertex())
	assert.True(t, s.UndoVertex())
	assert.True(t, s.Empty())

	// Undo past the beginning is a no-op, not an error.
	assert.False(t, s.UndoVertex())
}

func TestDrawRedoRestoresInReverseOrder(t *testing.T) {
	s := NewDrawSession(geo.KindLine)
	a, b := geo.NewLatLng(1, 1), geo.NewLatLng(2, 2)
	s.AddVertex(a)
	s.AddVertex(b)
	s.UndoVertex()
	s.UndoVertex()

	require.True(t, s.RedoVertex())
	require.True(t, s.RedoVertex())
	assert.False(t, s.RedoVertex())

	verts := s.Vertices()
	require.Len(t, verts, 2)
	assert.True(t, verts[0].Equal(a, 1e-9))
	assert.True(t, verts[1].Equal(b, 1e-9))
}

func TestDrawNewVertexClearsRedoBuffer(t *testing.T) {
	s := NewDrawSession(geo.KindLine)
	s.AddVertex(geo.NewLatLng(1, 1))
	s.AddVertex(geo.NewLatLng(2, 2))
	s.UndoVertex()

	s.AddVertex(geo.NewLatLng(5, 5))
	assert.False(t, s.RedoVertex())
	assert.Len(t, s.Vertices(), 2)
}

func TestDrawCommitRejectsShortLine(t *testing.T) {
	s := NewDrawSession(geo.KindLine)
	s.AddVertex(geo.NewLatLng(1, 1))

	_, err := s.Commit()
	require.Error(t, err)
	assert.True(t, IsIncompleteGeometry(err))

	// The failed commit preserves the session untouched.
	assert.Len(t, s.Vertices(), 1)
}

func TestDrawCommitRejectsLineOfTwoCoincidentVertices(t *testing.T) {
	s := NewDrawSession(geo.KindLine)
	p := geo.NewLatLng(1, 1)
	s.AddVertex(p)
	s.AddVertex(p)

	_, err := s.Commit()
	require.Error(t, err)
	assert.True(t, IsIncompleteGeometry(err))
	assert.Len(t, s.Vertices(), 2)
}

func TestDrawCommitDropsTerminalDuplicate(t *testing.T) {
	s := NewDrawSession(geo.KindPolygon)
	a, b, c := geo.NewLatLng(0, 0), geo.NewLatLng(0, 1), geo.NewLatLng(1, 0)
	s.AddVertex(a)
	s.AddVertex(b)
	s.AddVertex(c)
	s.AddVertex(c)

	g, err := s.Commit()
	require.NoError(t, err)
	assert.Equal(t, geo.KindPolygon, g.Kind)
	require.Len(t, g.Coords, 3)
	assert.True(t, g.Coords[2].Equal(c, 1e-9))
}

func TestDrawCommitClearsSessionOnSuccess(t *testing.T) {
	s := NewDrawSession(geo.KindLine)
	s.AddVertex(geo.NewLatLng(1, 1))
	s.AddVertex(geo.NewLatLng(2, 2))
	s.SetCursor(geo.NewLatLng(3, 3))

	_, err := s.Commit()
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.False(t, s.RedoVertex())
}

func TestDrawPreviewRubberBandAndPolygonClosure(t *testing.T) {
	s := NewDrawSession(geo.KindPolygon)
	s.AddVertex(geo.NewLatLng(0, 0))
	s.AddVertex(geo.NewLatLng(0, 1))
	s.SetCursor(geo.NewLatLng(1, 1))

	ov := s.PreviewOverlay(colorutil.Blue)
	assert.Len(t, ov.Markers, 2)
	// Solid captured path, dashed rubber band, faint closing edge.
	require.Len(t, ov.Paths, 3)
	assert.False(t, ov.Paths[0].Dashed)
	assert.True(t, ov.Paths[1].Dashed)
	assert.True(t, ov.Paths[2].Dashed)
	assert.True(t, ov.Paths[2].Faint)
}
