package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/internal/logger"
	"geoedit/internal/printview"
	"geoedit/internal/record"
	"geoedit/internal/surface"
	"geoedit/pkg/geo"
)

// fakeLayers is a canned LayerView for tests.
type fakeLayers struct {
	visible []string
	kinds   map[string]geo.Kind
}

func (f *fakeLayers) VisibleLayers() []string { return f.visible }

func (f *fakeLayers) LayerKind(layerID string) (geo.Kind, bool) {
	k, ok := f.kinds[layerID]
	return k, ok
}

func (f *fakeLayers) RecordLabel(rec *record.Record) string {
	if name := rec.Attr("name"); name != "" {
		return name
	}
	return rec.ID
}

func newTestEditor(t *testing.T) (*Editor, *surface.Fake, *record.MemStore, *fakeLayers) {
	t.Helper()
	surf := surface.NewFake()
	store := record.NewMemStore()
	layers := &fakeLayers{
		visible: []string{"roads", "parcels", "poi"},
		kinds: map[string]geo.Kind{
			"roads":   geo.KindLine,
			"parcels": geo.KindPolygon,
			"poi":     geo.KindPoint,
		},
	}
	log := logger.Nop()
	print := printview.NewController(surf, log)
	ed := New(surf, store, layers, print, log)
	return ed, surf, store, layers
}

func addRecord(t *testing.T, store record.Store, tableID string, g geo.Geometry) *record.Record {
	t.Helper()
	rec := &record.Record{TableID: tableID, Geometry: &g}
	require.NoError(t, store.Add(rec))
	return rec
}

func TestEditorStartsInSelectMode(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)

	assert.Equal(t, ModeSelect, ed.Mode())
	assert.True(t, surf.PanOn)
}

func TestSetModeNotifiesAndSetsCursor(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)

	var got []Mode
	ed.OnModeChange(func(m Mode) { got = append(got, m) })

	ed.SetMode(ModeAdd)
	assert.Equal(t, surface.CursorCrosshair, surf.Cursor)

	ed.SetMode(ModeMove)
	assert.Equal(t, surface.CursorMove, surf.Cursor)

	ed.SetMode(ModeSelect)
	assert.Equal(t, surface.CursorDefault, surf.Cursor)

	assert.Equal(t, []Mode{ModeAdd, ModeMove, ModeSelect}, got)
}

func TestSetModeSameModeIsNoOp(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)

	calls := 0
	ed.OnModeChange(func(Mode) { calls++ })

	ed.SetMode(ModeSelect)
	assert.Zero(t, calls)
}

func TestLeavingAddModeDiscardsDraft(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)
	ed.SetTargetLayer("roads")
	ed.SetMode(ModeAdd)

	ed.Click(geo.NewLatLng(5, 5))
	require.NotNil(t, ed.Session())
	require.Contains(t, surf.Overlays, "draw-preview")

	ed.SetMode(ModeSelect)
	assert.Nil(t, ed.Session())
	assert.NotContains(t, surf.Overlays, "draw-preview")
}

func TestLeavingFilterModeClearsResultsAndRectangle(t *testing.T) {
	ed, surf, store, _ := newTestEditor(t)
	addRecord(t, store, "poi", geo.NewPoint(geo.NewLatLng(5, 5)))

	var results []QueryHit
	ed.OnQueryResults(func(hits []QueryHit) { results = hits })

	ed.SetMode(ModeFilter)
	ed.PointerDown(geo.NewLatLng(4, 4))
	ed.PointerMove(geo.NewLatLng(6, 6))
	ed.PointerUp(geo.NewLatLng(6, 6))

	require.Len(t, results, 1)
	require.Contains(t, surf.Overlays, "query-rect")

	ed.SetMode(ModeSelect)
	assert.Nil(t, results)
	assert.Empty(t, ed.QueryResults())
	assert.NotContains(t, surf.Overlays, "query-rect")
}

func TestEnteringNonMoveModeClearsMoveHistory(t *testing.T) {
	ed, _, store, _ := newTestEditor(t)
	rec := addRecord(t, store, "poi", geo.NewPoint(geo.NewLatLng(5, 5)))

	ed.SetMode(ModeMove)
	require.True(t, ed.BeginHandleDrag(rec.ID, HandleFeature, 0, geo.NewLatLng(5, 5)))
	ed.EndHandleDrag(geo.NewLatLng(6, 6))
	require.True(t, ed.History().CanUndo())

	ed.SetMode(ModeSelect)
	assert.False(t, ed.History().CanUndo())
	assert.False(t, ed.History().CanRedo())
}

func TestAddClickWithoutTargetLayerRaisesNotice(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)

	var notice *EditError
	ed.OnNotice(func(e *EditError) { notice = e })

	ed.SetMode(ModeAdd)
	ed.Click(geo.NewLatLng(5, 5))

	require.NotNil(t, notice)
	assert.Equal(t, ErrCodeNoTargetLayer, notice.Code)
	assert.Nil(t, ed.Session())
}

func TestAddClickOnPointLayerGoesStraightToAttributes(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)

	var req *AttributeRequest
	ed.OnAttributeEntry(func(r AttributeRequest) { req = &r })

	ed.SetTargetLayer("poi")
	ed.SetMode(ModeAdd)
	ed.Click(geo.NewLatLng(5, 5))

	require.NotNil(t, req)
	assert.Equal(t, "poi", req.LayerID)
	assert.Equal(t, geo.KindPoint, req.Geometry.Kind)
	require.Len(t, req.Geometry.Coords, 1)
	assert.True(t, req.Geometry.Coords[0].Equal(geo.NewLatLng(5, 5), 1e-9))
	assert.Nil(t, ed.Session())
}

func TestDoubleClickCommitsLineAndRequestsAttributes(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)

	var req *AttributeRequest
	ed.OnAttributeEntry(func(r AttributeRequest) { req = &r })

	ed.SetTargetLayer("roads")
	ed.SetMode(ModeAdd)
	ed.Click(geo.NewLatLng(5, 5))
	ed.Click(geo.NewLatLng(6, 6))
	// The click preceding the double-click lands on the same spot.
	ed.Click(geo.NewLatLng(6, 6))
	ed.DoubleClick(geo.NewLatLng(6, 6))

	require.NotNil(t, req)
	assert.Equal(t, geo.KindLine, req.Geometry.Kind)
	assert.Len(t, req.Geometry.Coords, 2)
	assert.NotContains(t, surf.Overlays, "draw-preview")
}

func TestIncompleteCommitKeepsSessionAlive(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)

	var notice *EditError
	ed.OnNotice(func(e *EditError) { notice = e })

	ed.SetTargetLayer("parcels")
	ed.SetMode(ModeAdd)
	ed.Click(geo.NewLatLng(5, 5))
	ed.Click(geo.NewLatLng(6, 6))
	ed.DoubleClick(geo.NewLatLng(6, 6))

	require.NotNil(t, notice)
	assert.True(t, IsIncompleteGeometry(notice))
	require.NotNil(t, ed.Session())
	assert.Len(t, ed.Session().Vertices(), 2)

	// Adding the missing vertex lets the next commit succeed.
	var req *AttributeRequest
	ed.OnAttributeEntry(func(r AttributeRequest) { req = &r })
	ed.Click(geo.NewLatLng(7, 5))
	ed.DoubleClick(geo.NewLatLng(7, 5))
	require.NotNil(t, req)
	assert.Equal(t, geo.KindPolygon, req.Geometry.Kind)
}

func TestSwitchingTargetLayerDiscardsDraft(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)
	ed.SetTargetLayer("roads")
	ed.SetMode(ModeAdd)
	ed.Click(geo.NewLatLng(5, 5))
	require.Len(t, ed.Session().Vertices(), 1)

	ed.SetTargetLayer("parcels")
	require.NotNil(t, ed.Session())
	assert.Empty(t, ed.Session().Vertices())
	assert.Equal(t, geo.KindPolygon, ed.Session().Kind())
}

func TestUndoRedoRouteToDraftInAddMode(t *testing.T) {
	ed, _, _, _ := newTestEditor(t)
	ed.SetTargetLayer("roads")
	ed.SetMode(ModeAdd)
	ed.Click(geo.NewLatLng(5, 5))
	ed.Click(geo.NewLatLng(6, 6))

	ed.Undo()
	assert.Len(t, ed.Session().Vertices(), 1)
	ed.Redo()
	assert.Len(t, ed.Session().Vertices(), 2)
}

func TestHandleDragMovesVertexAndRecordsHistory(t *testing.T) {
	ed, _, store, _ := newTestEditor(t)
	rec := addRecord(t, store, "roads", geo.NewLine(
		geo.NewLatLng(1, 1), geo.NewLatLng(2, 2),
	))

	var canUndo, canRedo bool
	ed.OnHistoryChange(func(u, r bool) { canUndo, canRedo = u, r })

	ed.SetMode(ModeMove)
	require.True(t, ed.BeginHandleDrag(rec.ID, HandleVertex, 1, geo.NewLatLng(2, 2)))
	ed.EndHandleDrag(geo.NewLatLng(3, 4))

	moved := store.Get(rec.ID)
	require.NotNil(t, moved)
	assert.True(t, moved.Geometry.Coords[0].Equal(geo.NewLatLng(1, 1), 1e-9))
	assert.True(t, moved.Geometry.Coords[1].Equal(geo.NewLatLng(3, 4), 1e-9))
	assert.True(t, canUndo)
	assert.False(t, canRedo)
}

func TestCenterHandleDragTranslatesWholeGeometry(t *testing.T) {
	ed, _, store, _ := newTestEditor(t)
	rec := addRecord(t, store, "parcels", geo.NewPolygon(
		geo.NewLatLng(0, 0), geo.NewLatLng(0, 2), geo.NewLatLng(2, 1),
	))

	ed.SetMode(ModeMove)
	require.True(t, ed.BeginHandleDrag(rec.ID, HandleCenter, 0, geo.NewLatLng(1, 1)))
	ed.EndHandleDrag(geo.NewLatLng(2, 3))

	moved := store.Get(rec.ID)
	require.NotNil(t, moved)
	assert.True(t, moved.Geometry.Coords[0].Equal(geo.NewLatLng(1, 2), 1e-9))
	assert.True(t, moved.Geometry.Coords[1].Equal(geo.NewLatLng(1, 4), 1e-9))
	assert.True(t, moved.Geometry.Coords[2].Equal(geo.NewLatLng(3, 3), 1e-9))
}

func TestHandleDragRejectedOutsideMoveMode(t *testing.T) {
	ed, _, store, _ := newTestEditor(t)
	rec := addRecord(t, store, "poi", geo.NewPoint(geo.NewLatLng(5, 5)))

	assert.False(t, ed.BeginHandleDrag(rec.ID, HandleFeature, 0, geo.NewLatLng(5, 5)))
}

func TestSaveClearsBothHistoryStacks(t *testing.T) {
	ed, _, store, _ := newTestEditor(t)
	rec := addRecord(t, store, "poi", geo.NewPoint(geo.NewLatLng(5, 5)))

	ed.SetMode(ModeMove)
	require.True(t, ed.BeginHandleDrag(rec.ID, HandleFeature, 0, geo.NewLatLng(5, 5)))
	ed.EndHandleDrag(geo.NewLatLng(6, 6))
	ed.Undo()
	require.True(t, ed.History().CanRedo())

	ed.Save()
	assert.False(t, ed.History().CanUndo())
	assert.False(t, ed.History().CanRedo())

	// The store keeps the state it had at save time.
	saved := store.Get(rec.ID)
	require.NotNil(t, saved)
	assert.True(t, saved.Geometry.Coords[0].Equal(geo.NewLatLng(5, 5), 1e-9))
}

func TestPrintModeShowsFrameAndDragsHandle(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)

	ed.SetMode(ModePrint)
	require.True(t, ed.Print().Active())
	require.Contains(t, surf.Overlays, "print-frame")

	center, ok := ed.Print().Center()
	require.True(t, ok)

	ed.PointerDown(center)
	assert.False(t, surf.PanOn)

	target := geo.NewLatLng(7, 3)
	ed.PointerMove(target)
	ed.PointerUp(target)
	assert.True(t, surf.PanOn)

	moved, ok := ed.Print().Center()
	require.True(t, ok)
	assert.True(t, moved.Equal(target, 1e-9))

	ed.SetMode(ModeSelect)
	assert.False(t, ed.Print().Active())
	assert.NotContains(t, surf.Overlays, "print-frame")
}

func TestPrintDragIgnoredAwayFromHandle(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)
	ed.SetMode(ModePrint)

	center, ok := ed.Print().Center()
	require.True(t, ok)

	// Press well outside the handle radius.
	far := center.Add(2, 2)
	ed.PointerDown(far)
	assert.True(t, surf.PanOn)

	ed.PointerMove(geo.NewLatLng(0, 0))
	moved, _ := ed.Print().Center()
	assert.True(t, moved.Equal(center, 1e-9))
}

func TestExportFailureSurfacesNotice(t *testing.T) {
	ed, surf, _, _ := newTestEditor(t)
	surf.CaptureErr = assert.AnError

	var notice *EditError
	ed.OnNotice(func(e *EditError) { notice = e })

	ed.SetMode(ModePrint)
	err := ed.ExportPrint(t.TempDir()+"/out.png", printview.ExportOptions{Title: "t"})

	require.Error(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, ErrCodeExportFailure, notice.Code)
	// The frame overlay is restored after the failed attempt.
	assert.Contains(t, surf.Overlays, "print-frame")
}
