// Package editor implements the interactive map-editing core: the
// exclusive tool mode state machine and the drawing, measurement,
// box-query, and move-history subsystems it dispatches pointer events
// to.
package editor

import (
	"github.com/rs/zerolog"

	"geoedit/internal/printview"
	"geoedit/internal/record"
	"geoedit/internal/surface"
	"geoedit/pkg/colorutil"
	"geoedit/pkg/geo"
)

// Mode is the single currently active interaction behavior. Exactly
// one mode is active at a time.
type Mode int

const (
	ModeSelect Mode = iota
	ModeAdd
	ModeMove
	ModeMeasure
	ModeFilter
	ModePrint
)

func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeAdd:
		return "add"
	case ModeMove:
		return "move"
	case ModeMeasure:
		return "measure"
	case ModeFilter:
		return "filter"
	case ModePrint:
		return "print"
	default:
		return "unknown"
	}
}

// LayerView is the slice of the layer coordinator the editor needs:
// which layers are visible, what geometry kind a layer holds, and how
// to label a record for display.
type LayerView interface {
	VisibleLayers() []string
	LayerKind(layerID string) (geo.Kind, bool)
	RecordLabel(rec *record.Record) string
}

// AttributeRequest asks the surrounding UI to collect attributes for a
// finalized geometry and resolve them into a committed record.
type AttributeRequest struct {
	LayerID  string
	Geometry geo.Geometry
}

// HandleKind identifies what a move-mode drag grabbed.
type HandleKind int

const (
	// HandleVertex drags a single vertex of a line or polygon.
	HandleVertex HandleKind = iota
	// HandleFeature drags a whole point marker.
	HandleFeature
	// HandleCenter drags a polygon by its center handle, translating
	// every vertex by the same lat/lng delta.
	HandleCenter
)

// dragState is the snapshot taken at drag-start so drag-end can build
// a correct before/after pair even when drags chain rapidly.
type dragState struct {
	recordID    string
	kind        HandleKind
	vertexIndex int
	start       geo.LatLng
	prev        geo.Geometry
}

const (
	overlayDrawPreview    = "draw-preview"
	overlayMeasurePreview = "measure-preview"
)

// Editor is the tool mode controller. It owns pointer-event dispatch:
// every event goes to exactly one subsystem chosen by the current
// mode, and every mode transition runs the subsystem enter/exit
// lifecycle synchronously before the next event can be processed.
type Editor struct {
	surf   surface.Surface
	store  record.Store
	layers LayerView
	log    zerolog.Logger

	mode        Mode
	targetLayer string

	draw    *DrawSession
	measure *MeasureSession
	query   *BoxQuery
	history *History
	print   *printview.Controller

	drag          *dragState
	printDragging bool

	// Callbacks into the host application.
	onNotice         func(*EditError)
	onModeChange     func(Mode)
	onAttributeEntry func(AttributeRequest)
	onQueryResults   func([]QueryHit)
	onMeasureChange  func(MeasureReadout)
	onHistoryChange  func(canUndo, canRedo bool)
}

// New creates an editor in select mode.
func New(surf surface.Surface, store record.Store, layers LayerView, print *printview.Controller, log zerolog.Logger) *Editor {
	return &Editor{
		surf:    surf,
		store:   store,
		layers:  layers,
		log:     log,
		mode:    ModeSelect,
		measure: NewMeasureSession(),
		query:   NewBoxQuery(surf, store, layers),
		history: NewHistory(store),
		print:   print,
	}
}

// OnNotice registers the handler for recoverable edit errors surfaced
// to the user.
func (ed *Editor) OnNotice(fn func(*EditError)) { ed.onNotice = fn }

// OnModeChange registers the handler invoked after a mode transition.
func (ed *Editor) OnModeChange(fn func(Mode)) { ed.onModeChange = fn }

// OnAttributeEntry registers the handler for attribute-entry requests.
func (ed *Editor) OnAttributeEntry(fn func(AttributeRequest)) { ed.onAttributeEntry = fn }

// OnQueryResults registers the handler for box-query result sets.
func (ed *Editor) OnQueryResults(fn func([]QueryHit)) { ed.onQueryResults = fn }

// OnMeasureChange registers the handler for live measurement readouts.
func (ed *Editor) OnMeasureChange(fn func(MeasureReadout)) { ed.onMeasureChange = fn }

// OnHistoryChange registers the handler for undo/redo availability.
func (ed *Editor) OnHistoryChange(fn func(canUndo, canRedo bool)) { ed.onHistoryChange = fn }

// Mode returns the active tool mode.
func (ed *Editor) Mode() Mode { return ed.mode }

// SetMode transitions to a new tool mode, running exit hooks for the
// old mode and enter hooks for the new one. All resets are synchronous.
func (ed *Editor) SetMode(m Mode) {
	if m == ed.mode {
		return
	}
	prev := ed.mode
	ed.exitMode(prev)
	ed.mode = m
	ed.enterMode(m)

	ed.log.Debug().Stringer("from", prev).Stringer("to", m).Msg("tool mode changed")
	if ed.onModeChange != nil {
		ed.onModeChange(m)
	}
}

// exitMode tears down artifacts owned by the mode being left.
func (ed *Editor) exitMode(prev Mode) {
	switch prev {
	case ModeFilter:
		ed.query.Clear()
		if ed.onQueryResults != nil {
			ed.onQueryResults(nil)
		}
	case ModePrint:
		ed.printDragging = false
		ed.surf.SetPanEnabled(true)
		ed.print.Deactivate()
	case ModeMove:
		ed.drag = nil
	}
}

// enterMode resets the shared sessions and initializes the new mode.
// Move keeps its history stacks across entry; every other mode clears
// them.
func (ed *Editor) enterMode(m Mode) {
	ed.resetDraw()
	ed.measure.Clear()
	ed.surf.ClearOverlay(overlayMeasurePreview)

	if m != ModeMove {
		ed.history.Checkpoint()
		ed.emitHistoryChange()
	}

	switch m {
	case ModeAdd, ModeMeasure, ModeFilter:
		ed.surf.SetCursor(surface.CursorCrosshair)
	case ModeMove, ModePrint:
		ed.surf.SetCursor(surface.CursorMove)
	default:
		ed.surf.SetCursor(surface.CursorDefault)
	}

	if m == ModePrint {
		ed.print.Activate()
	}
}

// SetTargetLayer selects the layer new features are added to. While in
// add mode, any in-progress session is discarded and a fresh one
// opened for the layer's geometry kind.
func (ed *Editor) SetTargetLayer(layerID string) {
	ed.targetLayer = layerID
	if ed.mode == ModeAdd {
		ed.resetDraw()
	}
}

// TargetLayer returns the selected target layer id, or "".
func (ed *Editor) TargetLayer() string { return ed.targetLayer }

// Session returns the active drawing session, or nil.
func (ed *Editor) Session() *DrawSession { return ed.draw }

// Measurement returns the measurement session.
func (ed *Editor) Measurement() *MeasureSession { return ed.measure }

// QueryResults returns the materialized result set of the last box
// query.
func (ed *Editor) QueryResults() []QueryHit { return ed.query.Results() }

// ClearQuery dismisses the box-query result set and rectangle.
func (ed *Editor) ClearQuery() {
	ed.query.Clear()
	if ed.onQueryResults != nil {
		ed.onQueryResults(nil)
	}
}

// Print returns the print viewport controller.
func (ed *Editor) Print() *printview.Controller { return ed.print }

// resetDraw destroys the current drawing session and opens a fresh one
// when add mode has a line- or polygon-kind target layer. Point-kind
// targets never hold a session.
func (ed *Editor) resetDraw() {
	if ed.draw != nil {
		ed.draw.Cancel()
	}
	ed.draw = nil
	ed.surf.ClearOverlay(overlayDrawPreview)

	if ed.mode != ModeAdd || ed.targetLayer == "" {
		return
	}
	if kind, ok := ed.layers.LayerKind(ed.targetLayer); ok && kind != geo.KindPoint {
		ed.draw = NewDrawSession(kind)
	}
}

// Click dispatches a primary click to the active subsystem.
func (ed *Editor) Click(p geo.LatLng) {
	switch ed.mode {
	case ModeAdd:
		ed.addVertex(p)
	case ModeMeasure:
		ed.measure.AddVertex(p)
		ed.updateMeasurePreview()
	}
}

// DoubleClick finishes the in-progress drawing session in add mode.
// The commit's coincident-vertex guard absorbs the click event that
// precedes a double-click on real surfaces.
func (ed *Editor) DoubleClick(p geo.LatLng) {
	if ed.mode == ModeAdd {
		ed.CommitDraw()
	}
}

// PointerDown dispatches a press. In filter mode it anchors the query
// rectangle; in print mode it grabs the viewport handle when the press
// lands on it.
func (ed *Editor) PointerDown(p geo.LatLng) {
	switch ed.mode {
	case ModeFilter:
		ed.query.Begin(p)
	case ModePrint:
		if ed.hitPrintHandle(p) {
			ed.printDragging = true
			ed.surf.SetPanEnabled(false)
		}
	}
}

// PointerMove dispatches cursor movement to the active subsystem.
func (ed *Editor) PointerMove(p geo.LatLng) {
	switch ed.mode {
	case ModeAdd:
		if ed.draw != nil {
			ed.draw.SetCursor(p)
			ed.updateDrawPreview()
		}
	case ModeMeasure:
		ed.measure.SetCursor(p)
		ed.updateMeasurePreview()
	case ModeFilter:
		ed.query.Move(p)
	case ModePrint:
		if ed.printDragging {
			ed.print.MoveCenter(p)
		}
	}
}

// PointerUp dispatches a release. In filter mode it evaluates the
// query; in print mode it drops the viewport handle.
func (ed *Editor) PointerUp(p geo.LatLng) {
	switch ed.mode {
	case ModeFilter:
		hits, err := ed.query.End(p)
		if err != nil {
			ed.noticeErr(err)
		}
		if ed.onQueryResults != nil {
			ed.onQueryResults(hits)
		}
	case ModePrint:
		if ed.printDragging {
			ed.printDragging = false
			ed.surf.SetPanEnabled(true)
		}
	}
}

// addVertex captures a vertex in add mode. Point-kind layers go
// straight to attribute entry with no session.
func (ed *Editor) addVertex(p geo.LatLng) {
	if ed.targetLayer == "" {
		ed.notice(NewNoTargetLayerError())
		return
	}

	kind, ok := ed.layers.LayerKind(ed.targetLayer)
	if !ok {
		ed.notice(NewNoTargetLayerError())
		return
	}

	if kind == geo.KindPoint {
		ed.requestAttributes(geo.NewPoint(p))
		return
	}

	if ed.draw == nil {
		ed.draw = NewDrawSession(kind)
	}
	ed.draw.AddVertex(p)
	ed.updateDrawPreview()
}

// CommitDraw finalizes the drawing session. On incomplete geometry the
// session and its preview are preserved so the user may continue.
func (ed *Editor) CommitDraw() {
	if ed.draw == nil || ed.draw.Empty() {
		return
	}
	g, err := ed.draw.Commit()
	if err != nil {
		ed.noticeErr(err)
		return
	}
	ed.surf.ClearOverlay(overlayDrawPreview)
	ed.requestAttributes(g)
}

// CancelDraw discards the drawing session unconditionally.
func (ed *Editor) CancelDraw() {
	if ed.draw == nil {
		return
	}
	ed.draw.Cancel()
	ed.surf.ClearOverlay(overlayDrawPreview)
}

// Undo routes to the subsystem the current mode edits with: vertex
// undo while drawing, move-history undo while moving.
func (ed *Editor) Undo() {
	switch ed.mode {
	case ModeAdd:
		if ed.draw != nil && ed.draw.UndoVertex() {
			ed.updateDrawPreview()
		}
	case ModeMove:
		if ed.history.Undo() {
			ed.emitHistoryChange()
		}
	}
}

// Redo is the mirror of Undo.
func (ed *Editor) Redo() {
	switch ed.mode {
	case ModeAdd:
		if ed.draw != nil && ed.draw.RedoVertex() {
			ed.updateDrawPreview()
		}
	case ModeMove:
		if ed.history.Redo() {
			ed.emitHistoryChange()
		}
	}
}

// Save checkpoints the move history: both stacks clear, the store is
// untouched.
func (ed *Editor) Save() {
	ed.history.Checkpoint()
	ed.emitHistoryChange()
}

// History returns the move-history engine.
func (ed *Editor) History() *History { return ed.history }

// SetMeasureMode switches the measurement sub-mode. Only allowed while
// no vertices are captured.
func (ed *Editor) SetMeasureMode(m MeasureMode) bool {
	if !ed.measure.SetMode(m) {
		return false
	}
	ed.updateMeasurePreview()
	return true
}

// ClearMeasure empties the measurement session without changing its
// sub-mode.
func (ed *Editor) ClearMeasure() {
	ed.measure.Clear()
	ed.updateMeasurePreview()
}

// BeginHandleDrag snapshots a record's geometry at drag-start. Only
// valid in move mode; the snapshot is a structural deep copy so
// chained drags each capture a correct before state.
func (ed *Editor) BeginHandleDrag(recordID string, kind HandleKind, vertexIndex int, at geo.LatLng) bool {
	if ed.mode != ModeMove {
		return false
	}
	rec := ed.store.Get(recordID)
	if rec == nil || rec.Geometry == nil {
		return false
	}
	ed.drag = &dragState{
		recordID:    recordID,
		kind:        kind,
		vertexIndex: vertexIndex,
		start:       at,
		prev:        rec.Geometry.Clone(),
	}
	return true
}

// EndHandleDrag commits the drag: the new geometry is computed from
// the lat/lng delta between drag-start and drag-end, written to the
// store, and pushed onto the move history.
func (ed *Editor) EndHandleDrag(at geo.LatLng) {
	if ed.drag == nil {
		return
	}
	d := ed.drag
	ed.drag = nil

	dLat := at.Lat - d.start.Lat
	dLng := at.Lng - d.start.Lng

	var next geo.Geometry
	switch d.kind {
	case HandleVertex:
		next = d.prev.Clone()
		if d.vertexIndex < 0 || d.vertexIndex >= len(next.Coords) {
			return
		}
		next.Coords[d.vertexIndex] = next.Coords[d.vertexIndex].Add(dLat, dLng)
	default:
		next = d.prev.Translate(dLat, dLng)
	}

	rec := ed.store.Get(d.recordID)
	if rec == nil {
		return
	}
	applied := next.Clone()
	rec.Geometry = &applied
	if err := ed.store.Update(rec); err != nil {
		ed.log.Warn().Err(err).Str("record", d.recordID).Msg("move commit rejected by store")
		return
	}

	ed.history.Push(Action{RecordID: d.recordID, Prev: d.prev, Next: next})
	ed.emitHistoryChange()
}

// ExportPrint captures and writes the print document, surfacing any
// failure as an export notice. Tool mode and store state are untouched
// on failure.
func (ed *Editor) ExportPrint(path string, opts printview.ExportOptions) error {
	if err := ed.print.Export(path, opts); err != nil {
		ee := NewExportFailureError(err)
		ed.notice(ee)
		return ee
	}
	return nil
}

func (ed *Editor) hitPrintHandle(p geo.LatLng) bool {
	center, ok := ed.print.Center()
	if !ok {
		return false
	}
	a := ed.surf.Project(p)
	b := ed.surf.Project(center)
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx+dy*dy <= printview.HandleRadius*printview.HandleRadius
}

func (ed *Editor) updateDrawPreview() {
	if ed.draw == nil {
		ed.surf.ClearOverlay(overlayDrawPreview)
		return
	}
	ed.surf.SetOverlay(overlayDrawPreview, ed.draw.PreviewOverlay(colorutil.Blue))
}

func (ed *Editor) updateMeasurePreview() {
	if ed.measure.Empty() {
		ed.surf.ClearOverlay(overlayMeasurePreview)
	} else {
		ed.surf.SetOverlay(overlayMeasurePreview, ed.measure.PreviewOverlay(colorutil.Green))
	}
	if ed.onMeasureChange != nil {
		ed.onMeasureChange(ed.measure.Readout())
	}
}

func (ed *Editor) requestAttributes(g geo.Geometry) {
	if ed.onAttributeEntry != nil {
		ed.onAttributeEntry(AttributeRequest{LayerID: ed.targetLayer, Geometry: g})
	}
}

func (ed *Editor) emitHistoryChange() {
	if ed.onHistoryChange != nil {
		ed.onHistoryChange(ed.history.CanUndo(), ed.history.CanRedo())
	}
}

func (ed *Editor) notice(e *EditError) {
	ed.log.Debug().Str("code", string(e.Code)).Msg(e.Message)
	if ed.onNotice != nil {
		ed.onNotice(e)
	}
}

func (ed *Editor) noticeErr(err error) {
	if ee, ok := err.(*EditError); ok {
		ed.notice(ee)
		return
	}
	ed.log.Warn().Err(err).Msg("unexpected edit failure")
}
