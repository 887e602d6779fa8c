package editor

import (
	"geoedit/internal/record"
	"geoedit/internal/surface"
	"geoedit/pkg/colorutil"
	"geoedit/pkg/geo"
)

// overlayQueryRect names the box-query rectangle overlay.
const overlayQueryRect = "query-rect"

var queryColor = colorutil.Orange

// QueryHit is one record matched by a box query.
type QueryHit struct {
	RecordID string
	LayerID  string
	Label    string
}

// BoxQuery drags a rectangle over the map and materializes the set of
// visible records inside it. While the anchor is held, canvas panning
// is disabled so the drag draws the rectangle instead of moving the
// map.
type BoxQuery struct {
	surf   surface.Surface
	store  record.Store
	layers LayerView

	anchor  *geo.LatLng
	rect    *geo.Bounds
	results []QueryHit
}

// NewBoxQuery creates an idle query engine.
func NewBoxQuery(surf surface.Surface, store record.Store, layers LayerView) *BoxQuery {
	return &BoxQuery{surf: surf, store: store, layers: layers}
}

// Begin records the anchor point, disables panning, and discards any
// prior result set.
func (q *BoxQuery) Begin(p geo.LatLng) {
	q.anchor = &p
	q.rect = nil
	q.results = nil
	q.surf.SetPanEnabled(false)
	q.surf.ClearOverlay(overlayQueryRect)
}

// Move redraws the rectangle between the anchor and the cursor.
// No-op when no anchor is set.
func (q *BoxQuery) Move(p geo.LatLng) {
	if q.anchor == nil {
		return
	}
	b := geo.NewBounds(*q.anchor, p)
	q.rect = &b
	q.surf.SetOverlay(overlayQueryRect, &surface.Overlay{
		Rects: []geo.Bounds{b},
		Color: queryColor,
	})
}

// End re-enables panning, clears the anchor, and evaluates containment
// over the currently visible record set. An empty result removes the
// rectangle and returns an EmptyQueryResult error; a non-empty result
// keeps the rectangle on the surface alongside the hits.
func (q *BoxQuery) End(p geo.LatLng) ([]QueryHit, error) {
	q.surf.SetPanEnabled(true)
	if q.anchor == nil {
		return nil, nil
	}
	b := geo.NewBounds(*q.anchor, p)
	q.rect = &b
	q.anchor = nil

	q.results = q.evaluate(b)
	if len(q.results) == 0 {
		q.surf.ClearOverlay(overlayQueryRect)
		q.rect = nil
		return nil, NewEmptyQueryResultError()
	}
	return q.results, nil
}

// Results returns the materialized result set from the last query.
func (q *BoxQuery) Results() []QueryHit {
	return q.results
}

// Clear dismisses the result set and removes the rectangle.
func (q *BoxQuery) Clear() {
	q.anchor = nil
	q.rect = nil
	q.results = nil
	q.surf.SetPanEnabled(true)
	q.surf.ClearOverlay(overlayQueryRect)
}

// evaluate tests every record of every visible layer against the
// rectangle. Point geometry is tested directly; line and polygon
// geometry is approximated by testing only the first vertex. That is a
// deliberate fidelity choice, not a true intersection test: a long
// feature whose first vertex lies outside the box is missed.
func (q *BoxQuery) evaluate(b geo.Bounds) []QueryHit {
	var hits []QueryHit
	for _, layerID := range q.layers.VisibleLayers() {
		for _, rec := range q.store.List(layerID) {
			if rec.Geometry == nil {
				continue
			}
			v, ok := rec.Geometry.FirstVertex()
			if !ok || !b.Contains(v) {
				continue
			}
			hits = append(hits, QueryHit{
				RecordID: rec.ID,
				LayerID:  layerID,
				Label:    q.layers.RecordLabel(rec),
			})
		}
	}
	return hits
}
