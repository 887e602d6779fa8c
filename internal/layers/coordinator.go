// Package layers coordinates feature-layer order, visibility, opacity,
// and category filtering, and keeps the surface's group stack in sync
// with the sidebar order.
package layers

import (
	"image/color"

	"github.com/rs/zerolog"

	"geoedit/internal/record"
	"geoedit/internal/surface"
	"geoedit/pkg/colorutil"
	"geoedit/pkg/geo"
)

// LayerInfo describes one feature layer: the record table it renders,
// the geometry kind it holds, and how records are labeled and
// categorized.
type LayerInfo struct {
	ID            string
	Name          string
	Kind          geo.Kind
	LabelField    string
	CategoryField string
	Color         color.RGBA
}

// BaseLayer is one raster tile layer. Base layers stack below every
// feature group and keep their own order.
type BaseLayer struct {
	ID          string
	Name        string
	URLTemplate string
	Opacity     float64
}

// Coordinator owns the sidebar order and per-layer display state. All
// surface mutations go through Reconcile so the stacking invariant
// (sidebar top = drawn topmost) survives any content change.
type Coordinator struct {
	surf  surface.Surface
	store record.Store
	log   zerolog.Logger

	infos map[string]LayerInfo
	order []string // feature layer ids, sidebar top to bottom

	bases     map[string]BaseLayer
	baseOrder []string // base layer ids, index 0 = bottom

	hidden     map[string]bool
	opacity    map[string]float64
	hiddenCats map[string]map[string]bool

	onOrderChange func()
}

// NewCoordinator creates an empty coordinator over the given surface
// and store.
func NewCoordinator(surf surface.Surface, store record.Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		surf:       surf,
		store:      store,
		log:        log,
		infos:      make(map[string]LayerInfo),
		bases:      make(map[string]BaseLayer),
		hidden:     make(map[string]bool),
		opacity:    make(map[string]float64),
		hiddenCats: make(map[string]map[string]bool),
	}
}

// OnOrderChange registers the handler invoked after the sidebar order
// changes.
func (c *Coordinator) OnOrderChange(fn func()) { c.onOrderChange = fn }

// AddLayer registers a feature layer. A newly discovered layer joins
// the front of the sidebar order, so it renders topmost. Layers
// without an explicit color draw from the shared palette.
func (c *Coordinator) AddLayer(info LayerInfo) {
	if _, known := c.infos[info.ID]; !known {
		c.order = append([]string{info.ID}, c.order...)
	}
	if info.Color.A == 0 {
		info.Color = colorutil.LayerColor(len(c.infos))
	}
	c.infos[info.ID] = info
	c.Reconcile()
	c.notifyOrder()
}

// RemoveLayer unregisters a feature layer and drops its display state.
func (c *Coordinator) RemoveLayer(layerID string) {
	if _, known := c.infos[layerID]; !known {
		return
	}
	delete(c.infos, layerID)
	delete(c.hidden, layerID)
	delete(c.opacity, layerID)
	delete(c.hiddenCats, layerID)
	for i, id := range c.order {
		if id == layerID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.surf.RemoveGroup(layerID)
	c.Reconcile()
	c.notifyOrder()
}

// Layer returns the registered info for a layer id.
func (c *Coordinator) Layer(layerID string) (LayerInfo, bool) {
	info, ok := c.infos[layerID]
	return info, ok
}

// Order returns the sidebar order, top to bottom.
func (c *Coordinator) Order() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Layers returns the registered layers in sidebar order.
func (c *Coordinator) Layers() []LayerInfo {
	out := make([]LayerInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.infos[id])
	}
	return out
}

// Reorder moves the dragged layer to the drop target's position in the
// pre-drag order. Dropping [A,B,C]'s A onto C yields [B,C,A]: the
// dragged id is removed and reinserted at the index the target held
// before the removal.
func (c *Coordinator) Reorder(draggedID, targetID string) {
	if draggedID == targetID {
		return
	}
	dragIdx, targetIdx := -1, -1
	for i, id := range c.order {
		switch id {
		case draggedID:
			dragIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if dragIdx < 0 || targetIdx < 0 {
		return
	}

	c.order = append(c.order[:dragIdx], c.order[dragIdx+1:]...)
	if targetIdx > len(c.order) {
		targetIdx = len(c.order)
	}
	c.order = append(c.order[:targetIdx], append([]string{draggedID}, c.order[targetIdx:]...)...)

	c.Reconcile()
	c.notifyOrder()
}

// SetVisible toggles a whole feature layer.
func (c *Coordinator) SetVisible(layerID string, visible bool) {
	c.hidden[layerID] = !visible
	c.Reconcile()
}

// Visible reports whether a feature layer is shown.
func (c *Coordinator) Visible(layerID string) bool {
	return !c.hidden[layerID]
}

// SetOpacity sets a feature layer's render opacity, clamped to [0,1].
func (c *Coordinator) SetOpacity(layerID string, opacity float64) {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	c.opacity[layerID] = opacity
	c.Reconcile()
}

// Opacity returns a feature layer's opacity, defaulting to 1.
func (c *Coordinator) Opacity(layerID string) float64 {
	if op, ok := c.opacity[layerID]; ok {
		return op
	}
	return 1
}

// HideCategory filters records whose category field holds the given
// value out of the layer's render group. The records themselves are
// untouched.
func (c *Coordinator) HideCategory(layerID, value string) {
	if c.hiddenCats[layerID] == nil {
		c.hiddenCats[layerID] = make(map[string]bool)
	}
	c.hiddenCats[layerID][value] = true
	c.Reconcile()
}

// ShowCategory lifts a category filter.
func (c *Coordinator) ShowCategory(layerID, value string) {
	if cats := c.hiddenCats[layerID]; cats != nil {
		delete(cats, value)
	}
	c.Reconcile()
}

// CategoryHidden reports whether a category value is filtered.
func (c *Coordinator) CategoryHidden(layerID, value string) bool {
	return c.hiddenCats[layerID][value]
}

// AddBase registers a raster base layer on top of the existing base
// stack (but still below every feature group).
func (c *Coordinator) AddBase(base BaseLayer) {
	if _, known := c.bases[base.ID]; !known {
		c.baseOrder = append(c.baseOrder, base.ID)
		c.surf.AddRaster(base.ID, base.URLTemplate)
	}
	c.bases[base.ID] = base
	c.reconcileBases()
}

// RemoveBase unregisters a raster base layer.
func (c *Coordinator) RemoveBase(id string) {
	if _, known := c.bases[id]; !known {
		return
	}
	delete(c.bases, id)
	for i, bid := range c.baseOrder {
		if bid == id {
			c.baseOrder = append(c.baseOrder[:i], c.baseOrder[i+1:]...)
			break
		}
	}
	c.surf.RemoveRaster(id)
	c.reconcileBases()
}

// Bases returns the base layers, bottom to top.
func (c *Coordinator) Bases() []BaseLayer {
	out := make([]BaseLayer, 0, len(c.baseOrder))
	for _, id := range c.baseOrder {
		out = append(out, c.bases[id])
	}
	return out
}

// Invalidate re-syncs the surface after record content changed.
func (c *Coordinator) Invalidate() {
	c.Reconcile()
}

// Reconcile rebuilds the full group stack. Groups are removed and
// re-added in reverse sidebar order so the sidebar's top layer is the
// last added and therefore drawn topmost. A partial update cannot keep
// that invariant, so every change pays for a full rebuild.
func (c *Coordinator) Reconcile() {
	for _, id := range c.order {
		c.surf.RemoveGroup(id)
	}
	for i := len(c.order) - 1; i >= 0; i-- {
		id := c.order[i]
		if c.hidden[id] {
			continue
		}
		c.surf.AddGroup(c.buildGroup(c.infos[id]))
	}
	c.surf.Refresh()
}

func (c *Coordinator) reconcileBases() {
	for z, id := range c.baseOrder {
		c.surf.SetRasterZIndex(id, z)
		c.surf.SetRasterOpacity(id, c.bases[id].Opacity)
	}
	c.surf.Refresh()
}

// buildGroup materializes one layer's render group from the store,
// applying category filters.
func (c *Coordinator) buildGroup(info LayerInfo) *surface.Group {
	g := &surface.Group{LayerID: info.ID, Opacity: c.Opacity(info.ID)}

	hiddenCats := c.hiddenCats[info.ID]
	for _, rec := range c.store.List(info.ID) {
		if rec.Geometry == nil {
			continue
		}
		if info.CategoryField != "" && hiddenCats[rec.Attr(info.CategoryField)] {
			continue
		}
		g.Features = append(g.Features, surface.Feature{
			ID:       rec.ID,
			Geometry: rec.Geometry.Clone(),
			Style:    surface.Style{Color: info.Color, Weight: 2, Opacity: 1},
			Label:    c.RecordLabel(rec),
		})
	}
	return g
}

// VisibleLayers returns the shown feature layers in sidebar order.
func (c *Coordinator) VisibleLayers() []string {
	out := make([]string, 0, len(c.order))
	for _, id := range c.order {
		if !c.hidden[id] {
			out = append(out, id)
		}
	}
	return out
}

// LayerKind returns the geometry kind a layer holds.
func (c *Coordinator) LayerKind(layerID string) (geo.Kind, bool) {
	info, ok := c.infos[layerID]
	return info.Kind, ok
}

// RecordLabel resolves a record's display label through its layer's
// label field, falling back to the record id.
func (c *Coordinator) RecordLabel(rec *record.Record) string {
	if info, ok := c.infos[rec.TableID]; ok && info.LabelField != "" {
		if label := rec.Attr(info.LabelField); label != "" {
			return label
		}
	}
	return rec.ID
}

func (c *Coordinator) notifyOrder() {
	if c.onOrderChange != nil {
		c.onOrderChange()
	}
}
