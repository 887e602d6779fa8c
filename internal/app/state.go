// Package app wires the editing subsystems together and provides the
// application event bus the UI reacts to.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"geoedit/internal/editor"
	"geoedit/internal/layers"
	"geoedit/internal/printview"
	"geoedit/internal/record"
	"geoedit/internal/surface"
)

// EventType identifies different application events.
type EventType int

const (
	EventModeChanged EventType = iota
	EventNoticePosted
	EventQueryResults
	EventMeasureUpdated
	EventHistoryChanged
	EventLayerOrderChanged
	EventRecordsChanged
	EventAttributeEntry
	EventTargetLayerChanged
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application wiring: the record store, the layer
// coordinator, the editor, and the listener registry. Editor callbacks
// are forwarded onto the bus so UI panels subscribe to events instead
// of holding references into the core.
type State struct {
	mu sync.RWMutex

	Store  record.Store
	Layers *layers.Coordinator
	Editor *editor.Editor
	Print  *printview.Controller

	Modified bool

	listeners map[EventType][]EventListener
}

// NewState builds the full subsystem graph over the given surface and
// bridges editor callbacks onto the event bus.
func NewState(surf surface.Surface, log zerolog.Logger) *State {
	store := record.NewMemStore()
	coord := layers.NewCoordinator(surf, store, log)
	print := printview.NewController(surf, log)
	ed := editor.New(surf, store, coord, print, log)

	s := &State{
		Store:     store,
		Layers:    coord,
		Editor:    ed,
		Print:     print,
		listeners: make(map[EventType][]EventListener),
	}

	ed.OnModeChange(func(m editor.Mode) { s.Emit(EventModeChanged, m) })
	ed.OnNotice(func(e *editor.EditError) { s.Emit(EventNoticePosted, e) })
	ed.OnQueryResults(func(hits []editor.QueryHit) { s.Emit(EventQueryResults, hits) })
	ed.OnMeasureChange(func(r editor.MeasureReadout) { s.Emit(EventMeasureUpdated, r) })
	ed.OnHistoryChange(func(canUndo, canRedo bool) {
		s.Emit(EventHistoryChanged, [2]bool{canUndo, canRedo})
	})
	ed.OnAttributeEntry(func(req editor.AttributeRequest) { s.Emit(EventAttributeEntry, req) })
	coord.OnOrderChange(func() { s.Emit(EventLayerOrderChanged, nil) })

	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks unsaved edits and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// SetTargetLayer routes the sidebar's layer selection to the editor.
func (s *State) SetTargetLayer(layerID string) {
	s.Editor.SetTargetLayer(layerID)
	s.Emit(EventTargetLayerChanged, layerID)
}

// CommitRecord resolves an attribute-entry request into a stored
// record and refreshes the render stack.
func (s *State) CommitRecord(req editor.AttributeRequest, attrs map[string]interface{}) (*record.Record, error) {
	g := req.Geometry.Clone()
	rec := &record.Record{
		TableID:    req.LayerID,
		Geometry:   &g,
		Attributes: attrs,
	}
	if err := s.Store.Add(rec); err != nil {
		return nil, err
	}

	s.Layers.Invalidate()
	s.SetModified(true)
	s.Emit(EventRecordsChanged, rec)
	return rec, nil
}

// DeleteRecord removes a record and refreshes the render stack.
func (s *State) DeleteRecord(id string) error {
	if err := s.Store.Delete(id); err != nil {
		return err
	}
	s.Layers.Invalidate()
	s.SetModified(true)
	s.Emit(EventRecordsChanged, nil)
	return nil
}

// Save checkpoints the move history and clears the modified flag.
func (s *State) Save() {
	s.Editor.Save()
	s.SetModified(false)
}
