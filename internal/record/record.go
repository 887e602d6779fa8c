// Package record defines the typed record model and the store contract
// the editing core mutates geometry through. The store is owned by the
// host application; the core only reads records and requests mutations.
package record

import (
	"time"

	"geoedit/pkg/geo"
)

// Record is a typed row with optional geometry. Attributes carry the
// host-defined schema values; the core never interprets them beyond
// label and category lookups.
type Record struct {
	ID         string         `json:"id"`
	TableID    string         `json:"tableId"`
	Geometry   *geo.Geometry  `json:"geometry,omitempty"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	if r.Geometry != nil {
		g := r.Geometry.Clone()
		out.Geometry = &g
	}
	out.Attributes = make(map[string]any, len(r.Attributes))
	for k, v := range r.Attributes {
		out.Attributes[k] = v
	}
	return &out
}

// Attr returns a string attribute value, or "" when absent or non-string.
func (r *Record) Attr(key string) string {
	if r.Attributes == nil {
		return ""
	}
	if s, ok := r.Attributes[key].(string); ok {
		return s
	}
	return ""
}

// Store is the record persistence contract. All operations are
// synchronous and atomic from the core's perspective: a mutation is
// visible to the next List call.
type Store interface {
	// List returns the records of one table. Callers must not mutate
	// the returned records in place.
	List(tableID string) []*Record

	// Get returns a record by id, or nil when unknown.
	Get(id string) *Record

	// Add inserts a record, assigning an ID when empty.
	Add(rec *Record) error

	// Update replaces a record by ID.
	Update(rec *Record) error

	// Delete removes a record by ID.
	Delete(id string) error
}
