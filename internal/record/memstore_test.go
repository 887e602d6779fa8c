package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/pkg/geo"
)

func pointRec(table string, lat, lng float64) *Record {
	g := geo.NewPoint(geo.NewLatLng(lat, lng))
	return &Record{
		TableID:    table,
		Geometry:   &g,
		Attributes: map[string]any{"name": "x"},
	}
}

func TestMemStore_AddAssignsID(t *testing.T) {
	s := NewMemStore()
	rec := pointRec("trees", 10, 10)

	require.NoError(t, s.Add(rec))
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestMemStore_ListIsOrderedAndCopied(t *testing.T) {
	s := NewMemStore()
	a := pointRec("trees", 1, 1)
	b := pointRec("trees", 2, 2)
	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))

	got := s.List("trees")
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	// Mutating a listed record must not leak into the store.
	got[0].Geometry.Coords[0] = geo.LatLng{Lat: 99, Lng: 99}
	assert.Equal(t, geo.LatLng{Lat: 1, Lng: 1}, s.Get(a.ID).Geometry.Coords[0])
}

func TestMemStore_UpdateReplacesGeometry(t *testing.T) {
	s := NewMemStore()
	rec := pointRec("trees", 1, 1)
	require.NoError(t, s.Add(rec))

	moved := rec.Clone()
	moved.Geometry.Coords[0] = geo.LatLng{Lat: 5, Lng: 5}
	require.NoError(t, s.Update(moved))

	got := s.Get(rec.ID)
	assert.Equal(t, geo.LatLng{Lat: 5, Lng: 5}, got.Geometry.Coords[0])
	assert.Equal(t, rec.CreatedAt, got.CreatedAt)
}

func TestMemStore_UpdateUnknown(t *testing.T) {
	s := NewMemStore()
	assert.Error(t, s.Update(pointRec("trees", 1, 1)))
}

func TestMemStore_Delete(t *testing.T) {
	s := NewMemStore()
	rec := pointRec("trees", 1, 1)
	require.NoError(t, s.Add(rec))

	require.NoError(t, s.Delete(rec.ID))
	assert.Nil(t, s.Get(rec.ID))
	assert.Empty(t, s.List("trees"))
	assert.Error(t, s.Delete(rec.ID))
}
