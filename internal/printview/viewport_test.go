package printview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/internal/logger"
	"geoedit/internal/surface"
	"geoedit/pkg/geo"
)

func newTestController(t *testing.T) (*Controller, *surface.Fake) {
	t.Helper()
	surf := surface.NewFake()
	return NewController(surf, logger.Nop()), surf
}

func TestActivateCentersFrameOnMapCenter(t *testing.T) {
	c, surf := newTestController(t)
	require.False(t, c.Active())

	c.Activate()
	require.True(t, c.Active())

	center, ok := c.Center()
	require.True(t, ok)
	assert.True(t, center.Equal(surf.Center(), 1e-9))
	assert.Contains(t, surf.Overlays, "print-frame")
}

func TestFramePixelSizeFollowsViewAndPageRatio(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()

	b, ok := c.Bounds()
	require.True(t, ok)

	// Height is 60% of the 800 px view; width follows 297/210.
	tl := surf.Project(geo.NewLatLng(b.North, b.West))
	br := surf.Project(geo.NewLatLng(b.South, b.East))
	assert.InDelta(t, 480, br.Y-tl.Y, 0.01)
	assert.InDelta(t, 480*PageRatio, br.X-tl.X, 0.01)
}

func TestFrameIsZoomInvariantInPixels(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()

	coarse, ok := c.Bounds()
	require.True(t, ok)

	// Zooming in shrinks the geographic footprint but not the pixel box.
	surf.PixelsPerDeg = 200
	fine, ok := c.Bounds()
	require.True(t, ok)

	assert.Less(t, fine.North-fine.South, coarse.North-coarse.South)

	tl := surf.Project(geo.NewLatLng(fine.North, fine.West))
	br := surf.Project(geo.NewLatLng(fine.South, fine.East))
	assert.InDelta(t, 480, br.Y-tl.Y, 0.01)
}

func TestMoveCenterRecentersFrame(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()

	target := geo.NewLatLng(8, 2)
	c.MoveCenter(target)

	center, ok := c.Center()
	require.True(t, ok)
	assert.True(t, center.Equal(target, 1e-9))

	b, ok := c.Bounds()
	require.True(t, ok)
	assert.True(t, b.Center().Equal(target, 1e-6))

	ov := surf.Overlays["print-frame"]
	require.NotNil(t, ov)
	require.Len(t, ov.Markers, 1)
	assert.True(t, ov.Markers[0].At.Equal(target, 1e-9))
}

func TestMoveCenterInactiveIsNoOp(t *testing.T) {
	c, surf := newTestController(t)

	c.MoveCenter(geo.NewLatLng(8, 2))
	assert.False(t, c.Active())
	assert.NotContains(t, surf.Overlays, "print-frame")
}

func TestDeactivateRemovesFrame(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()
	c.Deactivate()

	assert.False(t, c.Active())
	assert.NotContains(t, surf.Overlays, "print-frame")
	_, ok := c.Bounds()
	assert.False(t, ok)
}
