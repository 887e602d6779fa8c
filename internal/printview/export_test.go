package printview

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/pkg/geo"
)

func TestExportWritesPaginatedDocument(t *testing.T) {
	c, _ := newTestController(t)
	c.Activate()

	path := filepath.Join(t.TempDir(), "map.png")
	err := c.Export(path, ExportOptions{Title: "Survey area", Description: "Field notes"})
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 1754, img.Bounds().Dx())
	assert.Equal(t, 1240, img.Bounds().Dy())
}

func TestExportWithoutFrameUsesFullCapture(t *testing.T) {
	c, surf := newTestController(t)
	surf.CaptureImg = image.NewRGBA(image.Rect(0, 0, 400, 300))

	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, c.Export(path, ExportOptions{Title: "t"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestExportCaptureFailureWritesNoFile(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()
	surf.CaptureErr = errors.New("renderer busy")

	path := filepath.Join(t.TempDir(), "map.png")
	err := c.Export(path, ExportOptions{Title: "t"})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	// The frame overlay is restored even though the capture failed.
	assert.Contains(t, surf.Overlays, "print-frame")
}

func TestExportFrameOutsideCanvasFails(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()
	// Drag the frame far off the captured raster.
	c.MoveCenter(geo.NewLatLng(6, -50))

	path := filepath.Join(t.TempDir(), "map.png")
	err := c.Export(path, ExportOptions{})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
	assert.Contains(t, surf.Overlays, "print-frame")
}

func TestExportRunsCaptureHooksOnAllPaths(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()

	var begins, ends int
	c.SetCaptureHooks(func() { begins++ }, func() { ends++ })

	dir := t.TempDir()
	require.NoError(t, c.Export(filepath.Join(dir, "ok.png"), ExportOptions{}))
	assert.Equal(t, 1, begins)
	assert.Equal(t, 1, ends)

	surf.CaptureErr = errors.New("renderer busy")
	require.Error(t, c.Export(filepath.Join(dir, "fail.png"), ExportOptions{}))
	assert.Equal(t, 2, begins)
	assert.Equal(t, 2, ends)
}

func TestExportClearsFrameDuringCaptureAndRestoresIt(t *testing.T) {
	c, surf := newTestController(t)
	c.Activate()

	sawFrame := true
	surf.OnCapture = func() {
		_, sawFrame = surf.Overlays["print-frame"]
	}

	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, c.Export(path, ExportOptions{}))
	assert.False(t, sawFrame)
	assert.Contains(t, surf.Overlays, "print-frame")
}
