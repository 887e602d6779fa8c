package mainwindow

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoedit/internal/app"
	"geoedit/internal/layers"
	"geoedit/internal/logger"
	"geoedit/internal/printview"
	"geoedit/pkg/geo"
	"geoedit/ui/mapcanvas"
)

func newTestWindow(t *testing.T) (*MainWindow, *app.State) {
	t.Helper()
	fyneApp := test.NewApp()

	mapc := mapcanvas.New(geo.NewLatLng(52, 5), 12, logger.Nop())
	state := app.NewState(mapc, logger.Nop())
	state.Layers.AddLayer(layers.LayerInfo{
		ID:         "poi",
		Name:       "Points of Interest",
		Kind:       geo.KindPoint,
		LabelField: "name",
	})

	return New(fyneApp, state, mapc), state
}

func TestCaptureHooksHideAndRestoreControls(t *testing.T) {
	mw, _ := newTestWindow(t)

	require.True(t, mw.toolbar.Visible())
	require.True(t, mw.sidebar.Visible())

	mw.beginExportCapture()
	assert.False(t, mw.toolbar.Visible())
	assert.False(t, mw.sidebar.Visible())

	mw.endExportCapture()
	assert.True(t, mw.toolbar.Visible())
	assert.True(t, mw.sidebar.Visible())
}

// visibilityRecorder counts Hide/Show calls on a wrapped control.
type visibilityRecorder struct {
	fyne.CanvasObject
	hides, shows int
}

func (r *visibilityRecorder) Hide() { r.hides++; r.CanvasObject.Hide() }
func (r *visibilityRecorder) Show() { r.shows++; r.CanvasObject.Show() }

func TestExportHidesControlsAndRestoresThem(t *testing.T) {
	mw, state := newTestWindow(t)
	rec := &visibilityRecorder{CanvasObject: mw.toolbar}
	mw.toolbar = rec

	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, state.Editor.ExportPrint(path, printview.ExportOptions{Title: "t"}))

	assert.FileExists(t, path)
	assert.Equal(t, 1, rec.hides)
	assert.Equal(t, 1, rec.shows)
	assert.True(t, mw.toolbar.Visible())
	assert.True(t, mw.sidebar.Visible())
}
