// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"geoedit/internal/app"
	"geoedit/internal/editor"
	"geoedit/internal/printview"
	"geoedit/internal/version"
	"geoedit/pkg/geo"
	"geoedit/ui/mapcanvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const prefKeyLastDir = "lastDirectory"

// handleHitRadius is the pixel pick tolerance for move-mode handles.
const handleHitRadius = 8

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app          fyne.App
	state        *app.State
	mapc         *mapcanvas.MapCanvas
	statusBar    *widget.Label
	readout      *widget.Label
	toolbar      fyne.CanvasObject
	sidebar      fyne.CanvasObject
	layerList    *widget.List
	targetSelect *widget.Select
	results      []editor.QueryHit
	resultsList  *widget.List

	modeButtons map[editor.Mode]*widget.Button

	// Menu items that need state tracking
	undoItem *fyne.MenuItem
	redoItem *fyne.MenuItem
	mainMenu *fyne.MainMenu

	// dragging is true while a move-mode handle drag is in flight.
	dragging bool
}

// New creates a new main window around an already-wired state and map
// canvas.
func New(fyneApp fyne.App, state *app.State, mapc *mapcanvas.MapCanvas) *MainWindow {
	win := fyneApp.NewWindow("GeoEdit")

	mw := &MainWindow{
		Window:      win,
		app:         fyneApp,
		state:       state,
		mapc:        mapc,
		modeButtons: make(map[editor.Mode]*widget.Button),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupCanvasHandlers()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.statusBar = widget.NewLabel("Ready")
	mw.readout = widget.NewLabel("")

	mw.toolbar = mw.createToolbar()
	mw.sidebar = mw.createSidebar()

	canvasArea := container.NewBorder(
		mw.toolbar, // top
		nil,        // bottom
		nil,        // left
		nil,        // right
		mw.mapc,    // center
	)

	split := container.NewHSplit(mw.sidebar, canvasArea)
	split.SetOffset(0.22)

	statusRow := container.NewBorder(nil, nil, nil, mw.readout, mw.statusBar)

	content := container.NewBorder(
		nil,                            // top
		container.NewPadded(statusRow), // bottom
		nil,                            // left
		nil,                            // right
		split,                          // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 720))

	// Editing controls go away while the canvas is being captured for
	// export; the controller restores them on every path.
	mw.state.Print.SetCaptureHooks(mw.beginExportCapture, mw.endExportCapture)
}

func (mw *MainWindow) beginExportCapture() {
	mw.toolbar.Hide()
	mw.sidebar.Hide()
}

func (mw *MainWindow) endExportCapture() {
	mw.toolbar.Show()
	mw.sidebar.Show()
}

// createToolbar creates the mode buttons and edit actions.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	modes := []struct {
		mode  editor.Mode
		label string
	}{
		{editor.ModeSelect, "Select"},
		{editor.ModeAdd, "Add"},
		{editor.ModeMove, "Move"},
		{editor.ModeMeasure, "Measure"},
		{editor.ModeFilter, "Filter"},
		{editor.ModePrint, "Print"},
	}

	row := container.NewHBox()
	for _, m := range modes {
		mode := m.mode
		btn := widget.NewButton(m.label, func() {
			mw.state.Editor.SetMode(mode)
		})
		mw.modeButtons[mode] = btn
		row.Add(btn)
	}
	mw.highlightMode(editor.ModeSelect)

	areaCheck := widget.NewCheck("Area", func(on bool) {
		m := editor.MeasureDistance
		if on {
			m = editor.MeasureArea
		}
		if !mw.state.Editor.SetMeasureMode(m) {
			mw.updateStatus("Clear the measurement before switching mode")
		}
	})

	row.Add(widget.NewSeparator())
	row.Add(areaCheck)
	row.Add(widget.NewButton("Export...", mw.onExportMap))
	return row
}

// createSidebar builds the layer panel: target selector, stacked layer
// list with visibility and reorder controls, and query results.
func (mw *MainWindow) createSidebar() fyne.CanvasObject {
	mw.targetSelect = widget.NewSelect(mw.state.Layers.Order(), func(id string) {
		if id != mw.state.Editor.TargetLayer() {
			mw.state.SetTargetLayer(id)
		}
	})
	mw.targetSelect.PlaceHolder = "Target layer"

	mw.layerList = widget.NewList(
		func() int { return len(mw.state.Layers.Order()) },
		func() fyne.CanvasObject {
			check := widget.NewCheck("", nil)
			name := widget.NewLabel("layer")
			up := widget.NewButton("^", nil)
			down := widget.NewButton("v", nil)
			return container.NewBorder(nil, nil, check, container.NewHBox(up, down), name)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			order := mw.state.Layers.Order()
			if id >= len(order) {
				return
			}
			layerID := order[id]
			info, _ := mw.state.Layers.Layer(layerID)

			border := obj.(*fyne.Container)
			check := border.Objects[1].(*widget.Check)
			buttons := border.Objects[2].(*fyne.Container)
			name := border.Objects[0].(*widget.Label)

			name.SetText(info.Name)
			check.OnChanged = nil
			check.SetChecked(mw.state.Layers.Visible(layerID))
			check.OnChanged = func(on bool) {
				mw.state.Layers.SetVisible(layerID, on)
			}

			up := buttons.Objects[0].(*widget.Button)
			down := buttons.Objects[1].(*widget.Button)
			up.OnTapped = func() { mw.moveLayer(layerID, -1) }
			down.OnTapped = func() { mw.moveLayer(layerID, +1) }
		},
	)

	opacity := widget.NewSlider(0, 1)
	opacity.Step = 0.05
	opacity.Value = 1
	opacity.OnChanged = func(v float64) {
		if id := mw.state.Editor.TargetLayer(); id != "" {
			mw.state.Layers.SetOpacity(id, v)
		}
	}

	mw.resultsList = widget.NewList(
		func() int { return len(mw.results) },
		func() fyne.CanvasObject { return widget.NewLabel("result") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(mw.results) {
				return
			}
			hit := mw.results[id]
			obj.(*widget.Label).SetText(hit.Label + " (" + hit.LayerID + ")")
		},
	)

	return container.NewBorder(
		container.NewVBox(mw.targetSelect, widget.NewSeparator()),
		container.NewVBox(
			widget.NewSeparator(),
			widget.NewLabel("Opacity"),
			opacity,
			widget.NewLabel("Query results"),
		),
		nil, nil,
		container.NewVSplit(mw.layerList, mw.resultsList),
	)
}

// moveLayer nudges a layer one slot up or down in the sidebar.
func (mw *MainWindow) moveLayer(layerID string, delta int) {
	order := mw.state.Layers.Order()
	for i, id := range order {
		if id != layerID {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(order) {
			return
		}
		mw.state.Layers.Reorder(layerID, order[j])
		return
	}
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Map...", mw.onExportMap),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	mw.undoItem = fyne.NewMenuItem("Undo", mw.onUndo)
	mw.redoItem = fyne.NewMenuItem("Redo", mw.onRedo)
	mw.undoItem.Disabled = true
	mw.redoItem.Disabled = true

	editMenu := fyne.NewMenu("Edit",
		mw.undoItem,
		mw.redoItem,
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.mapc.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.mapc.ZoomOut),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mw.mainMenu)
}

// setupCanvasHandlers routes pointer events from the map into the
// editor. Move-mode handle picking happens here because it needs the
// canvas projection for pixel tolerances.
func (mw *MainWindow) setupCanvasHandlers() {
	ed := mw.state.Editor

	mw.mapc.OnTap(ed.Click)
	mw.mapc.OnDoubleTap(ed.DoubleClick)

	mw.mapc.OnPointerDown(func(p geo.LatLng) {
		if ed.Mode() == editor.ModeMove {
			recID, kind, idx, ok := mw.hitTest(p)
			if ok && ed.BeginHandleDrag(recID, kind, idx, p) {
				mw.dragging = true
				mw.mapc.SetPanEnabled(false)
			}
			return
		}
		ed.PointerDown(p)
	})

	mw.mapc.OnPointerMove(ed.PointerMove)

	mw.mapc.OnPointerUp(func(p geo.LatLng) {
		if mw.dragging {
			mw.dragging = false
			ed.EndHandleDrag(p)
			mw.mapc.SetPanEnabled(true)
			return
		}
		ed.PointerUp(p)
	})
}

// hitTest finds the closest drag handle within tolerance of a pointer
// position: feature handles for points, vertex handles for lines and
// polygons, plus a center handle at the polygon centroid.
func (mw *MainWindow) hitTest(p geo.LatLng) (string, editor.HandleKind, int, bool) {
	pp := mw.mapc.Project(p)

	var (
		bestID   string
		bestKind editor.HandleKind
		bestIdx  int
		bestD2   = float64(handleHitRadius * handleHitRadius)
		found    bool
	)

	consider := func(recID string, kind editor.HandleKind, idx int, at geo.LatLng) {
		v := mw.mapc.Project(at)
		dx := v.X - pp.X
		dy := v.Y - pp.Y
		if d2 := dx*dx + dy*dy; d2 <= bestD2 {
			bestID, bestKind, bestIdx, bestD2 = recID, kind, idx, d2
			found = true
		}
	}

	for _, layerID := range mw.state.Layers.VisibleLayers() {
		for _, rec := range mw.state.Store.List(layerID) {
			if rec.Geometry == nil {
				continue
			}
			switch rec.Geometry.Kind {
			case geo.KindPoint:
				if len(rec.Geometry.Coords) > 0 {
					consider(rec.ID, editor.HandleFeature, 0, rec.Geometry.Coords[0])
				}
			case geo.KindLine:
				for i, c := range rec.Geometry.Coords {
					consider(rec.ID, editor.HandleVertex, i, c)
				}
			case geo.KindPolygon:
				for i, c := range rec.Geometry.Coords {
					consider(rec.ID, editor.HandleVertex, i, c)
				}
				consider(rec.ID, editor.HandleCenter, 0, rec.Geometry.Centroid())
			}
		}
	}

	return bestID, bestKind, bestIdx, found
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(editor.Mode); ok {
			mw.highlightMode(m)
			mw.updateStatus("Mode: " + m.String())
			if m != editor.ModeMeasure {
				mw.readout.SetText("")
			}
		}
	})

	mw.state.On(app.EventNoticePosted, func(data interface{}) {
		if e, ok := data.(*editor.EditError); ok && e != nil {
			mw.updateStatus(e.Message)
		}
	})

	mw.state.On(app.EventMeasureUpdated, func(data interface{}) {
		r, ok := data.(editor.MeasureReadout)
		if !ok {
			return
		}
		if r.Mode == editor.MeasureArea {
			mw.readout.SetText(editor.FormatArea(r.Running))
		} else {
			mw.readout.SetText(editor.FormatDistance(r.Running))
		}
	})

	mw.state.On(app.EventQueryResults, func(data interface{}) {
		hits, _ := data.([]editor.QueryHit)
		mw.results = hits
		mw.resultsList.Refresh()
		if hits != nil {
			mw.updateStatus(fmt.Sprintf("%d features selected", len(hits)))
		}
	})

	mw.state.On(app.EventHistoryChanged, func(data interface{}) {
		if st, ok := data.([2]bool); ok {
			mw.undoItem.Disabled = !st[0]
			mw.redoItem.Disabled = !st[1]
			mw.mainMenu.Refresh()
		}
	})

	mw.state.On(app.EventLayerOrderChanged, func(data interface{}) {
		mw.layerList.Refresh()
		mw.targetSelect.Options = mw.state.Layers.Order()
		mw.targetSelect.Refresh()
	})

	mw.state.On(app.EventTargetLayerChanged, func(data interface{}) {
		if id, ok := data.(string); ok && mw.targetSelect.Selected != id {
			mw.targetSelect.SetSelected(id)
		}
	})

	mw.state.On(app.EventRecordsChanged, func(data interface{}) {
		mw.mapc.Refresh()
	})

	mw.state.On(app.EventAttributeEntry, func(data interface{}) {
		if req, ok := data.(editor.AttributeRequest); ok {
			mw.showAttributeDialog(req)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		modified, ok := data.(bool)
		if !ok {
			return
		}
		title := mw.Title()
		hasMark := len(title) > 0 && title[len(title)-1] == '*'
		if modified && !hasMark {
			mw.SetTitle(title + " *")
		} else if !modified && hasMark {
			mw.SetTitle(title[:len(title)-2])
		}
	})
}

// highlightMode emphasizes the active mode button.
func (mw *MainWindow) highlightMode(active editor.Mode) {
	for m, btn := range mw.modeButtons {
		if m == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

// showAttributeDialog collects attribute values for a newly drawn
// geometry and commits the record on confirm. Cancel discards the
// geometry entirely.
func (mw *MainWindow) showAttributeDialog(req editor.AttributeRequest) {
	info, _ := mw.state.Layers.Layer(req.LayerID)

	nameEntry := widget.NewEntry()
	categoryEntry := widget.NewEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
	}
	if info.CategoryField != "" {
		items = append(items, widget.NewFormItem("Category", categoryEntry))
	}

	dialog.ShowForm("New feature: "+info.Name, "Save", "Cancel", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			attrs := map[string]interface{}{}
			if info.LabelField != "" {
				attrs[info.LabelField] = nameEntry.Text
			}
			if info.CategoryField != "" && categoryEntry.Text != "" {
				attrs[info.CategoryField] = categoryEntry.Text
			}
			if _, err := mw.state.CommitRecord(req, attrs); err != nil {
				dialog.ShowError(err, mw.Window)
				return
			}
			mw.updateStatus("Feature added to " + info.Name)
		}, mw.Window)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	dir := filepath.Dir(filePath)
	mw.app.Preferences().SetString(prefKeyLastDir, dir)
}

// Menu action handlers

func (mw *MainWindow) onSave() {
	mw.state.Save()
	mw.updateStatus("Saved")
}

func (mw *MainWindow) onUndo() {
	mw.state.Editor.Undo()
}

func (mw *MainWindow) onRedo() {
	mw.state.Editor.Redo()
}

// onExportMap asks for document text, then a destination, then runs
// the paginated export through the editor.
func (mw *MainWindow) onExportMap() {
	titleEntry := widget.NewEntry()
	titleEntry.SetText("Map export")
	descEntry := widget.NewMultiLineEntry()

	items := []*widget.FormItem{
		widget.NewFormItem("Title", titleEntry),
		widget.NewFormItem("Description", descEntry),
	}

	dialog.ShowForm("Export map", "Choose file...", "Cancel", items,
		func(confirmed bool) {
			if !confirmed {
				return
			}
			opts := printview.ExportOptions{
				Title:       titleEntry.Text,
				Description: descEntry.Text,
			}
			mw.pickExportFile(opts)
		}, mw.Window)
}

func (mw *MainWindow) pickExportFile(opts printview.ExportOptions) {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if filepath.Ext(path) != ".png" {
			path += ".png"
		}
		mw.saveLastDir(path)
		if err := mw.state.Editor.ExportPrint(path, opts); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + filepath.Base(path))
	}, mw.Window)
	fd.SetFileName("map.png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About GeoEdit",
		fmt.Sprintf("GeoEdit v%s\n\n"+
			"An interactive map editing tool.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
