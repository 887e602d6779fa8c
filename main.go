// Package main provides the entry point for the GeoEdit application.
package main

import (
	"flag"
	"image/color"
	"time"

	"geoedit/internal/app"
	"geoedit/internal/layers"
	"geoedit/internal/logger"
	"geoedit/internal/version"
	"geoedit/pkg/geo"
	"geoedit/ui/mainwindow"
	"geoedit/ui/mapcanvas"
	"geoedit/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/rs/zerolog"
)

const appTitle = "GeoEdit"

// Default view when no preferences were saved yet.
var (
	defaultCenter = geo.NewLatLng(52.3728, 4.8936)
	defaultZoom   = 13
)

const osmTemplate = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

func main() {
	logLevel := flag.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	lat := flag.Float64("lat", 0, "initial map center latitude (overrides saved view)")
	lng := flag.Float64("lng", 0, "initial map center longitude (overrides saved view)")
	zoomFlag := flag.Int("zoom", 0, "initial zoom level (overrides saved view)")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:     *logLevel,
		Console:   true,
		Component: "geoedit",
	})
	log.Info().Str("version", version.Version).Msg("starting")

	fyneApp := fyneapp.NewWithID("io.geoedit.app")
	fyneApp.Settings().SetTheme(&app.GeoEditTheme{})

	appPrefs := prefs.Load()
	center, zoom := defaultCenter, defaultZoom
	if pLat, pLng, z, ok := appPrefs.View(); ok {
		center, zoom = geo.NewLatLng(pLat, pLng), z
	}
	if *lat != 0 || *lng != 0 {
		center = geo.NewLatLng(*lat, *lng)
	}
	if *zoomFlag != 0 {
		zoom = *zoomFlag
	}

	mapc := mapcanvas.New(center, zoom, log)

	state := app.NewState(mapc, log)
	seedLayers(state)

	win := mainwindow.New(fyneApp, state, mapc)
	win.SetTitle(appTitle)

	win.SetCloseIntercept(func() {
		c := mapc.Center()
		appPrefs.SetView(c.Lat, c.Lng, mapc.Zoom())
		if err := appPrefs.Save(); err != nil {
			log.Warn().Err(err).Msg("saving preferences")
		}
		win.Close()
	})

	setupHotReload(win, log)

	win.ShowAndRun()
}

// setupHotReload prompts for a restart when the binary on disk is
// recompiled during development.
func setupHotReload(win *mainwindow.MainWindow, log zerolog.Logger) {
	reloader := app.NewHotReloader(2*time.Second, log)
	if reloader == nil {
		log.Warn().Msg("hot reload: unable to determine executable path")
		return
	}

	reloader.OnNewBinary(func() {
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				if err := reloader.Restart(); err != nil {
					log.Error().Err(err).Msg("hot reload: restart failed")
				}
			}, win)
	})

	reloader.Start()
}

// seedLayers installs the default editable layers and the OSM base map.
func seedLayers(state *app.State) {
	state.Layers.AddBase(layers.BaseLayer{
		ID:          "osm",
		Name:        "OpenStreetMap",
		URLTemplate: osmTemplate,
		Opacity:     1,
	})

	state.Layers.AddLayer(layers.LayerInfo{
		ID:         "parcels",
		Name:       "Parcels",
		Kind:       geo.KindPolygon,
		LabelField: "name",
		Color:      color.RGBA{R: 0x2E, G: 0x7D, B: 0x32, A: 255},
	})
	state.Layers.AddLayer(layers.LayerInfo{
		ID:         "roads",
		Name:       "Roads",
		Kind:       geo.KindLine,
		LabelField: "name",
		Color:      color.RGBA{R: 0xC6, G: 0x28, B: 0x28, A: 255},
	})
	state.Layers.AddLayer(layers.LayerInfo{
		ID:            "poi",
		Name:          "Points of Interest",
		Kind:          geo.KindPoint,
		LabelField:    "name",
		CategoryField: "category",
		Color:         color.RGBA{R: 0x15, G: 0x65, B: 0xC0, A: 255},
	})

	state.SetTargetLayer("poi")
}
