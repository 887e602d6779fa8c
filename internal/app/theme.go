package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"geoedit/pkg/colorutil"
)

// GeoEditTheme tunes the stock theme for a map-heavy layout: widget
// accent colors come from the same palette the canvas renderer uses,
// and padding is tightened so the sidebar cedes room to the map.
type GeoEditTheme struct{}

var _ fyne.Theme = (*GeoEditTheme)(nil)

func (t *GeoEditTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return colorutil.Blue
	case theme.ColorNameSelection:
		// Matches the query rectangle drawn on the canvas.
		return colorutil.WithAlpha(colorutil.Orange, 0x80)
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *GeoEditTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNamePadding {
		return 3
	}
	return theme.DefaultTheme().Size(name)
}

func (t *GeoEditTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *GeoEditTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
