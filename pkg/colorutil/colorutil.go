// Package colorutil provides shared color utilities for the map editor.
package colorutil

import "image/color"

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Blue    = color.RGBA{R: 30, G: 110, B: 240, A: 255}
	Green   = color.RGBA{R: 30, G: 160, B: 70, A: 255}
	Orange  = color.RGBA{R: 255, G: 140, B: 0, A: 255}
	Red     = color.RGBA{R: 220, G: 50, B: 40, A: 255}
	Purple  = color.RGBA{R: 140, G: 80, B: 200, A: 255}
	Teal    = color.RGBA{R: 0, G: 150, B: 160, A: 255}
	Yellow  = color.RGBA{R: 240, G: 200, B: 0, A: 255}
	MidGray = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// layerPalette is the rotation used when a feature layer has no
// explicit color.
var layerPalette = []color.RGBA{Blue, Green, Orange, Purple, Teal, Red, Yellow}

// LayerColor returns a stable palette color for the nth feature layer.
func LayerColor(n int) color.RGBA {
	if n < 0 {
		n = -n
	}
	return layerPalette[n%len(layerPalette)]
}

// WithAlpha returns the color with its alpha channel replaced.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}

// Blend mixes src over dst at the given opacity in [0,1].
func Blend(dst, src color.RGBA, opacity float64) color.RGBA {
	if opacity <= 0 {
		return dst
	}
	if opacity >= 1 {
		return src
	}
	inv := 1 - opacity
	return color.RGBA{
		R: uint8(float64(src.R)*opacity + float64(dst.R)*inv),
		G: uint8(float64(src.G)*opacity + float64(dst.G)*inv),
		B: uint8(float64(src.B)*opacity + float64(dst.B)*inv),
		A: 255,
	}
}
