package geo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// TileSize is the pixel edge length of a standard slippy-map tile.
const TileSize = 256

// MaxMercatorLat is the latitude limit of the Web Mercator projection.
const MaxMercatorLat = 85.05112878

// WorldSize returns the pixel edge length of the projected world at the
// given integer zoom level.
func WorldSize(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// Project converts a geographic coordinate to absolute world pixel
// coordinates at the given zoom level (Web Mercator, origin top-left).
func Project(p LatLng, zoom int) r2.Vec {
	size := WorldSize(zoom)
	lat := math.Max(-MaxMercatorLat, math.Min(MaxMercatorLat, p.Lat))
	latRad := lat * math.Pi / 180

	x := (p.Lng + 180) / 360 * size
	y := (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * size
	return r2.Vec{X: x, Y: y}
}

// Unproject converts absolute world pixel coordinates back to a
// geographic coordinate at the given zoom level.
func Unproject(v r2.Vec, zoom int) LatLng {
	size := WorldSize(zoom)
	lng := v.X/size*360 - 180
	n := math.Pi - 2*math.Pi*v.Y/size
	lat := 180 / math.Pi * math.Atan(0.5*(math.Exp(n)-math.Exp(-n)))
	return LatLng{Lat: lat, Lng: lng}
}
