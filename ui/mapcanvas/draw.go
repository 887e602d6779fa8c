package mapcanvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"geoedit/internal/surface"
	"geoedit/internal/tiles"
	"geoedit/pkg/colorutil"
	"geoedit/pkg/geo"
)

var backgroundColor = color.RGBA{R: 238, G: 240, B: 243, A: 255}

// faintOpacity is the render opacity of overlay paths marked faint.
const faintOpacity = 0.45

// draw is the raster drawing function.
func (mc *MapCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		w, h = mc.viewW, mc.viewH
	}
	mc.viewW, mc.viewH = w, h
	return mc.render(w, h)
}

// render composites the full view: background, base tiles, feature
// groups in stack order, then overlays.
func (mc *MapCanvas) render(w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	mc.drawRasters(out)
	for _, g := range mc.groups {
		mc.drawGroup(out, g)
	}
	for _, ov := range mc.overlays {
		if ov != nil {
			mc.drawOverlay(out, ov)
		}
	}

	mc.lastOutput = out
	return out
}

// drawRasters composites the base tile layers in z order.
func (mc *MapCanvas) drawRasters(out *image.RGBA) {
	if len(mc.rasters) == 0 {
		return
	}

	ordered := make([]*rasterLayer, len(mc.rasters))
	copy(ordered, mc.rasters)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].z < ordered[j].z })

	tl := mc.topLeftWorld()
	n := 1 << mc.zoom
	txMin := int(math.Floor(tl.X / tiles.Size))
	tyMin := int(math.Floor(tl.Y / tiles.Size))
	txMax := int(math.Floor((tl.X + float64(mc.viewW)) / tiles.Size))
	tyMax := int(math.Floor((tl.Y + float64(mc.viewH)) / tiles.Size))

	for _, rl := range ordered {
		for ty := tyMin; ty <= tyMax; ty++ {
			if ty < 0 || ty >= n {
				continue
			}
			for tx := txMin; tx <= txMax; tx++ {
				// Longitude wraps.
				wx := ((tx % n) + n) % n
				k := tiles.Key{Z: mc.zoom, X: wx, Y: ty}

				img, ok := rl.source.Cached(k)
				if !ok {
					img = tiles.Placeholder()
					mc.prefetch(rl, k)
				}

				ox := int(float64(tx*tiles.Size) - tl.X)
				oy := int(float64(ty*tiles.Size) - tl.Y)
				mc.drawTile(out, img, ox, oy, rl.opacity)
			}
		}
	}
}

// prefetch loads a missing tile in the background and triggers a
// redraw when it lands. In-flight tiles are not requested twice.
func (mc *MapCanvas) prefetch(rl *rasterLayer, k tiles.Key) {
	mc.pendingMu.Lock()
	inflight := mc.pending[rl.id]
	if inflight == nil || inflight[k] {
		mc.pendingMu.Unlock()
		return
	}
	inflight[k] = true
	mc.pendingMu.Unlock()

	done := rl.source.Prefetch(k)
	go func() {
		<-done
		mc.pendingMu.Lock()
		if inflight := mc.pending[rl.id]; inflight != nil {
			delete(inflight, k)
		}
		mc.pendingMu.Unlock()
		mc.Refresh()
	}()
}

// drawTile blits one tile at the given view offset with opacity.
func (mc *MapCanvas) drawTile(out *image.RGBA, tile image.Image, ox, oy int, opacity float64) {
	if opacity <= 0.001 {
		return
	}
	target := image.Rect(ox, oy, ox+tiles.Size, oy+tiles.Size)
	if opacity >= 0.999 {
		draw.Draw(out, target, tile, tile.Bounds().Min, draw.Over)
		return
	}

	bounds := out.Bounds()
	tb := tile.Bounds()
	for y := 0; y < tiles.Size; y++ {
		py := oy + y
		if py < bounds.Min.Y || py >= bounds.Max.Y {
			continue
		}
		for x := 0; x < tiles.Size; x++ {
			px := ox + x
			if px < bounds.Min.X || px >= bounds.Max.X {
				continue
			}
			sr, sg, sb, sa := tile.At(tb.Min.X+x, tb.Min.Y+y).RGBA()
			if sa == 0 {
				continue
			}
			src := color.RGBA{R: uint8(sr >> 8), G: uint8(sg >> 8), B: uint8(sb >> 8), A: 255}
			out.SetRGBA(px, py, colorutil.Blend(out.RGBAAt(px, py), src, opacity))
		}
	}
}

// drawGroup renders one feature layer with its group opacity.
func (mc *MapCanvas) drawGroup(out *image.RGBA, g *surface.Group) {
	if g.Opacity <= 0.001 {
		return
	}
	for i := range g.Features {
		mc.drawFeature(out, &g.Features[i], g.Opacity)
	}
}

func (mc *MapCanvas) drawFeature(out *image.RGBA, f *surface.Feature, opacity float64) {
	col := f.Style.Color
	weight := f.Style.Weight
	if weight <= 0 {
		weight = 2
	}
	op := opacity * f.Style.Opacity
	if f.Style.Opacity == 0 {
		op = opacity
	}

	switch f.Geometry.Kind {
	case geo.KindPoint:
		if len(f.Geometry.Coords) == 0 {
			return
		}
		p := mc.Project(f.Geometry.Coords[0])
		mc.drawCirclePx(out, p, 5, col, true, op)
		if f.Label != "" {
			drawLabelPx(out, f.Label, int(p.X), int(p.Y)+12, colorutil.Black, op)
		}

	case geo.KindLine:
		pts := mc.projectAll(f.Geometry.Coords)
		for i := 0; i+1 < len(pts); i++ {
			mc.drawLinePx(out, pts[i], pts[i+1], col, weight, false, op)
		}
		if f.Label != "" && len(pts) > 0 {
			mid := pts[len(pts)/2]
			drawLabelPx(out, f.Label, int(mid.X), int(mid.Y)-10, colorutil.Black, op)
		}

	case geo.KindPolygon:
		pts := mc.projectAll(f.Geometry.Coords)
		if len(pts) < 3 {
			return
		}
		mc.fillPolygonPx(out, pts, col, op*0.35)
		for i := 0; i < len(pts); i++ {
			mc.drawLinePx(out, pts[i], pts[(i+1)%len(pts)], col, weight, false, op)
		}
		if f.Label != "" {
			c := centroidPx(pts)
			drawLabelPx(out, f.Label, int(c.X), int(c.Y), colorutil.Black, op)
		}
	}
}

// drawOverlay renders one named overlay above the feature stack.
func (mc *MapCanvas) drawOverlay(out *image.RGBA, ov *surface.Overlay) {
	col := ov.Color

	for _, b := range ov.Rects {
		tl := mc.Project(geo.NewLatLng(b.North, b.West))
		br := mc.Project(geo.NewLatLng(b.South, b.East))
		mc.drawDashedRectPx(out, int(tl.X), int(tl.Y), int(br.X), int(br.Y), col)
	}

	for _, path := range ov.Paths {
		pts := mc.projectAll(path.Points)
		thickness := path.Thickness
		if thickness <= 0 {
			thickness = 2
		}
		op := 1.0
		if path.Faint {
			op = faintOpacity
		}
		for i := 0; i+1 < len(pts); i++ {
			mc.drawLinePx(out, pts[i], pts[i+1], col, thickness, path.Dashed, op)
		}
	}

	for _, m := range ov.Markers {
		p := mc.Project(m.At)
		r := m.Radius
		if r <= 0 {
			r = 4
		}
		mc.drawCirclePx(out, p, r, col, m.Filled, 1)
	}
}

func (mc *MapCanvas) projectAll(coords []geo.LatLng) []r2.Vec {
	pts := make([]r2.Vec, len(coords))
	for i, c := range coords {
		pts[i] = mc.Project(c)
	}
	return pts
}

func centroidPx(pts []r2.Vec) r2.Vec {
	var c r2.Vec
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(pts))
	c.Y /= float64(len(pts))
	return c
}

// setPx writes one pixel blended at the given opacity.
func setPx(out *image.RGBA, x, y int, col color.RGBA, opacity float64) {
	b := out.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return
	}
	if opacity >= 0.999 {
		out.SetRGBA(x, y, col)
		return
	}
	out.SetRGBA(x, y, colorutil.Blend(out.RGBAAt(x, y), col, opacity))
}

// drawLinePx draws a line using Bresenham's algorithm. Dashed lines
// alternate six pixels on, four off along the traversal.
func (mc *MapCanvas) drawLinePx(out *image.RGBA, a, b r2.Vec, col color.RGBA, thickness int, dashed bool, opacity float64) {
	x1, y1 := int(a.X), int(a.Y)
	x2, y2 := int(b.X), int(b.Y)

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	step := 0

	for {
		if !dashed || step%10 < 6 {
			for t := -thickness / 2; t <= thickness/2; t++ {
				for s := -thickness / 2; s <= thickness/2; s++ {
					setPx(out, x1+s, y1+t, col, opacity)
				}
			}
		}
		step++

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawCirclePx draws a filled circle or a two pixel ring.
func (mc *MapCanvas) drawCirclePx(out *image.RGBA, c r2.Vec, radius int, col color.RGBA, filled bool, opacity float64) {
	r := float64(radius)
	r2outer := r * r
	r2inner := (r - 2) * (r - 2)

	for y := int(c.Y - r - 1); y <= int(c.Y+r+1); y++ {
		for x := int(c.X - r - 1); x <= int(c.X+r+1); x++ {
			ddx := float64(x) - c.X
			ddy := float64(y) - c.Y
			dist2 := ddx*ddx + ddy*ddy
			if dist2 > r2outer {
				continue
			}
			if filled || dist2 >= r2inner {
				setPx(out, x, y, col, opacity)
			}
		}
	}
}

// fillPolygonPx fills a polygon using scanline intersection.
func (mc *MapCanvas) fillPolygonPx(out *image.RGBA, pts []r2.Vec, col color.RGBA, opacity float64) {
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	n := len(pts)
	for y := int(minY); y <= int(maxY); y++ {
		var xs []float64
		for i := 0; i < n; i++ {
			p1 := pts[i]
			p2 := pts[(i+1)%n]
			if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
				(p2.Y <= float64(y) && p1.Y > float64(y)) {
				t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(xs[i]); x <= int(xs[i+1]); x++ {
				setPx(out, x, y, col, opacity)
			}
		}
	}
}

// drawDashedRectPx draws a dashed rectangle outline.
func (mc *MapCanvas) drawDashedRectPx(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}

	for x := x1; x <= x2; x++ {
		if (x+y1)%6 < 4 {
			setPx(out, x, y1, col, 1)
			setPx(out, x, y1+1, col, 1)
		}
		if (x+y2)%6 < 4 {
			setPx(out, x, y2, col, 1)
			setPx(out, x, y2-1, col, 1)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%6 < 4 {
			setPx(out, x1, y, col, 1)
			setPx(out, x1+1, y, col, 1)
		}
		if (x2+y)%6 < 4 {
			setPx(out, x2, y, col, 1)
			setPx(out, x2-1, y, col, 1)
		}
	}
}
