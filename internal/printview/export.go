package printview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Page pixel dimensions (A4 landscape at 150 dpi).
const (
	pageWidth  = 1754
	pageHeight = 1240
	pageMargin = 40
)

// titleBandFrac is the title band's fixed share of the page height.
const titleBandFrac = 0.10

// descBandFrac is the description block's share of the page height
// when a description is present.
const descBandFrac = 0.14

// ExportOptions carries the document text placed around the map image.
type ExportOptions struct {
	Title       string
	Description string
}

// Export captures the canvas, crops it to the viewport rectangle when
// one exists, composes the paginated document, and writes it as PNG.
// The document is fully encoded in memory before any file write, so a
// failure never leaves a partial file. Capture hooks and the frame
// overlay are restored on all paths.
func (c *Controller) Export(path string, opts ExportOptions) error {
	if c.beginCapture != nil {
		c.beginCapture()
	}
	if c.endCapture != nil {
		defer c.endCapture()
	}

	// The frame must not be baked into the captured raster.
	hadFrame := c.frame != nil
	if hadFrame {
		c.surf.ClearOverlay(overlayPrintFrame)
		defer c.updateOverlay()
	}

	captured, scale, err := c.surf.Capture()
	if err != nil {
		return fmt.Errorf("capture canvas: %w", err)
	}

	mapImg := captured
	if hadFrame {
		mapImg, err = c.cropToFrame(captured, scale)
		if err != nil {
			return fmt.Errorf("crop to viewport: %w", err)
		}
	}

	page := composePage(mapImg, opts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	c.log.Info().Str("path", path).Bool("cropped", hadFrame).Msg("map exported")
	return nil
}

// cropToFrame cuts the viewport rectangle out of the captured raster,
// applying the capture scale factor and clamping to the raster bounds.
func (c *Controller) cropToFrame(captured image.Image, scale float64) (image.Image, error) {
	center := c.surf.Project(c.frame.center)

	x1 := int((center.X - c.frame.halfW) * scale)
	y1 := int((center.Y - c.frame.halfH) * scale)
	x2 := int((center.X + c.frame.halfW) * scale)
	y2 := int((center.Y + c.frame.halfH) * scale)

	b := captured.Bounds()
	x1 = max(x1, b.Min.X)
	y1 = max(y1, b.Min.Y)
	x2 = min(x2, b.Max.X)
	y2 = min(y2, b.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return nil, fmt.Errorf("viewport rectangle lies outside the captured canvas")
	}

	out := image.NewRGBA(image.Rect(0, 0, x2-x1, y2-y1))
	draw.Draw(out, out.Bounds(), captured, image.Pt(x1, y1), draw.Src)
	return out, nil
}

// composePage lays out the document: a title band, the map image fit
// into the body with "contain" semantics, and an optional description
// block at the bottom.
func composePage(mapImg image.Image, opts ExportOptions) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, pageWidth, pageHeight))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	h := float64(pageHeight)
	titleH := int(h * titleBandFrac)
	band := image.Rect(0, 0, pageWidth, titleH)
	draw.Draw(page, band, image.NewUniform(color.RGBA{R: 235, G: 238, B: 242, A: 255}), image.Point{}, draw.Src)
	drawText(page, opts.Title, pageMargin, titleH/2+basicfont.Face7x13.Ascent/2)

	bodyTop := titleH + pageMargin
	bodyBottom := pageHeight - pageMargin
	if opts.Description != "" {
		descTop := pageHeight - int(h*descBandFrac)
		drawWrappedText(page, opts.Description, pageMargin, descTop, pageWidth-2*pageMargin)
		bodyBottom = descTop - pageMargin
	}

	body := image.Rect(pageMargin, bodyTop, pageWidth-pageMargin, bodyBottom)
	fitImage(page, body, mapImg)
	return page
}

// fitImage scales src into dst preserving aspect ratio ("contain") and
// centers the result.
func fitImage(page *image.RGBA, dst image.Rectangle, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || dst.Dx() <= 0 || dst.Dy() <= 0 {
		return
	}

	scaleX := float64(dst.Dx()) / float64(sb.Dx())
	scaleY := float64(dst.Dy()) / float64(sb.Dy())
	scale := min(scaleX, scaleY)

	w := int(float64(sb.Dx()) * scale)
	h := int(float64(sb.Dy()) * scale)
	x := dst.Min.X + (dst.Dx()-w)/2
	y := dst.Min.Y + (dst.Dy()-h)/2

	target := image.Rect(x, y, x+w, y+h)
	xdraw.ApproxBiLinear.Scale(page, target, src, sb, xdraw.Over, nil)
}

// drawText renders a single line with the built-in bitmap face.
func drawText(dst *image.RGBA, text string, x, y int) {
	if text == "" {
		return
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: 30, G: 30, B: 30, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// drawWrappedText renders text wrapped to the given pixel width. The
// bitmap face is fixed-pitch, so wrapping is a plain character count.
func drawWrappedText(dst *image.RGBA, text string, x, y, width int) {
	charsPerLine := width / basicfont.Face7x13.Advance
	if charsPerLine < 1 {
		return
	}

	lineH := basicfont.Face7x13.Height + 3
	line := ""
	for _, word := range splitWords(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if len(candidate) > charsPerLine && line != "" {
			drawText(dst, line, x, y)
			y += lineH
			line = word
			continue
		}
		line = candidate
	}
	drawText(dst, line, x, y)
}

func splitWords(text string) []string {
	var words []string
	start := -1
	for i, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			if start >= 0 {
				words = append(words, text[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}
