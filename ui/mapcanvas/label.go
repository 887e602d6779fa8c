package mapcanvas

import (
	"image"
	"image/color"
	"strings"
)

// labelScale is the pixel multiplier applied to the 3x5 glyph grid.
const labelScale = 2

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and common symbols.
// Each letter is represented as 5 rows of 3 bits.
var letterPatterns = map[rune][5]uint8{
	'A':  {0b010, 0b101, 0b111, 0b101, 0b101},
	'B':  {0b110, 0b101, 0b110, 0b101, 0b110},
	'C':  {0b011, 0b100, 0b100, 0b100, 0b011},
	'D':  {0b110, 0b101, 0b101, 0b101, 0b110},
	'E':  {0b111, 0b100, 0b110, 0b100, 0b111},
	'F':  {0b111, 0b100, 0b110, 0b100, 0b100},
	'G':  {0b011, 0b100, 0b101, 0b101, 0b011},
	'H':  {0b101, 0b101, 0b111, 0b101, 0b101},
	'I':  {0b111, 0b010, 0b010, 0b010, 0b111},
	'J':  {0b001, 0b001, 0b001, 0b101, 0b010},
	'K':  {0b101, 0b101, 0b110, 0b101, 0b101},
	'L':  {0b100, 0b100, 0b100, 0b100, 0b111},
	'M':  {0b101, 0b111, 0b101, 0b101, 0b101},
	'N':  {0b101, 0b111, 0b111, 0b101, 0b101},
	'O':  {0b010, 0b101, 0b101, 0b101, 0b010},
	'P':  {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q':  {0b010, 0b101, 0b101, 0b111, 0b011},
	'R':  {0b110, 0b101, 0b110, 0b101, 0b101},
	'S':  {0b011, 0b100, 0b010, 0b001, 0b110},
	'T':  {0b111, 0b010, 0b010, 0b010, 0b010},
	'U':  {0b101, 0b101, 0b101, 0b101, 0b111},
	'V':  {0b101, 0b101, 0b101, 0b101, 0b010},
	'W':  {0b101, 0b101, 0b101, 0b111, 0b101},
	'X':  {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y':  {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z':  {0b111, 0b001, 0b010, 0b100, 0b111},
	'+':  {0b000, 0b010, 0b111, 0b010, 0b000},
	'-':  {0b000, 0b000, 0b111, 0b000, 0b000},
	'.':  {0b000, 0b000, 0b000, 0b000, 0b010},
	'\'': {0b010, 0b010, 0b000, 0b000, 0b000},
	' ':  {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// drawLabelPx renders text centered horizontally at (cx, cy) using the
// bitmap glyph set. A light halo keeps labels legible over tiles.
func drawLabelPx(out *image.RGBA, text string, cx, cy int, col color.RGBA, opacity float64) {
	if text == "" {
		return
	}
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return
	}

	charW := 4 * labelScale // 3 glyph columns + 1 gap
	totalW := len(runes)*charW - labelScale
	x0 := cx - totalW/2
	y0 := cy - (5*labelScale)/2

	halo := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for i, ch := range runes {
		drawGlyph(out, getCharPattern(ch), x0+i*charW+1, y0+1, halo, opacity*0.7)
	}
	for i, ch := range runes {
		drawGlyph(out, getCharPattern(ch), x0+i*charW, y0, col, opacity)
	}
}

func drawGlyph(out *image.RGBA, pattern [5]uint8, x0, y0 int, col color.RGBA, opacity float64) {
	for row := 0; row < 5; row++ {
		for bit := 0; bit < 3; bit++ {
			if pattern[row]&(1<<(2-bit)) == 0 {
				continue
			}
			for dy := 0; dy < labelScale; dy++ {
				for dx := 0; dx < labelScale; dx++ {
					setPx(out, x0+bit*labelScale+dx, y0+row*labelScale+dy, col, opacity)
				}
			}
		}
	}
}
