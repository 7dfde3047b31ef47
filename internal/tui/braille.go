package tui

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type cellGlyph struct {
	r     rune
	style *lipgloss.Style
}

// brailleBuf is a cell canvas with a 2x4 braille micro-grid per cell. Each
// cell takes the colour of the last pen that touched it; glyphs placed with
// putGlyph cover the braille pattern.
type brailleBuf struct {
	w, h   int        // in cells
	m      [][]uint8  // per-cell 8-bit mask
	fg     [][]string // per-cell colour
	glyphs [][]cellGlyph
	pen    string
}

func newBrailleBuf(w, h int) *brailleBuf {
	b := &brailleBuf{w: w, h: h}
	b.m = make([][]uint8, h)
	b.fg = make([][]string, h)
	b.glyphs = make([][]cellGlyph, h)
	for i := 0; i < h; i++ {
		b.m[i] = make([]uint8, w)
		b.fg[i] = make([]string, w)
		b.glyphs[i] = make([]cellGlyph, w)
	}
	return b
}

var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= brailleBits[mx%2][my%4]
	b.fg[cy][cx] = b.pen
}

// clip trims the segment to the canvas (Liang-Barsky) so zoomed-in
// geometry does not walk millions of off-screen pixels.
func (b *brailleBuf) clip(x0, y0, x1, y1 int) (int, int, int, int, bool) {
	fx0, fy0 := float64(x0), float64(y0)
	dx, dy := float64(x1-x0), float64(y1-y0)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, fx0 + 1},
		{dx, float64(b.w*2) - fx0},
		{-dy, fy0 + 1},
		{dy, float64(b.h*4) - fy0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = math.Max(t0, r)
		} else {
			t1 = math.Min(t1, r)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return int(math.Round(fx0 + t0*dx)), int(math.Round(fy0 + t0*dy)),
		int(math.Round(fx0 + t1*dx)), int(math.Round(fy0 + t1*dy)), true
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	x0, y0, x1, y1, ok := b.clip(x0, y0, x1, y1)
	if !ok {
		return
	}
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolygonMicro fills the outer ring with an even-odd scanline pass.
func (b *brailleBuf) fillPolygonMicro(ring [][2]int) {
	if len(ring) < 3 {
		return
	}
	yMin, yMax := math.MaxInt, math.MinInt
	for _, p := range ring {
		yMin, yMax = min(yMin, p[1]), max(yMax, p[1])
	}
	yMin, yMax = max(yMin, 0), min(yMax, b.h*4-1)
	for yMic := yMin; yMic <= yMax; yMic++ {
		var xs []int
		for i := range ring {
			a, c := ring[i], ring[(i+1)%len(ring)]
			if a[1] == c[1] { // horizontal edge: skip
				continue
			}
			if (yMic >= a[1] && yMic < c[1]) || (yMic >= c[1] && yMic < a[1]) {
				t := float64(yMic-a[1]) / float64(c[1]-a[1])
				xs = append(xs, int(float64(a[0])+t*float64(c[0]-a[0])))
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= min(xs[i+1], b.w*2-1); xMic++ {
				b.setPixel(xMic, yMic)
			}
		}
	}
}

// putGlyph places r at cell (cx, cy), covering any braille there.
func (b *brailleBuf) putGlyph(cx, cy int, r rune, style *lipgloss.Style) bool {
	if cx < 0 || cy < 0 || cx >= b.w || cy >= b.h {
		return false
	}
	b.glyphs[cy][cx] = cellGlyph{r: r, style: style}
	return true
}

// putText writes s from cell (cx, cy) rightwards, clipped to the row.
func (b *brailleBuf) putText(cx, cy int, s string, style *lipgloss.Style) {
	for i, r := range []rune(s) {
		b.putGlyph(cx+i, cy, r, style)
	}
}

func (b *brailleBuf) cell(x, y int) (rune, string, *lipgloss.Style) {
	if g := b.glyphs[y][x]; g.r != 0 {
		return g.r, "", g.style
	}
	if mask := b.m[y][x]; mask != 0 {
		return rune(0x2800 + int(mask)), b.fg[y][x], nil
	}
	return ' ', "", nil
}

// toLines renders the canvas, grouping runs of equally styled cells.
func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		var sb strings.Builder
		var run []rune
		var runCol string
		var runStyle *lipgloss.Style
		flush := func() {
			if len(run) == 0 {
				return
			}
			switch {
			case runStyle != nil:
				sb.WriteString(runStyle.Render(string(run)))
			case runCol != "":
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runCol)).Render(string(run)))
			default:
				sb.WriteString(string(run))
			}
			run = run[:0]
		}
		for x := 0; x < b.w; x++ {
			r, col, st := b.cell(x, y)
			if col != runCol || st != runStyle {
				flush()
				runCol, runStyle = col, st
			}
			run = append(run, r)
		}
		flush()
		out[y] = sb.String()
	}
	return out
}
