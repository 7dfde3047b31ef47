package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/geom"
	"scimap/internal/viewport"
)

// minVisibleOpacity hides layers that have faded almost completely.
const minVisibleOpacity = 0.02

// tierGlyphs are the marker glyphs from the smallest to the largest tier.
var tierGlyphs = []rune{'·', '∘', '○', '◉', '●', '■'}

func tierGlyph(tier int) rune {
	if tier < 0 {
		tier = 0
	}
	if tier >= len(tierGlyphs) {
		tier = len(tierGlyphs) - 1
	}
	return tierGlyphs[tier]
}

// labelTier is the smallest tier labelled at scale 1; every doubling of
// the zoom level labels one tier further down.
const labelTier = 4

func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)
	mp := m.vp.Mapper()
	frame, markers, positions, highlight := m.scene.snapshot()
	if frame.Seq == 0 {
		return strings.Repeat(strings.Repeat(" ", w)+"\n", h-1) + strings.Repeat(" ", w)
	}

	for _, o := range m.scene.overlays {
		if o.hidden {
			continue
		}
		op := o.Opacity()
		if op < minVisibleOpacity {
			continue
		}
		br.pen = fadeColor(o.color, op)
		drawData(br, mp, o.data, false)
	}
	if !highlight.Empty() {
		br.pen = highlightCol
		drawData(br, mp, highlight, true)
	}

	// markers above the overlay, large tiers last so they stay on top
	ms := markerStyle
	ls := m.labelsStyle()
	minLabelTier := labelTier - int(math.Floor(math.Log2(math.Max(frame.Transform.K, 1))))
	for tier := 0; tier < len(tierGlyphs); tier++ {
		for _, p := range positions {
			if p.tier != tier {
				continue
			}
			cx, cy := toMicro(p.x, p.y)
			cx, cy = cx/2, cy/4
			if !br.putGlyph(cx, cy, tierGlyph(p.tier), &ms) {
				continue
			}
			if p.tier >= minLabelTier {
				br.putText(cx+2, cy, markers[p.idx].Label, &ls)
			}
		}
	}

	// hover highlight: orange ring on the hovered marker
	if m.hovering && m.hoverMarker >= 0 {
		hs := hoverStyle
		for _, p := range positions {
			if p.idx == m.hoverMarker {
				cx, cy := toMicro(p.x, p.y)
				br.putGlyph(cx/2, cy/4, '◯', &hs)
			}
		}
	}
	return strings.Join(br.toLines(), "\n")
}

// drawData draws geometry through the mapper's data->screen scales.
func drawData(br *brailleBuf, mp viewport.Mapper, d geom.Data, fill bool) {
	project := func(p [2]float64) [2]int {
		s := mp.DataToScreen(r2.Vec{X: p[0], Y: p[1]})
		x, y := toMicro(s.X, s.Y)
		return [2]int{x, y}
	}
	for _, poly := range d.Polygons {
		for i, ring := range poly {
			pts := make([][2]int, len(ring))
			for j, p := range ring {
				pts[j] = project(p)
			}
			if fill && i == 0 {
				br.fillPolygonMicro(pts)
			}
			for j := range pts {
				a, b := pts[j], pts[(j+1)%len(pts)]
				br.drawLineMicro(a[0], a[1], b[0], b[1])
			}
		}
	}
	for _, ls := range d.Lines {
		for j := 1; j < len(ls); j++ {
			a, b := project(ls[j-1]), project(ls[j])
			br.drawLineMicro(a[0], a[1], b[0], b[1])
		}
	}
	for _, p := range d.Points {
		q := project(p)
		br.setPixel(q[0], q[1])
	}
}

// inspectNearest describes the marker closest to the viewport centre and
// its screen anchor.
func (m Model) inspectNearest() (string, bool) {
	size := m.vp.Size()
	center, err := m.vp.ScreenToData(size.Center())
	if err != nil {
		return "", false
	}
	markers := m.scene.Markers()
	i := geom.Nearest(markers, center.X, center.Y)
	if i < 0 {
		return "", false
	}
	mk := markers[i]
	anchor, err := m.vp.ScreenCoordinatesOf(r2.Vec{X: mk.X, Y: mk.Y})
	if err != nil {
		return "", false
	}
	t := m.vp.Transform()
	meta := []string{
		titleStyle.Render(mk.Label),
		fmt.Sprintf("cluster: %s", mk.ClusterID),
		fmt.Sprintf("articles: %d (tier %d)", mk.NumRecentArticles, geom.TierOf(mk.NumRecentArticles, m.cfg.MarkerThresholds)),
		fmt.Sprintf("data: x=%.3f y=%.3f", mk.X, mk.Y),
		fmt.Sprintf("screen: %.1f,%.1f px  cell %d,%d", anchor.X, anchor.Y, int(anchor.X)/2, int(anchor.Y)/4),
		fmt.Sprintf("view: k=%.3f", t.K),
	}
	return lipgloss.JoinVertical(lipgloss.Left, meta...), true
}
