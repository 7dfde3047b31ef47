package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// layout is the map area of the screen in cells.
type layout struct {
	originX, originY int
	w, h             int
}

func (m Model) layout() layout {
	sb := 0
	if m.showSidebar {
		sb = sidebarWidth + 1
	}
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	return layout{
		originX: sb,
		originY: headerHeight,
		w:       max(10, contentWidth-sb),
		h:       contentHeight,
	}
}

func (l layout) contains(x, y int) bool {
	return x >= l.originX && x < l.originX+l.w && y >= l.originY && y < l.originY+l.h
}

// cellCenterMicro is the braille micro-pixel at the centre of a cell.
func cellCenterMicro(cx, cy int) (float64, float64) {
	return float64(cx*2) + 1, float64(cy*4) + 2
}

// fadeColor blends hex towards the canvas background by opacity.
func fadeColor(hex string, opacity float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		c = colorful.Color{R: 0.9, G: 0.9, B: 0.9}
	}
	bg, _ := colorful.Hex(canvasBg)
	opacity = math.Max(0, math.Min(1, opacity))
	return bg.BlendLab(c, opacity).Clamped().Hex()
}

// toMicro rounds a micro-pixel position to ints.
func toMicro(x, y float64) (int, int) {
	return int(math.Floor(x)), int(math.Floor(y))
}

// overlayLeft draws box over the left edge of base, vertically centred,
// keeping the rest of each covered line.
func overlayLeft(base, box string) string {
	lines := strings.Split(base, "\n")
	boxLines := strings.Split(box, "\n")
	bw := lipgloss.Width(box)
	top := max(0, (len(lines)-len(boxLines))/2)
	for i, bl := range boxLines {
		row := top + i
		if row >= len(lines) {
			break
		}
		pad := strings.Repeat(" ", max(0, bw-lipgloss.Width(bl)))
		lines[row] = bl + pad + ansi.TruncateLeft(lines[row], bw, "")
	}
	return strings.Join(lines, "\n")
}
