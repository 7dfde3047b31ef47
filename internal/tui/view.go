package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()
	contentWidth := max(10, m.width)
	contentHeight := lay.h

	// Header
	t := m.vp.Transform()
	title := " scimap ─ " + m.atlas.Name + " "
	header := titleStyle.Render(title) + dimStyle.Render(fmt.Sprintf(" k=%.2f %s", t.K, m.visibilitySummary()))
	header = lipgloss.NewStyle().Width(contentWidth).MaxHeight(headerHeight).Render(header)

	// Sidebar
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.showLayers:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 2
		}
		maxW := min(lay.w, max(32, colW+4))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lay.h-4, 12))
		box := boxStyle.Width(maxW).Render(titleStyle.Render("Layers") + "\n" + m.tbl.View())
		mapView = lipgloss.Place(lay.w, lay.h, lipgloss.Center, lipgloss.Center, box)
	case m.pasteMode:
		m.ta.SetWidth(lay.w)
		m.ta.SetHeight(min(lay.h, 12))
		mapView = lipgloss.NewStyle().Width(lay.w).Height(lay.h).Render(m.ta.View())
	default:
		mapView = lipgloss.NewStyle().Width(lay.w).Height(lay.h).Render(m.renderMap(lay.w, lay.h))
	}

	// Inspect popup over the left of the map
	if m.inspectPopup != "" && !m.showLayers && !m.pasteMode {
		box := boxStyle.MaxWidth(min(48, max(20, lay.w/2))).Render(m.inspectPopup)
		mapView = overlayLeft(mapView, box)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	coords := ""
	if m.hoverHasData {
		coords = fmt.Sprintf("  x=%.3f y=%.3f", m.hoverX, m.hoverY)
		if m.hoverMarker >= 0 {
			if ms := m.scene.Markers(); m.hoverMarker < len(ms) {
				coords += "  " + ms[m.hoverMarker].Label
			}
		}
		coords = dimStyle.Render(coords + "  ")
	}
	left := lipgloss.JoinVertical(lipgloss.Left, status, help)
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), footerHeight, lipgloss.Right, lipgloss.Bottom, coords)
	footer := lipgloss.NewStyle().Width(contentWidth).MaxHeight(footerHeight).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(body), footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// visibilitySummary lists each fading layer's opacity, e.g. "layer1:0.50".
func (m Model) visibilitySummary() string {
	frame, _, _, _ := m.scene.snapshot()
	parts := make([]string, 0, len(frame.LayerIDs))
	for i, id := range frame.LayerIDs {
		if i < len(frame.Visibility) {
			parts = append(parts, fmt.Sprintf("%s:%.2f", id, frame.Visibility[i]))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→/drag pan",
		"+/-/wheel zoom",
		"1-9 layer",
		"0 scale 1",
		"f fit",
		"Tab files",
		"m markers",
		"Enter open",
		"p paste",
		"v layers",
		"i inspect",
		"h help",
		"q quit",
	}
	return dimStyle.Render(" " + strings.Join(keys, "  "))
}
