package tui

import (
	"fmt"
	"math"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"
)

func fmtLevel(v float64) string {
	switch {
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// refreshLayerTable rebuilds the layer table from the registered layers
// and the last frame's visibility vector.
func (m *Model) refreshLayerTable() {
	frame, _, _, _ := m.scene.snapshot()
	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "layer", Width: 14},
		{Title: "threshold", Width: 10},
		{Title: "radius", Width: 8},
		{Title: "full at", Width: 8},
		{Title: "opacity", Width: 8},
	}
	var rows []table.Row
	for i, l := range m.vp.Layers() {
		full, _ := m.vp.LayerEngine().FullyVisibleAt(l.ID)
		op := l.Opacity()
		if i < len(frame.Visibility) && i < len(frame.LayerIDs) && frame.LayerIDs[i] == l.ID {
			op = frame.Visibility[i]
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			l.ID,
			fmtLevel(l.ZoomThreshold),
			fmtLevel(l.FadeRadius),
			fmtLevel(full),
			fmt.Sprintf("%.2f", op),
		})
	}
	for _, o := range m.scene.overlays {
		if o.fading {
			continue
		}
		state := "static"
		if o.hidden {
			state = "hidden"
		}
		rows = append(rows, table.Row{"-", o.id, state, "", "", ""})
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}
