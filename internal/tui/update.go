package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/camera"
	"scimap/internal/geom"
)

const (
	zoomStep  = 1.25
	wheelStep = 1.1
	// panStep is the arrow-key pan distance in micro-pixels.
	panStep = 8
	// markerHitRadius is the click/hover radius around a marker in
	// micro-pixels.
	markerHitRadius = 4
)

// frameMsg is one tick of the frame clock driving camera transitions.
type frameMsg time.Time

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.FrameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// startTransition reports the outcome of a camera request and starts the
// frame clock if it is not already running.
func (m Model) startTransition(tr *camera.Transition, err error) (Model, tea.Cmd) {
	if err != nil {
		m.status = "camera error: " + err.Error()
		return m, nil
	}
	t := tr.Target()
	m.status = fmt.Sprintf("%s → k=%.2f", tr.Kind(), t.K)
	if m.ticking {
		return m, nil
	}
	m.ticking = true
	return m, m.tick()
}

// fitMarker frames a marker with a box a fortieth of the map wide.
func (m Model) fitMarker(mk geom.Marker) (Model, tea.Cmd) {
	half := math.Max(m.atlas.Extent.Width(), m.atlas.Extent.Height()) / 80
	tr, err := m.cam.FitToBoundingBox(camera.BoxAround(r2.Vec{X: mk.X, Y: mk.Y}, half, half))
	m, cmd := m.startTransition(tr, err)
	if err == nil {
		m.status = mk.Label + ": " + m.status
	}
	return m, cmd
}

func (m Model) fitExtent() (Model, tea.Cmd) {
	e := m.atlas.Extent
	return m.startTransition(m.cam.FitToBoundingBox(camera.NewBoundingBox(
		r2.Vec{X: e.MinX, Y: e.MinY}, r2.Vec{X: e.MaxX, Y: e.MaxY})))
}

// zoomToLayer zooms to the level at which the n-th layer is fully
// visible. Always-visible layers zoom out to the minimum.
func (m Model) zoomToLayer(n int) (Model, tea.Cmd) {
	ls := m.vp.Layers()
	if n < 0 || n >= len(ls) {
		m.status = fmt.Sprintf("no layer %d", n+1)
		return m, nil
	}
	k, _ := m.vp.LayerEngine().FullyVisibleAt(ls[n].ID)
	if !(k > 0) {
		k, _ = m.vp.ScaleExtent()
	}
	m, cmd := m.startTransition(m.cam.ZoomToScale(k))
	m.status = ls[n].ID + ": " + m.status
	return m, cmd
}

// gesture cancels any running transition before the user moves the view.
func (m *Model) gesture() {
	m.cam.Cancel()
	m.inspectPopup = ""
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case frameMsg:
		if m.cam.Step(time.Time(msg)) {
			return m, m.tick()
		}
		m.ticking = false
		return m, nil
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		if m.showLayers {
			switch msg.String() {
			case "esc", "v", "a":
				m.showLayers = false
				return m, nil
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			return m.zoomToLayer(int(msg.String()[0] - '1'))
		case "0":
			return m.startTransition(m.cam.ZoomToScale(1))
		case "f":
			return m.fitExtent()
		case "+", "=":
			m.gesture()
			t := m.vp.ZoomAt(zoomStep, m.vp.Size().Center())
			m.status = fmt.Sprintf("zoom: %.2fx", t.K)
		case "-", "_":
			m.gesture()
			t := m.vp.ZoomAt(1/zoomStep, m.vp.Size().Center())
			m.status = fmt.Sprintf("zoom: %.2fx", t.K)
		case "up":
			m.gesture()
			m.vp.Pan(0, panStep)
		case "down":
			m.gesture()
			m.vp.Pan(0, -panStep)
		case "left":
			m.gesture()
			m.vp.Pan(panStep, 0)
		case "right":
			m.gesture()
			m.vp.Pan(-panStep, 0)
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshSidebar()
			}
			m.resize()
		case "m":
			if m.mode == sidebarFiles {
				m.mode = sidebarMarkers
			} else {
				m.mode = sidebarFiles
			}
			m.showSidebar = true
			m.refreshSidebar()
			m.resize()
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "v", "a":
			m.refreshLayerTable()
			m.showLayers = true
		case "i":
			if s, ok := m.inspectNearest(); ok {
				m.inspectPopup = s
				m.status = "inspect popup"
			} else {
				m.inspectPopup = ""
				m.status = "no marker nearby"
			}
		case "esc":
			m.inspectPopup = ""
		case "enter":
			if m.showSidebar {
				return m.openSelected()
			}
		}
	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		d, err := geom.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		m.pasteMode = false
		m.ta.Blur()
		m.scene.setHighlight(d)
		bb := d.BBox.Pad(math.Max(m.atlas.Extent.Width(), m.atlas.Extent.Height()) / 100)
		return m.startTransition(m.cam.FitToBoundingBox(camera.NewBoundingBox(
			r2.Vec{X: bb.MinX, Y: bb.MinY}, r2.Vec{X: bb.MaxX, Y: bb.MaxY})))
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	lay := m.layout()
	inMap := lay.contains(msg.X, msg.Y)
	cx, cy := msg.X-lay.originX, msg.Y-lay.originY
	px, py := cellCenterMicro(cx, cy)

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelUp && inMap:
		m.gesture()
		t := m.vp.ZoomAt(wheelStep, r2.Vec{X: px, Y: py})
		m.status = fmt.Sprintf("zoom: %.2fx", t.K)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonWheelDown && inMap:
		m.gesture()
		t := m.vp.ZoomAt(1/wheelStep, r2.Vec{X: px, Y: py})
		m.status = fmt.Sprintf("zoom: %.2fx", t.K)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inMap:
		m.dragging, m.dragMoved = true, false
		m.dragX, m.dragY = msg.X, msg.Y
	case msg.Action == tea.MouseActionMotion && m.dragging:
		if dx, dy := msg.X-m.dragX, msg.Y-m.dragY; dx != 0 || dy != 0 {
			m.gesture()
			m.vp.Pan(float64(dx*2), float64(dy*4))
			m.dragX, m.dragY = msg.X, msg.Y
			m.dragMoved = true
		}
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		if !m.dragMoved && inMap {
			if i := m.scene.markerAt(px, py, markerHitRadius); i >= 0 {
				return m.fitMarker(m.scene.Markers()[i])
			}
		}
	}

	m.hovering = inMap
	if !inMap {
		m.hoverHasData = false
		m.hoverMarker = -1
		return m, nil
	}
	m.hoverCellX, m.hoverCellY = cx, cy
	if p, err := m.vp.ScreenToData(r2.Vec{X: px, Y: py}); err == nil {
		m.hoverHasData = true
		m.hoverX, m.hoverY = p.X, p.Y
	} else {
		m.hoverHasData = false
	}
	m.hoverMarker = m.scene.markerAt(px, py, markerHitRadius)
	return m, nil
}
