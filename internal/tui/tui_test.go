package tui

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/camera"
	"scimap/internal/viewport"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := New(Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Dir:    t.TempDir(),
		Now:    func() time.Time { return t0 },
	})
	require.NoError(t, err)
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// finish steps the frame clock past the end of any transition.
func finish(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(frameMsg(t0.Add(time.Minute)))
	assert.Nil(t, cmd)
	return next.(Model)
}

func TestWindowSizeSizesViewportInMicroPixels(t *testing.T) {
	m := newTestModel(t)

	// 40 rows less header and footer, two by four micro-pixels per cell
	assert.Equal(t, viewport.Size{Width: 200, Height: 148}, m.Viewport().Size())
	f := m.Viewport().Frame()
	assert.Greater(t, f.Seq, uint64(0))
	assert.Equal(t, []string{"layer0", "layer1", "layer2"}, f.LayerIDs)
	assert.InDeltaSlice(t, []float64{1, 0.25, 0}, f.Visibility, 1e-9)
}

func TestViewShowsAtlas(t *testing.T) {
	m := newTestModel(t)
	v := m.View()
	assert.Contains(t, v, "Meridia")
	assert.Contains(t, v, "layer1:0.25")
}

func TestKeyZoomCancelsTransition(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, key("f"))
	require.NotNil(t, m.Camera().Active())

	m = send(t, m, key("+"))
	assert.Nil(t, m.Camera().Active())
	assert.InDelta(t, 1.25, m.Viewport().Transform().K, 1e-9)

	m = send(t, m, key("-"))
	assert.InDelta(t, 1, m.Viewport().Transform().K, 1e-9)
}

func TestFitExtentRunsOnFrameClock(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key("+"))
	m = send(t, m, key("+"))

	next, cmd := m.Update(key("f"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.ticking)

	m = finish(t, m)
	assert.False(t, m.ticking)
	assert.Nil(t, m.Camera().Active())

	// the extent is width-bound at 200 micro-pixels: scale 1 fits it
	tr := m.Viewport().Transform()
	assert.InDelta(t, 1, tr.K, 1e-9)
	assert.InDelta(t, 0, tr.X, 1e-6)
	assert.InDelta(t, 0, tr.Y, 1e-6)
}

func TestLayerKeyZoomsUntilFullyVisible(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, key("3"))
	require.NotNil(t, m.Camera().Active())
	assert.Contains(t, m.status, "layer2")
	m = finish(t, m)

	assert.InDelta(t, 6.4, m.Viewport().Transform().K, 1e-9)
	for _, o := range m.scene.overlays {
		if o.fading {
			assert.InDelta(t, 1, o.Opacity(), 1e-9, o.id)
		}
	}

	// always-visible layers zoom all the way out
	m = send(t, m, key("1"))
	m = finish(t, m)
	assert.InDelta(t, 0.5, m.Viewport().Transform().K, 1e-9)

	m = send(t, m, key("9"))
	assert.Equal(t, "no layer 9", m.status)
}

func TestHiddenLayerIsNotFaded(t *testing.T) {
	m := newTestModel(t)
	var grid *overlayLayer
	for _, o := range m.scene.overlays {
		if o.id == "grid" {
			grid = o
		}
	}
	require.NotNil(t, grid)
	assert.True(t, grid.hidden)
	assert.False(t, grid.fading)
	assert.Len(t, m.Viewport().Layers(), 3)
}

func TestWheelKeepsPointUnderCursor(t *testing.T) {
	m := newTestModel(t)
	px, py := cellCenterMicro(50, 19)
	before, err := m.Viewport().ScreenToData(r2.Vec{X: px, Y: py})
	require.NoError(t, err)

	m = send(t, m, tea.MouseMsg{X: 50, Y: 20, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.InDelta(t, wheelStep, m.Viewport().Transform().K, 1e-9)

	after, err := m.Viewport().ScreenToData(r2.Vec{X: px, Y: py})
	require.NoError(t, err)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestDragPans(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: 13, Y: 12, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: 13, Y: 12, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	tr := m.Viewport().Transform()
	assert.InDelta(t, 6, tr.X, 1e-9)
	assert.InDelta(t, 8, tr.Y, 1e-9)
	assert.False(t, m.dragging)
	assert.Nil(t, m.Camera().Active())
}

func TestClickMarkerFitsIt(t *testing.T) {
	m := newTestModel(t)
	// Port Aster at (250, 300) sits at micro-pixel (50, 74): cell (25, 18)
	m = send(t, m, tea.MouseMsg{X: 25, Y: 19, Action: tea.MouseActionMotion})
	assert.Equal(t, 0, m.hoverMarker)
	assert.True(t, m.hoverHasData)
	assert.Contains(t, m.View(), "Port Aster")

	m = send(t, m, tea.MouseMsg{X: 25, Y: 19, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = send(t, m, tea.MouseMsg{X: 25, Y: 19, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	tr := m.Camera().Active()
	require.NotNil(t, tr)
	assert.Equal(t, camera.KindFit, tr.Kind())
	assert.True(t, strings.HasPrefix(m.status, "Port Aster"))

	m = finish(t, m)
	p, err := m.Viewport().ScreenCoordinatesOf(r2.Vec{X: 250, Y: 300})
	require.NoError(t, err)
	assert.InDelta(t, 100, p.X, 1e-6)
	assert.InDelta(t, 74, p.Y, 1e-6)
}

func TestPasteHighlightsAndFits(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key("p"))
	require.True(t, m.pasteMode)

	m.ta.SetValue("POLYGON((100 100,200 100,200 200,100 200,100 100))")
	m = send(t, m, key("enter"))
	assert.False(t, m.pasteMode)
	_, _, _, hl := m.scene.snapshot()
	assert.False(t, hl.Empty())
	require.NotNil(t, m.Camera().Active())

	m = send(t, m, key("p"))
	m.ta.SetValue("POINT(a b)")
	m = send(t, m, key("enter"))
	assert.True(t, m.pasteMode)
	assert.True(t, strings.HasPrefix(m.status, "wkt error"))

	m = send(t, m, key("esc"))
	assert.False(t, m.pasteMode)
}

func TestInspectNearest(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key("i"))
	require.NotEmpty(t, m.inspectPopup)
	assert.Contains(t, m.inspectPopup, "cluster:")
	assert.NotEmpty(t, m.View())

	m = send(t, m, key("esc"))
	assert.Empty(t, m.inspectPopup)
}

func TestLayerTable(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, key("v"))
	require.True(t, m.showLayers)
	rows := m.tbl.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "layer0", "-inf", "-inf", "-inf", "1.00"}, []string(rows[0]))
	assert.Equal(t, []string{"3", "layer2", "3.20", "3.20", "6.40", "0.00"}, []string(rows[2]))
	assert.Equal(t, "hidden", rows[3][2])

	m = send(t, m, key("esc"))
	assert.False(t, m.showLayers)
}

func TestLoadMarkerFile(t *testing.T) {
	m := newTestModel(t)
	p := filepath.Join(t.TempDir(), "extra.csv")
	require.NoError(t, os.WriteFile(p, []byte("label,x,y,count\nNorth,500,590,3000\nSouth,500,10,1\n"), 0o644))

	before := len(m.scene.Markers())
	m.loadPath(p)
	assert.Len(t, m.scene.Markers(), before+2)
	assert.Contains(t, m.status, "markers=2")

	_, _, positions, _ := m.scene.snapshot()
	assert.Len(t, positions, before+2)
}

func TestFadeColor(t *testing.T) {
	assert.Equal(t, "#ff0000", fadeColor("#ff0000", 1))
	assert.Equal(t, strings.ToLower(canvasBg), fadeColor("#ff0000", 0))
	assert.Equal(t, strings.ToLower(canvasBg), fadeColor("#ff0000", -3))
}

func TestBrailleSetPixel(t *testing.T) {
	b := newBrailleBuf(2, 2)
	b.pen = "#ffffff"
	b.setPixel(0, 0)
	b.setPixel(3, 7)
	b.setPixel(-1, 0)
	b.setPixel(4, 0)

	assert.Equal(t, uint8(0x01), b.m[0][0])
	assert.Equal(t, uint8(0x80), b.m[1][1])
	assert.Equal(t, uint8(0), b.m[0][1])
	assert.Equal(t, "#ffffff", b.fg[1][1])

	r, _, _ := b.cell(0, 0)
	assert.Equal(t, '⠁', r)
}

func TestBrailleClip(t *testing.T) {
	b := newBrailleBuf(10, 10) // 20 x 40 micro-pixels
	_, _, _, _, ok := b.clip(-50, -50, -10, -5)
	assert.False(t, ok)

	x0, y0, x1, y1, ok := b.clip(-100, 10, 100, 10)
	require.True(t, ok)
	assert.Equal(t, 10, y0)
	assert.Equal(t, 10, y1)
	assert.LessOrEqual(t, x0, 0)
	assert.GreaterOrEqual(t, x1, 19)
	assert.LessOrEqual(t, x1, 20)
}

func TestOverlayLeft(t *testing.T) {
	got := overlayLeft("aaaa\nbbbb\ncccc", "XY")
	assert.Equal(t, "aaaa\nXYbb\ncccc", got)
}

func TestTierGlyph(t *testing.T) {
	assert.Equal(t, '·', tierGlyph(-1))
	assert.Equal(t, '○', tierGlyph(2))
	assert.Equal(t, '■', tierGlyph(99))
}
