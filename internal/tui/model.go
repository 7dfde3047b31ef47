package tui

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scimap/internal/camera"
	"scimap/internal/config"
	"scimap/internal/geom"
	"scimap/internal/viewport"
)

type sidebarMode int

const (
	sidebarFiles sidebarMode = iota
	sidebarMarkers
)

type Options struct {
	// Atlas is the map to show; nil means the built-in atlas.
	Atlas *geom.Atlas
	// Markers are shown in addition to the atlas markers.
	Markers []geom.Marker
	Config  config.Config
	Logger  *slog.Logger
	// Dir is listed in the file sidebar; defaults to the working directory.
	Dir string
	// Now is the frame clock; defaults to time.Now.
	Now func() time.Time
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	cfg   config.Config
	log   *slog.Logger
	now   func() time.Time
	atlas *geom.Atlas
	vp    *viewport.Viewport
	cam   *camera.Controller
	scene *scene

	// frame clock
	ticking bool

	// sidebar
	cwd     string
	l       list.Model
	mode    sidebarMode
	selPath string

	// last rendered map size in cells
	mapW int
	mapH int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// inspect popup
	inspectPopup string

	// hover state
	hovering     bool
	hoverCellX   int
	hoverCellY   int
	hoverHasData bool
	hoverX       float64
	hoverY       float64
	hoverMarker  int

	// drag-to-pan
	dragging  bool
	dragMoved bool
	dragX     int
	dragY     int

	// layer table
	showLayers bool
	tbl        table.Model
}

func New(opts Options) (Model, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Config.FrameInterval <= 0 {
		opts.Config.FrameInterval = 16 * time.Millisecond
	}
	if opts.Config.MarkerThresholds == nil {
		opts.Config.MarkerThresholds = geom.DefaultTierThresholds
	}
	atlas := opts.Atlas
	if atlas == nil {
		var err error
		if atlas, err = geom.DefaultAtlas(); err != nil {
			return Model{}, err
		}
	}
	m := Model{
		helpVisible: true,
		status:      "scimap ready",
		cfg:         opts.Config,
		log:         opts.Logger,
		now:         opts.Now,
		hoverMarker: -1,
	}
	if err := m.setAtlas(atlas); err != nil {
		return Model{}, err
	}
	if len(opts.Markers) > 0 {
		m.scene.addMarkers(opts.Markers)
	}
	m.cwd = opts.Dir
	if m.cwd == "" {
		m.cwd, _ = os.Getwd()
	}
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, MULTI*). Enter fits the view to it; Esc cancels."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m, nil
}

// setAtlas builds a fresh viewport, camera and scene for a.
func (m *Model) setAtlas(a *geom.Atlas) error {
	vp, err := viewport.New(viewport.Options{
		Extent: viewport.ScaleDomain{
			XMin: a.Extent.MinX, XMax: a.Extent.MaxX,
			YMin: a.Extent.MinY, YMax: a.Extent.MaxY,
		},
		ZoomMin: m.cfg.ZoomMin,
		ZoomMax: m.cfg.ZoomMax,
		Logger:  m.log,
	})
	if err != nil {
		return fmt.Errorf("atlas %q: %w", a.Name, err)
	}
	if m.cam != nil {
		m.cam.Cancel()
	}
	m.atlas = a
	m.vp = vp
	m.cam = camera.New(vp, camera.Options{
		FitDuration:  m.cfg.FitDuration,
		ZoomDuration: m.cfg.ZoomDuration,
		Now:          m.now,
		Logger:       m.log,
	})
	m.scene = newScene(vp, a, m.cfg.MarkerThresholds, m.log)
	vp.Subscribe(m.scene)
	m.inspectPopup = ""
	m.hoverMarker = -1
	if m.width > 0 && m.height > 0 {
		m.resize()
	}
	return nil
}

// resize hands the map area, in braille micro-pixels, to the viewport.
func (m *Model) resize() {
	lay := m.layout()
	m.mapW, m.mapH = lay.w, lay.h
	if err := m.vp.Resize(float64(lay.w*2), float64(lay.h*4)); err != nil {
		m.log.Debug("resize", "err", err)
	}
	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, lay.h-2)
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Viewport exposes the model's view state.
func (m Model) Viewport() *viewport.Viewport { return m.vp }

// Camera exposes the model's camera controller.
func (m Model) Camera() *camera.Controller { return m.cam }

func (m Model) labelsStyle() lipgloss.Style {
	if m.atlas.LabelsColor == "" {
		return labelStyle
	}
	return labelStyle.Foreground(lipgloss.Color(m.atlas.LabelsColor))
}
