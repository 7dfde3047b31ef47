package tui

import (
	"errors"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/geom"
	"scimap/internal/layers"
	"scimap/internal/viewport"
)

// overlayLayer is the renderer side of one atlas layer. The visibility
// engine pushes its opacity through SetOpacity.
type overlayLayer struct {
	mu      sync.Mutex
	id      string
	color   string
	data    geom.Data
	hidden  bool
	fading  bool
	opacity float64
}

func (o *overlayLayer) SetOpacity(v float64) {
	o.mu.Lock()
	o.opacity = v
	o.mu.Unlock()
}

func (o *overlayLayer) Opacity() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opacity
}

// markerPos is a marker anchored in braille micro-pixels.
type markerPos struct {
	idx  int
	x, y float64
	tier int
}

// scene holds the renderer collaborators shared by every copy of Model:
// the overlay layers and the marker renderer, which repositions markers on
// every frame.
type scene struct {
	vp  *viewport.Viewport
	log *slog.Logger

	overlays   []*overlayLayer
	thresholds []float64

	mu        sync.Mutex
	markers   []geom.Marker
	positions []markerPos
	frame     viewport.Frame
	highlight geom.Data
}

func newScene(vp *viewport.Viewport, atlas *geom.Atlas, thresholds []float64, logger *slog.Logger) *scene {
	s := &scene{vp: vp, log: logger, thresholds: thresholds}
	for _, l := range atlas.Layers {
		o := &overlayLayer{id: l.ID, color: l.Color, data: l.Geometry, hidden: l.Hidden, opacity: 1}
		if o.color == "" {
			o.color = string(baseFg)
		}
		err := vp.RegisterLayer(layers.Layer{
			ID:            l.ID,
			ZoomThreshold: l.ZoomThreshold,
			FadeRadius:    l.FadeRadius,
			Hidden:        l.Hidden,
		}, o)
		switch {
		case err == nil:
			o.fading = true
		case errors.Is(err, layers.ErrNotFading):
			logger.Debug("layer drawn without fading", "id", l.ID)
		default:
			logger.Warn("layer not registered", "id", l.ID, "err", err)
		}
		s.overlays = append(s.overlays, o)
	}
	s.setMarkers(atlas.Markers)
	return s
}

func (s *scene) setMarkers(ms []geom.Marker) {
	s.mu.Lock()
	s.markers = append([]geom.Marker(nil), ms...)
	s.mu.Unlock()
	s.reposition()
}

func (s *scene) addMarkers(ms []geom.Marker) {
	s.mu.Lock()
	s.markers = append(s.markers, ms...)
	s.mu.Unlock()
	s.reposition()
}

func (s *scene) Markers() []geom.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]geom.Marker(nil), s.markers...)
}

func (s *scene) setHighlight(d geom.Data) {
	s.mu.Lock()
	s.highlight = d
	s.mu.Unlock()
}

// OnFrame records the frame and moves every marker to its new anchor.
func (s *scene) OnFrame(f viewport.Frame) {
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
	s.reposition()
}

func (s *scene) reposition() {
	mp := s.vp.Mapper()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = s.positions[:0]
	for i, m := range s.markers {
		p, err := mp.ScreenCoordinatesOf(r2.Vec{X: m.X, Y: m.Y})
		if err != nil {
			// not laid out yet; the next frame places them
			s.positions = s.positions[:0]
			return
		}
		s.positions = append(s.positions, markerPos{
			idx:  i,
			x:    p.X,
			y:    p.Y,
			tier: geom.TierOf(m.NumRecentArticles, s.thresholds),
		})
	}
}

func (s *scene) snapshot() (viewport.Frame, []geom.Marker, []markerPos, geom.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, append([]geom.Marker(nil), s.markers...), append([]markerPos(nil), s.positions...), s.highlight
}

// markerAt returns the marker whose anchor is nearest to the micro-pixel
// (x, y) within radius, or -1.
func (s *scene) markerAt(x, y, radius float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	best, bestD := -1, radius*radius
	for _, p := range s.positions {
		dx, dy := p.x-x, p.y-y
		if d := dx*dx + dy*dy; d <= bestD {
			best, bestD = p.idx, d
		}
	}
	return best
}
