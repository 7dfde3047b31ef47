package viewport

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) empty() bool { return !(s.Width > 0 && s.Height > 0) }

// Center returns the geometric centre of the viewport.
func (s Size) Center() r2.Vec { return r2.Vec{X: s.Width / 2, Y: s.Height / 2} }

// ScaleDomain is a window of data space. Data y grows upward.
type ScaleDomain struct {
	XMin float64 `json:"xMin" yaml:"xMin"`
	XMax float64 `json:"xMax" yaml:"xMax"`
	YMin float64 `json:"yMin" yaml:"yMin"`
	YMax float64 `json:"yMax" yaml:"yMax"`
}

func (d ScaleDomain) Width() float64  { return d.XMax - d.XMin }
func (d ScaleDomain) Height() float64 { return d.YMax - d.YMin }

func (d ScaleDomain) Center() r2.Vec {
	return r2.Vec{X: (d.XMin + d.XMax) / 2, Y: (d.YMin + d.YMax) / 2}
}

// Contains reports whether p lies inside the domain, edges included.
func (d ScaleDomain) Contains(p r2.Vec) bool {
	return p.X >= d.XMin && p.X <= d.XMax && p.Y >= d.YMin && p.Y <= d.YMax
}

func (d ScaleDomain) degenerate() bool { return !(d.Width() > 0 && d.Height() > 0) }

// ScaleRange holds the pixel extents paired with a ScaleDomain.
type ScaleRange struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

// LinearScale maps Domain linearly onto Range.
type LinearScale struct {
	Domain [2]float64
	Range  [2]float64
}

func (s LinearScale) Apply(v float64) float64 {
	d := s.Domain[1] - s.Domain[0]
	if d == 0 {
		return s.Range[0]
	}
	return s.Range[0] + (v-s.Domain[0])/d*(s.Range[1]-s.Range[0])
}

func (s LinearScale) Invert(v float64) float64 {
	r := s.Range[1] - s.Range[0]
	if r == 0 {
		return s.Domain[0]
	}
	return s.Domain[0] + (v-s.Range[0])/r*(s.Domain[1]-s.Domain[0])
}

// ScaleDomainManager derives the global (un-zoomed) and local (visible)
// domains and the pixel ranges of the x/y scales.
//
// The y scales run from YMax at pixel 0 to YMin at the bottom edge, so data
// space keeps y pointing up while screen space points down.
type ScaleDomainManager struct {
	extent ScaleDomain

	global     ScaleDomain
	globalSize Size
	hasGlobal  bool

	local    ScaleDomain
	hasLocal bool

	rng ScaleRange

	log *slog.Logger
}

func NewScaleDomainManager(extent ScaleDomain, logger *slog.Logger) (*ScaleDomainManager, error) {
	if extent.degenerate() {
		return nil, ErrDegenerateExtent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScaleDomainManager{extent: extent, log: logger}, nil
}

// Extent returns the intrinsic map extent.
func (m *ScaleDomainManager) Extent() ScaleDomain { return m.extent }

// UpdateGlobalScaleDomains fits the whole map extent into a width x height
// viewport, preserving aspect, and centres it.
func (m *ScaleDomainManager) UpdateGlobalScaleDomains(width, height float64) error {
	if !(width > 0 && height > 0) {
		m.log.Debug("global scale domains deferred", "width", width, "height", height)
		return ErrDeferredLayout
	}
	s := min(width/m.extent.Width(), height/m.extent.Height())
	c := m.extent.Center()
	halfW, halfH := width/s/2, height/s/2
	m.global = ScaleDomain{
		XMin: c.X - halfW,
		XMax: c.X + halfW,
		YMin: c.Y - halfH,
		YMax: c.Y + halfH,
	}
	m.globalSize = Size{Width: width, Height: height}
	m.hasGlobal = true
	return nil
}

// TransformLocalScaleDomains inverse-maps the four viewport corners through
// t against the global scales and stores the visible data window.
func (m *ScaleDomainManager) TransformLocalScaleDomains(t Transform) error {
	if !m.hasGlobal {
		return ErrDeferredLayout
	}
	gx, gy := m.GlobalX(), m.GlobalY()
	w, h := m.globalSize.Width, m.globalSize.Height
	corners := [4]r2.Vec{{X: 0, Y: 0}, {X: w, Y: 0}, {X: 0, Y: h}, {X: w, Y: h}}

	xs := make([]float64, len(corners))
	ys := make([]float64, len(corners))
	for i, c := range corners {
		base := t.Invert(c)
		xs[i] = gx.Invert(base.X)
		ys[i] = gy.Invert(base.Y)
	}
	local := ScaleDomain{
		XMin: floats.Min(xs),
		XMax: floats.Max(xs),
		YMin: floats.Min(ys),
		YMax: floats.Max(ys),
	}
	if local.degenerate() {
		return ErrDeferredLayout
	}
	m.local = local
	m.hasLocal = true
	return nil
}

// UpdateScaleRanges resets the pixel ranges to [0,width] and [0,height].
func (m *ScaleDomainManager) UpdateScaleRanges(width, height float64) error {
	if !(width > 0 && height > 0) {
		m.log.Debug("scale ranges deferred", "width", width, "height", height)
		return ErrDeferredLayout
	}
	m.rng = ScaleRange{X: [2]float64{0, width}, Y: [2]float64{0, height}}
	return nil
}

// Ready reports whether a valid local domain and range exist.
func (m *ScaleDomainManager) Ready() bool {
	return m.hasLocal && m.rng.X[1] > 0 && m.rng.Y[1] > 0
}

func (m *ScaleDomainManager) Global() ScaleDomain { return m.global }
func (m *ScaleDomainManager) Domain() ScaleDomain { return m.local }
func (m *ScaleDomainManager) Range() ScaleRange   { return m.rng }

// GlobalX maps data x to un-zoomed pixels.
func (m *ScaleDomainManager) GlobalX() LinearScale {
	return LinearScale{
		Domain: [2]float64{m.global.XMin, m.global.XMax},
		Range:  [2]float64{0, m.globalSize.Width},
	}
}

// GlobalY maps data y to un-zoomed pixels, flipped.
func (m *ScaleDomainManager) GlobalY() LinearScale {
	return LinearScale{
		Domain: [2]float64{m.global.YMax, m.global.YMin},
		Range:  [2]float64{0, m.globalSize.Height},
	}
}

// X maps visible data x to screen pixels.
func (m *ScaleDomainManager) X() LinearScale {
	return LinearScale{Domain: [2]float64{m.local.XMin, m.local.XMax}, Range: m.rng.X}
}

// Y maps visible data y to screen pixels, flipped.
func (m *ScaleDomainManager) Y() LinearScale {
	return LinearScale{Domain: [2]float64{m.local.YMax, m.local.YMin}, Range: m.rng.Y}
}

// PixelsPerUnit is the un-zoomed number of pixels per data unit.
func (m *ScaleDomainManager) PixelsPerUnit() (float64, error) {
	if !m.hasGlobal {
		return 0, ErrDeferredLayout
	}
	return m.globalSize.Width / m.global.Width(), nil
}
