package viewport

import "gonum.org/v1/gonum/spatial/r2"

// ViewBox is the overlay's viewBox. Overlay space is data space with the y
// axis flipped: overlay (x, y) = data (x, -y).
type ViewBox struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Mapper converts points between data, overlay and screen space. The zero
// value maps nothing; a Viewport keeps its Mapper in sync with every frame.
type Mapper struct {
	x, y    LinearScale
	viewBox ViewBox
	client  Size
}

// DataToForeground converts a data-space point to overlay space.
func DataToForeground(p r2.Vec) r2.Vec { return r2.Vec{X: p.X, Y: -p.Y} }

// ForegroundToData converts an overlay-space point to data space.
func ForegroundToData(p r2.Vec) r2.Vec { return r2.Vec{X: p.X, Y: -p.Y} }

// SetScales installs the local data->screen scales.
func (m *Mapper) SetScales(x, y LinearScale) {
	m.x, m.y = x, y
}

// SetClientSize records the rendered overlay size in pixels.
func (m *Mapper) SetClientSize(s Size) {
	m.client = s
}

func (m Mapper) ViewBox() ViewBox  { return m.viewBox }
func (m Mapper) ClientSize() Size { return m.client }

func (m Mapper) DataToScreen(p r2.Vec) r2.Vec {
	return r2.Vec{X: m.x.Apply(p.X), Y: m.y.Apply(p.Y)}
}

func (m Mapper) ScreenToData(p r2.Vec) r2.Vec {
	return r2.Vec{X: m.x.Invert(p.X), Y: m.y.Invert(p.Y)}
}

// UpdateForegroundScaling derives the overlay viewBox from the visible data
// window. The y origin is flipped because overlay y grows downward.
func (m *Mapper) UpdateForegroundScaling(d ScaleDomain) ViewBox {
	height := d.YMax - d.YMin
	m.viewBox = ViewBox{
		MinX:   d.XMin,
		MinY:   -d.YMin - height,
		Width:  d.XMax - d.XMin,
		Height: height,
	}
	return m.viewBox
}

func (m Mapper) sized() bool {
	return m.viewBox.Width != 0 && m.viewBox.Height != 0 && !m.client.empty()
}

// ForegroundToScreenCoordinates maps an overlay-space point to screen
// pixels. It fails with ErrInvalidViewport until both the viewBox and the
// client size are non-zero.
func (m Mapper) ForegroundToScreenCoordinates(x, y float64) (r2.Vec, error) {
	if !m.sized() {
		return r2.Vec{}, ErrInvalidViewport
	}
	vb := m.viewBox
	return r2.Vec{
		X: (x - vb.MinX) / vb.Width * m.client.Width,
		Y: (y - vb.MinY) / vb.Height * m.client.Height,
	}, nil
}

// ScreenToForegroundCoordinates is the inverse of ForegroundToScreenCoordinates.
func (m Mapper) ScreenToForegroundCoordinates(sx, sy float64) (r2.Vec, error) {
	if !m.sized() {
		return r2.Vec{}, ErrInvalidViewport
	}
	vb := m.viewBox
	return r2.Vec{
		X: vb.MinX + sx/m.client.Width*vb.Width,
		Y: vb.MinY + sy/m.client.Height*vb.Height,
	}, nil
}

// ScreenCoordinatesOf anchors a data-space point in screen pixels.
func (m Mapper) ScreenCoordinatesOf(p r2.Vec) (r2.Vec, error) {
	f := DataToForeground(p)
	return m.ForegroundToScreenCoordinates(f.X, f.Y)
}
