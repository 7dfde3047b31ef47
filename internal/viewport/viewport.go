// Package viewport owns the pan/zoom state of a map view and everything
// derived from it: the visible data window, the pixel ranges, the overlay
// viewBox and the layer visibility vector.
package viewport

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/layers"
)

const (
	DefaultZoomMin = 0.5
	DefaultZoomMax = 64
)

type Options struct {
	// Extent is the intrinsic data-space extent of the map.
	Extent  ScaleDomain
	ZoomMin float64
	ZoomMax float64
	// Layers receives the zoom level on every frame. A fresh engine is
	// created when nil.
	Layers *layers.Engine
	Logger *slog.Logger
}

// Frame is one consistent snapshot: every field is derived from the same
// Transform.
type Frame struct {
	Seq        uint64
	Transform  Transform
	Size       Size
	Domain     ScaleDomain
	Range      ScaleRange
	ViewBox    ViewBox
	LayerIDs   []string
	Visibility []float64
}

// Consumer is notified after every completed update. OnFrame runs while the
// update is still in progress and must not call Set, Pan, ZoomAt or Resize.
type Consumer interface {
	OnFrame(f Frame)
}

type ConsumerFunc func(f Frame)

func (fn ConsumerFunc) OnFrame(f Frame) { fn(f) }

type subscription struct {
	id uint64
	c  Consumer
}

// Viewport is the owned view state. All mutation goes through its
// TransformStore; derived values are recomputed synchronously before any
// consumer sees the new transform.
type Viewport struct {
	store  *TransformStore
	layers *layers.Engine
	log    *slog.Logger

	mu     sync.RWMutex
	scales *ScaleDomainManager
	mapper Mapper
	size   Size
	frame  Frame

	subMu  sync.Mutex
	subs   []subscription
	nextID uint64
}

func New(opts Options) (*Viewport, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ZoomMin <= 0 {
		opts.ZoomMin = DefaultZoomMin
	}
	if opts.ZoomMax < opts.ZoomMin {
		opts.ZoomMax = max(DefaultZoomMax, opts.ZoomMin)
	}
	if opts.Layers == nil {
		opts.Layers = layers.NewEngine(opts.Logger)
	}
	scales, err := NewScaleDomainManager(opts.Extent, opts.Logger)
	if err != nil {
		return nil, err
	}
	v := &Viewport{
		store:  NewTransformStore(opts.ZoomMin, opts.ZoomMax),
		layers: opts.Layers,
		log:    opts.Logger,
		scales: scales,
	}
	v.frame.Transform = Identity
	v.store.OnChange(v.recompute)
	return v, nil
}

// recompute runs the derivation chain for t: local domains, mapper scales
// and viewBox, layer visibility, then consumers.
func (v *Viewport) recompute(t Transform) {
	v.mu.Lock()
	if err := v.scales.TransformLocalScaleDomains(t); err != nil {
		v.mu.Unlock()
		v.log.Debug("frame deferred", "transform", t.String(), "err", err)
		return
	}
	if !v.scales.Ready() {
		v.mu.Unlock()
		v.log.Debug("frame deferred, no scale ranges", "transform", t.String())
		return
	}
	domain := v.scales.Domain()
	v.mapper.SetScales(v.scales.X(), v.scales.Y())
	viewBox := v.mapper.UpdateForegroundScaling(domain)

	vis, err := v.layers.Apply(t.K)
	if err != nil {
		v.log.Debug("visibility not updated", "k", t.K, "err", err)
	}
	ls := v.layers.Layers()
	ids := make([]string, len(ls))
	for i, l := range ls {
		ids[i] = l.ID
	}

	v.frame = Frame{
		Seq:        v.frame.Seq + 1,
		Transform:  t,
		Size:       v.size,
		Domain:     domain,
		Range:      v.scales.Range(),
		ViewBox:    viewBox,
		LayerIDs:   ids,
		Visibility: vis,
	}
	f := v.frame.clone()
	v.mu.Unlock()

	v.subMu.Lock()
	subs := append([]subscription(nil), v.subs...)
	v.subMu.Unlock()
	for _, s := range subs {
		s.c.OnFrame(f)
	}
}

func (f Frame) clone() Frame {
	f.LayerIDs = append([]string(nil), f.LayerIDs...)
	f.Visibility = append([]float64(nil), f.Visibility...)
	return f
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.store.Get() }

// Frame returns the last published frame. Seq is zero until the viewport
// has been sized.
func (v *Viewport) Frame() Frame {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame.clone()
}

func (v *Viewport) Size() Size {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size
}

// Extent returns the intrinsic map extent.
func (v *Viewport) Extent() ScaleDomain { return v.scales.Extent() }

// ScaleExtent returns the [zoomMin, zoomMax] bounds.
func (v *Viewport) ScaleExtent() (float64, float64) { return v.store.ScaleExtent() }

// ClampZoom constrains k to the scale extent.
func (v *Viewport) ClampZoom(k float64) float64 { return v.store.Clamp(k) }

// Set stores t, clamping its scale, and publishes the resulting frame.
func (v *Viewport) Set(t Transform) Transform { return v.store.Set(t) }

// Pan shifts the view by a screen-pixel delta.
func (v *Viewport) Pan(dx, dy float64) Transform {
	return v.store.Update(func(t Transform) Transform { return t.Translate(dx, dy) })
}

// ZoomAt multiplies the scale by factor, keeping the point under anchor
// (screen pixels) fixed. The scale is clamped before the translate is
// solved so the anchor stays put at the zoom limits too.
func (v *Viewport) ZoomAt(factor float64, anchor r2.Vec) Transform {
	return v.store.Update(func(t Transform) Transform {
		return t.ScaleAt(v.store.Clamp(t.K*factor), anchor)
	})
}

// Subscribe registers c for frame notifications and returns a func that
// removes it again.
func (v *Viewport) Subscribe(c Consumer) (unsubscribe func()) {
	v.subMu.Lock()
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscription{id: id, c: c})
	v.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.subMu.Lock()
			defer v.subMu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// RegisterLayer adds an overlay layer and republishes the frame so its
// handle receives an opacity straight away.
func (v *Viewport) RegisterLayer(l layers.Layer, h layers.Handle) error {
	if err := v.layers.Register(l, h); err != nil {
		return err
	}
	v.store.Refresh()
	return nil
}

func (v *Viewport) UnregisterLayer(id string) bool {
	if !v.layers.Unregister(id) {
		return false
	}
	v.store.Refresh()
	return true
}

// Layers returns the registered layers sorted by id.
func (v *Viewport) Layers() []layers.Layer { return v.layers.Layers() }

// LayerEngine exposes the visibility engine backing this viewport.
func (v *Viewport) LayerEngine() *layers.Engine { return v.layers }

// Mapper returns a copy of the coordinate mapper for the current frame.
func (v *Viewport) Mapper() Mapper {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mapper
}

// ScreenCoordinatesOf anchors a data-space point in screen pixels.
func (v *Viewport) ScreenCoordinatesOf(p r2.Vec) (r2.Vec, error) {
	return v.Mapper().ScreenCoordinatesOf(p)
}

// ForegroundToScreenCoordinates maps an overlay-space point to screen pixels.
func (v *Viewport) ForegroundToScreenCoordinates(x, y float64) (r2.Vec, error) {
	return v.Mapper().ForegroundToScreenCoordinates(x, y)
}

// ScreenToData maps a screen pixel back into data space.
func (v *Viewport) ScreenToData(p r2.Vec) (r2.Vec, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.scales.Ready() {
		return r2.Vec{}, ErrInvalidViewport
	}
	return v.mapper.ScreenToData(p), nil
}

// DataToScreen maps a data-space point through the visible scales.
func (v *Viewport) DataToScreen(p r2.Vec) (r2.Vec, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if !v.scales.Ready() {
		return r2.Vec{}, ErrInvalidViewport
	}
	return v.mapper.DataToScreen(p), nil
}

// PixelsPerUnit is the number of screen pixels per data unit at scale 1.
func (v *Viewport) PixelsPerUnit() (float64, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scales.PixelsPerUnit()
}
