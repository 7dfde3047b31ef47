package viewport

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is the pan/zoom state applied to un-zoomed pixel space:
// screen = base*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform every view starts from.
var Identity = Transform{K: 1}

func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Vec{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Vec{X: t.InvertX(p.X), Y: t.InvertY(p.Y)}
}

func (t Transform) InvertX(x float64) float64 { return (x - t.X) / t.K }
func (t Transform) InvertY(y float64) float64 { return (y - t.Y) / t.K }

// Translate shifts the transform by a screen-pixel delta.
func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// ScaleAt returns the transform with scale k that keeps the base point under
// anchor (screen pixels) in place.
func (t Transform) ScaleAt(k float64, anchor r2.Vec) Transform {
	p := t.Invert(anchor)
	return Transform{K: k, X: anchor.X - p.X*k, Y: anchor.Y - p.Y*k}
}

func (t Transform) finite() bool {
	for _, v := range [...]float64{t.K, t.X, t.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (t Transform) String() string {
	return fmt.Sprintf("translate(%.3f,%.3f) scale(%.4f)", t.X, t.Y, t.K)
}

// TransformStore owns the current Transform. Writers are serialized and
// every Set runs the registered listeners to completion before the next
// writer can start.
type TransformStore struct {
	writeMu sync.Mutex

	mu        sync.RWMutex
	current   Transform
	zoomMin   float64
	zoomMax   float64
	listeners []func(Transform)
}

func NewTransformStore(zoomMin, zoomMax float64) *TransformStore {
	return &TransformStore{
		current: Identity,
		zoomMin: zoomMin,
		zoomMax: zoomMax,
	}
}

// Get returns the current transform.
func (s *TransformStore) Get() Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ScaleExtent returns the [zoomMin, zoomMax] bounds.
func (s *TransformStore) ScaleExtent() (float64, float64) {
	return s.zoomMin, s.zoomMax
}

// Clamp constrains k to the scale extent.
func (s *TransformStore) Clamp(k float64) float64 {
	if k < s.zoomMin {
		return s.zoomMin
	}
	if k > s.zoomMax {
		return s.zoomMax
	}
	return k
}

// OnChange registers fn to run synchronously after every Set, in
// registration order.
func (s *TransformStore) OnChange(fn func(Transform)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Set clamps next.K into the scale extent, stores it and emits it to every
// listener before returning. Non-finite transforms are dropped and the
// current one is returned unchanged.
func (s *TransformStore) Set(next Transform) Transform {
	return s.Update(func(Transform) Transform { return next })
}

// Update derives the next transform from the current one and stores it
// like Set. fn runs with writers excluded, so read-modify-write gestures
// do not lose concurrent updates.
func (s *TransformStore) Update(fn func(Transform) Transform) Transform {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := fn(s.Get())
	if !next.finite() {
		return s.Get()
	}
	next.K = s.Clamp(next.K)

	s.mu.Lock()
	s.current = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Refresh re-emits the current transform, e.g. after a resize.
func (s *TransformStore) Refresh() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	cur := s.current
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(cur)
	}
}
