// Package layers computes zoom-dependent opacity for the overlay layer stack.
package layers

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
)

// LabelsGroupID is the overlay group that holds labels rather than a
// fading layer.
const LabelsGroupID = "labels"

var (
	// ErrSkippedUpdate is returned for a missing or non-positive zoom level.
	// The previous visibility vector is kept.
	ErrSkippedUpdate = errors.New("layers: zoom level not positive, update skipped")
	// ErrDuplicateLayer is returned when a layer id is registered twice.
	ErrDuplicateLayer = errors.New("layers: duplicate layer id")
	// ErrNotFading is returned for hidden groups and the labels group.
	ErrNotFading = errors.New("layers: group does not take part in fading")
)

// Unbounded is the kStop every layer uses: once fully visible a layer never
// fades out again.
var Unbounded = math.Inf(1)

// Handle receives a layer's opacity, e.g. an overlay group in a renderer.
type Handle interface {
	SetOpacity(opacity float64)
}

// Layer is one independently fading overlay group.
type Layer struct {
	ID            string
	ZoomThreshold float64
	FadeRadius    float64
	Hidden        bool

	opacity float64
}

// Opacity is the value last pushed to the layer's handle.
func (l Layer) Opacity() float64 { return l.opacity }

// CalcLayerVisibility is the piecewise opacity ramp: 0 up to kStart, a
// linear ramp over kRadius, 1 up to kStop and 0 beyond.
func CalcLayerVisibility(k, kStart, kStop, kRadius float64) float64 {
	switch {
	case k <= kStart:
		return 0
	case k <= kStart+kRadius:
		return 1 - (kStart+kRadius-k)/kRadius
	case k <= kStop:
		return 1
	default:
		return 0
	}
}

type entry struct {
	layer  Layer
	handle Handle
}

// Engine keeps the registered layers sorted by id and computes their
// visibility vector.
type Engine struct {
	mu      sync.Mutex
	entries []*entry
	last    []float64
	lastK   float64
	log     *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{log: logger}
}

// Register adds a layer; h may be nil. Hidden groups and the labels group
// are refused with ErrNotFading.
func (e *Engine) Register(l Layer, h Handle) error {
	if l.Hidden || l.ID == LabelsGroupID {
		return fmt.Errorf("%w: %q", ErrNotFading, l.ID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i := sort.Search(len(e.entries), func(i int) bool { return e.entries[i].layer.ID >= l.ID })
	if i < len(e.entries) && e.entries[i].layer.ID == l.ID {
		return fmt.Errorf("%w: %q", ErrDuplicateLayer, l.ID)
	}
	l.opacity = 0
	e.entries = append(e.entries, nil)
	copy(e.entries[i+1:], e.entries[i:])
	e.entries[i] = &entry{layer: l, handle: h}
	e.relast()
	return nil
}

// Unregister removes the layer with the given id.
func (e *Engine) Unregister(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, en := range e.entries {
		if en.layer.ID == id {
			e.entries = append(e.entries[:i], e.entries[i+1:]...)
			e.relast()
			return true
		}
	}
	return false
}

// Layers returns the registered layers in id order.
func (e *Engine) Layers() []Layer {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Layer, len(e.entries))
	for i, en := range e.entries {
		out[i] = en.layer
	}
	return out
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Visibilities returns the visibility vector for zoom level k, index
// aligned with Layers. For a missing or non-positive k it returns the
// previous vector together with ErrSkippedUpdate.
func (e *Engine) Visibilities(k float64) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compute(k)
}

// Apply computes the visibility vector for k and pushes each value to its
// layer handle.
func (e *Engine) Apply(k float64) ([]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	vis, err := e.compute(k)
	if err != nil {
		return vis, err
	}
	for i, en := range e.entries {
		en.layer.opacity = vis[i]
		if en.handle != nil {
			en.handle.SetOpacity(vis[i])
		}
	}
	return vis, nil
}

func (e *Engine) compute(k float64) ([]float64, error) {
	if math.IsNaN(k) || k <= 0 {
		e.log.Debug("visibility update skipped", "k", k)
		return append([]float64(nil), e.last...), ErrSkippedUpdate
	}
	e.lastK = k
	e.relast()
	return append([]float64(nil), e.last...), nil
}

// relast recomputes the previous vector at the last valid zoom level so it
// stays index aligned with the registry.
func (e *Engine) relast() {
	if e.lastK <= 0 {
		e.last = nil
		return
	}
	e.last = make([]float64, len(e.entries))
	for i, en := range e.entries {
		e.last[i] = CalcLayerVisibility(e.lastK, en.layer.ZoomThreshold, Unbounded, en.layer.FadeRadius)
	}
}

// FullyVisibleAt returns the smallest zoom level at which the layer with
// the given id reaches full opacity.
func (e *Engine) FullyVisibleAt(id string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, en := range e.entries {
		if en.layer.ID == id {
			return en.layer.ZoomThreshold + en.layer.FadeRadius, true
		}
	}
	return 0, false
}
