package layers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcLayerVisibility(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name                   string
		k, start, stop, radius float64
		want                   float64
	}{
		{"below start", 0.5, 0.8, inf, 0.8, 0},
		{"at start", 0.8, 0.8, inf, 0.8, 0},
		{"mid ramp", 1.2, 0.8, inf, 0.8, 0.5},
		{"ramp end", 1.6, 0.8, inf, 0.8, 1},
		{"saturated", 50, 0.8, inf, 0.8, 1},
		{"past finite stop", 5, 0.8, 4, 0.8, 0},
		{"at finite stop", 4, 0.8, 4, 0.8, 1},
		{"always visible", 0.001, math.Inf(-1), inf, math.Inf(-1), 1},
		{"hard step below", 2, 2, inf, 0, 0},
		{"hard step above", 2.0001, 2, inf, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcLayerVisibility(tt.k, tt.start, tt.stop, tt.radius)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestVisibilityMonotonicOverRamp(t *testing.T) {
	for _, cfg := range [][2]float64{{0.8, 0.8}, {3.2, 3.2}, {1, 0.25}} {
		start, radius := cfg[0], cfg[1]
		prev := CalcLayerVisibility(start, start, Unbounded, radius)
		assert.Zero(t, prev)
		for i := 1; i <= 100; i++ {
			k := start + radius*float64(i)/100
			v := CalcLayerVisibility(k, start, Unbounded, radius)
			assert.GreaterOrEqual(t, v, prev, "k=%v", k)
			assert.True(t, v >= 0 && v <= 1)
			prev = v
		}
		assert.InDelta(t, 1, prev, 1e-9)
	}
}

func TestVisibilitySaturates(t *testing.T) {
	for k := 1.7; k < 1e6; k *= 1.9 {
		assert.Equal(t, 1.0, CalcLayerVisibility(k, 0.8, Unbounded, 0.8), "k=%v", k)
	}
}

type recorder struct{ values []float64 }

func (r *recorder) SetOpacity(o float64) { r.values = append(r.values, o) }

func TestEngineRegistry(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Register(Layer{ID: "layer2", ZoomThreshold: 3.2, FadeRadius: 3.2}, nil))
	require.NoError(t, e.Register(Layer{ID: "layer0", ZoomThreshold: math.Inf(-1), FadeRadius: math.Inf(-1)}, nil))
	require.NoError(t, e.Register(Layer{ID: "layer1", ZoomThreshold: 0.8, FadeRadius: 0.8}, nil))

	assert.ErrorIs(t, e.Register(Layer{ID: "layer1"}, nil), ErrDuplicateLayer)
	assert.ErrorIs(t, e.Register(Layer{ID: LabelsGroupID}, nil), ErrNotFading)
	assert.ErrorIs(t, e.Register(Layer{ID: "ghost", Hidden: true}, nil), ErrNotFading)

	var ids []string
	for _, l := range e.Layers() {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"layer0", "layer1", "layer2"}, ids)
	assert.Equal(t, 3, e.Len())

	k, ok := e.FullyVisibleAt("layer2")
	assert.True(t, ok)
	assert.InDelta(t, 6.4, k, 1e-9)

	assert.True(t, e.Unregister("layer0"))
	assert.False(t, e.Unregister("layer0"))
	assert.Equal(t, 2, e.Len())
}

func TestEngineApply(t *testing.T) {
	e := NewEngine(nil)
	a, b := &recorder{}, &recorder{}
	require.NoError(t, e.Register(Layer{ID: "a", ZoomThreshold: 1, FadeRadius: 1}, a))
	require.NoError(t, e.Register(Layer{ID: "b", ZoomThreshold: 2, FadeRadius: 2}, b))

	vis, err := e.Apply(1.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0}, vis)
	assert.Equal(t, []float64{0.5}, a.values)
	assert.Equal(t, []float64{0}, b.values)
	assert.Equal(t, 0.5, e.Layers()[0].Opacity())

	vis, err = e.Apply(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, vis)
}

func TestSkippedUpdateKeepsPreviousVector(t *testing.T) {
	e := NewEngine(nil)
	r := &recorder{}
	require.NoError(t, e.Register(Layer{ID: "a", ZoomThreshold: 1, FadeRadius: 1}, r))

	// Nothing computed yet: the previous vector is empty.
	vis, err := e.Visibilities(0)
	assert.ErrorIs(t, err, ErrSkippedUpdate)
	assert.Empty(t, vis)

	want, err := e.Apply(1.25)
	require.NoError(t, err)

	for _, k := range []float64{0, -2, math.NaN()} {
		vis, err := e.Apply(k)
		assert.ErrorIs(t, err, ErrSkippedUpdate)
		assert.Equal(t, want, vis)
	}
	assert.Len(t, r.values, 1, "handles untouched on skipped updates")
}

func TestSkippedUpdateAfterRegistryChange(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Register(Layer{ID: "a", ZoomThreshold: 1, FadeRadius: 1}, nil))
	vis, err := e.Apply(1.5)
	require.NoError(t, err)
	require.Equal(t, []float64{0.5}, vis)

	require.NoError(t, e.Register(Layer{ID: "b", ZoomThreshold: 2, FadeRadius: 2}, nil))
	vis, err = e.Visibilities(0)
	assert.ErrorIs(t, err, ErrSkippedUpdate)
	assert.Equal(t, []float64{0.5, 0}, vis)

	require.True(t, e.Unregister("a"))
	vis, err = e.Visibilities(math.NaN())
	assert.ErrorIs(t, err, ErrSkippedUpdate)
	assert.Equal(t, []float64{0}, vis)
}
