package geom

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWKT(t *testing.T) {
	tests := []struct {
		name                 string
		in                   string
		points, lines, polys int
		want                 BBox
	}{
		{"point", "POINT(3 4)", 1, 0, 0, BBox{MinX: 3, MaxX: 3, MinY: 4, MaxY: 4}},
		{"linestring", "LINESTRING(0 0, 10 5, 20 -5)", 0, 1, 0, BBox{MinX: 0, MaxX: 20, MinY: -5, MaxY: 5}},
		{"polygon", "POLYGON((0 0, 4 0, 4 3, 0 3, 0 0))", 0, 0, 1, BBox{MinX: 0, MaxX: 4, MinY: 0, MaxY: 3}},
		{"multipolygon", "MULTIPOLYGON(((0 0, 1 0, 1 1, 0 0)),((5 5, 6 5, 6 7, 5 5)))", 0, 0, 2, BBox{MinX: 0, MaxX: 6, MinY: 0, MaxY: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseWKT(tt.in)
			require.NoError(t, err)
			assert.Len(t, d.Points, tt.points)
			assert.Len(t, d.Lines, tt.lines)
			assert.Len(t, d.Polygons, tt.polys)
			assert.Equal(t, tt.want, d.BBox)
		})
	}

	for _, bad := range []string{"", "   ", "CIRCLE(1 2)", "POINT(a b)"} {
		_, err := ParseWKT(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestLoadGeo(t *testing.T) {
	d, err := LoadGeo(filepath.Join("testdata", "layer.geojson"))
	require.NoError(t, err)
	assert.Len(t, d.Polygons, 1)
	assert.Len(t, d.Lines, 1)
	assert.Len(t, d.Points, 2)
	assert.Equal(t, BBox{MinX: -5, MaxX: 10, MinY: 0, MaxY: 20}, d.BBox)
}

func TestParseGeoBareGeometry(t *testing.T) {
	d, err := ParseGeo([]byte(`{"type":"LineString","coordinates":[[1,2],[3,4]]}`))
	require.NoError(t, err)
	assert.Equal(t, [][][2]float64{{{1, 2}, {3, 4}}}, d.Lines)

	_, err = ParseGeo([]byte(`{"coordinates":[1,2]}`))
	assert.Error(t, err)
}

func TestLoadMarkers(t *testing.T) {
	tests := []struct {
		file string
		want []Marker
	}{
		{"markers.geojson", []Marker{
			{ClusterID: "a", X: 10, Y: 20, NumRecentArticles: 120, Label: "Alpha"},
			{ClusterID: "7", X: 30, Y: 5, NumRecentArticles: 2500, Label: "Beta"},
		}},
		{"markers.csv", []Marker{
			{ClusterID: "g", X: 1.5, Y: 2.5, NumRecentArticles: 600, Label: "Gamma"},
			{ClusterID: "1", X: 3, Y: 4, NumRecentArticles: 10, Label: "Delta"},
		}},
		{"markers.kml", []Marker{
			{ClusterID: "k1", X: 12.5, Y: 40.25, NumRecentArticles: 1001, Label: "Epsilon"},
			{ClusterID: "2", X: -3, Y: 7, Label: "Zeta"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			ms, err := LoadMarkers(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ms)
		})
	}

	_, err := LoadMarkers("markers.shp")
	assert.Error(t, err)
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0}, {50, 0}, {51, 1}, {200, 1}, {201, 2}, {500, 2},
		{999, 3}, {1000, 3}, {2000, 4}, {2001, 5}, {math.MaxInt32, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierOf(tt.n, DefaultTierThresholds), "n=%d", tt.n)
	}
	assert.Equal(t, 6, Tiers(DefaultTierThresholds))
}

func TestMarkerHelpers(t *testing.T) {
	ms := []Marker{
		{Label: "b", X: 0, Y: 0, NumRecentArticles: 5},
		{Label: "a", X: 10, Y: -2, NumRecentArticles: 5},
		{Label: "c", X: 4, Y: 8, NumRecentArticles: 90},
	}
	bb, ok := MarkersBBox(ms)
	require.True(t, ok)
	assert.Equal(t, BBox{MinX: 0, MaxX: 10, MinY: -2, MaxY: 8}, bb)

	assert.Equal(t, 2, Nearest(ms, 5, 7))
	assert.Equal(t, -1, Nearest(nil, 0, 0))

	SortMarkers(ms)
	assert.Equal(t, []string{"c", "a", "b"}, []string{ms[0].Label, ms[1].Label, ms[2].Label})

	_, ok = MarkersBBox(nil)
	assert.False(t, ok)
}

func TestBBoxPad(t *testing.T) {
	b := BBox{MinX: 5, MaxX: 5, MinY: 0, MaxY: 10}.Pad(2)
	assert.Equal(t, BBox{MinX: 4, MaxX: 6, MinY: 0, MaxY: 10}, b)
}

func TestDefaultAtlas(t *testing.T) {
	a, err := DefaultAtlas()
	require.NoError(t, err)

	assert.Equal(t, BBox{MinX: 0, MaxX: 1000, MinY: 0, MaxY: 600}, a.Extent)
	require.Len(t, a.Layers, 4)

	l0, ok := a.Layer("layer0")
	require.True(t, ok)
	assert.True(t, math.IsInf(l0.ZoomThreshold, -1))
	assert.True(t, math.IsInf(l0.FadeRadius, -1))
	assert.Len(t, l0.Geometry.Polygons, 3)

	l1, _ := a.Layer("layer1")
	assert.Equal(t, 0.8, l1.ZoomThreshold)
	assert.Len(t, l1.Geometry.Lines, 4)

	l2, _ := a.Layer("layer2")
	assert.Equal(t, 3.2, l2.FadeRadius)
	assert.Len(t, l2.Geometry.Points, 4)

	grid, _ := a.Layer("grid")
	assert.True(t, grid.Hidden)

	assert.Len(t, a.Markers, 12)
}

func TestLoadAtlasResolvesFiles(t *testing.T) {
	a, err := LoadAtlas(filepath.Join("testdata", "atlas.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Test", a.Name)
	base, ok := a.Layer("base")
	require.True(t, ok)
	assert.Len(t, base.Geometry.Polygons, 1)
	assert.Len(t, a.Markers, 2)
	// No explicit extent: the union of layers and markers.
	assert.Equal(t, BBox{MinX: -5, MaxX: 50, MinY: 0, MaxY: 50}, a.Extent)
}

func TestParseAtlasValidation(t *testing.T) {
	tests := map[string]string{
		"no area":   "extent: {xMin: 0, xMax: 0, yMin: 0, yMax: 1}\nlayers: [{id: a, wkt: ['POINT(1 1)']}]",
		"duplicate": "extent: {xMin: 0, xMax: 1, yMin: 0, yMax: 1}\nlayers: [{id: a}, {id: a}]",
		"no id":     "extent: {xMin: 0, xMax: 1, yMin: 0, yMax: 1}\nlayers: [{zoomThreshold: 1}]",
		"bad wkt":   "extent: {xMin: 0, xMax: 1, yMin: 0, yMax: 1}\nlayers: [{id: a, wkt: ['POINT(']}]",
		"bad yaml":  "layers: [",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAtlas([]byte(in), "")
			assert.Error(t, err)
		})
	}
}
