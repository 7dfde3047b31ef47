package geom

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// Marker is one data point drawn on top of the map.
type Marker struct {
	ClusterID         string  `yaml:"clusterId" json:"clusterId"`
	X                 float64 `yaml:"x" json:"x"`
	Y                 float64 `yaml:"y" json:"y"`
	NumRecentArticles int     `yaml:"numRecentArticles" json:"numRecentArticles"`
	Label             string  `yaml:"label" json:"label"`
}

// DefaultTierThresholds are the upper article counts of tiers 0..4; every
// larger count falls into the last tier.
var DefaultTierThresholds = []float64{50, 200, 500, 1000, 2000}

// Tiers is the number of marker size tiers for thresholds.
func Tiers(thresholds []float64) int { return len(thresholds) + 1 }

// TierOf classifies n into a size tier: the index of the first threshold
// n does not exceed, or len(thresholds) above all of them.
func TierOf(n int, thresholds []float64) int {
	for i, t := range thresholds {
		if float64(n) <= t {
			return i
		}
	}
	return len(thresholds)
}

// MarkersBBox returns the bbox of ms; ok is false when ms is empty.
func MarkersBBox(ms []Marker) (bb BBox, ok bool) {
	var b bboxBuilder
	for _, m := range ms {
		b.add(m.X, m.Y)
	}
	return b.b, b.n > 0
}

// Nearest returns the index of the marker closest to (x, y), or -1.
func Nearest(ms []Marker, x, y float64) int {
	best, bestD := -1, math.Inf(1)
	for i, m := range ms {
		if d := math.Hypot(m.X-x, m.Y-y); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// SortMarkers orders markers by descending article count, then label.
func SortMarkers(ms []Marker) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].NumRecentArticles != ms[j].NumRecentArticles {
			return ms[i].NumRecentArticles > ms[j].NumRecentArticles
		}
		return ms[i].Label < ms[j].Label
	})
}

// MarkerExts are the file extensions LoadMarkers understands.
var MarkerExts = []string{".geojson", ".json", ".csv", ".kml"}

// LoadMarkers picks a loader by file extension.
func LoadMarkers(path string) ([]Marker, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		return LoadGeoJSONMarkers(path)
	case ".csv":
		return LoadCSVMarkers(path)
	case ".kml":
		return LoadKMLMarkers(path)
	default:
		return nil, fmt.Errorf("unsupported marker file: %q", ext)
	}
}
