package geom

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed atlas/default.yaml
var defaultAtlas []byte

// AtlasLayer is one fading overlay group of an atlas.
type AtlasLayer struct {
	ID            string   `yaml:"id"`
	ZoomThreshold float64  `yaml:"zoomThreshold"`
	FadeRadius    float64  `yaml:"fadeRadius"`
	Color         string   `yaml:"color"`
	Hidden        bool     `yaml:"hidden"`
	WKT           []string `yaml:"wkt"`
	File          string   `yaml:"file"`

	Geometry Data `yaml:"-"`
}

// Atlas describes a map: its data-space extent, the overlay layers and an
// optional marker set.
type Atlas struct {
	Name        string       `yaml:"name"`
	Extent      BBox         `yaml:"extent"`
	Layers      []AtlasLayer `yaml:"layers"`
	Markers     []Marker     `yaml:"markers"`
	MarkersFile string       `yaml:"markersFile"`
	// LabelsColor styles the labels group; labels never fade.
	LabelsColor string `yaml:"labelsColor"`

	dir string
}

// DefaultAtlas returns the built-in atlas.
func DefaultAtlas() (*Atlas, error) {
	return ParseAtlas(defaultAtlas, "")
}

// LoadAtlas reads a YAML atlas manifest. Relative layer and marker files
// resolve against the manifest's directory.
func LoadAtlas(path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := ParseAtlas(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return a, nil
}

func ParseAtlas(data []byte, dir string) (*Atlas, error) {
	var a Atlas
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}
	a.dir = dir
	if err := a.resolve(); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Atlas) path(p string) string {
	if p == "" || filepath.IsAbs(p) || a.dir == "" {
		return p
	}
	return filepath.Join(a.dir, p)
}

func (a *Atlas) resolve() error {
	for i := range a.Layers {
		l := &a.Layers[i]
		for _, s := range l.WKT {
			d, err := ParseWKT(s)
			if err != nil {
				return fmt.Errorf("atlas layer %q: %w", l.ID, err)
			}
			l.Geometry.Merge(d)
		}
		if l.File != "" {
			d, err := LoadGeo(a.path(l.File))
			if err != nil {
				return fmt.Errorf("atlas layer %q: %w", l.ID, err)
			}
			l.Geometry.Merge(d)
		}
	}
	if a.MarkersFile != "" {
		ms, err := LoadMarkers(a.path(a.MarkersFile))
		if err != nil {
			return fmt.Errorf("atlas markers: %w", err)
		}
		a.Markers = append(a.Markers, ms...)
	}
	if a.Extent == (BBox{}) {
		a.Extent = a.bounds()
	}
	return nil
}

// bounds is the union of all layer geometry and markers.
func (a *Atlas) bounds() BBox {
	var all Data
	for _, l := range a.Layers {
		all.Merge(l.Geometry)
	}
	if bb, ok := MarkersBBox(a.Markers); ok {
		all.Merge(Data{Points: [][2]float64{{bb.MinX, bb.MinY}, {bb.MaxX, bb.MaxY}}, BBox: bb})
	}
	return all.BBox
}

func (a *Atlas) Validate() error {
	if !(a.Extent.Width() > 0 && a.Extent.Height() > 0) {
		return errors.New("atlas: extent has no area")
	}
	seen := make(map[string]bool, len(a.Layers))
	for _, l := range a.Layers {
		if l.ID == "" {
			return errors.New("atlas: layer without id")
		}
		if seen[l.ID] {
			return fmt.Errorf("atlas: duplicate layer %q", l.ID)
		}
		seen[l.ID] = true
		if math.IsNaN(l.ZoomThreshold) || math.IsNaN(l.FadeRadius) {
			return fmt.Errorf("atlas: layer %q has NaN fade settings", l.ID)
		}
	}
	return nil
}

// Layer returns the layer with the given id.
func (a *Atlas) Layer(id string) (AtlasLayer, bool) {
	for _, l := range a.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return AtlasLayer{}, false
}
