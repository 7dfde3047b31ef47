package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// decodeFeatures accepts a FeatureCollection, a single Feature or a bare
// geometry and returns its features.
func decodeFeatures(data []byte) ([]*geojson.Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.Type {
	case "":
		return nil, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		return fc.Features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{f}, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		return []*geojson.Feature{geojson.NewFeature(g.Geometry())}, nil
	}
}

// LoadGeo reads a GeoJSON file and returns Data (points, lines, polygons)
func LoadGeo(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeo(data)
}

func ParseGeo(data []byte) (Data, error) {
	fs, err := decodeFeatures(data)
	if err != nil {
		return Data{}, err
	}
	var c collector
	for _, f := range fs {
		if f.Geometry != nil {
			c.add(f.Geometry)
		}
	}
	d := c.data()
	if d.Empty() {
		return Data{}, errors.New("no geometries found")
	}
	return d, nil
}

// LoadGeoJSONMarkers reads Point features as markers. Properties
// clusterId, numRecentArticles and label (or name) are optional; the
// feature id or its index stands in for a missing clusterId.
func LoadGeoJSONMarkers(path string) ([]Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fs, err := decodeFeatures(data)
	if err != nil {
		return nil, err
	}
	var out []Marker
	for i, f := range fs {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		id := propString(f.Properties, "clusterId", "cluster_id")
		if id == "" && f.ID != nil {
			id = fmt.Sprint(f.ID)
		}
		if id == "" {
			id = strconv.Itoa(i)
		}
		out = append(out, Marker{
			ClusterID:         id,
			X:                 pt.X(),
			Y:                 pt.Y(),
			NumRecentArticles: propInt(f.Properties, "numRecentArticles"),
			Label:             propString(f.Properties, "label", "name"),
		})
		if out[len(out)-1].Label == "" {
			out[len(out)-1].Label = id
		}
	}
	if len(out) == 0 {
		return nil, errors.New("geojson: no point features found")
	}
	return out, nil
}

// propString returns the first non-empty string property among keys.
func propString(p geojson.Properties, keys ...string) string {
	for _, k := range keys {
		switch v := p[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func propInt(p geojson.Properties, key string) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}
