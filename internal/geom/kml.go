package geom

import (
	"encoding/xml"
	"errors"
	"os"
	"strconv"
	"strings"
)

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
	ExtendedData []kmlData `xml:"ExtendedData>Data"`
}

// LoadKMLMarkers reads Placemark > Point elements as markers. KML
// coordinates are "x,y[,alt]"; altitude is ignored. The placemark id is the
// cluster id and ExtendedData numRecentArticles, when present, the article
// count.
func LoadKMLMarkers(path string) ([]Marker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Placemarks []kmlPlacemark `xml:"Placemark"`
		Document   struct {
			Placemarks []kmlPlacemark `xml:"Placemark"`
			Folders    []struct {
				Placemarks []kmlPlacemark `xml:"Placemark"`
			} `xml:"Folder"`
		} `xml:"Document"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	pms := append(doc.Placemarks, doc.Document.Placemarks...)
	for _, f := range doc.Document.Folders {
		pms = append(pms, f.Placemarks...)
	}

	var out []Marker
	for i, pm := range pms {
		if pm.Point == nil {
			continue
		}
		tuple := strings.Fields(pm.Point.Coordinates)
		if len(tuple) == 0 {
			continue
		}
		vals := strings.Split(tuple[0], ",")
		if len(vals) < 2 {
			continue
		}
		x, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		y, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		m := Marker{X: x, Y: y, ClusterID: pm.ID, Label: strings.TrimSpace(pm.Name)}
		for _, d := range pm.ExtendedData {
			switch d.Name {
			case "numRecentArticles", "num_recent_articles":
				m.NumRecentArticles, _ = strconv.Atoi(strings.TrimSpace(d.Value))
			case "clusterId", "cluster_id":
				if m.ClusterID == "" {
					m.ClusterID = strings.TrimSpace(d.Value)
				}
			}
		}
		if m.ClusterID == "" {
			m.ClusterID = strconv.Itoa(i)
		}
		if m.Label == "" {
			m.Label = m.ClusterID
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, errors.New("kml: no points found")
	}
	return out, nil
}
