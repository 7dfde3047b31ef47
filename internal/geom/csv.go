package geom

import (
	"encoding/csv"
	"errors"
	"os"
	"strconv"
	"strings"
)

// LoadCSVMarkers reads markers from a CSV with a header row.
// Column detection (case-insensitive): x|lon|lng|longitude, y|lat|latitude,
// cluster_id|clusterid|id, num_recent_articles|numrecentarticles|articles|count,
// label|name. Only the coordinate columns are required.
func LoadCSVMarkers(path string) ([]Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}
	idxX, idxY, idxID, idxN, idxLabel := -1, -1, -1, -1, -1
	first := func(idx *int, i int) {
		if *idx == -1 {
			*idx = i
		}
	}
	for i, h := range recs[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "x", "lon", "lng", "longitude":
			first(&idxX, i)
		case "y", "lat", "latitude":
			first(&idxY, i)
		case "cluster_id", "clusterid", "id":
			first(&idxID, i)
		case "num_recent_articles", "numrecentarticles", "articles", "count":
			first(&idxN, i)
		case "label", "name":
			first(&idxLabel, i)
		}
	}
	if idxX == -1 || idxY == -1 {
		return nil, errors.New("csv: x/y columns not found")
	}
	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var out []Marker
	for n, row := range recs[1:] {
		x, err1 := strconv.ParseFloat(field(row, idxX), 64)
		y, err2 := strconv.ParseFloat(field(row, idxY), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		m := Marker{X: x, Y: y, ClusterID: field(row, idxID), Label: field(row, idxLabel)}
		m.NumRecentArticles, _ = strconv.Atoi(field(row, idxN))
		if m.ClusterID == "" {
			m.ClusterID = strconv.Itoa(n)
		}
		if m.Label == "" {
			m.Label = m.ClusterID
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, errors.New("csv: no valid markers parsed")
	}
	return out, nil
}
