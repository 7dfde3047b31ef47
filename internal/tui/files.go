package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"scimap/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

type markerItem struct {
	marker geom.Marker
	tier   int
}

func (i markerItem) Title() string {
	return fmt.Sprintf("%c %s", tierGlyph(i.tier), i.marker.Label)
}
func (i markerItem) Description() string {
	return fmt.Sprintf("%d articles", i.marker.NumRecentArticles)
}
func (i markerItem) FilterValue() string { return i.marker.Label }

var atlasExts = []string{".yaml", ".yml"}

func (m *Model) refreshSidebar() {
	if m.mode == sidebarMarkers {
		m.refreshMarkerList()
		return
	}
	m.refreshDir()
}

func (m *Model) refreshDir() {
	m.l.Title = "Files"
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if slices.Contains(geom.MarkerExts, ext) || slices.Contains(atlasExts, ext) {
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no atlas or marker files in current directory"
	}
}

func (m *Model) refreshMarkerList() {
	m.l.Title = "Markers"
	ms := m.scene.Markers()
	geom.SortMarkers(ms)
	items := make([]list.Item, len(ms))
	for i, mk := range ms {
		items[i] = markerItem{marker: mk, tier: geom.TierOf(mk.NumRecentArticles, m.cfg.MarkerThresholds)}
	}
	m.l.SetItems(items)
}

// openSelected fits the camera to a selected marker, or loads a selected
// atlas or marker file.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	switch it := m.l.SelectedItem().(type) {
	case markerItem:
		return m.fitMarker(it.marker)
	case fileItem:
		m.loadPath(it.path)
	}
	return m, nil
}

// loadPath replaces the atlas with a manifest, or adds markers from a
// marker file.
func (m *Model) loadPath(p string) {
	m.selPath = p
	ext := strings.ToLower(filepath.Ext(p))
	switch {
	case slices.Contains(atlasExts, ext):
		a, err := geom.LoadAtlas(p)
		if err != nil {
			m.log.Error("load atlas", "path", p, "err", err)
			m.status = "load error: " + err.Error()
			return
		}
		if err := m.setAtlas(a); err != nil {
			m.log.Error("load atlas", "path", p, "err", err)
			m.status = "load error: " + err.Error()
			return
		}
		m.status = fmt.Sprintf("loaded: %s  layers=%d markers=%d", filepath.Base(p), len(a.Layers), len(a.Markers))
	case slices.Contains(geom.MarkerExts, ext):
		ms, err := geom.LoadMarkers(p)
		if err != nil {
			m.log.Error("load markers", "path", p, "err", err)
			m.status = "load error: " + err.Error()
			return
		}
		m.scene.addMarkers(ms)
		m.status = fmt.Sprintf("loaded: %s  markers=%d", filepath.Base(p), len(ms))
	default:
		m.status = "unsupported file: " + ext
	}
}
