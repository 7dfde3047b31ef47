package geom

import "github.com/paulmach/orb"

type BBox struct {
	MinX float64 `yaml:"xMin" json:"xMin"`
	MaxX float64 `yaml:"xMax" json:"xMax"`
	MinY float64 `yaml:"yMin" json:"yMin"`
	MaxY float64 `yaml:"yMax" json:"yMax"`
}

func FromBound(b orb.Bound) BBox {
	return BBox{MinX: b.Min.X(), MinY: b.Min.Y(), MaxX: b.Max.X(), MaxY: b.Max.Y()}
}

func (b BBox) Width() float64  { return b.MaxX - b.MinX }
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

func (b BBox) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// Pad widens each axis that is narrower than minSize to minSize around
// its centre, so single points and flat lines still have an area.
func (b BBox) Pad(minSize float64) BBox {
	cx, cy := b.Center()
	if b.Width() < minSize {
		b.MinX, b.MaxX = cx-minSize/2, cx+minSize/2
	}
	if b.Height() < minSize {
		b.MinY, b.MaxY = cy-minSize/2, cy+minSize/2
	}
	return b
}

type bboxBuilder struct {
	b BBox
	n int
}

func (bb *bboxBuilder) add(x, y float64) {
	if bb.n == 0 {
		bb.b = BBox{MinX: x, MinY: y, MaxX: x, MaxY: y}
	} else {
		bb.b.MinX = min(bb.b.MinX, x)
		bb.b.MinY = min(bb.b.MinY, y)
		bb.b.MaxX = max(bb.b.MaxX, x)
		bb.b.MaxY = max(bb.b.MaxY, y)
	}
	bb.n++
}

// Data is a minimal geometry container for rendering
type Data struct {
	Points   [][2]float64
	Lines    [][][2]float64
	Polygons [][][][2]float64 // polygons with rings (first outer, following holes)
	BBox     BBox
}

func (d Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

// Merge appends o's geometry to d and grows the bbox.
func (d *Data) Merge(o Data) {
	if o.Empty() {
		return
	}
	if d.Empty() {
		d.BBox = o.BBox
	} else {
		d.BBox = BBox{
			MinX: min(d.BBox.MinX, o.BBox.MinX),
			MinY: min(d.BBox.MinY, o.BBox.MinY),
			MaxX: max(d.BBox.MaxX, o.BBox.MaxX),
			MaxY: max(d.BBox.MaxY, o.BBox.MaxY),
		}
	}
	d.Points = append(d.Points, o.Points...)
	d.Lines = append(d.Lines, o.Lines...)
	d.Polygons = append(d.Polygons, o.Polygons...)
}

// collector flattens orb geometries into Data.
type collector struct {
	d  Data
	bb bboxBuilder
}

func (c *collector) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		c.d.Points = append(c.d.Points, [2]float64(g))
	case orb.MultiPoint:
		for _, p := range g {
			c.d.Points = append(c.d.Points, [2]float64(p))
		}
	case orb.LineString:
		c.d.Lines = append(c.d.Lines, toPath(g))
	case orb.MultiLineString:
		for _, ls := range g {
			c.d.Lines = append(c.d.Lines, toPath(ls))
		}
	case orb.Ring:
		c.d.Polygons = append(c.d.Polygons, [][][2]float64{toPath(g)})
	case orb.Polygon:
		c.d.Polygons = append(c.d.Polygons, toRings(g))
	case orb.MultiPolygon:
		for _, p := range g {
			c.d.Polygons = append(c.d.Polygons, toRings(p))
		}
	case orb.Bound:
		c.add(g.ToPolygon())
		return
	case orb.Collection:
		for _, sub := range g {
			c.add(sub)
		}
		return
	default:
		return
	}
	if b := g.Bound(); !b.IsEmpty() {
		c.bb.add(b.Min.X(), b.Min.Y())
		c.bb.add(b.Max.X(), b.Max.Y())
	}
}

func (c *collector) data() Data {
	c.d.BBox = c.bb.b
	return c.d
}

func toPath[T ~[]orb.Point](ps T) [][2]float64 {
	out := make([][2]float64, len(ps))
	for i, p := range ps {
		out[i] = [2]float64(p)
	}
	return out
}

func toRings(p orb.Polygon) [][][2]float64 {
	out := make([][][2]float64, len(p))
	for i, r := range p {
		out[i] = toPath(r)
	}
	return out
}
