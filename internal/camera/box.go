package camera

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrInvalidBoundingBox is returned for boxes with zero or negative
	// width or height.
	ErrInvalidBoundingBox = errors.New("camera: bounding box has no area")
	// ErrInvalidZoomTarget is returned for non-positive zoom levels.
	ErrInvalidZoomTarget = errors.New("camera: zoom target must be positive")
	// ErrTransitionCancelled is the terminal error of a transition replaced
	// by a newer request or stopped with Cancel.
	ErrTransitionCancelled = errors.New("camera: transition cancelled")
)

// BoundingBox is a data-space rectangle to fit the view to.
type BoundingBox struct {
	Min    r2.Vec
	Max    r2.Vec
	Center r2.Vec
}

func NewBoundingBox(min, max r2.Vec) BoundingBox {
	return BoundingBox{Min: min, Max: max, Center: r2.Scale(0.5, r2.Add(min, max))}
}

// BoxAround returns the box of the given half extents centred on c.
func BoxAround(c r2.Vec, halfWidth, halfHeight float64) BoundingBox {
	d := r2.Vec{X: halfWidth, Y: halfHeight}
	return BoundingBox{Min: r2.Sub(c, d), Max: r2.Add(c, d), Center: c}
}

func (b BoundingBox) Width() float64  { return b.Max.X - b.Min.X }
func (b BoundingBox) Height() float64 { return b.Max.Y - b.Min.Y }

func (b BoundingBox) valid() bool { return b.Width() > 0 && b.Height() > 0 }
