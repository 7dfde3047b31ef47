// Package camera animates the viewport towards fit-to-box and zoom-level
// targets.
package camera

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/viewport"
)

const (
	DefaultFitDuration  = 600 * time.Millisecond
	DefaultZoomDuration = 300 * time.Millisecond
)

// Viewport is the part of *viewport.Viewport the controller drives.
type Viewport interface {
	Transform() viewport.Transform
	Size() viewport.Size
	Set(t viewport.Transform) viewport.Transform
	ClampZoom(k float64) float64
	ScreenCoordinatesOf(p r2.Vec) (r2.Vec, error)
	PixelsPerUnit() (float64, error)
}

type Options struct {
	FitDuration  time.Duration
	ZoomDuration time.Duration
	Easing       Easing
	// Now stamps the start of new transitions. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Controller runs at most one transition at a time. A new request cancels
// the one in flight; the frame clock calls Step to advance it.
//
// Step holds the controller lock while writing the viewport, so frame
// consumers must not call back into the controller synchronously.
type Controller struct {
	vp   Viewport
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	active *Transition
}

func New(vp Viewport, opts Options) *Controller {
	if opts.FitDuration == 0 {
		opts.FitDuration = DefaultFitDuration
	}
	if opts.ZoomDuration == 0 {
		opts.ZoomDuration = DefaultZoomDuration
	}
	if opts.Easing == nil {
		opts.Easing = EaseQuadInOut
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{vp: vp, opts: opts, log: opts.Logger}
}

// FitToBoundingBox starts a transition that makes box fill the viewport
// without distortion, centred. The tighter axis governs the zoom level.
func (c *Controller) FitToBoundingBox(box BoundingBox) (*Transition, error) {
	if !box.valid() {
		c.log.Warn("fit rejected", "width", box.Width(), "height", box.Height())
		return nil, ErrInvalidBoundingBox
	}
	size := c.vp.Size()
	ppu, err := c.vp.PixelsPerUnit()
	if err != nil {
		return nil, fmt.Errorf("fit to bounding box: %w", err)
	}
	desired := math.Min(size.Width/(box.Width()*ppu), size.Height/(box.Height()*ppu))
	k := c.vp.ClampZoom(desired)

	screen, err := c.vp.ScreenCoordinatesOf(box.Center)
	if err != nil {
		return nil, fmt.Errorf("fit to bounding box: %w", err)
	}

	cur := c.vp.Transform()
	base := cur.Invert(screen)
	mid := size.Center()
	target := viewport.Transform{K: k, X: mid.X - base.X*k, Y: mid.Y - base.Y*k}

	return c.start(KindFit, cur, target, mid, c.opts.FitDuration), nil
}

// ZoomToScale starts a transition to zoom level k, scaling about the
// viewport centre.
func (c *Controller) ZoomToScale(k float64) (*Transition, error) {
	if !(k > 0) || math.IsInf(k, 0) {
		c.log.Warn("zoom rejected", "k", k)
		return nil, ErrInvalidZoomTarget
	}
	cur := c.vp.Transform()
	factor := k / cur.K
	mid := c.vp.Size().Center()
	target := cur.ScaleAt(c.vp.ClampZoom(cur.K*factor), mid)

	return c.start(KindZoom, cur, target, mid, c.opts.ZoomDuration), nil
}

func (c *Controller) start(kind Kind, from, to viewport.Transform, center r2.Vec, d time.Duration) *Transition {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.log.Debug("transition cancelled", "id", c.active.id, "by", kind)
		c.active.finish(ErrTransitionCancelled)
	}
	tr := newTransition(kind, from, to, center, c.opts.Now(), d, c.opts.Easing)
	c.active = tr
	c.log.Debug("transition started", "id", tr.id, "kind", kind, "from", from.String(), "to", to.String(), "duration", d)
	return tr
}

// Step writes the active transition's transform for now into the
// viewport. It reports whether a transition is still running afterwards.
func (c *Controller) Step(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	tr := c.active
	if tr == nil {
		return false
	}
	p := tr.progress(now)
	c.vp.Set(tr.At(p))
	if p < 1 {
		return true
	}
	c.active = nil
	tr.finish(nil)
	c.log.Debug("transition finished", "id", tr.id, "kind", tr.kind)
	return false
}

// Cancel stops the active transition where it is. User gestures call this
// before touching the viewport.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return
	}
	c.log.Debug("transition cancelled", "id", c.active.id)
	c.active.finish(ErrTransitionCancelled)
	c.active = nil
}

// Active returns the running transition or nil.
func (c *Controller) Active() *Transition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
