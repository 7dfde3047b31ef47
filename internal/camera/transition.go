package camera

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"scimap/internal/viewport"
)

type Kind string

const (
	KindFit  Kind = "fit"
	KindZoom Kind = "zoom"
)

// Transition is one animated camera move from a start to a target
// transform. It is advanced by the Controller's frame clock and ends
// either at its target or cancelled.
type Transition struct {
	id       string
	kind     Kind
	from, to viewport.Transform
	center   r2.Vec
	start    time.Time
	duration time.Duration
	ease     Easing

	done chan struct{}
	once sync.Once
	mu   sync.Mutex
	err  error
}

func newTransition(kind Kind, from, to viewport.Transform, center r2.Vec, start time.Time, d time.Duration, ease Easing) *Transition {
	return &Transition{
		id:       uuid.NewString()[:8],
		kind:     kind,
		from:     from,
		to:       to,
		center:   center,
		start:    start,
		duration: d,
		ease:     ease,
		done:     make(chan struct{}),
	}
}

func (t *Transition) ID() string                 { return t.id }
func (t *Transition) Kind() Kind                 { return t.kind }
func (t *Transition) Target() viewport.Transform { return t.to }

// Done is closed once the transition has finished or been cancelled.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Err is nil while running and after reaching the target, and
// ErrTransitionCancelled after cancellation.
func (t *Transition) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the transition ends or ctx is done.
func (t *Transition) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transition) finish(err error) {
	t.once.Do(func() {
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		close(t.done)
	})
}

// progress returns the linear progress at now, clamped to [0,1].
func (t *Transition) progress(now time.Time) float64 {
	if t.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(t.start)) / float64(t.duration)
	return math.Max(0, math.Min(1, p))
}

// At returns the transform at linear progress p. The point of the base
// plane under the viewport centre moves linearly while the scale moves
// geometrically, so zooming feels uniform at every level. p == 1 yields
// the target exactly.
func (t *Transition) At(p float64) viewport.Transform {
	if p >= 1 {
		return t.to
	}
	if p <= 0 {
		return t.from
	}
	e := t.ease(p)
	b0, b1 := t.from.Invert(t.center), t.to.Invert(t.center)
	b := r2.Add(b0, r2.Scale(e, r2.Sub(b1, b0)))
	k := t.from.K * math.Pow(t.to.K/t.from.K, e)
	return viewport.Transform{K: k, X: t.center.X - b.X*k, Y: t.center.Y - b.Y*k}
}
