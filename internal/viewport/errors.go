package viewport

import "errors"

var (
	// ErrDeferredLayout is returned when the viewport has no usable size yet.
	// The previous domains, ranges and frame stay in effect.
	ErrDeferredLayout = errors.New("viewport: layout deferred, zero-size viewport")
	// ErrInvalidViewport is returned when the overlay has no viewBox or
	// rendered size to map coordinates against.
	ErrInvalidViewport = errors.New("viewport: overlay not sized")
	// ErrDegenerateExtent is returned for a map extent without area.
	ErrDegenerateExtent = errors.New("viewport: map extent has zero width or height")
)
