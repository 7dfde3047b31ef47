package viewport

// Resize reacts to a new viewport size: it refits the global domains,
// re-derives the visible window for the unchanged transform, resets the
// pixel ranges and forces one full frame. Every call recomputes; there is
// no debouncing. A zero-size viewport returns ErrDeferredLayout and keeps
// the previous state.
func (v *Viewport) Resize(width, height float64) error {
	if !(width > 0 && height > 0) {
		v.log.Debug("resize deferred", "width", width, "height", height)
		return ErrDeferredLayout
	}

	v.mu.Lock()
	if err := v.scales.UpdateGlobalScaleDomains(width, height); err != nil {
		v.mu.Unlock()
		return err
	}
	if err := v.scales.TransformLocalScaleDomains(v.store.Get()); err != nil {
		v.mu.Unlock()
		return err
	}
	if err := v.scales.UpdateScaleRanges(width, height); err != nil {
		v.mu.Unlock()
		return err
	}
	v.size = Size{Width: width, Height: height}
	v.mapper.SetClientSize(v.size)
	v.mu.Unlock()

	v.store.Refresh()
	return nil
}
