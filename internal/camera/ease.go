package camera

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

// EaseQuadInOut is the symmetric quadratic ease-in-out curve.
func EaseQuadInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t / 2
	}
	t--
	return (t*(2-t) + 1) / 2
}

func Linear(t float64) float64 { return t }
