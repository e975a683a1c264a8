package services

import "math"

// Default clamp bounds applied by Normalize.
//
// The lower bound means no component of a stored vector is ever negative
// or zero. This distorts the geometry of unit vectors, but the index
// contents depend on it, so it is kept as is.
const (
	DefaultClampMin = 0.001
	DefaultClampMax = 1.0
)

// Normalize turns a raw embedding into the form stored in the index:
// non-finite components become 0, the vector is rescaled to unit L2 norm
// when its norm is positive, every component is clamped to [lo, hi], and
// the result is cast to float32. The input is not modified.
//
// Normalize is not idempotent. Clamping moves the vector off the unit
// sphere, so a second call rescales it again and returns different
// values. The clamp stage alone is stable: clamping an already clamped
// vector leaves it unchanged. Apply Normalize once, to raw backend output.
func Normalize(raw []float32, lo, hi float64) []float32 {
	unit := unitScale(raw)
	out := make([]float32, len(unit))
	for i, f := range unit {
		out[i] = float32(clamp(f, lo, hi))
	}
	return out
}

// unitScale replaces non-finite components with 0 and divides by the L2
// norm. A zero vector is returned unchanged.
func unitScale(raw []float32) []float64 {
	vals := make([]float64, len(raw))
	var sum float64
	for i, v := range raw {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			f = 0
		}
		vals[i] = f
		sum += f * f
	}

	norm := math.Sqrt(sum)
	if norm > 0 {
		for i := range vals {
			vals[i] /= norm
		}
	}
	return vals
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
