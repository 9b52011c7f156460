package math

import "math"

type Float interface {
	~float32 | ~float64
}

func Abs[T Float](val T) float64 {
	return math.Abs(float64(val))
}

func Clamp[T Float](val, lo, hi T) T {
	return max(lo, min(hi, val))
}

// IsFinite reports whether every value is neither NaN nor infinite.
func IsFinite[T Float](vals ...T) bool {
	for _, v := range vals {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
