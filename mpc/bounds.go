package mpc

import "math"

// CurvatureLimit is the largest admissible |curvature| at speed v. The static steering limit is
// tightened by the turning radius (when positive) and by the comfort lateral acceleration bound
// v^2 * curvature <= MaxLatAccel.
func CurvatureLimit(v, turningRadius float64, cfg Config) float64 {
	limit := cfg.MaxCurvature
	if turningRadius > 0 {
		limit = math.Min(limit, 1/turningRadius)
	}
	if v > 0 {
		limit = math.Min(limit, cfg.MaxLatAccel/(v*v))
	}
	return limit
}

// curvatureEnvelope fills the per stage curvature bound. When k0 cannot be brought inside limit
// by the first stage, every stage is widened to what full rate steering can reach and relaxed is
// true.
func curvatureEnvelope(k0, limit float64, t *[LAT_MPC_N + 1]float64, maxRate float64, bounds *[LAT_MPC_N + 1]float64) (relaxed bool) {
	relaxed = math.Abs(k0)-maxRate*t[1] > limit
	for i := range bounds {
		bounds[i] = limit
		if relaxed {
			bounds[i] = math.Max(limit, math.Abs(k0)-maxRate*t[i]) + relaxationMargin
		}
	}
	return relaxed
}
