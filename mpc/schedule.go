package mpc

import "math"

// StageTimes returns the stage time schedule and the speed used by the model. Stages are spaced
// quadratically so the near horizon is finely resolved. The horizon is stretched at low speed so
// the look-ahead distance never falls below MinLookahead.
func StageTimes(v float64, cfg Config) (t [LAT_MPC_N + 1]float64, vModel float64) {
	vModel = math.Max(v, cfg.MinSpeed)
	horizon := math.Max(cfg.HorizonTime, cfg.MinLookahead/vModel)
	for i := range t {
		frac := float64(i) / LAT_MPC_N
		t[i] = horizon * frac * frac
	}
	return t, vModel
}

func stageSteps(t *[LAT_MPC_N + 1]float64) (dts [LAT_MPC_N]float64) {
	for i := range dts {
		dts[i] = t[i+1] - t[i]
	}
	return dts
}

// Lookahead is the distance covered by the horizon at speed v.
func Lookahead(v float64, cfg Config) float64 {
	t, vModel := StageTimes(v, cfg)
	return t[LAT_MPC_N] * vModel
}
